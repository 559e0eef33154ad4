package constants

const (
	// DefaultBatchSize is the maximum number of rows a processor returns per batch.
	DefaultBatchSize = 100_000
	// DefaultMaxChunkSize is the maximum number of rows per record batch when exporting to Arrow.
	DefaultMaxChunkSize = 100_000

	// MaxDecimalPrecision is the widest decimal that fits in 128 bits. Wider decimals are kept as text.
	MaxDecimalPrecision = 38

	// DefaultConnectAttempts is how many times a source is pinged before giving up on it.
	DefaultConnectAttempts = 3

	DefaultCacheName = "default_cache"
	DefaultCacheDir  = ".cache"
)
