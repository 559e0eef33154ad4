package syncerr

import (
	"errors"
	"fmt"
)

// ErrNoStreamsSelected is returned when a sync is requested without any selected streams.
var ErrNoStreamsSelected = errors.New("no streams selected")

// ConfigurationError reports bad or missing configuration, or inconsistent use of the sync flag.
type ConfigurationError struct {
	Key    string
	Reason string
}

func NewConfigurationError(key, reason string) ConfigurationError {
	return ConfigurationError{Key: key, Reason: reason}
}

func (e ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error: %q %s", e.Key, e.Reason)
}

type StreamNotFoundError struct {
	Stream string
}

func (e StreamNotFoundError) Error() string {
	return fmt.Sprintf("stream not found: %q", e.Stream)
}

// DiscoveryError wraps a failure while listing tables or counting their rows.
type DiscoveryError struct {
	// Stream is empty when the table listing itself failed.
	Stream string
	Err    error
}

func (e DiscoveryError) Error() string {
	if e.Stream == "" {
		return fmt.Sprintf("failed to discover catalog: %v", e.Err)
	}
	return fmt.Sprintf("failed to count rows for stream %q: %v", e.Stream, e.Err)
}

func (e DiscoveryError) Unwrap() error {
	return e.Err
}

type UnsupportedTypeError struct {
	Stream     string
	Column     string
	NativeType string
}

func (e UnsupportedTypeError) Error() string {
	if e.Stream == "" && e.Column == "" {
		return fmt.Sprintf("unsupported data type: %q", e.NativeType)
	}
	return fmt.Sprintf("unsupported data type %q for column %q in stream %q", e.NativeType, e.Column, e.Stream)
}

// ExtractionError wraps a failure while pulling batches for a stream.
type ExtractionError struct {
	Stream string
	Err    error
}

func (e ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract stream %q: %v", e.Stream, e.Err)
}

func (e ExtractionError) Unwrap() error {
	return e.Err
}

// SyncIntegrityError is returned when the number of rows pulled for a stream does not match the catalog.
type SyncIntegrityError struct {
	Stream   string
	Expected int64
	Actual   int64
}

func (e SyncIntegrityError) Error() string {
	return fmt.Sprintf("row count mismatch for stream %q: expected %d, synced %d (delta %d)",
		e.Stream, e.Expected, e.Actual, e.Actual-e.Expected)
}

// CacheError wraps a DDL, insert or read failure against the local cache.
type CacheError struct {
	Op     string
	Stream string
	Err    error
}

func (e CacheError) Error() string {
	if e.Stream == "" {
		return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cache %s failed for stream %q: %v", e.Op, e.Stream, e.Err)
}

func (e CacheError) Unwrap() error {
	return e.Err
}
