package caches

import (
	"context"
	"database/sql"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/typing"
)

// Cache is a local analytical store holding one table per stream, named after the stream.
type Cache interface {
	Name() string
	// CreateOrReplaceTable drops any existing table for the stream and creates an empty one.
	CreateOrReplaceTable(ctx context.Context, schema typing.TableSchema) error
	// InsertBatch appends rows to the stream's table, without deduplication.
	InsertBatch(ctx context.Context, stream string, batch lib.Batch) error
	// RowCount returns false when the stream has no table.
	RowCount(ctx context.Context, stream string) (int64, bool, error)
	ListTables(ctx context.Context) ([]string, error)
	// Checkpoint flushes pending writes to durable storage.
	Checkpoint(ctx context.Context) error
	// ExportColumnar reads a table into Arrow record batches of at most maxChunkSize rows.
	ExportColumnar(ctx context.Context, stream string, maxChunkSize int) (arrow.Table, error)
	SQLEngine() *sql.DB
	Close() error
}

// ReadResult summarizes one sync. It is the only handle callers get on the synced data.
type ReadResult struct {
	processedRecords int64
	cache            Cache
}

func NewReadResult(cache Cache, processedRecords int64) *ReadResult {
	return &ReadResult{cache: cache, processedRecords: processedRecords}
}

func (r *ReadResult) ProcessedRecords() int64 {
	return r.processedRecords
}

func (r *ReadResult) Cache() Cache {
	return r.cache
}

// SQLEngine returns the cache's connection pool for ad hoc queries.
func (r *ReadResult) SQLEngine() *sql.DB {
	return r.cache.SQLEngine()
}

func (r *ReadResult) ToArrow(ctx context.Context, stream string, maxChunkSize int) (arrow.Table, error) {
	return r.cache.ExportColumnar(ctx, stream, maxChunkSize)
}
