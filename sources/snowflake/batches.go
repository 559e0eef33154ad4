package snowflake

import (
	"context"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/iterator"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

type recordFetcher interface {
	Fetch() (*[]arrow.Record, error)
	GetRowCount() int
}

// arrowRows yields the rows of Arrow result batches, fetching a result batch only once the previous one is drained.
type arrowRows struct {
	ctx      context.Context
	columns  []typing.Column
	fetchers []recordFetcher
	current  iterator.Iterator[[]any]
	err      error
}

func (r *arrowRows) HasNext() bool {
	for r.err == nil && (r.current == nil || !r.current.HasNext()) {
		if len(r.fetchers) == 0 {
			return false
		}
		r.err = r.fetchNext()
	}
	return true
}

func (r *arrowRows) Next() ([]any, error) {
	if !r.HasNext() {
		return nil, fmt.Errorf("iterator has finished")
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.current.Next()
}

func (r *arrowRows) fetchNext() error {
	fetcher := r.fetchers[0]
	r.fetchers = r.fetchers[1:]
	if fetcher.GetRowCount() == 0 {
		return nil
	}

	if err := r.ctx.Err(); err != nil {
		return err
	}

	records, err := fetcher.Fetch()
	if err != nil {
		return fmt.Errorf("failed to fetch arrow batch: %w", err)
	}

	if records == nil {
		return nil
	}

	var rows [][]any
	for _, record := range *records {
		if err == nil {
			var decoded [][]any
			if decoded, err = decodeRecord(r.columns, record); err == nil {
				rows = append(rows, decoded...)
			}
		}
		record.Release()
	}
	if err != nil {
		return err
	}

	r.current = iterator.FromSlice(rows)
	return nil
}

// batchIterator re-chunks the rows of Arrow result batches into batches of batchSize.
type batchIterator struct {
	stream  string
	names   []string
	rows    *arrowRows
	batches iterator.Iterator[[][]any]
	release func() error
	closed  bool
}

func newBatchIterator(ctx context.Context, stream string, columns []typing.Column, fetchers []recordFetcher, batchSize int, release func() error) *batchIterator {
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}

	rows := &arrowRows{ctx: ctx, columns: columns, fetchers: fetchers}
	return &batchIterator{
		stream:  stream,
		names:   names,
		rows:    rows,
		batches: iterator.Batch[[]any](rows, batchSize),
		release: release,
	}
}

func (b *batchIterator) HasNext() bool {
	if b.closed {
		return false
	}

	if !b.batches.HasNext() {
		_ = b.Close()
		return false
	}
	return true
}

func (b *batchIterator) Next() (lib.Batch, error) {
	if !b.HasNext() {
		return lib.Batch{}, fmt.Errorf("iterator has finished")
	}

	rows, err := b.batches.Next()
	if err != nil {
		_ = b.Close()
		return lib.Batch{}, syncerr.ExtractionError{Stream: b.stream, Err: err}
	}
	return lib.Batch{Columns: b.names, Rows: rows}, nil
}

func (b *batchIterator) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	b.rows.fetchers = nil
	b.rows.current = nil
	if b.release == nil {
		return nil
	}
	return b.release()
}
