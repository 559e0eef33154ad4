package snowflake

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/iterator"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/syncerr"
)

// Processor reuses the row-cursor processor for discovery and schema generation, and reads stream contents
// through Snowflake's Arrow result batches.
type Processor struct {
	*rdbms.Processor

	mu        sync.Mutex
	iterators []*batchIterator
	closed    bool
}

func newProcessor(processor *rdbms.Processor) *Processor {
	return &Processor{Processor: processor}
}

func (p *Processor) GetResultBatches(ctx context.Context, stream string) (iterator.ClosableIterator[lib.Batch], error) {
	tableSchema, err := p.GenerateTableSchema(ctx, stream)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("processor is closed")}
	}

	conn, err := p.DB().Conn(ctx)
	if err != nil {
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("failed to acquire connection: %w", err)}
	}

	query := p.SelectQuery(tableSchema)
	var rows driver.Rows
	err = conn.Raw(func(driverConn any) error {
		queryer, isOk := driverConn.(driver.QueryerContext)
		if !isOk {
			return fmt.Errorf("expected driver.QueryerContext got %T", driverConn)
		}

		rows, err = queryer.QueryContext(arrowContext(ctx), query, nil)
		return err
	})
	if err != nil {
		_ = conn.Close()
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("failed to run query: %s: %w", query, err)}
	}

	sfRows, isOk := rows.(sf.SnowflakeRows)
	if !isOk {
		_ = rows.Close()
		_ = conn.Close()
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("expected sf.SnowflakeRows got %T", rows)}
	}

	arrowBatches, err := sfRows.GetArrowBatches()
	if err != nil {
		_ = rows.Close()
		_ = conn.Close()
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("failed to get arrow batches: %w", err)}
	}

	fetchers := make([]recordFetcher, len(arrowBatches))
	for i, arrowBatch := range arrowBatches {
		fetchers[i] = arrowBatch
	}

	iter := newBatchIterator(ctx, stream, tableSchema.Columns, fetchers, p.BatchSize(), func() error {
		return errors.Join(rows.Close(), conn.Close())
	})
	p.iterators = append(p.iterators, iter)
	return iter, nil
}

func (p *Processor) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var errs []error
	for _, iter := range p.iterators {
		errs = append(errs, iter.Close())
	}
	p.iterators = nil
	errs = append(errs, p.Processor.Close())
	return errors.Join(errs...)
}
