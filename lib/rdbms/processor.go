package rdbms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/catalog"
	"github.com/artie-labs/minisync/lib/iterator"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

// Dialect holds everything that differs between row-cursor backends.
type Dialect interface {
	// ListTablesQuery returns a query yielding one base table name per row, views and system tables excluded.
	ListTablesQuery() (string, []any)
	QuoteIdentifier(s string) string
	// QualifiedTableName returns the fully qualified, quoted name of a table in the configured scope.
	QualifiedTableName(table string) string
	// DescribeTable returns the columns of a table in ordinal order, mapped to canonical types.
	DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error)
	// ParseValue converts a scanned driver value into its normalized Go representation.
	ParseValue(col typing.Column, value any) (any, error)
}

// CountExpression is implemented by dialects that need something other than COUNT(*) to count large tables.
type CountExpression interface {
	CountExpression() string
}

// Processor implements discovery, schema generation and batched extraction over a single database/sql connection
// pool, reading every stream through one server side cursor.
type Processor struct {
	db        *sql.DB
	dialect   Dialect
	batchSize int

	mu        sync.Mutex
	iterators []*rowIterator
	closed    bool
}

func NewProcessor(db *sql.DB, dialect Dialect, batchSize int) *Processor {
	if batchSize <= 0 {
		batchSize = constants.DefaultBatchSize
	}

	return &Processor{
		db:        db,
		dialect:   dialect,
		batchSize: batchSize,
	}
}

func (p *Processor) DB() *sql.DB {
	return p.db
}

func (p *Processor) Dialect() Dialect {
	return p.dialect
}

func (p *Processor) BatchSize() int {
	return p.batchSize
}

func (p *Processor) ListTables(ctx context.Context) ([]string, error) {
	query, args := p.dialect.ListTablesQuery()
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %s: %w", query, err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var table string
		if err = rows.Scan(&table); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, table)
	}
	return tables, rows.Err()
}

func (p *Processor) CountRows(ctx context.Context, table string) (int64, error) {
	expression := "COUNT(*)"
	if counter, isOk := p.dialect.(CountExpression); isOk {
		expression = counter.CountExpression()
	}

	var count int64
	query := fmt.Sprintf("SELECT %s FROM %s", expression, p.dialect.QualifiedTableName(table))
	if err := p.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to run query: %s: %w", query, err)
	}
	return count, nil
}

// Discover lists every base table in scope and counts its rows. Any failure discards the whole catalog.
func (p *Processor) Discover(ctx context.Context) (*catalog.Catalog, error) {
	tables, err := p.ListTables(ctx)
	if err != nil {
		return nil, syncerr.DiscoveryError{Err: err}
	}

	result := catalog.New()
	for _, table := range tables {
		count, err := p.CountRows(ctx, table)
		if err != nil {
			return nil, syncerr.DiscoveryError{Stream: table, Err: err}
		}

		if err = result.Add(table, count); err != nil {
			return nil, syncerr.DiscoveryError{Stream: table, Err: err}
		}
	}

	slog.Debug("Discovered catalog", slog.Int("streams", result.Len()))
	return result, nil
}

func (p *Processor) GenerateTableSchema(ctx context.Context, stream string) (typing.TableSchema, error) {
	columns, err := p.dialect.DescribeTable(ctx, p.db, stream)
	if err != nil {
		var unsupportedErr syncerr.UnsupportedTypeError
		if errors.As(err, &unsupportedErr) {
			unsupportedErr.Stream = stream
			return typing.TableSchema{}, unsupportedErr
		}
		return typing.TableSchema{}, fmt.Errorf("failed to describe stream %q: %w", stream, err)
	}

	if len(columns) == 0 {
		return typing.TableSchema{}, fmt.Errorf("stream %q has no columns", stream)
	}

	return typing.TableSchema{Name: stream, Columns: columns}, nil
}

// SelectQuery selects the columns explicitly so that values line up with the generated schema.
func (p *Processor) SelectQuery(schema typing.TableSchema) string {
	quoted := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		quoted[i] = p.dialect.QuoteIdentifier(col.Name)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ","), p.dialect.QualifiedTableName(schema.Name))
}

func (p *Processor) GetResultBatches(ctx context.Context, stream string) (iterator.ClosableIterator[lib.Batch], error) {
	schema, err := p.GenerateTableSchema(ctx, stream)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("processor is closed")}
	}

	query := p.SelectQuery(schema)
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, syncerr.ExtractionError{Stream: stream, Err: fmt.Errorf("failed to run query: %s: %w", query, err)}
	}

	iter := &rowIterator{
		ctx:       ctx,
		stream:    stream,
		rows:      rows,
		columns:   schema.Columns,
		names:     schema.ColumnNames(),
		batchSize: p.batchSize,
		parse:     p.dialect.ParseValue,
	}
	p.iterators = append(p.iterators, iter)
	return iter, nil
}

// Close releases every cursor that is still open and then the connection pool. It is safe to call more than once.
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
	errs = append(errs, p.db.Close())
	return errors.Join(errs...)
}

type rowIterator struct {
	ctx       context.Context
	stream    string
	rows      *sql.Rows
	columns   []typing.Column
	names     []string
	batchSize int
	parse     func(col typing.Column, value any) (any, error)

	// peeked is set once rows.Next() has been called for the row that will be scanned next.
	peeked bool
	hasRow bool
	err    error
	closed bool
}

func (r *rowIterator) HasNext() bool {
	if r.closed {
		return false
	}
	if r.err != nil {
		return true
	}

	if !r.peeked {
		r.peeked = true
		r.hasRow = r.rows.Next()
		if !r.hasRow {
			if err := r.rows.Err(); err != nil {
				r.err = err
				return true
			}
			_ = r.Close()
		}
	}
	return r.hasRow
}

func (r *rowIterator) fail(err error) (lib.Batch, error) {
	_ = r.Close()
	return lib.Batch{}, syncerr.ExtractionError{Stream: r.stream, Err: err}
}

func (r *rowIterator) Next() (lib.Batch, error) {
	if !r.HasNext() {
		return lib.Batch{}, fmt.Errorf("iterator has finished")
	}

	if r.err != nil {
		return r.fail(r.err)
	}

	if err := r.ctx.Err(); err != nil {
		return r.fail(err)
	}

	rows := make([][]any, 0, min(r.batchSize, 4096))
	for len(rows) < r.batchSize && r.HasNext() && r.err == nil {
		values := make([]any, len(r.columns))
		valuePtrs := make([]any, len(values))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := r.rows.Scan(valuePtrs...); err != nil {
			return r.fail(fmt.Errorf("failed to scan row: %w", err))
		}
		r.peeked = false

		for i, col := range r.columns {
			value, err := r.parse(col, values[i])
			if err != nil {
				return r.fail(fmt.Errorf("failed to parse column %q: %w", col.Name, err))
			}
			values[i] = value
		}
		rows = append(rows, values)
	}

	return lib.Batch{Columns: r.names, Rows: rows}, nil
}

func (r *rowIterator) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.rows.Close()
}
