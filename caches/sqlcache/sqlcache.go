package sqlcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/columnar"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

// maxParameters caps the number of bind parameters in a single INSERT statement.
const maxParameters = 10_000

// Dialect holds everything that differs between the SQL engines a cache can be backed by.
type Dialect interface {
	// RenderType returns the engine's column type for a canonical type.
	RenderType(typ typing.Type) string
	// CreateOrReplaceStatements returns the statements that drop any existing table and create an empty one.
	// They are run in a single transaction.
	CreateOrReplaceStatements(schema typing.TableSchema, renderType func(typing.Type) string) []string
	// Placeholder returns the bind expression for a value of the given type, e.g. ? or ?::VARCHAR::UUID.
	Placeholder(typ typing.Type) string
	// BindValue converts a normalized value into something the driver can bind to [Placeholder].
	BindValue(typ typing.Type, value any) (any, error)
	// SelectExpression returns the expression used to read a column back during export.
	SelectExpression(col typing.Column) string
	ListTablesQuery() string
	// DescribeTableQuery returns a query yielding (name, type) for every column of a table in ordinal order.
	DescribeTableQuery(table string) (string, []any)
	CheckpointStatement() string
}

// Cache implements [caches.Cache] on top of a database/sql connection pool.
type Cache struct {
	name    string
	db      *sql.DB
	dialect Dialect
	mem     memory.Allocator

	mu      sync.RWMutex
	schemas map[string]typing.TableSchema
}

func New(name string, db *sql.DB, dialect Dialect) *Cache {
	return &Cache{
		name:    name,
		db:      db,
		dialect: dialect,
		mem:     memory.DefaultAllocator,
		schemas: make(map[string]typing.TableSchema),
	}
}

// WithAllocator sets the allocator used for exported Arrow data.
func (c *Cache) WithAllocator(mem memory.Allocator) *Cache {
	c.mem = mem
	return c
}

func (c *Cache) Name() string {
	return c.name
}

func (c *Cache) SQLEngine() *sql.DB {
	return c.db
}

func (c *Cache) CreateOrReplaceTable(ctx context.Context, schema typing.TableSchema) error {
	if len(schema.Columns) == 0 {
		return syncerr.CacheError{Op: "create", Stream: schema.Name, Err: fmt.Errorf("table has no columns")}
	}

	statements := c.dialect.CreateOrReplaceStatements(schema, c.dialect.RenderType)
	if err := c.inTransaction(ctx, func(tx *sql.Tx) error {
		for _, statement := range statements {
			if _, err := tx.ExecContext(ctx, statement); err != nil {
				return fmt.Errorf("failed to execute: %s: %w", statement, err)
			}
		}
		return nil
	}); err != nil {
		return syncerr.CacheError{Op: "create", Stream: schema.Name, Err: err}
	}

	c.mu.Lock()
	c.schemas[schema.Name] = schema
	c.mu.Unlock()

	slog.Debug("Created cache table", slog.String("stream", schema.Name), slog.Int("columns", len(schema.Columns)))
	return nil
}

func (c *Cache) InsertBatch(ctx context.Context, stream string, batch lib.Batch) error {
	if batch.Len() == 0 {
		return nil
	}

	schema, err := c.tableSchema(ctx, stream)
	if err != nil {
		return syncerr.CacheError{Op: "insert", Stream: stream, Err: err}
	}

	if !slices.Equal(batch.Columns, schema.ColumnNames()) {
		return syncerr.CacheError{
			Op:     "insert",
			Stream: stream,
			Err:    fmt.Errorf("batch columns %v do not match table columns %v", batch.Columns, schema.ColumnNames()),
		}
	}

	if err = c.inTransaction(ctx, func(tx *sql.Tx) error {
		rowsPerStatement := max(1, maxParameters/len(schema.Columns))
		for chunk := range slices.Chunk(batch.Rows, rowsPerStatement) {
			if err := c.insertRows(ctx, tx, schema, chunk); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return syncerr.CacheError{Op: "insert", Stream: stream, Err: err}
	}
	return nil
}

func (c *Cache) insertRows(ctx context.Context, tx *sql.Tx, schema typing.TableSchema, rows [][]any) error {
	quotedColumns := make([]string, len(schema.Columns))
	placeholders := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		quotedColumns[i] = typing.QuoteIdentifier(col.Name)
		placeholders[i] = c.dialect.Placeholder(col.Type)
	}

	tuple := "(" + strings.Join(placeholders, ",") + ")"
	tuples := make([]string, len(rows))
	args := make([]any, 0, len(rows)*len(schema.Columns))
	for i, row := range rows {
		if len(row) != len(schema.Columns) {
			return fmt.Errorf("row has %d values, expected %d", len(row), len(schema.Columns))
		}

		tuples[i] = tuple
		for j, col := range schema.Columns {
			value, err := c.dialect.BindValue(col.Type, row[j])
			if err != nil {
				return fmt.Errorf("failed to bind column %q: %w", col.Name, err)
			}
			args = append(args, value)
		}
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", typing.QuoteIdentifier(schema.Name),
		strings.Join(quotedColumns, ","), strings.Join(tuples, ","))
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert %d rows: %w", len(rows), err)
	}
	return nil
}

func (c *Cache) listTables(ctx context.Context) ([]string, error) {
	query := c.dialect.ListTablesQuery()
	rows, err := c.db.QueryContext(ctx, query)
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

func (c *Cache) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.listTables(ctx)
	if err != nil {
		return nil, syncerr.CacheError{Op: "list", Err: err}
	}
	return tables, nil
}

// RowCount counts the rows of a table. The table listing is only consulted when the count fails, to tell a missing
// table apart from a broken one.
func (c *Cache) RowCount(ctx context.Context, stream string) (int64, bool, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", typing.QuoteIdentifier(stream))
	countErr := c.db.QueryRowContext(ctx, query).Scan(&count)
	if countErr == nil {
		return count, true, nil
	}

	tables, err := c.listTables(ctx)
	if err != nil {
		return 0, false, syncerr.CacheError{Op: "count", Stream: stream, Err: errors.Join(countErr, err)}
	}

	if !slices.Contains(tables, stream) {
		return 0, false, nil
	}
	return 0, false, syncerr.CacheError{Op: "count", Stream: stream, Err: fmt.Errorf("failed to run query: %s: %w", query, countErr)}
}

func (c *Cache) Checkpoint(ctx context.Context) error {
	statement := c.dialect.CheckpointStatement()
	if _, err := c.db.ExecContext(ctx, statement); err != nil {
		return syncerr.CacheError{Op: "checkpoint", Err: fmt.Errorf("failed to execute: %s: %w", statement, err)}
	}
	return nil
}

// tableSchema returns the schema the table was created with, falling back to describing the table when it was
// created by an earlier process.
func (c *Cache) tableSchema(ctx context.Context, stream string) (typing.TableSchema, error) {
	c.mu.RLock()
	schema, isOk := c.schemas[stream]
	c.mu.RUnlock()
	if isOk {
		return schema, nil
	}

	schema, err := c.describeTable(ctx, stream)
	if err != nil {
		return typing.TableSchema{}, err
	}

	c.mu.Lock()
	c.schemas[stream] = schema
	c.mu.Unlock()
	return schema, nil
}

func (c *Cache) describeTable(ctx context.Context, stream string) (typing.TableSchema, error) {
	query, args := c.dialect.DescribeTableQuery(stream)
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return typing.TableSchema{}, fmt.Errorf("failed to run query: %s: %w", query, err)
	}
	defer rows.Close()

	var columns []typing.Column
	for rows.Next() {
		var name, dataType string
		if err = rows.Scan(&name, &dataType); err != nil {
			return typing.TableSchema{}, fmt.Errorf("failed to scan column: %w", err)
		}

		typ, err := typing.ParseType(dataType)
		if err != nil {
			return typing.TableSchema{}, fmt.Errorf("failed to parse type of column %q: %w", name, err)
		}
		columns = append(columns, typing.Column{Name: name, NativeType: dataType, Type: typ})
	}

	if err = rows.Err(); err != nil {
		return typing.TableSchema{}, err
	}

	if len(columns) == 0 {
		return typing.TableSchema{}, fmt.Errorf("table %q does not exist", stream)
	}
	return typing.TableSchema{Name: stream, Columns: columns}, nil
}

func (c *Cache) ExportColumnar(ctx context.Context, stream string, maxChunkSize int) (arrow.Table, error) {
	table, err := c.exportColumnar(ctx, stream, maxChunkSize)
	if err != nil {
		return nil, syncerr.CacheError{Op: "export", Stream: stream, Err: err}
	}
	return table, nil
}

func (c *Cache) exportColumnar(ctx context.Context, stream string, maxChunkSize int) (arrow.Table, error) {
	schema, err := c.tableSchema(ctx, stream)
	if err != nil {
		return nil, err
	}

	builder, err := columnar.NewTableBuilder(c.mem, schema.Columns, maxChunkSize)
	if err != nil {
		return nil, err
	}
	defer builder.Release()

	expressions := make([]string, len(schema.Columns))
	for i, col := range schema.Columns {
		expressions[i] = c.dialect.SelectExpression(col)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(expressions, ","), typing.QuoteIdentifier(stream))
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %s: %w", query, err)
	}
	defer rows.Close()

	for rows.Next() {
		values := make([]any, len(schema.Columns))
		valuePtrs := make([]any, len(values))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err = rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err = typing.NormalizeRow(schema.Columns, values); err != nil {
			return nil, err
		}

		if err = builder.Append(values); err != nil {
			return nil, err
		}
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return builder.NewTable(), nil
}

func (c *Cache) inTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err = fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("failed to roll back: %w", rollbackErr))
		}
		return err
	}
	return tx.Commit()
}

func (c *Cache) Close() error {
	if err := c.db.Close(); err != nil {
		return syncerr.CacheError{Op: "close", Err: err}
	}
	return nil
}
