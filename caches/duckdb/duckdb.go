package duckdb

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/duckdb/duckdb-go/v2"

	"github.com/artie-labs/minisync/caches"
	"github.com/artie-labs/minisync/caches/sqlcache"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/typing"
)

const fileExtension = ".duckdb"

var _ caches.Cache = (*sqlcache.Cache)(nil)

// Path returns where the cache with the given name is stored: <dir>/<name>/<name>.duckdb.
func Path(name, dir string) string {
	return filepath.Join(dir, name, name+fileExtension)
}

// Open opens or creates the DuckDB cache named name under dir.
func Open(name, dir string) (*sqlcache.Cache, error) {
	path := Path(name, dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open DuckDB cache %q: %w", path, err)
	}

	slog.Info("Opened DuckDB cache", slog.String("name", name), slog.String("path", path))
	return sqlcache.New(name, sql.OpenDB(connector), dialect{}), nil
}

// Default opens the default cache, which is what a sync writes to when no cache is given.
func Default() (caches.Cache, error) {
	cache, err := Open(constants.DefaultCacheName, constants.DefaultCacheDir)
	if err != nil {
		return nil, err
	}
	return cache, nil
}

type dialect struct{}

func (dialect) RenderType(typ typing.Type) string {
	switch typ.Kind {
	case typing.Bit:
		return "BOOLEAN"
	case typing.Decimal:
		if typ.Precision > constants.MaxDecimalPrecision {
			return "VARCHAR"
		}
	}
	return typ.String()
}

func (dialect) CreateOrReplaceStatements(schema typing.TableSchema, renderType func(typing.Type) string) []string {
	return []string{schema.RenderDDL("CREATE OR REPLACE TABLE", renderType)}
}

// Placeholder binds decimals, UUIDs and temporal values as text and lets DuckDB cast them, so that no precision is
// lost on the way in.
func (dialect) Placeholder(typ typing.Type) string {
	switch typ.Kind {
	case typing.Decimal:
		if typ.Precision > constants.MaxDecimalPrecision {
			return "?"
		}
		return fmt.Sprintf("?::VARCHAR::%s", typ.String())
	case typing.UUID, typing.Time, typing.Date:
		return fmt.Sprintf("?::VARCHAR::%s", typ.Kind)
	}
	return "?"
}

func (dialect) BindValue(typ typing.Type, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch typ.Kind {
	case typing.Date:
		switch castedValue := value.(type) {
		case time.Time:
			return castedValue.Format(time.DateOnly), nil
		case string:
			return castedValue, nil
		}
		return nil, fmt.Errorf("expected time.Time got %T with value: %v", value, value)
	case typing.Timestamp:
		if _, isOk := value.(time.Time); !isOk {
			return nil, fmt.Errorf("expected time.Time got %T with value: %v", value, value)
		}
	}
	return value, nil
}

func (dialect) SelectExpression(col typing.Column) string {
	switch col.Type.Kind {
	case typing.Decimal, typing.UUID:
		return fmt.Sprintf("CAST(%s AS VARCHAR)", typing.QuoteIdentifier(col.Name))
	}
	return typing.QuoteIdentifier(col.Name)
}

func (dialect) ListTablesQuery() string {
	return "SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' AND table_type = 'BASE TABLE' ORDER BY table_name"
}

func (dialect) DescribeTableQuery(table string) (string, []any) {
	return "SELECT column_name, data_type FROM information_schema.columns WHERE table_schema = 'main' AND table_name = ? ORDER BY ordinal_position", []any{table}
}

func (dialect) CheckpointStatement() string {
	return "CHECKPOINT"
}
