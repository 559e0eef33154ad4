package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/artie-labs/minisync/caches"
	"github.com/artie-labs/minisync/caches/sqlcache"
	"github.com/artie-labs/minisync/lib/typing"
)

const fileExtension = ".sqlite"

var _ caches.Cache = (*sqlcache.Cache)(nil)

func Path(name, dir string) string {
	return filepath.Join(dir, name, name+fileExtension)
}

func dsn(path string) string {
	u := &url.URL{
		Scheme: "file",
		Opaque: filepath.ToSlash(path),
		RawQuery: url.Values{
			"_pragma": []string{"journal_mode(WAL)", "busy_timeout(5000)"},
		}.Encode(),
	}
	return u.String()
}

// Open opens or creates the SQLite cache named name under dir.
func Open(name, dir string) (*sqlcache.Cache, error) {
	path := Path(name, dir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite cache %q: %w", path, err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open SQLite cache %q: %w", path, err)
	}

	slog.Info("Opened SQLite cache", slog.String("name", name), slog.String("path", path))
	return sqlcache.New(name, db, dialect{}), nil
}

type dialect struct{}

func (dialect) RenderType(typ typing.Type) string {
	return typ.String()
}

func (dialect) CreateOrReplaceStatements(schema typing.TableSchema, renderType func(typing.Type) string) []string {
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", typing.QuoteIdentifier(schema.Name)),
		schema.RenderDDL("CREATE TABLE", renderType),
	}
}

func (dialect) Placeholder(_ typing.Type) string {
	return "?"
}

func (dialect) BindValue(_ typing.Type, value any) (any, error) {
	return value, nil
}

func (dialect) SelectExpression(col typing.Column) string {
	return typing.QuoteIdentifier(col.Name)
}

func (dialect) ListTablesQuery() string {
	return "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
}

func (dialect) DescribeTableQuery(table string) (string, []any) {
	return "SELECT name, type FROM pragma_table_info(?) ORDER BY cid", []any{table}
}

func (dialect) CheckpointStatement() string {
	return "PRAGMA wal_checkpoint(TRUNCATE)"
}
