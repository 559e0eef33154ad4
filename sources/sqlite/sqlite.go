package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/sqlite/schema"
	"github.com/artie-labs/minisync/lib/typing"
)

const listTablesQuery = `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

type dialect struct{}

func (dialect) ListTablesQuery() (string, []any) {
	return listTablesQuery, nil
}

func (dialect) QuoteIdentifier(s string) string {
	return typing.QuoteIdentifier(s)
}

func (dialect) QualifiedTableName(table string) string {
	return typing.QuoteIdentifier(table)
}

func (dialect) DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	return schema.DescribeTable(ctx, db, table)
}

func (dialect) ParseValue(col typing.Column, value any) (any, error) {
	return typing.Normalize(col.Type, value)
}

func NewProcessor(ctx context.Context, params config.Params) (*rdbms.Processor, error) {
	cfg, err := config.ParseSQLite(params)
	if err != nil {
		return nil, err
	}

	// A local file either opens or it does not, there is nothing to retry.
	db, err := rdbms.Connect(ctx, "sqlite", cfg.ToDSN(), 1)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database %q: %w", cfg.Path, err)
	}

	return rdbms.NewProcessor(db, dialect{}, cfg.BatchSize), nil
}
