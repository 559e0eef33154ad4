package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/postgres/parse"
	"github.com/artie-labs/minisync/lib/postgres/schema"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/typing"
)

const listTablesQuery = `
SELECT 
    table_name
FROM 
    information_schema.tables
WHERE 
    table_schema = $1
    AND table_type = 'BASE TABLE'
ORDER BY 
    table_name;
`

type dialect struct {
	cfg config.PostgreSQL
}

func (d dialect) ListTablesQuery() (string, []any) {
	return strings.TrimSpace(listTablesQuery), []any{d.cfg.Schema}
}

func (dialect) QuoteIdentifier(s string) string {
	return pgx.Identifier{s}.Sanitize()
}

func (d dialect) QualifiedTableName(table string) string {
	return pgx.Identifier{d.cfg.Schema, table}.Sanitize()
}

func (d dialect) DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	return schema.DescribeTable(ctx, db, d.cfg.Schema, table)
}

func (dialect) ParseValue(col typing.Column, value any) (any, error) {
	return parse.ParseValue(col, value)
}

func NewProcessor(ctx context.Context, params config.Params) (*rdbms.Processor, error) {
	cfg, err := config.ParsePostgreSQL(params)
	if err != nil {
		return nil, err
	}

	db, err := rdbms.Connect(ctx, "pgx", cfg.ToDSN(), constants.DefaultConnectAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	return rdbms.NewProcessor(db, dialect{cfg: cfg}, cfg.BatchSize), nil
}
