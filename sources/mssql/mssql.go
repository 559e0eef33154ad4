package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/mssql/parse"
	"github.com/artie-labs/minisync/lib/mssql/schema"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/typing"
)

const listTablesQuery = `
SELECT 
    TABLE_NAME
FROM 
    INFORMATION_SCHEMA.TABLES
WHERE 
    TABLE_TYPE = 'BASE TABLE' AND 
    TABLE_CATALOG = ? AND 
    TABLE_SCHEMA = ?
ORDER BY TABLE_NAME;
`

type dialect struct {
	cfg config.MSSQL
}

func (d dialect) ListTablesQuery() (string, []any) {
	return strings.TrimSpace(listTablesQuery), []any{mssql.VarChar(d.cfg.Database), mssql.VarChar(d.cfg.Schema)}
}

// CountExpression uses COUNT_BIG since COUNT(*) returns an int and overflows past 2^31 rows.
func (dialect) CountExpression() string {
	return "COUNT_BIG(*)"
}

func (dialect) QuoteIdentifier(s string) string {
	return fmt.Sprintf("[%s]", strings.ReplaceAll(s, "]", "]]"))
}

func (d dialect) QualifiedTableName(table string) string {
	return fmt.Sprintf("%s.%s", d.QuoteIdentifier(d.cfg.Schema), d.QuoteIdentifier(table))
}

func (d dialect) DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	return schema.DescribeTable(ctx, db, d.cfg.Schema, table)
}

func (dialect) ParseValue(col typing.Column, value any) (any, error) {
	return parse.ParseValue(col, value)
}

func NewProcessor(ctx context.Context, params config.Params) (*rdbms.Processor, error) {
	cfg, err := config.ParseMSSQL(params)
	if err != nil {
		return nil, err
	}

	db, err := rdbms.Connect(ctx, "mssql", cfg.ToDSN(), constants.DefaultConnectAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MSSQL: %w", err)
	}

	return rdbms.NewProcessor(db, dialect{cfg: cfg}, cfg.BatchSize), nil
}
