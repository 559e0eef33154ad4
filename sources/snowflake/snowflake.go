package snowflake

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sf "github.com/snowflakedb/gosnowflake"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/snowflake/schema"
	"github.com/artie-labs/minisync/lib/typing"
)

const listTablesQuery = `
SELECT 
    TABLE_NAME
FROM 
    %s.INFORMATION_SCHEMA.TABLES
WHERE 
    TABLE_SCHEMA = ? AND 
    TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_NAME;
`

type dialect struct {
	cfg config.Snowflake
}

func (d dialect) ListTablesQuery() (string, []any) {
	return fmt.Sprintf(strings.TrimSpace(listTablesQuery), schema.QuoteIdentifier(d.cfg.Database)), []any{d.cfg.Schema}
}

func (dialect) QuoteIdentifier(s string) string {
	return schema.QuoteIdentifier(s)
}

func (d dialect) QualifiedTableName(table string) string {
	return fmt.Sprintf("%s.%s.%s",
		schema.QuoteIdentifier(d.cfg.Database),
		schema.QuoteIdentifier(d.cfg.Schema),
		schema.QuoteIdentifier(table),
	)
}

func (d dialect) DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	return schema.DescribeTable(ctx, db, d.cfg.Database, d.cfg.Schema, table)
}

// ParseValue is only used when rows are read through database/sql, extraction goes through Arrow batches.
func (dialect) ParseValue(col typing.Column, value any) (any, error) {
	return typing.Normalize(col.Type, value)
}

func NewProcessor(ctx context.Context, params config.Params) (*Processor, error) {
	cfg, err := config.ParseSnowflake(params)
	if err != nil {
		return nil, err
	}

	dsn, err := cfg.ToDSN()
	if err != nil {
		return nil, fmt.Errorf("failed to build Snowflake DSN: %w", err)
	}

	db, err := rdbms.Connect(ctx, "snowflake", dsn, constants.DefaultConnectAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Snowflake: %w", err)
	}

	return newProcessor(rdbms.NewProcessor(db, dialect{cfg: cfg}, cfg.BatchSize)), nil
}

// arrowContext asks the driver for raw Arrow batches, with fixed point numbers kept as decimals.
func arrowContext(ctx context.Context) context.Context {
	return sf.WithHigherPrecision(sf.WithArrowBatches(ctx))
}
