package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/mysql/schema"
	"github.com/artie-labs/minisync/lib/rdbms"
	"github.com/artie-labs/minisync/lib/typing"
)

const listTablesQuery = `
SELECT 
    table_name
FROM 
    information_schema.tables
WHERE 
    table_schema = ?
    AND table_type = 'BASE TABLE'
ORDER BY 
    table_name;
`

type dialect struct {
	cfg config.MySQL
}

func (d dialect) ListTablesQuery() (string, []any) {
	return strings.TrimSpace(listTablesQuery), []any{d.cfg.Database}
}

func (dialect) QuoteIdentifier(s string) string {
	return schema.QuoteIdentifier(s)
}

func (d dialect) QualifiedTableName(table string) string {
	return fmt.Sprintf("%s.%s", schema.QuoteIdentifier(d.cfg.Database), schema.QuoteIdentifier(table))
}

func (dialect) DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	return schema.DescribeTable(ctx, db, table)
}

func (dialect) ParseValue(col typing.Column, value any) (any, error) {
	return schema.ConvertValue(col, value)
}

func NewProcessor(ctx context.Context, params config.Params) (*rdbms.Processor, error) {
	cfg, err := config.ParseMySQL(params)
	if err != nil {
		return nil, err
	}

	db, err := rdbms.Connect(ctx, "mysql", cfg.ToDSN(), constants.DefaultConnectAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}

	settings, err := retrieveSettings(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to retrieve MySQL settings: %w", err)
	}

	slog.Info("Loading MySQL connector",
		slog.String("version", settings.Version),
		slog.Any("sqlMode", settings.SQLMode),
	)
	return rdbms.NewProcessor(db, dialect{cfg: cfg}, cfg.BatchSize), nil
}
