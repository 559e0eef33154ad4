package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Settings struct {
	Version string
	SQLMode []string
}

func retrieveSettings(ctx context.Context, db *sql.DB) (Settings, error) {
	var version string
	if err := db.QueryRowContext(ctx, `SELECT VERSION();`).Scan(&version); err != nil {
		return Settings{}, fmt.Errorf("failed to retrieve MySQL version: %w", err)
	}

	var sqlMode string
	if err := db.QueryRowContext(ctx, `SELECT @@SESSION.sql_mode;`).Scan(&sqlMode); err != nil {
		return Settings{}, fmt.Errorf("failed to retrieve MySQL session sql_mode: %w", err)
	}

	return Settings{
		Version: version,
		SQLMode: strings.Split(sqlMode, ","),
	}, nil
}
