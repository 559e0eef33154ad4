package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	_ "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/connectors"
	"github.com/artie-labs/minisync/integration_tests/utils"
	"github.com/artie-labs/minisync/lib/logger"
)

func main() {
	if err := os.Setenv("TZ", "UTC"); err != nil {
		logger.Fatal("Unable to set TZ env var", slog.Any("err", err))
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{})))

	params := map[string]string{
		"host":     cmp.Or(os.Getenv("MSSQL_HOST"), "127.0.0.1"),
		"port":     "1433",
		"username": "sa",
		"password": "yourStrong!Password",
		"database": "master",
		"schema":   "dbo",
	}

	cfg, err := config.ParseMSSQL(params)
	if err != nil {
		logger.Fatal("Invalid config", slog.Any("err", err))
	}

	db, err := sql.Open("mssql", cfg.ToDSN())
	if err != nil {
		logger.Fatal("Could not connect to SQL Server", slog.Any("err", err))
	}
	defer db.Close()

	if err = testTypes(context.Background(), db, params); err != nil {
		logger.Fatal("Types test failed", slog.Any("err", err))
	}

	slog.Info("Test succeeded 😎")
}

const testTypesCreateTableQuery = `
CREATE TABLE %s (
	pk INTEGER PRIMARY KEY NOT NULL,
	c_bit BIT,
	c_tinyint TINYINT,
	c_smallint SMALLINT,
	c_int INT,
	c_bigint BIGINT,
	c_float FLOAT,
	c_real REAL,
	c_money MONEY,
	c_numeric NUMERIC(10, 2),
	c_varchar VARCHAR(20),
	c_nvarchar_max NVARCHAR(MAX),
	c_date DATE,
	c_time TIME,
	c_datetime2 DATETIME2,
	c_uniqueidentifier UNIQUEIDENTIFIER
)
`

const testTypesInsertQuery = `
INSERT INTO %s VALUES
	(1, 1, 5, 123, 1234, 1235, 1.5, 2.5, 12.3456, 99.99, 'hello', N'world', '2024-01-02', '13:14:15', '2024-01-02 13:14:15', 'A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11'),
	(2, 0, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL, NULL)
`

const expectedDDL = `CREATE OR REPLACE TABLE "%s" ("pk" INTEGER,"c_bit" BIT,"c_tinyint" SMALLINT,"c_smallint" SMALLINT,"c_int" INTEGER,"c_bigint" BIGINT,"c_float" DOUBLE,"c_real" REAL,"c_money" DECIMAL(19,4),"c_numeric" DECIMAL(10,2),"c_varchar" VARCHAR(20),"c_nvarchar_max" VARCHAR,"c_date" DATE,"c_time" TIME,"c_datetime2" TIMESTAMP,"c_uniqueidentifier" UUID);`

func testTypes(ctx context.Context, db *sql.DB, params map[string]string) error {
	tempTableName, dropTableFunc := utils.CreateTemporaryTable(db, testTypesCreateTableQuery)
	defer dropTableFunc()

	// An empty table still gets a cache table.
	if err := utils.Check(ctx, connectors.SourceMSSQL, params, tempTableName, expectedDDL, "", 0); err != nil {
		return fmt.Errorf("empty table: %w", err)
	}

	slog.Info("Inserting data...")
	if _, err := db.Exec(fmt.Sprintf(testTypesInsertQuery, tempTableName)); err != nil {
		return fmt.Errorf("unable to insert data: %w", err)
	}

	return utils.Check(ctx, connectors.SourceMSSQL, params, tempTableName, expectedDDL, "", 2)
}
