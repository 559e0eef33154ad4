package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lmittmann/tint"

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
		"host":        cmp.Or(os.Getenv("PG_HOST"), "localhost"),
		"port":        "5432",
		"username":    "postgres",
		"password":    "postgres",
		"database":    "postgres",
		"disable_ssl": "true",
	}

	cfg, err := config.ParsePostgreSQL(params)
	if err != nil {
		logger.Fatal("Invalid config", slog.Any("err", err))
	}

	db, err := sql.Open("pgx", cfg.ToDSN())
	if err != nil {
		logger.Fatal("Could not connect to Postgres", slog.Any("err", err))
	}
	defer db.Close()

	ctx := context.Background()
	if err = testTypes(ctx, db, params); err != nil {
		logger.Fatal("Types test failed", slog.Any("err", err))
	}

	if err = testScan(ctx, db, params); err != nil {
		logger.Fatal("Scan test failed", slog.Any("err", err))
	}

	slog.Info("Test succeeded 😎")
}

const testTypesCreateTableQuery = `
CREATE TABLE %s (
	pk integer PRIMARY KEY NOT NULL,
	c_bigint bigint,
	c_bigserial bigserial,
	c_bit1 bit(1),
	c_boolean boolean,
	c_character character(3),
	c_character_varying character varying(12),
	c_cidr cidr,
	c_date date,
	c_double_precision double precision,
	c_inet inet,
	c_integer integer,
	c_macaddr macaddr,
	c_money money,
	c_numeric numeric(7, 2),
	c_real real,
	c_smallint smallint,
	c_smallserial smallserial,
	c_serial serial,
	c_text text,
	c_time time,
	c_time3 time(3),
	c_timestamp timestamp,
	c_timestamptz timestamp with time zone,
	c_uuid uuid
)
`

const testTypesInsertQuery = `
INSERT INTO %s VALUES (
	1, 9009900990099009000, 100000123100000123, B'1', true, 'abc', 'hello world', '192.168.100.128/25', '2020-01-02',
	123.456, '192.168.1.5', 12345, '08:00:2b:01:02:03', 52093.89, 987.65, 45.678, 4, 1, 2, 'lorem ipsum', '12:34:56',
	'12:34:56.789', '2001-02-16 20:38:40', '2001-02-16 20:38:40 America/New_York', 'e7082e96-7190-4cc3-8ab4-bd27f1269f08'
)
`

const expectedTypesDDL = `CREATE OR REPLACE TABLE "%s" ("pk" INTEGER,"c_bigint" BIGINT,"c_bigserial" BIGINT,"c_bit1" BIT,"c_boolean" BIT,"c_character" VARCHAR(3),"c_character_varying" VARCHAR(12),"c_cidr" VARCHAR,"c_date" DATE,"c_double_precision" DOUBLE,"c_inet" VARCHAR,"c_integer" INTEGER,"c_macaddr" VARCHAR,"c_money" DECIMAL(19,2),"c_numeric" DECIMAL(7,2),"c_real" REAL,"c_smallint" SMALLINT,"c_smallserial" SMALLINT,"c_serial" INTEGER,"c_text" VARCHAR,"c_time" TIME,"c_time3" TIME,"c_timestamp" TIMESTAMP,"c_timestamptz" TIMESTAMP,"c_uuid" UUID);`

func testTypes(ctx context.Context, db *sql.DB, params map[string]string) error {
	tempTableName, dropTableFunc := utils.CreateTemporaryTable(db, testTypesCreateTableQuery)
	defer dropTableFunc()

	if err := utils.Check(ctx, connectors.SourcePostgres, params, tempTableName, expectedTypesDDL, "", 0); err != nil {
		return fmt.Errorf("empty table: %w", err)
	}

	slog.Info("Inserting data...")
	if _, err := db.Exec(fmt.Sprintf(testTypesInsertQuery, tempTableName)); err != nil {
		return fmt.Errorf("unable to insert data: %w", err)
	}

	return utils.Check(ctx, connectors.SourcePostgres, params, tempTableName, expectedTypesDDL, "", 1)
}

const testScanCreateTableQuery = `
CREATE TABLE %s (
	c_int_pk integer NOT NULL,
	c_boolean_pk boolean NOT NULL,
	c_text_pk text NOT NULL,
	c_text_value text,
	PRIMARY KEY (c_int_pk, c_boolean_pk, c_text_pk)
)
`

const testScanInsertQuery = `
INSERT INTO %s
SELECT i, i %% 2 = 0, 'key ' || i, 'row ' || i FROM generate_series(1, 2500) AS i
`

const expectedScanDDL = `CREATE OR REPLACE TABLE "%s" ("c_int_pk" INTEGER,"c_boolean_pk" BIT,"c_text_pk" VARCHAR,"c_text_value" VARCHAR);`

// testScan syncs a table larger than the batch size, so rows are pulled in several batches.
func testScan(ctx context.Context, db *sql.DB, params map[string]string) error {
	tempTableName, dropTableFunc := utils.CreateTemporaryTable(db, testScanCreateTableQuery)
	defer dropTableFunc()

	if _, err := db.Exec(fmt.Sprintf(testScanInsertQuery, tempTableName)); err != nil {
		return fmt.Errorf("unable to insert data: %w", err)
	}

	batched := map[string]string{"batch_size": "1000"}
	for key, value := range params {
		batched[key] = value
	}
	return utils.Check(ctx, connectors.SourcePostgres, batched, tempTableName, expectedScanDDL, "", 2500)
}
