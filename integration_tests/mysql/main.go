package main

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/go-sql-driver/mysql"
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
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo})))

	params := map[string]string{
		"host":     cmp.Or(os.Getenv("MYSQL_HOST"), "127.0.0.1"),
		"port":     "3306",
		"username": "root",
		"password": "mysql",
		"database": "mysql",
	}

	cfg, err := config.ParseMySQL(params)
	if err != nil {
		logger.Fatal("Invalid config", slog.Any("err", err))
	}

	db, err := sql.Open("mysql", cfg.ToDSN())
	if err != nil {
		logger.Fatal("Could not connect to MySQL", slog.Any("err", err))
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
	c_tinyint TINYINT,
	c_tinyint_unsigned TINYINT UNSIGNED,
	c_smallint SMALLINT,
	c_mediumint MEDIUMINT,
	c_int INT,
	c_int_unsigned INT UNSIGNED,
	c_bigint BIGINT,
	c_bigint_unsigned BIGINT UNSIGNED,
	c_decimal DECIMAL(7, 5),
	c_float FLOAT,
	c_double DOUBLE,
	c_bit BIT(1),
	c_date DATE,
	c_datetime DATETIME,
	c_timestamp TIMESTAMP,
	c_time TIME,
	c_year YEAR,
	c_char CHAR(4),
	c_varchar VARCHAR(255),
	c_text TEXT,
	c_enum ENUM('x-small', 'small', 'medium', 'large', 'x-large'),
	c_set SET('one', 'two', 'three')
)
`

const testTypesInsertQuery = `
INSERT INTO %s VALUES (
	1, -128, 255, -32768, -8388608, -2147483648, 4294967295, -9223372036854775808, 18446744073709551615, 12.34567,
	1.5, 2.25, b'1', '2020-01-02', '2001-02-03 04:05:06', '2001-02-03 04:05:06', '12:34:56', 2021, 'abcd', 'hello',
	'lorem ipsum', 'medium', 'one,three'
)
`

const expectedDDL = `CREATE OR REPLACE TABLE "%s" ("pk" INTEGER,"c_tinyint" TINYINT,"c_tinyint_unsigned" SMALLINT,"c_smallint" SMALLINT,"c_mediumint" INTEGER,"c_int" INTEGER,"c_int_unsigned" BIGINT,"c_bigint" BIGINT,"c_bigint_unsigned" DECIMAL(20,0),"c_decimal" DECIMAL(7,5),"c_float" REAL,"c_double" DOUBLE,"c_bit" BIT,"c_date" DATE,"c_datetime" TIMESTAMP,"c_timestamp" TIMESTAMP,"c_time" TIME,"c_year" SMALLINT,"c_char" VARCHAR(4),"c_varchar" VARCHAR(255),"c_text" VARCHAR,"c_enum" VARCHAR,"c_set" VARCHAR);`

func testTypes(ctx context.Context, db *sql.DB, params map[string]string) error {
	tempTableName, dropTableFunc := utils.CreateTemporaryTable(db, testTypesCreateTableQuery)
	defer dropTableFunc()

	if err := utils.Check(ctx, connectors.SourceMySQL, params, tempTableName, expectedDDL, "", 0); err != nil {
		return fmt.Errorf("empty table: %w", err)
	}

	slog.Info("Inserting data...")
	if _, err := db.Exec(fmt.Sprintf(testTypesInsertQuery, tempTableName)); err != nil {
		return fmt.Errorf("unable to insert data: %w", err)
	}

	return utils.Check(ctx, connectors.SourceMySQL, params, tempTableName, expectedDDL, "", 1)
}
