package utils

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/artie-labs/minisync/caches/sqlite"
	"github.com/artie-labs/minisync/config"
	"github.com/artie-labs/minisync/connectors"
	"github.com/artie-labs/minisync/lib/logger"
	"github.com/artie-labs/minisync/sources"
)

func TempTableName() string {
	return fmt.Sprintf("minisync_%d", 10_000+rand.Int32N(10_000))
}

// CreateTemporaryTable creates a randomly named table from a query template with a single %s for the table name.
func CreateTemporaryTable(db *sql.DB, query string) (string, func()) {
	tableName := TempTableName()
	slog.Info("Creating temporary table...", slog.String("tableName", tableName))
	if _, err := db.Exec(fmt.Sprintf(query, tableName)); err != nil {
		logger.Fatal("Unable to create temporary table", slog.Any("err", err))
	}

	return tableName, func() {
		slog.Info("Dropping temporary table...", slog.String("tableName", tableName))
		if _, err := db.Exec(fmt.Sprintf("DROP TABLE %s", tableName)); err != nil {
			slog.Error("Failed to drop table", slog.Any("err", err))
		}
	}
}

type SyncResult struct {
	DDL              string
	ProcessedRecords int64
	// Rows is the exported table rendered as JSON, one object per line.
	Rows string
}

// SyncTable syncs a single table into a throwaway SQLite cache and exports it back.
func SyncTable(ctx context.Context, source string, params map[string]string, tableName string) (SyncResult, error) {
	builder, err := connectors.Get(source)
	if err != nil {
		return SyncResult{}, err
	}

	var result SyncResult
	if err = sources.WithProcessor(ctx, builder, config.Params(params), func(processor sources.Processor) error {
		schema, err := processor.GenerateTableSchema(ctx, tableName)
		if err != nil {
			return err
		}
		result.DDL = schema.DDL()
		return nil
	}); err != nil {
		return SyncResult{}, err
	}

	dir, err := os.MkdirTemp("", "minisync")
	if err != nil {
		return SyncResult{}, err
	}
	defer os.RemoveAll(dir)

	cache, err := sqlite.Open("integration", dir)
	if err != nil {
		return SyncResult{}, err
	}
	defer cache.Close()

	src, err := connectors.GetSource(ctx, source, params, sources.Options{Streams: []string{tableName}})
	if err != nil {
		return SyncResult{}, err
	}

	readResult, err := src.Read(ctx, cache, sources.ReadOptions{})
	if err != nil {
		return SyncResult{}, err
	}
	result.ProcessedRecords = readResult.ProcessedRecords()

	table, err := readResult.ToArrow(ctx, tableName, 1_000)
	if err != nil {
		return SyncResult{}, err
	}
	defer table.Release()

	var lines []string
	reader := array.NewTableReader(table, 1_000)
	defer reader.Release()
	for reader.Next() {
		data, err := json.Marshal(reader.Record())
		if err != nil {
			return SyncResult{}, fmt.Errorf("failed to marshal record: %w", err)
		}
		lines = append(lines, string(data))
	}
	result.Rows = strings.Join(lines, "\n")
	return result, nil
}

func CheckDifference(name, expected, actual string) bool {
	if expected == actual {
		return false
	}
	fmt.Printf("%s does not match\n", name)
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")
	fmt.Println("--------------------------------------------------------------------------------")
	for i := range max(len(expectedLines), len(actualLines)) {
		if i < len(expectedLines) {
			if i < len(actualLines) {
				if expectedLines[i] == actualLines[i] {
					fmt.Println(expectedLines[i])
				} else {
					fmt.Println("E" + expectedLines[i])
					fmt.Println("A" + actualLines[i])
				}
			} else {
				fmt.Println("E" + expectedLines[i])
			}
		} else {
			fmt.Println("A" + actualLines[i])
		}
	}
	fmt.Println("--------------------------------------------------------------------------------")
	return true
}

// Check syncs the table and compares its canonical DDL and exported rows against the expected values. An empty
// expectedRows only checks the DDL and the record count.
func Check(ctx context.Context, source string, params map[string]string, tableName, expectedDDL, expectedRows string, expectedCount int64) error {
	result, err := SyncTable(ctx, source, params, tableName)
	if err != nil {
		return err
	}

	if result.ProcessedRecords != expectedCount {
		return fmt.Errorf("expected %d records, synced %d", expectedCount, result.ProcessedRecords)
	}
	if CheckDifference("ddl", fmt.Sprintf(expectedDDL, tableName), result.DDL) {
		return fmt.Errorf("ddl does not match")
	}
	if expectedRows != "" && CheckDifference("rows", expectedRows, result.Rows) {
		return fmt.Errorf("rows do not match")
	}
	return nil
}
