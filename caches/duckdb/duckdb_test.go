package duckdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/minisync/lib"
	"github.com/artie-labs/minisync/lib/typing"
)

func TestDialect(t *testing.T) {
	d := dialect{}
	{
		// RenderType
		assert.Equal(t, "BOOLEAN", d.RenderType(typing.Simple(typing.Bit)))
		assert.Equal(t, "DECIMAL(10,2)", d.RenderType(typing.DecimalOf(10, 2)))
		assert.Equal(t, "VARCHAR", d.RenderType(typing.DecimalOf(50, 2)))
		assert.Equal(t, "VARCHAR(20)", d.RenderType(typing.VarcharOf(20)))
		assert.Equal(t, "TIMESTAMP", d.RenderType(typing.Simple(typing.Timestamp)))
	}
	{
		// Placeholder
		assert.Equal(t, "?", d.Placeholder(typing.Simple(typing.BigInt)))
		assert.Equal(t, "?::VARCHAR::DECIMAL(10,2)", d.Placeholder(typing.DecimalOf(10, 2)))
		assert.Equal(t, "?", d.Placeholder(typing.DecimalOf(50, 2)))
		assert.Equal(t, "?::VARCHAR::UUID", d.Placeholder(typing.Simple(typing.UUID)))
		assert.Equal(t, "?::VARCHAR::DATE", d.Placeholder(typing.Simple(typing.Date)))
		assert.Equal(t, "?::VARCHAR::TIME", d.Placeholder(typing.Simple(typing.Time)))
	}
	{
		// BindValue
		value, err := d.BindValue(typing.Simple(typing.Date), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, "2024-03-04", value)

		_, err = d.BindValue(typing.Simple(typing.Timestamp), "2024-03-04")
		assert.ErrorContains(t, err, "expected time.Time got string")

		value, err = d.BindValue(typing.Simple(typing.Timestamp), nil)
		assert.NoError(t, err)
		assert.Nil(t, value)
	}
	{
		statements := d.CreateOrReplaceStatements(typing.TableSchema{
			Name:    "orders",
			Columns: []typing.Column{{Name: "paid", Type: typing.Simple(typing.Bit)}},
		}, d.RenderType)
		assert.Equal(t, []string{`CREATE OR REPLACE TABLE "orders" ("paid" BOOLEAN);`}, statements)
	}
	assert.Equal(t, `CAST("amount" AS VARCHAR)`, d.SelectExpression(typing.Column{Name: "amount", Type: typing.DecimalOf(10, 2)}))
	assert.Equal(t, `"id"`, d.SelectExpression(typing.Column{Name: "id", Type: typing.Simple(typing.Integer)}))
}

func TestCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cache, err := Open("default_cache", dir)
	require.NoError(t, err)
	defer cache.Close()

	assert.FileExists(t, filepath.Join(dir, "default_cache", "default_cache.duckdb"))

	schema := typing.TableSchema{
		Name: "orders",
		Columns: []typing.Column{
			{Name: "id", Type: typing.Simple(typing.Integer)},
			{Name: "amount", Type: typing.DecimalOf(10, 2)},
			{Name: "paid", Type: typing.Simple(typing.Bit)},
			{Name: "external_id", Type: typing.Simple(typing.UUID)},
			{Name: "placed_on", Type: typing.Simple(typing.Date)},
			{Name: "placed_at", Type: typing.Simple(typing.Timestamp)},
		},
	}
	require.NoError(t, cache.CreateOrReplaceTable(ctx, schema))

	placedAt := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	batch, err := lib.NewBatch(schema.ColumnNames(), [][]any{
		{int64(1), "10.50", true, "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", placedAt, placedAt},
		{int64(2), nil, false, nil, nil, nil},
	})
	require.NoError(t, err)
	require.NoError(t, cache.InsertBatch(ctx, "orders", batch))

	count, found, err := cache.RowCount(ctx, "orders")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), count)

	tables, err := cache.ListTables(ctx)
	assert.NoError(t, err)
	assert.Equal(t, []string{"orders"}, tables)
	assert.NoError(t, cache.Checkpoint(ctx))

	table, err := cache.ExportColumnar(ctx, "orders", 10)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, int64(2), table.NumRows())
	assert.Equal(t, "10.50", table.Column(1).Data().Chunk(0).(*array.Decimal128).Value(0).ToString(2))
	assert.Equal(t, "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", table.Column(3).Data().Chunk(0).(*array.String).Value(0))
	assert.Equal(t, arrow.Date32FromTime(placedAt), table.Column(4).Data().Chunk(0).(*array.Date32).Value(0))
	assert.True(t, table.Column(5).Data().Chunk(0).IsNull(1))
}
