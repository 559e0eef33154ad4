package columnar

import (
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/minisync/lib/typing"
)

func TestArrowType(t *testing.T) {
	tcs := []struct {
		typ      typing.Type
		expected arrow.DataType
	}{
		{typing.Simple(typing.TinyInt), arrow.PrimitiveTypes.Int8},
		{typing.Simple(typing.SmallInt), arrow.PrimitiveTypes.Int16},
		{typing.Simple(typing.Integer), arrow.PrimitiveTypes.Int32},
		{typing.Simple(typing.BigInt), arrow.PrimitiveTypes.Int64},
		{typing.Simple(typing.Bit), arrow.FixedWidthTypes.Boolean},
		{typing.Simple(typing.Real), arrow.PrimitiveTypes.Float32},
		{typing.Simple(typing.Double), arrow.PrimitiveTypes.Float64},
		{typing.DecimalOf(10, 2), &arrow.Decimal128Type{Precision: 10, Scale: 2}},
		{typing.DecimalOf(76, 0), arrow.BinaryTypes.String},
		{typing.VarcharOf(12), arrow.BinaryTypes.String},
		{typing.Simple(typing.UUID), arrow.BinaryTypes.String},
		{typing.Simple(typing.Date), arrow.FixedWidthTypes.Date32},
		{typing.Simple(typing.Time), arrow.FixedWidthTypes.Time64us},
		{typing.Simple(typing.Timestamp), &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}},
	}

	for _, tc := range tcs {
		actual, err := ArrowType(tc.typ)
		assert.NoError(t, err, tc.typ.String())
		assert.True(t, arrow.TypeEqual(tc.expected, actual), tc.typ.String())
	}

	_, err := ArrowType(typing.Type{Kind: 99})
	assert.ErrorContains(t, err, "no arrow type for Kind(99)")
}

func TestTableBuilder(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	columns := []typing.Column{
		{Name: "id", Type: typing.Simple(typing.BigInt)},
		{Name: "amount", Type: typing.DecimalOf(10, 2)},
		{Name: "paid", Type: typing.Simple(typing.Bit)},
		{Name: "placed_at", Type: typing.Simple(typing.Timestamp)},
		{Name: "at", Type: typing.Simple(typing.Time)},
		{Name: "note", Type: typing.VarcharOf(0)},
	}

	builder, err := NewTableBuilder(mem, columns, 2)
	require.NoError(t, err)
	defer builder.Release()

	placedAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.NoError(t, builder.Append([]any{int64(1), "10.50", true, placedAt, "08:30:00", "first"}))
	assert.NoError(t, builder.Append([]any{int64(2), "20.00", false, nil, nil, nil}))
	assert.NoError(t, builder.Append([]any{int64(3), "7.25", nil, placedAt, "23:59:59.5", "third"}))

	table := builder.NewTable()
	defer table.Release()

	assert.Equal(t, int64(3), table.NumRows())
	assert.Equal(t, int64(6), table.NumCols())

	// Chunks are bounded by the max chunk size.
	ids := table.Column(0).Data()
	assert.Len(t, ids.Chunks(), 2)
	assert.Equal(t, 2, ids.Chunk(0).Len())
	assert.Equal(t, 1, ids.Chunk(1).Len())
	assert.Equal(t, int64(3), ids.Chunk(1).(*array.Int64).Value(0))

	amounts := table.Column(1).Data().Chunk(0).(*array.Decimal128)
	assert.Equal(t, "10.50", amounts.Value(0).ToString(2))

	notes := table.Column(5).Data().Chunk(0).(*array.String)
	assert.Equal(t, "first", notes.Value(0))
	assert.True(t, notes.IsNull(1))

	times := table.Column(4).Data().Chunk(1).(*array.Time64)
	assert.Equal(t, arrow.Time64((23*3600+59*60+59)*1_000_000+500_000), times.Value(0))
}

func TestTableBuilder_Errors(t *testing.T) {
	columns := []typing.Column{{Name: "id", Type: typing.Simple(typing.Integer)}}
	{
		_, err := NewTableBuilder(memory.NewGoAllocator(), columns, 0)
		assert.ErrorContains(t, err, "max chunk size must be > 0")
	}
	{
		builder, err := NewTableBuilder(memory.NewGoAllocator(), columns, 10)
		require.NoError(t, err)
		defer builder.Release()

		assert.ErrorContains(t, builder.Append([]any{int64(1), int64(2)}), "expected 1 values, got 2")
		assert.ErrorContains(t, builder.Append([]any{"one"}), `failed to append value for column "id": expected int64 got string with value: one`)
	}
	{
		// empty tables still carry the schema
		builder, err := NewTableBuilder(memory.NewGoAllocator(), columns, 10)
		require.NoError(t, err)
		defer builder.Release()

		table := builder.NewTable()
		defer table.Release()
		assert.Equal(t, int64(0), table.NumRows())
		assert.Equal(t, "id", table.Schema().Field(0).Name)
	}
}
