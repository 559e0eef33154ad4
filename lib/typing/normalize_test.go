package typing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	{
		// nil is passed through for every kind
		for kind := range kindNames {
			value, err := Normalize(Simple(kind), nil)
			assert.NoError(t, err, kind)
			assert.Nil(t, value, kind)
		}
	}
	{
		// integers
		for _, input := range []any{int64(5), int32(5), int16(5), int8(5), 5, uint8(5), []byte("5"), "5"} {
			value, err := Normalize(Simple(Integer), input)
			assert.NoError(t, err)
			assert.Equal(t, int64(5), value)
		}
		_, err := Normalize(Simple(BigInt), 1.5)
		assert.ErrorContains(t, err, "expected integer got float64")

		value, err := Normalize(Simple(BigInt), uint64(5))
		assert.NoError(t, err)
		assert.Equal(t, int64(5), value)
		_, err = Normalize(Simple(BigInt), uint64(1<<63))
		assert.ErrorContains(t, err, "overflows int64")
	}
	{
		// bit
		for input, expected := range map[any]bool{true: true, false: false, int64(1): true, int64(0): false, "true": true, "0": false} {
			value, err := Normalize(Simple(Bit), input)
			assert.NoError(t, err)
			assert.Equal(t, expected, value)
		}
		value, err := Normalize(Simple(Bit), []byte{1})
		assert.NoError(t, err)
		assert.Equal(t, true, value)
	}
	{
		// floats
		for _, input := range []any{2.5, float32(2.5), []byte("2.5"), "2.5"} {
			value, err := Normalize(Simple(Double), input)
			assert.NoError(t, err)
			assert.Equal(t, 2.5, value)
		}
	}
	{
		// decimals are kept as strings
		for input, expected := range map[any]string{"12.50": "12.50", int64(7): "7", uint64(18446744073709551615): "18446744073709551615", 1.25: "1.25"} {
			value, err := Normalize(DecimalOf(10, 2), input)
			assert.NoError(t, err)
			assert.Equal(t, expected, value)
		}
		value, err := Normalize(DecimalOf(10, 2), []byte("99.99"))
		assert.NoError(t, err)
		assert.Equal(t, "99.99", value)
	}
	{
		// varchar
		value, err := Normalize(VarcharOf(10), []byte("hello"))
		assert.NoError(t, err)
		assert.Equal(t, "hello", value)

		value, err = Normalize(VarcharOf(10), int64(42))
		assert.NoError(t, err)
		assert.Equal(t, "42", value)
	}
	{
		// date and timestamp
		ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.FixedZone("x", 3600))
		value, err := Normalize(Simple(Timestamp), ts)
		assert.NoError(t, err)
		assert.Equal(t, ts.UTC(), value)

		value, err = Normalize(Simple(Date), "2024-03-04")
		assert.NoError(t, err)
		assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), value)

		_, err = Normalize(Simple(Date), "not a date")
		assert.ErrorContains(t, err, `failed to parse timestamp: "not a date"`)
	}
	{
		// time
		value, err := Normalize(Simple(Time), time.Date(1, 1, 1, 13, 14, 15, 500_000_000, time.UTC))
		assert.NoError(t, err)
		assert.Equal(t, "13:14:15.5", value)

		value, err = Normalize(Simple(Time), []byte("08:00:00"))
		assert.NoError(t, err)
		assert.Equal(t, "08:00:00", value)
	}
	{
		// uuid
		id := uuid.MustParse("a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11")
		for _, input := range []any{id, [16]byte(id), id[:], "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11", []byte(id.String())} {
			value, err := Normalize(Simple(UUID), input)
			assert.NoError(t, err)
			assert.Equal(t, id.String(), value)
		}

		_, err := Normalize(Simple(UUID), "nope")
		assert.ErrorContains(t, err, `failed to parse uuid "nope"`)
	}
}

func TestNormalizeRow(t *testing.T) {
	columns := []Column{
		{Name: "id", Type: Simple(BigInt)},
		{Name: "name", Type: VarcharOf(0)},
	}
	{
		row := []any{int32(1), []byte("a")}
		assert.NoError(t, NormalizeRow(columns, row))
		assert.Equal(t, []any{int64(1), "a"}, row)
	}
	{
		assert.ErrorContains(t, NormalizeRow(columns, []any{int64(1)}), "expected 2 values, got 1")
	}
	{
		assert.ErrorContains(t, NormalizeRow(columns, []any{"abc", "a"}), `failed to parse column "id"`)
	}
}
