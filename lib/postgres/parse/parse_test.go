package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/minisync/lib/typing"
)

func TestParseValue(t *testing.T) {
	{
		// nil
		value, err := ParseValue(typing.Column{Type: typing.VarcharOf(0)}, nil)
		assert.NoError(t, err)
		assert.Nil(t, value)
	}
	{
		// bit and boolean
		value, err := ParseValue(typing.Column{NativeType: "bit(1)", Type: typing.Simple(typing.Bit)}, "1")
		assert.NoError(t, err)
		assert.Equal(t, true, value)

		value, err = ParseValue(typing.Column{NativeType: "boolean", Type: typing.Simple(typing.Bit)}, false)
		assert.NoError(t, err)
		assert.Equal(t, false, value)
	}
	{
		// money
		value, err := ParseValue(typing.Column{NativeType: "money", Type: typing.DecimalOf(19, 2)}, "$1,234.50")
		assert.NoError(t, err)
		assert.Equal(t, "1234.50", value)

		value, err = ParseValue(typing.Column{NativeType: "numeric(5,2)", Type: typing.DecimalOf(5, 2)}, "12.30")
		assert.NoError(t, err)
		assert.Equal(t, "12.30", value)
	}
	{
		// integers arrive with their native width
		value, err := ParseValue(typing.Column{NativeType: "smallint", Type: typing.Simple(typing.SmallInt)}, int16(7))
		assert.NoError(t, err)
		assert.Equal(t, int64(7), value)
	}
	{
		// text
		value, err := ParseValue(typing.Column{NativeType: "text", Type: typing.VarcharOf(0)}, "hello")
		assert.NoError(t, err)
		assert.Equal(t, "hello", value)

		_, err = ParseValue(typing.Column{NativeType: "text", Type: typing.VarcharOf(0)}, 5)
		assert.ErrorContains(t, err, "expected string got int with value: 5")
	}
	{
		// timestamps
		ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		value, err := ParseValue(typing.Column{NativeType: "timestamp with time zone", Type: typing.Simple(typing.Timestamp)}, ts.In(time.FixedZone("", 7200)))
		assert.NoError(t, err)
		assert.Equal(t, ts, value)
	}
	{
		// uuid
		value, err := ParseValue(typing.Column{NativeType: "uuid", Type: typing.Simple(typing.UUID)}, "A0EEBC99-9C0B-4EF8-BB6D-6BB9BD380A11")
		assert.NoError(t, err)
		assert.Equal(t, "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11", value)
	}
}
