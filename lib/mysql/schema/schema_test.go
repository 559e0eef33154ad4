package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`foo`", QuoteIdentifier("foo"))
	assert.Equal(t, "`fo``o`", QuoteIdentifier("fo`o"))
}

func TestParseColumnDataType(t *testing.T) {
	tcs := []struct {
		input    string
		expected typing.Type
	}{
		{"tinyint", typing.Simple(typing.TinyInt)},
		{"tinyint(1)", typing.Simple(typing.TinyInt)},
		{"tinyint unsigned", typing.Simple(typing.SmallInt)},
		{"smallint", typing.Simple(typing.SmallInt)},
		{"smallint(5) unsigned", typing.Simple(typing.Integer)},
		{"mediumint", typing.Simple(typing.Integer)},
		{"int", typing.Simple(typing.Integer)},
		{"int(10) unsigned zerofill", typing.Simple(typing.BigInt)},
		{"int unsigned", typing.Simple(typing.BigInt)},
		{"bigint", typing.Simple(typing.BigInt)},
		{"bigint unsigned", typing.DecimalOf(20, 0)},
		{"year", typing.Simple(typing.SmallInt)},
		{"decimal(5,2)", typing.DecimalOf(5, 2)},
		{"numeric(10,0)", typing.DecimalOf(10, 0)},
		{"float", typing.Simple(typing.Real)},
		{"double", typing.Simple(typing.Double)},
		{"bit(1)", typing.Simple(typing.Bit)},
		{"date", typing.Simple(typing.Date)},
		{"datetime", typing.Simple(typing.Timestamp)},
		{"datetime(6)", typing.Simple(typing.Timestamp)},
		{"timestamp", typing.Simple(typing.Timestamp)},
		{"time", typing.Simple(typing.Time)},
		{"char(5)", typing.VarcharOf(5)},
		{"varchar(255)", typing.VarcharOf(255)},
		{"VARCHAR(12)", typing.VarcharOf(12)},
		{"text", typing.VarcharOf(0)},
		{"longtext", typing.VarcharOf(0)},
		{"enum('a','b')", typing.VarcharOf(0)},
		{"set('a','b')", typing.VarcharOf(0)},
	}

	for _, tc := range tcs {
		actual, err := ParseColumnDataType(tc.input)
		assert.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, actual, tc.input)
	}
	{
		// unsupported
		for _, input := range []string{"bit(8)", "blob", "varbinary(10)", "json", "point", "geometry"} {
			_, err := ParseColumnDataType(input)
			var unsupportedErr syncerr.UnsupportedTypeError
			assert.True(t, errors.As(err, &unsupportedErr), input)
			assert.Equal(t, input, unsupportedErr.NativeType)
		}
	}
	{
		// malformed
		_, err := ParseColumnDataType("int(10")
		assert.ErrorContains(t, err, `malformed data type: "int(10"`)

		_, err = ParseColumnDataType("decimal(5)")
		assert.ErrorContains(t, err, `invalid decimal metadata: "5"`)

		_, err = ParseColumnDataType("varchar(abc)")
		assert.ErrorContains(t, err, "failed to parse varchar size")
	}
}
