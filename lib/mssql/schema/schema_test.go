package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/artie-labs/minisync/lib/ptr"
	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

func TestParseColumnDataType(t *testing.T) {
	tcs := []struct {
		colKind    string
		charLength *int
		precision  *int
		scale      *int
		expected   typing.Type
	}{
		{colKind: "bit", expected: typing.Simple(typing.Bit)},
		{colKind: "tinyint", expected: typing.Simple(typing.SmallInt)},
		{colKind: "smallint", expected: typing.Simple(typing.SmallInt)},
		{colKind: "int", expected: typing.Simple(typing.Integer)},
		{colKind: "INT", expected: typing.Simple(typing.Integer)},
		{colKind: "bigint", expected: typing.Simple(typing.BigInt)},
		{colKind: "real", expected: typing.Simple(typing.Real)},
		{colKind: "float", precision: ptr.ToPtr(53), expected: typing.Simple(typing.Double)},
		{colKind: "float", precision: ptr.ToPtr(24), expected: typing.Simple(typing.Real)},
		{colKind: "smallmoney", expected: typing.DecimalOf(10, 4)},
		{colKind: "money", expected: typing.DecimalOf(19, 4)},
		{colKind: "decimal", precision: ptr.ToPtr(10), scale: ptr.ToPtr(2), expected: typing.DecimalOf(10, 2)},
		{colKind: "numeric", precision: ptr.ToPtr(38), scale: ptr.ToPtr(0), expected: typing.DecimalOf(38, 0)},
		{colKind: "date", expected: typing.Simple(typing.Date)},
		{colKind: "time", expected: typing.Simple(typing.Time)},
		{colKind: "datetime", expected: typing.Simple(typing.Timestamp)},
		{colKind: "datetime2", expected: typing.Simple(typing.Timestamp)},
		{colKind: "smalldatetime", expected: typing.Simple(typing.Timestamp)},
		{colKind: "datetimeoffset", expected: typing.Simple(typing.Timestamp)},
		{colKind: "varchar", charLength: ptr.ToPtr(255), expected: typing.VarcharOf(255)},
		{colKind: "nvarchar", charLength: ptr.ToPtr(-1), expected: typing.VarcharOf(0)},
		{colKind: "nchar", charLength: ptr.ToPtr(10), expected: typing.VarcharOf(10)},
		{colKind: "text", expected: typing.VarcharOf(0)},
		{colKind: "ntext", expected: typing.VarcharOf(0)},
		{colKind: "xml", expected: typing.VarcharOf(0)},
		{colKind: "uniqueidentifier", expected: typing.Simple(typing.UUID)},
	}

	for _, tc := range tcs {
		actual, err := ParseColumnDataType(tc.colKind, tc.charLength, tc.precision, tc.scale)
		assert.NoError(t, err, tc.colKind)
		assert.Equal(t, tc.expected, actual, tc.colKind)

		// Every mapping renders to something the canonical parser understands.
		parsed, err := typing.ParseType(actual.String())
		assert.NoError(t, err, tc.colKind)
		assert.Equal(t, actual, parsed, tc.colKind)
	}
	{
		// decimal without precision
		_, err := ParseColumnDataType("decimal", nil, nil, ptr.ToPtr(2))
		assert.ErrorContains(t, err, `expected precision and scale to be not-nil for "decimal"`)
	}
	{
		// unsupported
		for _, colKind := range []string{"varbinary", "image", "binary", "geography", "sql_variant"} {
			_, err := ParseColumnDataType(colKind, nil, nil, nil)
			var unsupportedErr syncerr.UnsupportedTypeError
			assert.True(t, errors.As(err, &unsupportedErr), colKind)
			assert.Equal(t, colKind, unsupportedErr.NativeType)
		}
	}
}
