package schema

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

func TestParseColumnDataType(t *testing.T) {
	tcs := []struct {
		input    string
		expected typing.Type
	}{
		{"INTEGER", typing.Simple(typing.BigInt)},
		{"int", typing.Simple(typing.BigInt)},
		{"TINYINT", typing.Simple(typing.BigInt)},
		{"REAL", typing.Simple(typing.Double)},
		{"double precision", typing.Simple(typing.Double)},
		{"DECIMAL(10,2)", typing.DecimalOf(10, 2)},
		{"NUMERIC(7)", typing.DecimalOf(7, 0)},
		{"VARCHAR(64)", typing.VarcharOf(64)},
		{"NVARCHAR (12)", typing.VarcharOf(12)},
		{"CHAR", typing.VarcharOf(0)},
		{"TEXT", typing.VarcharOf(0)},
		{"BOOLEAN", typing.Simple(typing.Bit)},
		{"DATE", typing.Simple(typing.Date)},
		{"DATETIME", typing.Simple(typing.Timestamp)},
		{"TIMESTAMP", typing.Simple(typing.Timestamp)},
		{"TIME", typing.Simple(typing.Time)},
		{"UUID", typing.Simple(typing.UUID)},
	}

	for _, tc := range tcs {
		actual, err := ParseColumnDataType(tc.input)
		assert.NoError(t, err, tc.input)
		assert.Equal(t, tc.expected, actual, tc.input)
	}
	{
		// unsupported
		for _, input := range []string{"", "BLOB", "NUMERIC", "JSON"} {
			_, err := ParseColumnDataType(input)
			var unsupportedErr syncerr.UnsupportedTypeError
			assert.True(t, errors.As(err, &unsupportedErr), input)
			assert.Equal(t, input, unsupportedErr.NativeType)
		}
	}
	{
		// malformed
		_, err := ParseColumnDataType("VARCHAR(12")
		assert.ErrorContains(t, err, `malformed data type: "VARCHAR(12"`)

		_, err = ParseColumnDataType("DECIMAL(1,2,3)")
		assert.ErrorContains(t, err, `invalid decimal metadata: "1,2,3"`)
	}
}

func TestDescribeTable(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "source.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE orders (id INTEGER PRIMARY KEY, amount DECIMAL(10,2), note VARCHAR(20), placed_at DATETIME)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE files (id INTEGER, payload BLOB)`)
	require.NoError(t, err)

	cols, err := DescribeTable(t.Context(), db, "orders")
	assert.NoError(t, err)
	assert.Equal(t, []typing.Column{
		{Name: "id", NativeType: "INTEGER", Type: typing.Simple(typing.BigInt)},
		{Name: "amount", NativeType: "DECIMAL(10,2)", Type: typing.DecimalOf(10, 2)},
		{Name: "note", NativeType: "VARCHAR(20)", Type: typing.VarcharOf(20)},
		{Name: "placed_at", NativeType: "DATETIME", Type: typing.Simple(typing.Timestamp)},
	}, cols)

	_, err = DescribeTable(t.Context(), db, "files")
	var unsupportedErr syncerr.UnsupportedTypeError
	assert.True(t, errors.As(err, &unsupportedErr))
	assert.Equal(t, "payload", unsupportedErr.Column)
	assert.Equal(t, "BLOB", unsupportedErr.NativeType)

	cols, err = DescribeTable(t.Context(), db, "missing")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}
