package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

const describeTableQuery = `
SELECT 
    COLUMN_NAME,
    DATA_TYPE,
    CHARACTER_MAXIMUM_LENGTH,
    NUMERIC_PRECISION,
    NUMERIC_SCALE
FROM 
    INFORMATION_SCHEMA.COLUMNS
WHERE 
    TABLE_SCHEMA = ? AND 
    TABLE_NAME = ?
ORDER BY ORDINAL_POSITION;
`

func DescribeTable(ctx context.Context, db *sql.DB, _schema, table string) ([]typing.Column, error) {
	query := strings.TrimSpace(describeTableQuery)
	rows, err := db.QueryContext(ctx, query, mssql.VarChar(_schema), mssql.VarChar(table))
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %s: %w", query, err)
	}
	defer rows.Close()

	var cols []typing.Column
	for rows.Next() {
		var colName string
		var colType string
		var charLength *int
		var numericPrecision *int
		var numericScale *int
		if err = rows.Scan(&colName, &colType, &charLength, &numericPrecision, &numericScale); err != nil {
			return nil, err
		}

		dataType, err := ParseColumnDataType(colType, charLength, numericPrecision, numericScale)
		if err != nil {
			if unsupportedErr, isOk := err.(syncerr.UnsupportedTypeError); isOk {
				unsupportedErr.Column = colName
				return nil, unsupportedErr
			}
			return nil, fmt.Errorf("unable to identify type %q for column %q: %w", colType, colName, err)
		}

		cols = append(cols, typing.Column{
			Name:       colName,
			NativeType: colType,
			Type:       dataType,
		})
	}
	return cols, rows.Err()
}

// ParseColumnDataType maps a SQL Server type to a canonical type. Precision is only consulted for float,
// decimal and numeric, and charLength only for the character types, where -1 means (max).
func ParseColumnDataType(colKind string, charLength, precision, scale *int) (typing.Type, error) {
	colKind = strings.ToLower(colKind)
	switch colKind {
	case "bit":
		return typing.Simple(typing.Bit), nil
	case "tinyint":
		// SQL Server tinyint is unsigned, 0 to 255.
		return typing.Simple(typing.SmallInt), nil
	case "smallint":
		return typing.Simple(typing.SmallInt), nil
	case "int":
		return typing.Simple(typing.Integer), nil
	case "bigint":
		return typing.Simple(typing.BigInt), nil
	case "real":
		return typing.Simple(typing.Real), nil
	case "float":
		if precision != nil && *precision <= 24 {
			return typing.Simple(typing.Real), nil
		}
		return typing.Simple(typing.Double), nil
	case "smallmoney":
		return typing.DecimalOf(10, 4), nil
	case "money":
		return typing.DecimalOf(19, 4), nil
	case "numeric", "decimal":
		if precision == nil || scale == nil {
			return typing.Type{}, fmt.Errorf("expected precision and scale to be not-nil for %q", colKind)
		}
		return typing.DecimalOf(*precision, *scale), nil
	case "date":
		return typing.Simple(typing.Date), nil
	case "time":
		return typing.Simple(typing.Time), nil
	case "smalldatetime", "datetime", "datetime2", "datetimeoffset":
		return typing.Simple(typing.Timestamp), nil
	case "char", "nchar", "varchar", "nvarchar":
		if charLength == nil || *charLength < 0 {
			return typing.VarcharOf(0), nil
		}
		return typing.VarcharOf(*charLength), nil
	case "text", "ntext", "xml":
		return typing.VarcharOf(0), nil
	case "uniqueidentifier":
		return typing.Simple(typing.UUID), nil
	}

	return typing.Type{}, syncerr.UnsupportedTypeError{NativeType: colKind}
}
