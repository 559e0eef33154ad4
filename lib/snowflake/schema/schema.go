package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

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
    %s.INFORMATION_SCHEMA.COLUMNS
WHERE 
    TABLE_SCHEMA = ? AND 
    TABLE_NAME = ?
ORDER BY ORDINAL_POSITION;
`

func QuoteIdentifier(s string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(s, `"`, `""`))
}

func DescribeTable(ctx context.Context, db *sql.DB, database, _schema, table string) ([]typing.Column, error) {
	query := fmt.Sprintf(strings.TrimSpace(describeTableQuery), QuoteIdentifier(database))
	rows, err := db.QueryContext(ctx, query, _schema, table)
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

// ParseColumnDataType maps the DATA_TYPE reported by INFORMATION_SCHEMA.COLUMNS. Whole numbers are narrowed to the
// smallest integer type that holds every value allowed by their precision.
func ParseColumnDataType(colKind string, charLength, precision, scale *int) (typing.Type, error) {
	colKind = strings.ToUpper(colKind)
	switch colKind {
	case "NUMBER", "FIXED":
		if precision == nil || scale == nil {
			return typing.Type{}, fmt.Errorf("expected precision and scale to be not-nil for %q", colKind)
		}

		if *scale == 0 {
			switch {
			case *precision <= 9:
				return typing.Simple(typing.Integer), nil
			case *precision <= 18:
				return typing.Simple(typing.BigInt), nil
			}
		}
		return typing.DecimalOf(*precision, *scale), nil
	case "FLOAT", "REAL":
		// Snowflake floats are always double precision.
		return typing.Simple(typing.Double), nil
	case "TEXT":
		if charLength == nil {
			return typing.VarcharOf(0), nil
		}
		return typing.VarcharOf(*charLength), nil
	case "BOOLEAN":
		return typing.Simple(typing.Bit), nil
	case "DATE":
		return typing.Simple(typing.Date), nil
	case "TIME":
		return typing.Simple(typing.Time), nil
	case "TIMESTAMP_NTZ", "TIMESTAMP_LTZ", "TIMESTAMP_TZ":
		return typing.Simple(typing.Timestamp), nil
	}

	return typing.Type{}, syncerr.UnsupportedTypeError{NativeType: colKind}
}
