package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

const describeTableQuery = `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`

func DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	rows, err := db.QueryContext(ctx, describeTableQuery, table)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %s: %w", describeTableQuery, err)
	}
	defer rows.Close()

	var cols []typing.Column
	for rows.Next() {
		var colName string
		var colType string
		if err = rows.Scan(&colName, &colType); err != nil {
			return nil, err
		}

		dataType, err := ParseColumnDataType(colType)
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

// ParseColumnDataType maps a declared SQLite column type. SQLite stores every integer in up to 8 bytes whatever
// the declared width, so all integer declarations map to BIGINT.
func ParseColumnDataType(originalS string) (typing.Type, error) {
	s := strings.ToUpper(strings.TrimSpace(originalS))
	var metadata string
	if parenIndex := strings.Index(s, "("); parenIndex != -1 {
		if s[len(s)-1] != ')' {
			return typing.Type{}, fmt.Errorf("malformed data type: %q", originalS)
		}
		metadata = s[parenIndex+1 : len(s)-1]
		s = strings.TrimSpace(s[:parenIndex])
	}

	switch s {
	case "INT", "INTEGER", "TINYINT", "SMALLINT", "MEDIUMINT", "BIGINT", "INT2", "INT8", "UNSIGNED BIG INT":
		return typing.Simple(typing.BigInt), nil
	case "REAL", "DOUBLE", "DOUBLE PRECISION", "FLOAT":
		return typing.Simple(typing.Double), nil
	case "DECIMAL", "NUMERIC":
		if metadata == "" {
			break
		}

		parts := strings.Split(metadata, ",")
		precision, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse precision value %q: %w", metadata, err)
		}

		var scale int
		if len(parts) == 2 {
			if scale, err = strconv.Atoi(strings.TrimSpace(parts[1])); err != nil {
				return typing.Type{}, fmt.Errorf("failed to parse scale value %q: %w", metadata, err)
			}
		} else if len(parts) > 2 {
			return typing.Type{}, fmt.Errorf("invalid decimal metadata: %q", metadata)
		}
		return typing.DecimalOf(precision, scale), nil
	case "CHARACTER", "CHAR", "VARCHAR", "VARYING CHARACTER", "NCHAR", "NATIVE CHARACTER", "NVARCHAR":
		if metadata == "" {
			return typing.VarcharOf(0), nil
		}

		length, err := strconv.Atoi(strings.TrimSpace(metadata))
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse length value %q: %w", metadata, err)
		}
		return typing.VarcharOf(length), nil
	case "TEXT", "CLOB":
		return typing.VarcharOf(0), nil
	case "BOOLEAN", "BOOL":
		return typing.Simple(typing.Bit), nil
	case "DATE":
		return typing.Simple(typing.Date), nil
	case "DATETIME", "TIMESTAMP":
		return typing.Simple(typing.Timestamp), nil
	case "TIME":
		return typing.Simple(typing.Time), nil
	case "UUID":
		return typing.Simple(typing.UUID), nil
	}

	return typing.Type{}, syncerr.UnsupportedTypeError{NativeType: originalS}
}
