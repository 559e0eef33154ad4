package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/artie-labs/minisync/lib/syncerr"
	"github.com/artie-labs/minisync/lib/typing"
)

func QuoteIdentifier(s string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(s, "`", "``"))
}

func DescribeTable(ctx context.Context, db *sql.DB, table string) ([]typing.Column, error) {
	r, err := db.QueryContext(ctx, "DESCRIBE "+QuoteIdentifier(table))
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %q: %w", table, err)
	}
	defer r.Close()

	var result []typing.Column
	for r.Next() {
		var colName string
		var colType string
		var nullable string
		var key string
		var defaultValue sql.NullString
		var extra string
		err = r.Scan(&colName, &colType, &nullable, &key, &defaultValue, &extra)
		if err != nil {
			return nil, fmt.Errorf("failed to scan: %w", err)
		}

		dataType, err := ParseColumnDataType(colType)
		if err != nil {
			var unsupportedErr syncerr.UnsupportedTypeError
			if errors.As(err, &unsupportedErr) {
				unsupportedErr.Column = colName
				return nil, unsupportedErr
			}
			return nil, fmt.Errorf("failed to parse data type: %w", err)
		}

		result = append(result, typing.Column{
			Name:       colName,
			NativeType: colType,
			Type:       dataType,
		})
	}
	return result, r.Err()
}

func ParseColumnDataType(originalS string) (typing.Type, error) {
	// Preserve the original value, so we can return the error message without the actual value being mutated.
	s := strings.ToLower(originalS)
	s = strings.TrimSuffix(s, " zerofill")
	var metadata string
	var unsigned bool
	if strings.HasSuffix(s, " unsigned") {
		// If a number is unsigned, we'll bump them up by one (e.g. int32 -> int64)
		unsigned = true
		s = strings.TrimSuffix(s, " unsigned")
	}

	parenIndex := strings.Index(s, "(")
	if parenIndex != -1 {
		if s[len(s)-1] != ')' {
			// Make sure the format looks like int (n) unsigned
			return typing.Type{}, fmt.Errorf("malformed data type: %q", originalS)
		}
		metadata = s[parenIndex+1 : len(s)-1]
		s = s[:parenIndex]
	}

	switch s {
	case "tinyint":
		if unsigned {
			return typing.Simple(typing.SmallInt), nil
		}
		return typing.Simple(typing.TinyInt), nil
	case "smallint":
		if unsigned {
			return typing.Simple(typing.Integer), nil
		}
		return typing.Simple(typing.SmallInt), nil
	case "mediumint":
		return typing.Simple(typing.Integer), nil
	case "int", "integer":
		if unsigned {
			return typing.Simple(typing.BigInt), nil
		}
		return typing.Simple(typing.Integer), nil
	case "bigint":
		if unsigned {
			return typing.DecimalOf(20, 0), nil
		}
		return typing.Simple(typing.BigInt), nil
	case "year":
		return typing.Simple(typing.SmallInt), nil
	case "decimal", "numeric":
		parts := strings.Split(metadata, ",")
		if len(parts) != 2 {
			return typing.Type{}, fmt.Errorf("invalid decimal metadata: %q", metadata)
		}

		precision, err := strconv.Atoi(parts[0])
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse precision value %q: %w", s, err)
		}

		scale, err := strconv.Atoi(parts[1])
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse scale value %q: %w", s, err)
		}
		return typing.DecimalOf(precision, scale), nil
	case "float":
		return typing.Simple(typing.Real), nil
	case "double":
		return typing.Simple(typing.Double), nil
	case "bit":
		if metadata == "1" {
			return typing.Simple(typing.Bit), nil
		}
	case "date":
		return typing.Simple(typing.Date), nil
	case "datetime", "timestamp":
		return typing.Simple(typing.Timestamp), nil
	case "time":
		return typing.Simple(typing.Time), nil
	case "char", "varchar":
		size, err := strconv.Atoi(metadata)
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse %s size: %w", s, err)
		}
		return typing.VarcharOf(size), nil
	case "text", "tinytext", "mediumtext", "longtext", "enum", "set":
		return typing.VarcharOf(0), nil
	}

	return typing.Type{}, syncerr.UnsupportedTypeError{NativeType: originalS}
}
