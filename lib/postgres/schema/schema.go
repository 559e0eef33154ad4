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

const describeTableQuery = `
SELECT 
    a.attname AS column_name,
    pg_catalog.format_type(a.atttypid, a.atttypmod) AS data_type
FROM 
    pg_catalog.pg_attribute a
JOIN 
    pg_catalog.pg_class cl ON a.attrelid = cl.oid
JOIN 
    pg_catalog.pg_namespace n ON cl.relnamespace = n.oid
WHERE 
    n.nspname = $1
    AND cl.relname = $2
    AND a.attnum > 0
    AND NOT a.attisdropped
ORDER BY 
    a.attnum;
`

func DescribeTable(ctx context.Context, db *sql.DB, _schema, table string) ([]typing.Column, error) {
	query := strings.TrimSpace(describeTableQuery)
	rows, err := db.QueryContext(ctx, query, _schema, table)
	if err != nil {
		return nil, fmt.Errorf("failed to run query: %s: %w", query, err)
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

// splitMetadata separates the type modifier from a format_type() string, which may sit in the middle of the name,
// e.g. "timestamp(3) without time zone".
func splitMetadata(originalS string) (string, string, error) {
	s := strings.ToLower(originalS)
	parenIndex := strings.Index(s, "(")
	if parenIndex == -1 {
		return s, "", nil
	}

	closeIndex := strings.Index(s, ")")
	if closeIndex < parenIndex {
		return "", "", fmt.Errorf("malformed data type: %q", originalS)
	}

	return strings.TrimSpace(s[:parenIndex] + s[closeIndex+1:]), s[parenIndex+1 : closeIndex], nil
}

func ParseColumnDataType(originalS string) (typing.Type, error) {
	s, metadata, err := splitMetadata(originalS)
	if err != nil {
		return typing.Type{}, err
	}

	switch s {
	case "bit":
		if metadata == "" || metadata == "1" {
			return typing.Simple(typing.Bit), nil
		}
	case "boolean":
		return typing.Simple(typing.Bit), nil
	case "smallint":
		return typing.Simple(typing.SmallInt), nil
	case "integer":
		return typing.Simple(typing.Integer), nil
	case "bigint", "oid":
		return typing.Simple(typing.BigInt), nil
	case "real":
		return typing.Simple(typing.Real), nil
	case "double precision":
		return typing.Simple(typing.Double), nil
	case "money":
		return typing.DecimalOf(19, 2), nil
	case "numeric":
		if metadata == "" {
			// Unconstrained numerics have no fixed precision to map to.
			break
		}

		parts := strings.Split(metadata, ",")
		if len(parts) != 2 {
			return typing.Type{}, fmt.Errorf("expected precision and scale to both be set or not set, got %q", originalS)
		}

		precision, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse precision value %q: %w", metadata, err)
		}

		scale, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse scale value %q: %w", metadata, err)
		}

		return typing.DecimalOf(precision, scale), nil
	case "character varying", "character":
		if metadata == "" {
			return typing.VarcharOf(0), nil
		}

		length, err := strconv.Atoi(metadata)
		if err != nil {
			return typing.Type{}, fmt.Errorf("failed to parse length value %q: %w", metadata, err)
		}
		return typing.VarcharOf(length), nil
	case "text", "citext", "xml", "cidr", "inet", "macaddr", "macaddr8":
		return typing.VarcharOf(0), nil
	case "time without time zone":
		return typing.Simple(typing.Time), nil
	case "date":
		return typing.Simple(typing.Date), nil
	case "timestamp without time zone", "timestamp with time zone":
		return typing.Simple(typing.Timestamp), nil
	case "uuid":
		return typing.Simple(typing.UUID), nil
	}

	return typing.Type{}, syncerr.UnsupportedTypeError{NativeType: originalS}
}
