package parse

import (
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/artie-labs/minisync/lib/typing"
)

// ParseValue converts a value returned by go-mssqldb into its normalized representation.
func ParseValue(col typing.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch col.Type.Kind {
	case typing.UUID:
		// uniqueidentifier arrives as 16 bytes in SQL Server's mixed-endian layout.
		if castedValue, isOk := value.([]byte); isOk && len(castedValue) == 16 {
			var id mssql.UniqueIdentifier
			if err := id.Scan(castedValue); err != nil {
				return nil, fmt.Errorf("failed to scan uniqueidentifier: %w", err)
			}
			return typing.Normalize(col.Type, id.String())
		}
	case typing.Bit:
		if _, isOk := value.(bool); !isOk {
			return nil, fmt.Errorf("expected bool got %T with value: %v", value, value)
		}
	case typing.TinyInt, typing.SmallInt, typing.Integer, typing.BigInt:
		if _, isOk := value.(int64); !isOk {
			return nil, fmt.Errorf("expected int64 got %T with value: %v", value, value)
		}
	}

	return typing.Normalize(col.Type, value)
}
