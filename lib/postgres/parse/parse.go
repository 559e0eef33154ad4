package parse

import (
	"fmt"
	"strings"

	"github.com/artie-labs/minisync/lib/typing"
)

// ParseValue converts a value returned by the pgx stdlib driver into its normalized representation.
func ParseValue(col typing.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch col.Type.Kind {
	case typing.Bit:
		// bit(1) is returned as "0" or "1".
		if castedValue, isOk := value.(string); isOk && (castedValue == "0" || castedValue == "1") {
			return castedValue == "1", nil
		}
	case typing.Decimal:
		// money is returned formatted with the server's locale, e.g. "$1,234.50".
		if castedValue, isOk := value.(string); isOk && strings.HasPrefix(col.NativeType, "money") {
			return strings.NewReplacer("$", "", ",", "").Replace(castedValue), nil
		}
	case typing.Varchar:
		if _, isOk := value.(string); !isOk {
			return nil, fmt.Errorf("expected string got %T with value: %v", value, value)
		}
	}

	return typing.Normalize(col.Type, value)
}
