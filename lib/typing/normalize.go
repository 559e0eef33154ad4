package typing

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const TimeLayout = "15:04:05.999999"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	time.DateOnly,
}

// ParseTimestamp parses the textual timestamp formats drivers hand back when they do not decode dates themselves.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse timestamp: %q", s)
}

// Normalize converts a driver value into one of nil, bool, int64, float64, string or [time.Time] according to the
// canonical column type, so that every cache receives the same Go types regardless of the source backend.
func Normalize(typ Type, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch typ.Kind {
	case TinyInt, SmallInt, Integer, BigInt:
		return toInt64(value)
	case Bit:
		return toBool(value)
	case Float, Double, Real:
		return toFloat64(value)
	case Decimal:
		return toDecimalString(value)
	case Varchar:
		switch castedValue := value.(type) {
		case string:
			return castedValue, nil
		case []byte:
			return string(castedValue), nil
		default:
			return fmt.Sprint(castedValue), nil
		}
	case Date, Timestamp:
		return toTime(value)
	case Time:
		switch castedValue := value.(type) {
		case time.Time:
			return castedValue.Format(TimeLayout), nil
		case string:
			return castedValue, nil
		case []byte:
			return string(castedValue), nil
		}
		return nil, fmt.Errorf("expected time.Time or string got %T with value: %v", value, value)
	case UUID:
		return toUUIDString(value)
	}

	return nil, fmt.Errorf("unsupported kind: %s", typ.Kind)
}

func toInt64(value any) (int64, error) {
	switch castedValue := value.(type) {
	case int64:
		return castedValue, nil
	case int32:
		return int64(castedValue), nil
	case int16:
		return int64(castedValue), nil
	case int8:
		return int64(castedValue), nil
	case int:
		return int64(castedValue), nil
	case uint8:
		return int64(castedValue), nil
	case uint16:
		return int64(castedValue), nil
	case uint32:
		return int64(castedValue), nil
	case uint64:
		if castedValue > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", castedValue)
		}
		return int64(castedValue), nil
	case bool:
		if castedValue {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(castedValue), 10, 64)
	case string:
		return strconv.ParseInt(castedValue, 10, 64)
	}
	return 0, fmt.Errorf("expected integer got %T with value: %v", value, value)
}

func toBool(value any) (bool, error) {
	switch castedValue := value.(type) {
	case bool:
		return castedValue, nil
	case int64:
		return castedValue != 0, nil
	case []byte:
		// MySQL returns BIT(1) as a single raw byte.
		if len(castedValue) == 1 && castedValue[0] <= 1 {
			return castedValue[0] == 1, nil
		}
		return strconv.ParseBool(string(castedValue))
	case string:
		return strconv.ParseBool(castedValue)
	}
	return false, fmt.Errorf("expected bool got %T with value: %v", value, value)
}

func toFloat64(value any) (float64, error) {
	switch castedValue := value.(type) {
	case float64:
		return castedValue, nil
	case float32:
		return float64(castedValue), nil
	case int64:
		return float64(castedValue), nil
	case []byte:
		return strconv.ParseFloat(string(castedValue), 64)
	case string:
		return strconv.ParseFloat(castedValue, 64)
	}
	return 0, fmt.Errorf("expected float got %T with value: %v", value, value)
}

func toDecimalString(value any) (string, error) {
	switch castedValue := value.(type) {
	case string:
		return castedValue, nil
	case []byte:
		return string(castedValue), nil
	case int64:
		return strconv.FormatInt(castedValue, 10), nil
	case uint64:
		return strconv.FormatUint(castedValue, 10), nil
	case float64:
		return strconv.FormatFloat(castedValue, 'f', -1, 64), nil
	case fmt.Stringer:
		return castedValue.String(), nil
	}
	return "", fmt.Errorf("expected decimal got %T with value: %v", value, value)
}

func toTime(value any) (time.Time, error) {
	switch castedValue := value.(type) {
	case time.Time:
		return castedValue.UTC(), nil
	case string:
		return ParseTimestamp(castedValue)
	case []byte:
		return ParseTimestamp(string(castedValue))
	}
	return time.Time{}, fmt.Errorf("expected time.Time got %T with value: %v", value, value)
}

func toUUIDString(value any) (string, error) {
	switch castedValue := value.(type) {
	case uuid.UUID:
		return castedValue.String(), nil
	case [16]byte:
		return uuid.UUID(castedValue).String(), nil
	case string:
		parsed, err := uuid.Parse(castedValue)
		if err != nil {
			return "", fmt.Errorf("failed to parse uuid %q: %w", castedValue, err)
		}
		return parsed.String(), nil
	case []byte:
		if len(castedValue) == 16 {
			parsed, err := uuid.FromBytes(castedValue)
			if err != nil {
				return "", err
			}
			return parsed.String(), nil
		}
		return toUUIDString(string(castedValue))
	}
	return "", fmt.Errorf("expected uuid got %T with value: %v", value, value)
}

// NormalizeRow normalizes a row in place.
func NormalizeRow(columns []Column, row []any) error {
	if len(row) != len(columns) {
		return fmt.Errorf("expected %d values, got %d", len(columns), len(row))
	}

	for i, col := range columns {
		value, err := Normalize(col.Type, row[i])
		if err != nil {
			return fmt.Errorf("failed to parse column %q: %w", col.Name, err)
		}
		row[i] = value
	}
	return nil
}
