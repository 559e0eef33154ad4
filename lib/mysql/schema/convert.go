package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/artie-labs/minisync/lib/typing"
)

const DateTimeFormat = "2006-01-02 15:04:05.999999999"

// ConvertValue takes a value returned from the MySQL driver and converts it to its normalized representation.
func ConvertValue(col typing.Column, value any) (any, error) {
	if value == nil {
		return nil, nil
	}

	switch col.Type.Kind {
	case typing.Bit:
		castValue, ok := value.([]byte)
		if !ok {
			return nil, fmt.Errorf("expected []byte got %T for value: %v", value, value)
		}
		if len(castValue) != 1 || castValue[0] > 1 {
			return nil, fmt.Errorf("bit value is invalid: %v", value)
		}
		return castValue[0] == 1, nil
	case typing.Date, typing.Timestamp:
		bytesValue, ok := value.([]byte)
		if !ok {
			return typing.Normalize(col.Type, value)
		}

		stringValue := string(bytesValue)
		if hasNonStrictModeInvalidDate(stringValue) {
			return nil, nil
		}

		layout := DateTimeFormat
		if len(stringValue) == len(time.DateOnly) {
			layout = time.DateOnly
		}

		timeValue, err := time.Parse(layout, stringValue)
		if err != nil {
			return nil, err
		}
		return timeValue, nil
	}

	return typing.Normalize(col.Type, value)
}

// hasNonStrictModeInvalidDate - if strict mode is not enabled, we can end up having invalid datetimes
func hasNonStrictModeInvalidDate(d string) bool {
	if len(d) < 10 {
		return false
	}

	parts := strings.Split(d[:10], "-")
	if len(parts) != 3 {
		return false
	}

	// Year, month, date cannot be non-zero
	for _, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			return false
		}
		if value == 0 {
			return true
		}
	}
	return false
}
