package typing

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is one of the canonical column types every backend maps into.
type Kind int

const (
	TinyInt Kind = iota + 1
	SmallInt
	Integer
	BigInt
	Bit
	Float
	Double
	Real
	Decimal
	Varchar
	Date
	Time
	Timestamp
	UUID
)

var kindNames = map[Kind]string{
	TinyInt:   "TINYINT",
	SmallInt:  "SMALLINT",
	Integer:   "INTEGER",
	BigInt:    "BIGINT",
	Bit:       "BIT",
	Float:     "FLOAT",
	Double:    "DOUBLE",
	Real:      "REAL",
	Decimal:   "DECIMAL",
	Varchar:   "VARCHAR",
	Date:      "DATE",
	Time:      "TIME",
	Timestamp: "TIMESTAMP",
	UUID:      "UUID",
}

func (k Kind) String() string {
	if name, isOk := kindNames[k]; isOk {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type Type struct {
	Kind Kind
	// Precision and Scale are only set for [Decimal].
	Precision int
	Scale     int
	// Length is only set for [Varchar], zero means unbounded.
	Length int
}

func Simple(kind Kind) Type {
	return Type{Kind: kind}
}

func DecimalOf(precision, scale int) Type {
	return Type{Kind: Decimal, Precision: precision, Scale: scale}
}

func VarcharOf(length int) Type {
	return Type{Kind: Varchar, Length: max(length, 0)}
}

// String renders the canonical SQL type, e.g. DECIMAL(10,2) or VARCHAR(255).
func (t Type) String() string {
	switch t.Kind {
	case Decimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case Varchar:
		if t.Length > 0 {
			return fmt.Sprintf("VARCHAR(%d)", t.Length)
		}
		return "VARCHAR"
	default:
		return t.Kind.String()
	}
}

func (t Type) IsInteger() bool {
	switch t.Kind {
	case TinyInt, SmallInt, Integer, BigInt:
		return true
	}
	return false
}

// ParseType parses a canonical type string back into a [Type]. It also accepts the spellings the cache engines
// report for their own columns (BOOLEAN, INT8, TEXT, ...), which is how exported tables recover their shape.
func ParseType(s string) (Type, error) {
	original := s
	s = strings.ToUpper(strings.TrimSpace(s))

	var args []int
	if parenIndex := strings.Index(s, "("); parenIndex != -1 {
		if !strings.HasSuffix(s, ")") {
			return Type{}, fmt.Errorf("malformed data type: %q", original)
		}

		for _, part := range strings.Split(s[parenIndex+1:len(s)-1], ",") {
			value, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Type{}, fmt.Errorf("failed to parse type argument %q in %q: %w", part, original, err)
			}
			args = append(args, value)
		}
		s = strings.TrimSpace(s[:parenIndex])
	}

	switch s {
	case "TINYINT", "INT1":
		return Simple(TinyInt), nil
	case "SMALLINT", "INT2":
		return Simple(SmallInt), nil
	case "INTEGER", "INT", "INT4":
		return Simple(Integer), nil
	case "BIGINT", "INT8", "HUGEINT":
		return Simple(BigInt), nil
	case "BIT", "BOOLEAN", "BOOL":
		return Simple(Bit), nil
	case "FLOAT", "FLOAT4":
		return Simple(Float), nil
	case "DOUBLE", "FLOAT8", "DOUBLE PRECISION":
		return Simple(Double), nil
	case "REAL":
		return Simple(Real), nil
	case "DECIMAL", "NUMERIC":
		switch len(args) {
		case 2:
			return DecimalOf(args[0], args[1]), nil
		case 1:
			return DecimalOf(args[0], 0), nil
		default:
			return Type{}, fmt.Errorf("expected precision and scale for %q", original)
		}
	case "VARCHAR", "TEXT", "STRING", "CHAR":
		if len(args) > 0 {
			return VarcharOf(args[0]), nil
		}
		return VarcharOf(0), nil
	case "DATE":
		return Simple(Date), nil
	case "TIME":
		return Simple(Time), nil
	case "TIMESTAMP", "DATETIME", "TIMESTAMP_NS", "TIMESTAMP_MS", "TIMESTAMP_S":
		return Simple(Timestamp), nil
	case "UUID":
		return Simple(UUID), nil
	}

	return Type{}, fmt.Errorf("unknown canonical type: %q", original)
}
