package columnar

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/artie-labs/minisync/constants"
	"github.com/artie-labs/minisync/lib/typing"
)

// ArrowType returns the Arrow type canonical values are exported as.
func ArrowType(typ typing.Type) (arrow.DataType, error) {
	switch typ.Kind {
	case typing.TinyInt:
		return arrow.PrimitiveTypes.Int8, nil
	case typing.SmallInt:
		return arrow.PrimitiveTypes.Int16, nil
	case typing.Integer:
		return arrow.PrimitiveTypes.Int32, nil
	case typing.BigInt:
		return arrow.PrimitiveTypes.Int64, nil
	case typing.Bit:
		return arrow.FixedWidthTypes.Boolean, nil
	case typing.Float, typing.Real:
		return arrow.PrimitiveTypes.Float32, nil
	case typing.Double:
		return arrow.PrimitiveTypes.Float64, nil
	case typing.Decimal:
		if typ.Precision > constants.MaxDecimalPrecision {
			return arrow.BinaryTypes.String, nil
		}
		return &arrow.Decimal128Type{Precision: int32(typ.Precision), Scale: int32(typ.Scale)}, nil
	case typing.Varchar, typing.UUID:
		return arrow.BinaryTypes.String, nil
	case typing.Date:
		return arrow.FixedWidthTypes.Date32, nil
	case typing.Time:
		return arrow.FixedWidthTypes.Time64us, nil
	case typing.Timestamp:
		return &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}, nil
	}
	return nil, fmt.Errorf("no arrow type for %s", typ)
}

func Schema(columns []typing.Column) (*arrow.Schema, error) {
	fields := make([]arrow.Field, len(columns))
	for i, col := range columns {
		dataType, err := ArrowType(col.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to map column %q: %w", col.Name, err)
		}
		fields[i] = arrow.Field{Name: col.Name, Type: dataType, Nullable: true}
	}
	return arrow.NewSchema(fields, nil), nil
}

// TableBuilder accumulates normalized rows into Arrow records of at most maxChunkSize rows.
type TableBuilder struct {
	schema       *arrow.Schema
	columns      []typing.Column
	builder      *array.RecordBuilder
	maxChunkSize int
	pending      int
	records      []arrow.Record
}

func NewTableBuilder(mem memory.Allocator, columns []typing.Column, maxChunkSize int) (*TableBuilder, error) {
	if maxChunkSize <= 0 {
		return nil, fmt.Errorf("max chunk size must be > 0")
	}

	schema, err := Schema(columns)
	if err != nil {
		return nil, err
	}

	return &TableBuilder{
		schema:       schema,
		columns:      columns,
		builder:      array.NewRecordBuilder(mem, schema),
		maxChunkSize: maxChunkSize,
	}, nil
}

func (t *TableBuilder) Append(row []any) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("expected %d values, got %d", len(t.columns), len(row))
	}

	for i, value := range row {
		if err := appendValue(t.builder.Field(i), value); err != nil {
			return fmt.Errorf("failed to append value for column %q: %w", t.columns[i].Name, err)
		}
	}

	t.pending++
	if t.pending >= t.maxChunkSize {
		t.flush()
	}
	return nil
}

func (t *TableBuilder) flush() {
	if t.pending == 0 {
		return
	}
	t.records = append(t.records, t.builder.NewRecord())
	t.pending = 0
}

// NewTable returns a table over every appended row. The caller owns the table and must release it.
func (t *TableBuilder) NewTable() arrow.Table {
	t.flush()
	table := array.NewTableFromRecords(t.schema, t.records)
	t.releaseRecords()
	return table
}

func (t *TableBuilder) releaseRecords() {
	for _, record := range t.records {
		record.Release()
	}
	t.records = nil
}

func (t *TableBuilder) Release() {
	t.releaseRecords()
	t.builder.Release()
}

func appendValue(builder array.Builder, value any) error {
	if value == nil {
		builder.AppendNull()
		return nil
	}

	switch castedBuilder := builder.(type) {
	case *array.Int8Builder:
		castedValue, err := toInt64(value)
		if err != nil {
			return err
		}
		castedBuilder.Append(int8(castedValue))
	case *array.Int16Builder:
		castedValue, err := toInt64(value)
		if err != nil {
			return err
		}
		castedBuilder.Append(int16(castedValue))
	case *array.Int32Builder:
		castedValue, err := toInt64(value)
		if err != nil {
			return err
		}
		castedBuilder.Append(int32(castedValue))
	case *array.Int64Builder:
		castedValue, err := toInt64(value)
		if err != nil {
			return err
		}
		castedBuilder.Append(castedValue)
	case *array.BooleanBuilder:
		castedValue, isOk := value.(bool)
		if !isOk {
			return fmt.Errorf("expected bool got %T with value: %v", value, value)
		}
		castedBuilder.Append(castedValue)
	case *array.Float32Builder:
		castedValue, isOk := value.(float64)
		if !isOk {
			return fmt.Errorf("expected float64 got %T with value: %v", value, value)
		}
		castedBuilder.Append(float32(castedValue))
	case *array.Float64Builder:
		castedValue, isOk := value.(float64)
		if !isOk {
			return fmt.Errorf("expected float64 got %T with value: %v", value, value)
		}
		castedBuilder.Append(castedValue)
	case *array.Decimal128Builder:
		castedValue, isOk := value.(string)
		if !isOk {
			return fmt.Errorf("expected string got %T with value: %v", value, value)
		}
		dataType := castedBuilder.Type().(*arrow.Decimal128Type)
		num, err := decimal128.FromString(castedValue, dataType.Precision, dataType.Scale)
		if err != nil {
			return fmt.Errorf("failed to parse decimal %q: %w", castedValue, err)
		}
		castedBuilder.Append(num)
	case *array.StringBuilder:
		castedValue, isOk := value.(string)
		if !isOk {
			return fmt.Errorf("expected string got %T with value: %v", value, value)
		}
		castedBuilder.Append(castedValue)
	case *array.Date32Builder:
		castedValue, isOk := value.(time.Time)
		if !isOk {
			return fmt.Errorf("expected time.Time got %T with value: %v", value, value)
		}
		castedBuilder.Append(arrow.Date32FromTime(castedValue))
	case *array.Time64Builder:
		micros, err := timeOfDayMicros(value)
		if err != nil {
			return err
		}
		castedBuilder.Append(arrow.Time64(micros))
	case *array.TimestampBuilder:
		castedValue, isOk := value.(time.Time)
		if !isOk {
			return fmt.Errorf("expected time.Time got %T with value: %v", value, value)
		}
		ts, err := arrow.TimestampFromTime(castedValue, arrow.Microsecond)
		if err != nil {
			return err
		}
		castedBuilder.Append(ts)
	default:
		return fmt.Errorf("unsupported arrow builder %T", builder)
	}
	return nil
}

func toInt64(value any) (int64, error) {
	castedValue, isOk := value.(int64)
	if !isOk {
		return 0, fmt.Errorf("expected int64 got %T with value: %v", value, value)
	}
	return castedValue, nil
}

func timeOfDayMicros(value any) (int64, error) {
	var ts time.Time
	switch castedValue := value.(type) {
	case time.Time:
		ts = castedValue
	case string:
		parsed, err := time.Parse(typing.TimeLayout, castedValue)
		if err != nil {
			return 0, fmt.Errorf("failed to parse time %q: %w", castedValue, err)
		}
		ts = parsed
	default:
		return 0, fmt.Errorf("expected time.Time or string got %T with value: %v", value, value)
	}

	sinceMidnight := time.Duration(ts.Hour())*time.Hour +
		time.Duration(ts.Minute())*time.Minute +
		time.Duration(ts.Second())*time.Second +
		time.Duration(ts.Nanosecond())
	return sinceMidnight.Microseconds(), nil
}
