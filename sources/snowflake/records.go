package snowflake

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"

	"github.com/artie-labs/minisync/lib/typing"
)

// decodeRecord converts an Arrow record into rows of normalized values, in the order of columns.
func decodeRecord(columns []typing.Column, record arrow.Record) ([][]any, error) {
	if int(record.NumCols()) != len(columns) {
		return nil, fmt.Errorf("expected %d columns in arrow record, got %d", len(columns), record.NumCols())
	}

	numRows := int(record.NumRows())
	rows := make([][]any, numRows)
	for i := range rows {
		rows[i] = make([]any, len(columns))
	}

	for colIdx, col := range columns {
		arr := record.Column(colIdx)
		for rowIdx := 0; rowIdx < numRows; rowIdx++ {
			if arr.IsNull(rowIdx) {
				continue
			}

			value, err := arrowValue(col, arr, rowIdx)
			if err != nil {
				return nil, fmt.Errorf("failed to decode column %q: %w", col.Name, err)
			}

			if rows[rowIdx][colIdx], err = typing.Normalize(col.Type, value); err != nil {
				return nil, fmt.Errorf("failed to parse column %q: %w", col.Name, err)
			}
		}
	}
	return rows, nil
}

func arrowValue(col typing.Column, arr arrow.Array, i int) (any, error) {
	switch castedArr := arr.(type) {
	case *array.Int8:
		return fixedValue(col, int64(castedArr.Value(i))), nil
	case *array.Int16:
		return fixedValue(col, int64(castedArr.Value(i))), nil
	case *array.Int32:
		return fixedValue(col, int64(castedArr.Value(i))), nil
	case *array.Int64:
		return fixedValue(col, castedArr.Value(i)), nil
	case *array.Float64:
		return castedArr.Value(i), nil
	case *array.Decimal128:
		dataType, isOk := castedArr.DataType().(*arrow.Decimal128Type)
		if !isOk {
			return nil, fmt.Errorf("unexpected decimal type %s", castedArr.DataType())
		}
		return castedArr.Value(i).ToString(dataType.Scale), nil
	case *array.String:
		return castedArr.Value(i), nil
	case *array.Boolean:
		return castedArr.Value(i), nil
	case *array.Date32:
		return castedArr.Value(i).ToTime(), nil
	case *array.Timestamp:
		dataType := castedArr.DataType().(*arrow.TimestampType)
		return castedArr.Value(i).ToTime(dataType.Unit), nil
	case *array.Time64:
		dataType := castedArr.DataType().(*arrow.Time64Type)
		return castedArr.Value(i).ToTime(dataType.Unit), nil
	case *array.Time32:
		dataType := castedArr.DataType().(*arrow.Time32Type)
		return castedArr.Value(i).ToTime(dataType.Unit), nil
	}

	return nil, fmt.Errorf("unsupported arrow type %s", arr.DataType())
}

// fixedValue handles NUMBER columns with a scale, which Snowflake may send as unscaled integers.
func fixedValue(col typing.Column, value int64) any {
	if col.Type.Kind == typing.Decimal && col.Type.Scale > 0 {
		return decimal128.FromI64(value).ToString(int32(col.Type.Scale))
	}
	return value
}
