package lib

import "fmt"

// Batch is a rectangular group of rows pulled from a source in one transfer unit.
type Batch struct {
	Columns []string
	Rows    [][]any
}

func NewBatch(columns []string, rows [][]any) (Batch, error) {
	for i, row := range rows {
		if len(row) != len(columns) {
			return Batch{}, fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(columns))
		}
	}
	return Batch{Columns: columns, Rows: rows}, nil
}

func (b Batch) Len() int {
	return len(b.Rows)
}
