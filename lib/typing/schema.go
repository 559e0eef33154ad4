package typing

import (
	"fmt"
	"strings"
)

type Column struct {
	Name string
	// NativeType is the type as reported by the source, kept for error messages.
	NativeType string
	Type       Type
}

// TableSchema is the shape of a stream, in source column order.
type TableSchema struct {
	Name    string
	Columns []Column
}

func (t TableSchema) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

func (t TableSchema) Types() []Type {
	types := make([]Type, len(t.Columns))
	for i, col := range t.Columns {
		types[i] = col.Type
	}
	return types
}

func QuoteIdentifier(s string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(s, `"`, `""`))
}

// DDL renders a create-or-replace statement using canonical types.
func (t TableSchema) DDL() string {
	return t.RenderDDL("CREATE OR REPLACE TABLE", func(typ Type) string { return typ.String() })
}

// RenderDDL renders the column list with a caller provided type renderer, so caches can adjust the canonical
// names to their own dialect.
func (t TableSchema) RenderDDL(prefix string, renderType func(Type) string) string {
	parts := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		parts[i] = fmt.Sprintf("%s %s", QuoteIdentifier(col.Name), renderType(col.Type))
	}
	return fmt.Sprintf("%s %s (%s);", prefix, QuoteIdentifier(t.Name), strings.Join(parts, ","))
}
