package simdata

import (
	"fmt"

	"github.com/xyproto/s4pack/internal/s4err"
)

func newRow(schema *Schema) *Row {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return &Row{names: names, values: make(map[string]Value, len(names))}
}

// Names returns the row's field names in schema column order.
func (r *Row) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Get returns the named field's value, or ErrNoSuchColumn.
func (r *Row) Get(name string) (Value, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, fmt.Errorf("simdata: row: %q: %w", name, s4err.ErrNoSuchColumn)
	}
	return v, nil
}

// Set overwrites the named field's value, or fails with ErrNoSuchColumn
// if name is not one of the row's schema columns. No type checking is
// performed against the column's declared data type.
func (r *Row) Set(name string, v Value) error {
	if _, ok := r.values[name]; !ok {
		return fmt.Errorf("simdata: row: %q: %w", name, s4err.ErrNoSuchColumn)
	}
	r.values[name] = v
	return nil
}

func (r *Row) set(name string, v Value) {
	r.values[name] = v
}
