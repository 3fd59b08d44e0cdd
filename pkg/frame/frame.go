// Package frame provides a minimal ordered-column record set for chart
// inputs. Columns are addressed by name; rows keep their insertion order.
package frame

import (
	"fmt"
)

// FieldNotFoundError reports a named column absent from a Frame.
type FieldNotFoundError struct {
	Field string
}

func (e *FieldNotFoundError) Error() string {
	return fmt.Sprintf("frame: field %q not found", e.Field)
}

// Frame is a collection of equally sized named columns. A column holds
// either numeric values or labels. Frames are not safe for concurrent
// mutation; build them fully before handing them to a renderer.
type Frame struct {
	order   []string
	numeric map[string][]float64
	labels  map[string][]string
	rows    int
}

// New creates an empty frame.
func New() *Frame {
	return &Frame{
		numeric: make(map[string][]float64),
		labels:  make(map[string][]string),
	}
}

// AddNumeric adds a numeric column. Adding a duplicate name or a column
// whose length disagrees with the existing columns fails.
func (f *Frame) AddNumeric(name string, values []float64) error {
	if err := f.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := make([]float64, len(values))
	copy(col, values)
	f.numeric[name] = col
	f.order = append(f.order, name)
	f.rows = len(values)
	return nil
}

// AddLabels adds a label column under the same rules as AddNumeric.
func (f *Frame) AddLabels(name string, values []string) error {
	if err := f.checkAdd(name, len(values)); err != nil {
		return err
	}
	col := make([]string, len(values))
	copy(col, values)
	f.labels[name] = col
	f.order = append(f.order, name)
	f.rows = len(values)
	return nil
}

func (f *Frame) checkAdd(name string, n int) error {
	if name == "" {
		return fmt.Errorf("frame: column name must not be empty")
	}
	if f.has(name) {
		return fmt.Errorf("frame: column %q already exists", name)
	}
	if len(f.order) > 0 && n != f.rows {
		return fmt.Errorf("frame: column %q has %d rows, frame has %d", name, n, f.rows)
	}
	return nil
}

func (f *Frame) has(name string) bool {
	if _, ok := f.numeric[name]; ok {
		return true
	}
	_, ok := f.labels[name]
	return ok
}

// Numeric returns a copy of a numeric column by name. Columns are copied
// both in and out, so callers cannot mutate stored data.
func (f *Frame) Numeric(name string) ([]float64, error) {
	col, ok := f.numeric[name]
	if !ok {
		return nil, &FieldNotFoundError{Field: name}
	}
	out := make([]float64, len(col))
	copy(out, col)
	return out, nil
}

// Labels returns a copy of a label column by name.
func (f *Frame) Labels(name string) ([]string, error) {
	col, ok := f.labels[name]
	if !ok {
		return nil, &FieldNotFoundError{Field: name}
	}
	out := make([]string, len(col))
	copy(out, col)
	return out, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return f.rows
}

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
