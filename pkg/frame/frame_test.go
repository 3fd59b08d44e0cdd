package frame

import (
	"errors"
	"reflect"
	"testing"
)

func TestFrame_Columns(t *testing.T) {
	f := New()
	if err := f.AddNumeric("y_actual", []float64{284, 287}); err != nil {
		t.Fatalf("AddNumeric failed: %v", err)
	}
	if err := f.AddLabels("LCZ", []string{"LCZ 2", "LCZ G"}); err != nil {
		t.Fatalf("AddLabels failed: %v", err)
	}

	if f.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", f.Len())
	}
	if got := f.Columns(); !reflect.DeepEqual(got, []string{"y_actual", "LCZ"}) {
		t.Errorf("unexpected column order: %v", got)
	}

	vals, err := f.Numeric("y_actual")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if !reflect.DeepEqual(vals, []float64{284, 287}) {
		t.Errorf("unexpected values: %v", vals)
	}

	labels, err := f.Labels("LCZ")
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"LCZ 2", "LCZ G"}) {
		t.Errorf("unexpected labels: %v", labels)
	}
}

func TestFrame_ColumnsAreIsolated(t *testing.T) {
	src := []float64{284, 287}
	f := New()
	if err := f.AddNumeric("y_actual", src); err != nil {
		t.Fatalf("AddNumeric failed: %v", err)
	}
	if err := f.AddLabels("LCZ", []string{"LCZ 2", "LCZ G"}); err != nil {
		t.Fatalf("AddLabels failed: %v", err)
	}

	// Mutating the caller's slice must not reach the stored column.
	src[0] = -1
	vals, err := f.Numeric("y_actual")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if vals[0] != 284 {
		t.Errorf("stored column aliases the input slice: %v", vals)
	}

	// Mutating a returned column must not reach the stored column either.
	vals[1] = -1
	again, err := f.Numeric("y_actual")
	if err != nil {
		t.Fatalf("Numeric failed: %v", err)
	}
	if again[1] != 287 {
		t.Errorf("returned column aliases stored data: %v", again)
	}

	labels, err := f.Labels("LCZ")
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	labels[0] = "mutated"
	again2, err := f.Labels("LCZ")
	if err != nil {
		t.Fatalf("Labels failed: %v", err)
	}
	if again2[0] != "LCZ 2" {
		t.Errorf("returned labels alias stored data: %v", again2)
	}
}

func TestFrame_FieldNotFound(t *testing.T) {
	f := New()
	if err := f.AddNumeric("y_actual", []float64{1}); err != nil {
		t.Fatalf("AddNumeric failed: %v", err)
	}

	_, err := f.Numeric("y_pred")
	var nf *FieldNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected *FieldNotFoundError, got %v", err)
	}
	if nf.Field != "y_pred" {
		t.Errorf("expected field y_pred, got %q", nf.Field)
	}

	// A numeric column is not addressable as labels.
	if _, err := f.Labels("y_actual"); !errors.As(err, &nf) {
		t.Errorf("expected *FieldNotFoundError for wrong column type, got %v", err)
	}
}

func TestFrame_AddErrors(t *testing.T) {
	f := New()
	if err := f.AddNumeric("a", []float64{1, 2}); err != nil {
		t.Fatalf("AddNumeric failed: %v", err)
	}

	if err := f.AddNumeric("a", []float64{3, 4}); err == nil {
		t.Error("expected duplicate column to fail")
	}
	if err := f.AddLabels("b", []string{"only one"}); err == nil {
		t.Error("expected row count mismatch to fail")
	}
	if err := f.AddNumeric("", []float64{1, 2}); err == nil {
		t.Error("expected empty name to fail")
	}
}
