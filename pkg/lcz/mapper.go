package lcz

import (
	"fmt"
	"strconv"
)

// Kind selects which side of the reference table a sequence of observed
// values is matched against: the numerical codes or the class labels.
type Kind int

const (
	// KindNumeric treats observed values as LCZ numerical codes.
	KindNumeric Kind = iota + 1
	// KindClass treats observed values as LCZ class labels.
	KindClass
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "num"
	case KindClass:
		return "class"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind parses the wire form of a Kind ("num" or "class"). Anything
// else fails with ErrUnknownKind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "num":
		return KindNumeric, nil
	case "class":
		return KindClass, nil
	}
	return 0, fmt.Errorf("%w %q (want \"num\" or \"class\")", ErrUnknownKind, s)
}

// MapCodes translates numerical codes to class labels, preserving input
// order. A code absent from the table yields an empty label rather than an
// error; the miss surfaces downstream when a color is looked up for it.
func (t *ReferenceTable) MapCodes(codes []int) []string {
	classes := make([]string, len(codes))
	for i, code := range codes {
		classes[i] = t.classes[code]
	}
	return classes
}

// DisplayOrderCodes returns the unique observed codes ordered as in the
// table. Codes without a table entry are excluded.
func (t *ReferenceTable) DisplayOrderCodes(observed []int) []int {
	seen := make(map[int]bool, len(observed))
	for _, code := range observed {
		seen[code] = true
	}

	var order []int
	for _, code := range t.codes {
		if seen[code] {
			order = append(order, code)
		}
	}
	return order
}

// DisplayOrderClasses returns the unique observed class labels ordered as
// in the table. Labels without a table entry are excluded.
func (t *ReferenceTable) DisplayOrderClasses(observed []string) []string {
	seen := make(map[string]bool, len(observed))
	for _, class := range observed {
		seen[class] = true
	}

	var order []string
	emitted := make(map[string]bool, len(t.codes))
	for _, code := range t.codes {
		class := t.classes[code]
		if seen[class] && !emitted[class] {
			order = append(order, class)
			emitted[class] = true
		}
	}
	return order
}

// DisplayOrder dispatches on kind for callers that carry observed values as
// strings (numerical codes in decimal form). The result uses the same
// string representation as the input. An unrecognized kind fails with
// ErrUnknownKind and no partial result.
func (t *ReferenceTable) DisplayOrder(observed []string, kind Kind) ([]string, error) {
	switch kind {
	case KindNumeric:
		codes := make([]int, 0, len(observed))
		for _, s := range observed {
			code, err := strconv.Atoi(s)
			if err != nil {
				// Unparseable values cannot match any table key.
				continue
			}
			codes = append(codes, code)
		}
		ordered := t.DisplayOrderCodes(codes)
		out := make([]string, len(ordered))
		for i, code := range ordered {
			out[i] = strconv.Itoa(code)
		}
		return out, nil
	case KindClass:
		return t.DisplayOrderClasses(observed), nil
	}
	return nil, fmt.Errorf("%w %v", ErrUnknownKind, int(kind))
}
