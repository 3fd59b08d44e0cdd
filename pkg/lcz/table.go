// Package lcz maps Local Climate Zone numerical codes to class labels and
// derives the canonical display order and color palette for those classes.
// The mapping follows Oliveira et al. 2020 (doi: 10.1016/j.mex.2020.101150).
package lcz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ReferenceTable is an immutable mapping from LCZ numerical codes to class
// labels. The order in which codes appear in the source resource is the
// canonical display order for legends and coloring.
type ReferenceTable struct {
	codes   []int
	classes map[int]string
}

// LoadReferenceTable reads a JSON object of code -> class pairs. Keys are
// integer codes serialized as strings; they are parsed and validated at load
// time. Non-integer keys, negative keys, duplicate keys, and non-string
// values all fail with a *ResourceError, as does a missing or unreadable
// file.
func LoadReferenceTable(path string) (*ReferenceTable, error) {
	data, err := readResource(path)
	if err != nil {
		return nil, err
	}

	table, err := ParseReferenceTable(data)
	if err != nil {
		return nil, resourceErr(path, err)
	}
	return table, nil
}

// ParseReferenceTable builds a reference table from raw JSON bytes under
// the same rules as LoadReferenceTable. The object is decoded token by
// token so that key order survives; a plain map unmarshal would discard it.
func ParseReferenceTable(data []byte) (*ReferenceTable, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode reference table: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("reference table must be a JSON object, got %v", tok)
	}

	t := &ReferenceTable{classes: make(map[int]string)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode reference table key: %w", err)
		}
		key := keyTok.(string)

		code, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("reference table key %q is not an integer code", key)
		}
		if code < 0 {
			return nil, fmt.Errorf("reference table key %d is negative", code)
		}
		if _, exists := t.classes[code]; exists {
			return nil, fmt.Errorf("reference table key %d appears twice", code)
		}

		var class string
		if err := dec.Decode(&class); err != nil {
			return nil, fmt.Errorf("reference table value for key %d must be a string: %w", code, err)
		}

		t.codes = append(t.codes, code)
		t.classes[code] = class
	}

	// The closing brace must be present; truncated input ends with io.EOF
	// here and is just as malformed as any other decode failure.
	if tok, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode reference table: unterminated object: %w", err)
	} else if delim, ok := tok.(json.Delim); !ok || delim != '}' {
		return nil, fmt.Errorf("decode reference table: unexpected %v after entries", tok)
	}
	if len(t.codes) == 0 {
		return nil, fmt.Errorf("reference table is empty")
	}
	return t, nil
}

// Class returns the class label for a code.
func (t *ReferenceTable) Class(code int) (string, bool) {
	class, ok := t.classes[code]
	return class, ok
}

// Contains reports whether the table has an entry for code.
func (t *ReferenceTable) Contains(code int) bool {
	_, ok := t.classes[code]
	return ok
}

// Codes returns the numerical codes in canonical order.
func (t *ReferenceTable) Codes() []int {
	out := make([]int, len(t.codes))
	copy(out, t.codes)
	return out
}

// Classes returns the class labels in canonical order.
func (t *ReferenceTable) Classes() []string {
	out := make([]string, len(t.codes))
	for i, code := range t.codes {
		out[i] = t.classes[code]
	}
	return out
}

// Len returns the number of entries.
func (t *ReferenceTable) Len() int {
	return len(t.codes)
}
