package lcz

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a Kind selector is outside the
// recognized set. See ParseKind.
var ErrUnknownKind = errors.New("lcz: unknown kind")

// ResourceError reports a missing or malformed static resource (reference
// table or palette). Resources are mandatory inputs with no fallback, so a
// ResourceError is fatal to the calling operation.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("lcz: resource %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

func resourceErr(path string, err error) error {
	return &ResourceError{Path: path, Err: err}
}
