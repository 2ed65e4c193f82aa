package draft

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownField is returned for a field name the draft does not have.
var ErrUnknownField = errors.New("unknown field")

// FieldError wraps a rejected UpdateField call.
type FieldError struct {
	Field Field
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("draft field %s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// ValidationError lists the required fields that were empty on create.
type ValidationError struct {
	Missing []Field
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "missing required fields: " + strings.Join(names, ", ")
}
