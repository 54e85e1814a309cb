package models

import "strings"

// ValidationError reports one or more invariant violations found while
// validating a Position or Portfolio. It is the concrete type behind the
// "validation" entry of the error taxonomy.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, "; ")
}

func (e *ValidationError) Add(msg string) {
	e.Fields = append(e.Fields, msg)
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// ErrOrNil returns e as an error if it holds any field violations, or nil.
func (e *ValidationError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}
