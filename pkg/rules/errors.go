package rules

import (
	"errors"
	"fmt"
)

var ErrLoad = errors.New("invalid rule tables")

// LoadError locates a problem in the rule tables. ID is empty for problems
// that concern a whole table.
type LoadError struct {
	Table string
	ID    string
	Err   error
}

func (e *LoadError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Table, e.ID, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}
