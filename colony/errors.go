package colony

import (
	"errors"
	"fmt"
)

// ErrNoRecords is returned when a source holds a header but no data rows.
var ErrNoRecords = errors.New("dataset has no records")

// LoadError describes why a dataset could not be loaded. Line is 1-based and
// counts the header; it is 0 for errors that are not tied to a row.
type LoadError struct {
	Source string
	Line   int
	Column string
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("%s:%d: column %q: %v", e.Source, e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("%s:%d: %v", e.Source, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

type missingColumnError string

func (m missingColumnError) Error() string {
	return fmt.Sprintf("missing required column %s", string(m))
}

func errMissingColumn(name string) error {
	return missingColumnError(name)
}
