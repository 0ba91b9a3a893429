package xltrack

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound is returned when a worksheet name is not present in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNoPrintArea is returned when an operation needs the sheet's print area and none is defined.
var ErrNoPrintArea = errors.New("print area can not be empty, define a print area first")

// ErrNoOutputName is returned by SaveAs when the output file name is empty.
var ErrNoOutputName = errors.New("output file name cannot be empty")

// ErrNotFound is returned when a binding path segment cannot be resolved.
// A member that exists but holds nil is reported the same way.
var ErrNotFound = errors.New("not found")

// ErrRowOutOfRange is returned when a row index exceeds the rows of a range.
var ErrRowOutOfRange = errors.New("row out of range")

// BindingError describes a failed dotted-path lookup.
type BindingError struct {
	Path    string // full dotted path
	Segment string // segment that failed
	Err     error
}

func (e *BindingError) Error() string {
	if e.Segment != "" {
		return fmt.Sprintf("resolve %q: segment %q: %v", e.Path, e.Segment, e.Err)
	}
	return fmt.Sprintf("resolve %q: %v", e.Path, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

func notFound(path, segment string) error {
	return &BindingError{Path: path, Segment: segment, Err: ErrNotFound}
}
