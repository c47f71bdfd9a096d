package pathobj

import (
	"errors"
	"fmt"
)

///////////////////////////////////////////////////////////////////////////////
// Errors
///////////////////////////////////////////////////////////////////////////////

var (
	// ErrMalformedPath is returned when a path string does not follow the
	// path grammar.
	ErrMalformedPath = errors.New("malformed path")
	// ErrKeyNotFound is returned when a key or index does not exist and the
	// Object raises on missing values.
	ErrKeyNotFound = errors.New("key not found")
	// ErrPathConflict is returned when a write or delete has to descend
	// through a value that is not a mapping or a sequence.
	ErrPathConflict = errors.New("path conflicts with existing value")
	// ErrIndexOutOfRange is returned when a sequence index is past the
	// append position.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrCyclicStructure is returned by ToObject when a container references
	// one of its ancestors.
	ErrCyclicStructure = errors.New("cyclic structure")
	// ErrInvalidDocument is returned when encoded input cannot be decoded.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrUnsupportedFormat is returned for unknown document formats.
	ErrUnsupportedFormat = errors.New("unsupported document format")
)

// PathError records a failed operation together with the path it was
// working on and the step at which resolution stopped.
type PathError struct {
	Op   string // Operation that failed
	Path string // Full path as given by the caller
	Step int    // Index of the failing step, -1 if not tied to a step
	Key  string // Rendering of the failing step
	Err  error  // Underlying error, wraps one of the Err* sentinels
}

func (e *PathError) Error() string {
	if e.Step >= 0 {
		return fmt.Sprintf("pathobj: %s %q: step %d (%s): %v", e.Op, e.Path, e.Step, e.Key, e.Err)
	}
	return fmt.Sprintf("pathobj: %s %q: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for error chain support
func (e *PathError) Unwrap() error {
	return e.Err
}

func newStepError(op string, p Path, step int, err error) *PathError {
	return &PathError{
		Op:   op,
		Path: p.text(),
		Step: step,
		Key:  p.steps[step].String(),
		Err:  err,
	}
}

func newPathError(op string, path string, err error) *PathError {
	return &PathError{
		Op:   op,
		Path: path,
		Step: -1,
		Err:  err,
	}
}
