package scanner

import (
	"errors"
	"fmt"
)

// TraversalError reports a scan root that cannot be walked: missing,
// not a directory, or unreadable.
type TraversalError struct {
	Root string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("cannot scan %q: %v", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// IsTraversal reports whether err is, or wraps, a *TraversalError.
func IsTraversal(err error) bool {
	var e *TraversalError
	return errors.As(err, &e)
}

// ReadError reports a discovered file that could not be fingerprinted.
// The file is left out of duplicate detection; the scan carries on.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

func IsRead(err error) bool {
	var e *ReadError
	return errors.As(err, &e)
}

var errNotDir = errors.New("not a directory")
