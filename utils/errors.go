package utils

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a file could not be turned into a dataset
// document. Callers use it to decide between aborting the run and
// skipping the file.
type ErrorKind string

const (
	KindDirectory ErrorKind = "directory"
	KindFilename  ErrorKind = "filename"
	KindRaster    ErrorKind = "raster"
	KindWrite     ErrorKind = "write"
	KindIndex     ErrorKind = "index"
)

type Error struct {
	Kind ErrorKind
	Path string
	Err  error
}

func NewError(kind ErrorKind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

func Errorf(kind ErrorKind, path string, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, &Error{Kind: KindRaster})
// works without knowing the path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Path == "" || t.Path == e.Path) && t.Err == nil
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
