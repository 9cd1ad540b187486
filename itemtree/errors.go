package itemtree

import (
	"errors"
	"fmt"
)

var (
	ErrNoSuchProperty = errors.New("no such property")
	ErrNoSuchCallback = errors.New("no such callback")
	ErrNoSuchItem     = errors.New("no such item")
	ErrArgument       = errors.New("callback argument mismatch")
	ErrReleased       = errors.New("component released")
)

// ArgumentError rejects a callback invocation or handler registration whose
// arguments do not match the declaration.
type ArgumentError struct {
	Callback string
	// Index of the offending argument, or -1 when the count is wrong.
	Index int
	Want  string
	Got   string
}

func (e *ArgumentError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("callback %s: want %s arguments, got %s", e.Callback, e.Want, e.Got)
	}
	return fmt.Sprintf("callback %s: argument %d: want %s, got %s", e.Callback, e.Index, e.Want, e.Got)
}

func (e *ArgumentError) Unwrap() error { return ErrArgument }
