package property

import (
	"errors"
	"strings"
)

var ErrBindingCycle = errors.New("binding cycle detected")

// CycleError reports a binding that read its own cell, directly or through
// other bindings. Path lists the cells from the re-entered one down to the
// read that closed the loop.
type CycleError struct {
	Property string
	Path     []string
}

func (e *CycleError) Error() string {
	return ErrBindingCycle.Error() + " on " + e.Property + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrBindingCycle }

// abort unwinds evaluation frames up to the outermost one.
type abort struct {
	err error
}

func (rt *Runtime) cycleError(c *cell) *CycleError {
	start := 0
	for i := len(rt.frames) - 1; i >= 0; i-- {
		if rt.frames[i].consumer == c {
			start = i
			break
		}
	}
	path := make([]string, 0, len(rt.frames)-start+1)
	for _, f := range rt.frames[start:] {
		if f.consumer != nil {
			path = append(path, f.consumer.Name())
		}
	}
	path = append(path, c.Name())
	return &CycleError{Property: c.Name(), Path: path}
}
