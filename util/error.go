// util/error.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/clyde3d/clyde/log"
)

// ConfigError is a problem found at a particular place in a configuration
// file, e.g. "wood.json / materials / oak / techniques".
type ConfigError struct {
	Path []string
	Err  error
}

func (c ConfigError) Error() string {
	return strings.Join(c.Path, " / ") + ": " + c.Err.Error()
}

func (c ConfigError) Unwrap() error { return c.Err }

// ErrorLogger accumulates errors found while validating configuration so
// that validation can continue past the first one. Push and Pop track
// where in the configuration the validation is.
type ErrorLogger struct {
	path   []string
	errors []ConfigError
}

func (e *ErrorLogger) Push(s string) { e.path = append(e.path, s) }
func (e *ErrorLogger) Pop()          { e.path = e.path[:len(e.path)-1] }

func (e *ErrorLogger) ErrorString(s string, args ...any) {
	e.Error(fmt.Errorf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, ConfigError{Path: append([]string(nil), e.path...), Err: err})
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

func (e *ErrorLogger) NumErrors() int {
	return len(e.errors)
}

// Errors returns the error messages, each prefixed with where it was found.
func (e *ErrorLogger) Errors() []string {
	return MapSlice(e.errors, func(c ConfigError) string { return c.Error() })
}

// Err returns all of the errors joined, or nil if there were none. The
// individual errors can be found with errors.Is and errors.As.
func (e *ErrorLogger) Err() error {
	return errors.Join(MapSlice(e.errors, func(c ConfigError) error { return c })...)
}

// PrintErrors writes the errors to the log and to stderr.
func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	for _, c := range e.errors {
		lg.Error("configuration error", "path", strings.Join(c.Path, "/"), "error", c.Err)
	}
	fmt.Fprintln(os.Stderr, e.String())
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.Errors(), "\n")
}

// CheckDepth is used with defer to catch unbalanced Push/Pop calls.
func (e *ErrorLogger) CheckDepth(d int) {
	if e == nil || e.CurrentDepth() == d {
		return
	}
	if r := recover(); r != nil {
		panic(r)
	}
	panic(fmt.Sprintf("ErrorLogger: initial depth %d, final %d", d, e.CurrentDepth()))
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.path)
}
