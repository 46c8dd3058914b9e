// Package skerr provides functions that attach the location of the call and
// optional context to an error, while keeping the original error reachable
// via errors.Is and errors.As.
package skerr

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// StackTrace identifies a file and line number in the caller's code.
type StackTrace struct {
	File string
	Line int
}

// String returns the file and line, e.g. "trace/parse.go:42".
func (st *StackTrace) String() string {
	return fmt.Sprintf("%s:%d", st.File, st.Line)
}

// ErrorWithContext wraps an error with the call stack at the point it was
// first wrapped, plus any context added along the way.
type ErrorWithContext struct {
	// Wrapped is the original error. Never nil.
	Wrapped error
	// CallStack is where Wrapped was first wrapped, innermost first.
	CallStack []StackTrace
	// Context holds messages added by Wrapf, oldest first.
	Context []string
}

// CallStack returns the call stack of the caller of CallStack, skipping the
// first startAt frames and returning at most height frames.
func CallStack(height, startAt int) []StackTrace {
	stack := []StackTrace{}
	for i := 0; i < height; i++ {
		_, file, line, ok := runtime.Caller(startAt + i + 1)
		if !ok {
			break
		}
		// Keep the package directory so "util.go:12" is not ambiguous.
		file = filepath.Join(filepath.Base(filepath.Dir(file)), filepath.Base(file))
		stack = append(stack, StackTrace{File: file, Line: line})
	}
	return stack
}

// Error implements error.
func (err *ErrorWithContext) Error() string {
	var out strings.Builder
	for i := len(err.Context) - 1; i >= 0; i-- {
		out.WriteString(err.Context[i])
		out.WriteString(": ")
	}
	out.WriteString(err.Wrapped.Error())
	if len(err.CallStack) > 0 {
		out.WriteString(". At")
		for _, st := range err.CallStack {
			out.WriteString(" ")
			out.WriteString(st.String())
		}
	}
	return out.String()
}

// Unwrap supports errors.Is and errors.As.
func (err *ErrorWithContext) Unwrap() error {
	return err.Wrapped
}

const stackHeight = 3

// Wrap adds stack trace info to err, if not already present. Returns nil if
// err is nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var ewc *ErrorWithContext
	if errors.As(err, &ewc) {
		return err
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(stackHeight, 1),
	}
}

// Wrapf adds context and stack trace info to err. Returns nil if err is nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	var ewc *ErrorWithContext
	if errors.As(err, &ewc) && ewc == err {
		return &ErrorWithContext{
			Wrapped:   ewc.Wrapped,
			CallStack: ewc.CallStack,
			Context:   append(append([]string{}, ewc.Context...), msg),
		}
	}
	return &ErrorWithContext{
		Wrapped:   err,
		CallStack: CallStack(stackHeight, 1),
		Context:   []string{msg},
	}
}

// Fmt is fmt.Errorf with stack trace info.
func Fmt(format string, args ...interface{}) error {
	return &ErrorWithContext{
		Wrapped:   fmt.Errorf(format, args...),
		CallStack: CallStack(stackHeight, 1),
	}
}

// Unwrap returns the original error passed to Wrap or Wrapf, or err itself
// if it was not wrapped by this package.
func Unwrap(err error) error {
	var ewc *ErrorWithContext
	if errors.As(err, &ewc) {
		return ewc.Wrapped
	}
	return err
}
