// log/stack.go
// Copyright(c) 2026 clyde contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const maxStackDepth = 16

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}

// Stack is a list of frames, innermost first. It's logged as a list of
// "file:line:function" strings.
type Stack []StackFrame

func (s Stack) LogValue() slog.Value {
	strs := make([]string, len(s))
	for i, f := range s {
		strs[i] = f.String()
	}
	return slog.AnyValue(strs)
}

// Callstack returns the stack of the caller's caller after skipping skip
// additional frames; Callstack(0) called from f starts with f's caller.
// Frames above main.main are omitted.
func Callstack(skip int) Stack {
	var pcs [maxStackDepth]uintptr
	// Skip runtime.Callers, Callstack, and its caller.
	n := runtime.Callers(3+skip, pcs[:])

	s := make(Stack, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fn := strings.TrimPrefix(frame.Function, "github.com/clyde3d/clyde/")
		s = append(s, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(fn, "main."),
		})
		if !more || frame.Function == "main.main" {
			return s
		}
	}
}
