// Package errsrc renders compile and runtime errors with a source-interval
// banner: a "File:Line:Col" header, a line-numbered gutter holding the
// offending source line, and an underline spanning the node's full
// interval rather than a single caret, since every ast.Node carries a
// full [start,end) extent, not just a point.
package errsrc

import (
	"fmt"
	"strings"

	"github.com/ursalang/ursa/internal/ast"
)

// CompileError is raised by internal/compiler (resolution failures,
// duplicate parameters, malformed forms, bad lvalues, assigning to a
// non-'var' location — ).
type CompileError struct {
	Message  string
	Interval ast.Interval
	Source   string
	File     string
}

func (e *CompileError) Error() string { return e.Format(false) }

// Format renders the error with source context; color enables ANSI
// highlighting of the underline and message.
func (e *CompileError) Format(color bool) string {
	return render("CompileError", e.Message, e.Interval, e.Source, e.File, color)
}

// TypeError is raised by internal/typecheck. The type checker accumulates these rather than aborting
// on the first one.
type TypeError struct {
	Message  string
	Interval ast.Interval
	Source   string
	File     string
}

func (e *TypeError) Error() string { return e.Format(false) }

func (e *TypeError) Format(color bool) string {
	return render("TypeError", e.Message, e.Interval, e.Source, e.File, color)
}

// Frame is one entry of a RuntimeError's traceback, derived from the
// chain of interpreter State.outerState links.
type Frame struct {
	FnName string
	File   string
	Line   int
}

// RuntimeError is raised by internal/interp (invalid call, invalid
// property, invalid object, assignment to a different type, yield
// outside a generator — ).
type RuntimeError struct {
	Message  string
	Interval ast.Interval
	Source   string
	File     string
	Trace    []Frame
}

func (e *RuntimeError) Error() string { return e.Format(false) }

func (e *RuntimeError) Format(color bool) string {
	var sb strings.Builder
	sb.WriteString(render("RuntimeError", e.Message, e.Interval, e.Source, e.File, color))
	for _, f := range e.Trace {
		sb.WriteString(fmt.Sprintf("\n  at %s (%s:%d)", f.FnName, f.File, f.Line))
	}
	return sb.String()
}

func render(kind, message string, iv ast.Interval, source, file string, color bool) string {
	var sb strings.Builder

	if file != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", kind, file, iv.Start.Line, iv.Start.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at %d:%d\n", kind, iv.Start.Line, iv.Start.Column))
	}

	if line := sourceLine(source, iv.Start.Line); line != "" {
		gutter := fmt.Sprintf("%4d | ", iv.Start.Line)
		sb.WriteString(gutter)
		sb.WriteString(line)
		sb.WriteString("\n")

		underlineLen := 1
		if iv.End.Line == iv.Start.Line && iv.End.Column > iv.Start.Column {
			underlineLen = iv.End.Column - iv.Start.Column
		}
		sb.WriteString(strings.Repeat(" ", len(gutter)+iv.Start.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString(strings.Repeat("^", underlineLen))
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func sourceLine(source string, lineNum int) string {
	if source == "" || lineNum < 1 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// FormatErrors renders a list of errors one after another, each
// formatted via its own Format method if it implements
// `Format(bool) string`, falling back to Error() otherwise.
func FormatErrors(errs []error, color bool) string {
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if f, ok := e.(interface{ Format(bool) string }); ok {
			sb.WriteString(f.Format(color))
		} else {
			sb.WriteString(e.Error())
		}
	}
	return sb.String()
}
