package errsrc

import (
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/ursalang/ursa/internal/ast"
)

func TestCompileErrorFormatIncludesUnderline(t *testing.T) {
	src := "let o = Object {a = 1}\no.c := \"abc\""
	iv := ast.Interval{Start: ast.Pos{Line: 2, Column: 1}, End: ast.Pos{Line: 2, Column: 4}}
	err := &CompileError{Message: "Invalid property `c'", Interval: iv, Source: src, File: "test.ursa"}

	out := err.Format(false)
	if !strings.Contains(out, "test.ursa:2:1") {
		t.Errorf("expected file:line:col header, got:\n%s", out)
	}
	if !strings.Contains(out, "o.c") {
		t.Errorf("expected the offending source line rendered, got:\n%s", out)
	}
	if !strings.Contains(out, "^^^") {
		t.Errorf("expected a 3-wide underline for the 3-column interval, got:\n%s", out)
	}
	if !strings.Contains(out, "Invalid property") {
		t.Errorf("expected the message included, got:\n%s", out)
	}
}

func TestRuntimeErrorFormatIncludesTraceback(t *testing.T) {
	err := &RuntimeError{
		Message: "Invalid property",
		Trace: []Frame{
			{FnName: "inner", File: "a.ursa", Line: 3},
			{FnName: "main", File: "a.ursa", Line: 10},
		},
	}
	out := err.Format(false)
	if !strings.Contains(out, "at inner (a.ursa:3)") || !strings.Contains(out, "at main (a.ursa:10)") {
		t.Errorf("expected both traceback frames rendered, got:\n%s", out)
	}
}

func TestCompileErrorRenderingSnapshot(t *testing.T) {
	src := "let o = Object {a = 1}\no.c := \"abc\""
	iv := ast.Interval{Start: ast.Pos{Line: 2, Column: 1}, End: ast.Pos{Line: 2, Column: 4}}
	err := &CompileError{Message: "Invalid property `c'", Interval: iv, Source: src, File: "test.ursa"}
	snaps.MatchSnapshot(t, "compile_error_rendering", err.Format(false))
}

func TestRuntimeErrorRenderingSnapshot(t *testing.T) {
	src := "f(0)"
	iv := ast.Interval{Start: ast.Pos{Line: 1, Column: 1}, End: ast.Pos{Line: 1, Column: 4}}
	err := &RuntimeError{
		Message:  "Invalid call",
		Interval: iv,
		Source:   src,
		File:     "test.ursa",
		Trace: []Frame{
			{FnName: "f", File: "test.ursa", Line: 1},
			{FnName: "main", File: "test.ursa", Line: 1},
		},
	}
	snaps.MatchSnapshot(t, "runtime_error_rendering", err.Format(false))
}

func TestFormatErrorsJoinsMultiple(t *testing.T) {
	errs := []error{
		&CompileError{Message: "first"},
		&CompileError{Message: "second"},
	}
	out := FormatErrors(errs, false)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected both messages present, got:\n%s", out)
	}
}
