package cmd

import (
	"fmt"
	"io"

	"github.com/ursalang/ursa/internal/compiler"
	"github.com/ursalang/ursa/internal/errsrc"
	"github.com/ursalang/ursa/internal/flatten"
	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/interp"
	"github.com/ursalang/ursa/internal/prelude"
	"github.com/ursalang/ursa/internal/runtime"
	"github.com/ursalang/ursa/internal/sexpr"
	"github.com/ursalang/ursa/internal/typecheck"
	"github.com/ursalang/ursa/internal/value"
)

// newRuntime builds a Runtime with the prelude installed and frozen,
// ready for one or more compilations to share (the --interactive REPL
// reuses the same Runtime across lines; run/compile build one per
// invocation).
func newRuntime(debugOut io.Writer) (*runtime.Runtime, error) {
	rt := runtime.New()
	if err := prelude.Install(rt, debugOut); err != nil {
		return nil, fmt.Errorf("prelude: %w", err)
	}
	rt.Freeze()
	return rt, nil
}

// buildStream compiles, optionally type-checks, and flattens source
// against rt, returning the resulting instruction stream. Compile,
// type-check and flatten errors are returned as their own []error value
// so the caller can render them with errsrc.FormatErrors and pick the
// right exit code per phase.
func buildStream(rt *runtime.Runtime, file, source string, typeCheck bool) (*instr.Stream, []error) {
	n, err := sexpr.Read(source)
	if err != nil {
		return nil, []error{fmt.Errorf("%s: %w", file, err)}
	}

	c := compiler.New(rt, file, source)
	tree, cerrs := c.Compile(n)
	if len(cerrs) != 0 {
		return nil, cerrs
	}

	if typeCheck {
		tc := typecheck.New(file, source)
		if terrs := tc.Check(tree); len(terrs) != 0 {
			return nil, terrs
		}
	}

	fl := flatten.New(rt, file, source)
	stream, ferrs := fl.Flatten(tree)
	if len(ferrs) != 0 {
		return nil, ferrs
	}
	if err := stream.Validate(); err != nil {
		return nil, []error{err}
	}
	return stream, nil
}

// renderErrors formats a phase's errors for printing to stderr.
func renderErrors(errs []error) string {
	return errsrc.FormatErrors(errs, false)
}

// runStream executes stream to completion.
func runStream(file, source string, stream *instr.Stream) (value.Value, error) {
	return interp.New(file, source).Run(stream)
}

// formatRuntimeError renders a runtime error via its own Format method
// when it carries one (interp.errorf always produces *errsrc.RuntimeError),
// falling back to Error() otherwise.
func formatRuntimeError(err error) string {
	if f, ok := err.(interface{ Format(bool) string }); ok {
		return f.Format(false)
	}
	return err.Error()
}
