package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ursalang/ursa/internal/instr"
	"github.com/ursalang/ursa/internal/runtime"
)

var (
	flagEval        string
	flagInteractive bool
	flagTypeCheck   bool
	flagTrace       bool
)

var runCmd = &cobra.Command{
	Use:   "run [FILE]",
	Short: "Run a program",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVarP(&flagEval, "eval", "e", "", "evaluate an inline JSON s-expression instead of reading FILE")
	runCmd.Flags().BoolVar(&flagInteractive, "interactive", false, "drop into a line-at-a-time REPL")
	runCmd.Flags().BoolVar(&flagTypeCheck, "type-check", true, "run the type checker before flattening")
	runCmd.Flags().BoolVar(&flagTrace, "trace", false, "print the instruction stream before running")
	rootCmd.AddCommand(runCmd)
}

func runRun(c *cobra.Command, args []string) error {
	if flagSyntax == "ursa" {
		return fmt.Errorf("surface syntax not implemented in this build; pass --syntax=json or omit --syntax")
	}

	rt, err := newRuntime(os.Stdout)
	if err != nil {
		exitWithError("%v", err)
	}

	if flagInteractive {
		return runInteractive(rt)
	}

	file, source, err := sourceFromArgsOrEval(args)
	if err != nil {
		exitWithError("%v", err)
	}

	return runOnce(rt, file, source)
}

func sourceFromArgsOrEval(args []string) (string, string, error) {
	if flagEval != "" {
		return "<eval>", flagEval, nil
	}
	if len(args) == 0 {
		return "", "", fmt.Errorf("run requires a FILE argument, or --eval EXPR")
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", args[0], err)
	}
	return args[0], string(b), nil
}

func runOnce(rt *runtime.Runtime, file, source string) error {
	stream, errs := buildStream(rt, file, source, flagTypeCheck)
	if len(errs) != 0 {
		fmt.Fprintln(os.Stderr, renderErrors(errs))
		os.Exit(1)
	}

	if flagTrace {
		instr.NewDisassembler(stream, os.Stderr).Disassemble()
	}

	result, err := runStream(file, source, stream)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatRuntimeError(err))
		os.Exit(2)
	}
	fmt.Println(result.String())
	return nil
}

// runInteractive reads one line at a time from stdin, compiling and
// running each against the same rt so globals persist across lines
// while locals reset per line. A line of the form `name = <json-expr>`
// desugars to a `let` binding whose scope is that line alone (the name is
// not visible on later lines); any other line is read as a raw JSON
// s-expression.
func runInteractive(rt *runtime.Runtime) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Fprint(os.Stdout, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			fmt.Fprint(os.Stdout, "> ")
			continue
		}
		source := desugarReplLine(line)
		stream, errs := buildStream(rt, "<repl>", source, flagTypeCheck)
		if len(errs) != 0 {
			fmt.Fprintln(os.Stderr, renderErrors(errs))
			fmt.Fprint(os.Stdout, "> ")
			continue
		}
		result, err := runStream("<repl>", source, stream)
		if err != nil {
			fmt.Fprintln(os.Stderr, formatRuntimeError(err))
		} else {
			fmt.Println(result.String())
		}
		fmt.Fprint(os.Stdout, "> ")
	}
	fmt.Println()
	return scanner.Err()
}

// desugarReplLine recognizes `name = <json-expr>` and rewrites it into
// a let that binds name to the expression and evaluates to it; anything
// else passes through as a raw JSON s-expression.
func desugarReplLine(line string) string {
	if idx := strings.Index(line, "="); idx > 0 {
		name := strings.TrimSpace(line[:idx])
		if isIdent(name) {
			expr := strings.TrimSpace(line[idx+1:])
			return fmt.Sprintf(`["let",[["var",%q,"Any",%s]],%q]`, name, expr, name)
		}
	}
	return line
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}
