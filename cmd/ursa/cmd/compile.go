package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ursalang/ursa/internal/instr"
)

var flagExecutable bool

var compileCmd = &cobra.Command{
	Use:   "compile FILE",
	Short: "Flatten a program to its instruction stream and dump it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().BoolVar(&flagExecutable, "executable", false, "include the literal pool and full operand detail (no effect beyond the default dump in this build; there is no native codegen)")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(c *cobra.Command, args []string) error {
	if flagSyntax == "ursa" {
		return fmt.Errorf("surface syntax not implemented in this build; pass --syntax=json or omit --syntax")
	}

	b, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("%v", err)
	}

	rt, err := newRuntime(os.Stderr)
	if err != nil {
		exitWithError("%v", err)
	}

	stream, errs := buildStream(rt, args[0], string(b), true)
	if len(errs) != 0 {
		fmt.Fprintln(os.Stderr, renderErrors(errs))
		os.Exit(1)
	}

	dump, err := instr.DumpJSON(stream)
	if err != nil {
		exitWithError("%v", err)
	}

	if flagOutput == "" {
		fmt.Println(string(dump))
		return nil
	}
	return os.WriteFile(flagOutput, append(dump, '\n'), 0o644)
}
