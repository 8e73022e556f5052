package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ursalang/ursa/internal/sexpr"
)

var flagWrite bool

var fmtCmd = &cobra.Command{
	Use:   "fmt FILE",
	Short: "Re-emit a program's canonical JSON form",
	Long: `fmt parses FILE as a JSON s-expression document and re-emits it with
stable indentation and source-order object keys. There is no surface
syntax formatter in this build; this is a minimal, defensible stand-in
for one, operating directly on the canonical JSON form.`,
	Args: cobra.ExactArgs(1),
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().BoolVarP(&flagWrite, "write", "w", false, "write the canonical form back to FILE instead of stdout")
	rootCmd.AddCommand(fmtCmd)
}

func runFmt(c *cobra.Command, args []string) error {
	b, err := os.ReadFile(args[0])
	if err != nil {
		exitWithError("%v", err)
	}

	n, err := sexpr.Read(string(b))
	if err != nil {
		exitWithError("%s: %v", args[0], err)
	}

	out, err := sexpr.Canonicalize(n)
	if err != nil {
		exitWithError("%s: %v", args[0], err)
	}

	if flagWrite {
		return os.WriteFile(args[0], []byte(out+"\n"), 0o644)
	}
	fmt.Println(out)
	return nil
}
