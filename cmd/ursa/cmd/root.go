package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ursalang/ursa/internal/config"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	flagSyntax string
	flagTarget string
	flagOutput string
	flagConfig string

	// cfg holds the resolved configuration: Default() until
	// PersistentPreRunE loads --config and layers explicit flags on top.
	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "ursa",
	Short: "Ursa interpreter and instruction-stream compiler",
	Long: `ursa runs, compiles and canonicalizes Ursa programs.

Ursa programs are read as a JSON s-expression tree: a small set of
keyword forms (let, fn, gen, if, loop, invoke, ...) compiled to a typed
AST, type-checked, flattened to a linear instruction stream, and run by
an instruction-stepping interpreter with cooperative generators and eagerly
settled promises.`,
	Version: Version,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if flagConfig != "" {
			loaded, err := config.Load(flagConfig)
			if err != nil {
				return err
			}
			cfg = loaded
		}
		if !c.Flags().Changed("syntax") {
			flagSyntax = cfg.Syntax
		}
		if !c.Flags().Changed("target") {
			flagTarget = cfg.Target
		}
		if !c.Flags().Changed("trace") && cfg.Trace {
			flagTrace = true
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&flagSyntax, "syntax", "json", "surface syntax of the input (json|ursa)")
	rootCmd.PersistentFlags().StringVar(&flagTarget, "target", "ark", "compilation target (ark|js)")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "", "output path (defaults to stdout)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
