// Command ursa runs, compiles and canonicalizes Ursa programs.
package main

import (
	"fmt"
	"os"

	"github.com/ursalang/ursa/cmd/ursa/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
