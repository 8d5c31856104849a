// Command cel is a thin CLI wrapper around pkg/cel: lex, check, and
// evaluate CEL expressions from the shell, grounded on
// CWBudde-go-dws's cmd/dwscript entry point shape.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/go-cel/cmd/cel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
