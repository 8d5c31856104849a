package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/cwbudde/go-cel/internal/diagnostics"
	"github.com/spf13/cobra"
)

var evalExpr string

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a CEL expression",
	Long: `Parse, type-check, and evaluate a CEL expression from a file or
inline text, printing the resulting value.

Examples:
  cel eval -e "1 + 2 * 3"
  cel eval --env policy.yaml expr.cel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline text instead of reading from file")
}

func readSource(args []string) (string, string, error) {
	if evalExpr != "" {
		return evalExpr, "<eval>", nil
	}
	if len(args) == 1 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e flag for inline text")
}

func printDiagnostic(err error) {
	if de, ok := err.(*diagnostics.Error); ok {
		fmt.Fprintln(os.Stderr, de.FormatColor())
		return
	}
	fmt.Fprintln(os.Stderr, err)
}

func runEval(_ *cobra.Command, args []string) error {
	source, _, err := readSource(args)
	if err != nil {
		return err
	}
	env, err := loadEnvironment(envFile)
	if err != nil {
		return err
	}
	v, err := env.Eval(context.Background(), source, nil)
	if err != nil {
		printDiagnostic(err)
		return fmt.Errorf("evaluation failed")
	}
	fmt.Println(formatValue(v))
	return nil
}
