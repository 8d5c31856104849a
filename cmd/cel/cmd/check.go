package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Type-check a CEL expression without evaluating it",
	Long: `Parse and type-check a CEL expression, printing its static result
type, or the check error if it does not type-check.

Examples:
  cel check -e "1 + '2'"
  cel check --env policy.yaml expr.cel`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "check inline text instead of reading from file")
}

func runCheck(_ *cobra.Command, args []string) error {
	source, _, err := readSource(args)
	if err != nil {
		return err
	}
	env, err := loadEnvironment(envFile)
	if err != nil {
		return err
	}
	t, err := env.Check(source)
	if err != nil {
		printDiagnostic(err)
		return fmt.Errorf("type-check failed")
	}
	fmt.Println(t.CanonicalName())
	return nil
}
