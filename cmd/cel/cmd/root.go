package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "cel",
	Short: "CEL expression engine",
	Long: `cel evaluates Common Expression Language (CEL) expressions against a
declared environment: registered variable types, structural limits, and
optional-chaining support.

CEL is a side-effect-free, total expression language for policy,
filtering, and configuration use cases.`,
	Version: Version,
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

	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "YAML file declaring variable types, limits and option toggles for the environment")
}
