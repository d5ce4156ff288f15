package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// SetVersion sets the version info from main
func SetVersion(v, c, d string) {
	Version = v
	Commit = c
	Date = d
}

var rootCmd = &cobra.Command{
	Use:   "causalspan",
	Short: "Cause/effect span extraction from model scores",
	Long: `causalspan turns per-token cause/effect scores produced by an
upstream scoring model into ranked, non-overlapping cause and effect
text spans, with JSON/CSV reports and a local run history.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("causalspan %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

// Execute runs the causalspan command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)

	// predict, evaluate (defined in predict.go, evaluate.go)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(evaluateCmd)

	// verify (defined in verify.go)
	rootCmd.AddCommand(verifyCmd)

	// runs, export (defined in runs.go, export.go)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(exportCmd)
}
