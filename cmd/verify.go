package cmd

import (
	"fmt"

	"github.com/sievelabs/causalspan/internal/dataset"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check a dataset for consistency",
	Long: `Verify that an examples file and a scores file are consistent:
every chunk has a score set of matching length, token maps stay within
bounds, and word/character tables fit the original text.`,
	RunE: func(cmd *cobra.Command, args []string) error { return runVerify() },
}

var (
	verifyExamplesPath string
	verifyScoresPath   string
)

func init() {
	verifyCmd.Flags().StringVar(&verifyExamplesPath, "examples", "", "examples file (JSON)")
	verifyCmd.Flags().StringVar(&verifyScoresPath, "scores", "", "scores file (JSON)")
	verifyCmd.MarkFlagRequired("examples")
	verifyCmd.MarkFlagRequired("scores")
}

func runVerify() error {
	examples, err := dataset.LoadExamples(verifyExamplesPath)
	if err != nil {
		return err
	}
	scores, err := dataset.LoadScores(verifyScoresPath)
	if err != nil {
		return err
	}
	if err := dataset.Validate(examples, scores); err != nil {
		return fmt.Errorf("dataset invalid: %w", err)
	}

	fmt.Printf("✅ Dataset OK: %d examples, %d chunks, %d score sets\n",
		len(examples), countChunks(examples), len(scores))
	return nil
}
