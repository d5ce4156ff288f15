package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sievelabs/causalspan/internal/dataset"
	"github.com/sievelabs/causalspan/internal/extract"
	"github.com/sievelabs/causalspan/internal/report"
	"github.com/sievelabs/causalspan/internal/store"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Extract cause/effect spans from a scored dataset",
	Long: `Run the extraction pipeline over an examples file and a scores file.

Writes predictions.json, predictions.csv and nbest_predictions.json to
the output directory and records the run in the local run history.

Examples:
  causalspan predict --examples task2.json --scores scores.json --out output/
  causalspan predict --examples task2.json --scores scores.json --out output/ \
      --sentence-boundary-heuristic --full-sentence-heuristic`,
	RunE: func(cmd *cobra.Command, args []string) error { return runPredict() },
}

var (
	examplesPath string
	scoresPath   string
	outputDir    string
	noStore      bool

	pipelineCfg = extract.DefaultConfig()
)

// addPipelineFlags registers the dataset and tuning flags shared by
// predict and evaluate.
func addPipelineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&examplesPath, "examples", "", "examples file (JSON)")
	cmd.Flags().StringVar(&scoresPath, "scores", "", "scores file (JSON)")
	cmd.Flags().StringVar(&outputDir, "out", "output", "output directory")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "do not record the run in the local history")
	cmd.MarkFlagRequired("examples")
	cmd.MarkFlagRequired("scores")

	cmd.Flags().IntVar(&pipelineCfg.NBestSize, "n-best-size", pipelineCfg.NBestSize,
		"candidate positions per score array and size of the n-best list")
	cmd.Flags().IntVar(&pipelineCfg.MaxAnswerLength, "max-answer-length", pipelineCfg.MaxAnswerLength,
		"maximum span length in tokens")
	cmd.Flags().BoolVar(&pipelineCfg.SentenceBoundaryHeuristic, "sentence-boundary-heuristic", false,
		"split candidate spans at sentence boundaries")
	cmd.Flags().BoolVar(&pipelineCfg.FullSentenceHeuristic, "full-sentence-heuristic", false,
		"widen spans in disjoint sentences to full sentences")
	cmd.Flags().BoolVar(&pipelineCfg.SharedSentenceHeuristic, "shared-sentence-heuristic", false,
		"widen the earlier span when cause and effect share a sentence")
	cmd.Flags().BoolVar(&pipelineCfg.OrdinalSelection, "ordinal-selection", false,
		"select the answer by the ordinal suffix of the example id")
	cmd.Flags().IntVar(&pipelineCfg.LeadingSpecialTokens, "leading-special-tokens", pipelineCfg.LeadingSpecialTokens,
		"chunk position of the first content token")
}

func init() {
	addPipelineFlags(predictCmd)
}

func runPredict() error {
	examples, reports, err := runPipeline()
	if err != nil {
		return err
	}

	if err := report.Write(outputDir, reports); err != nil {
		return err
	}

	fmt.Printf("Processed %d examples (%d chunks)\n", len(examples), countChunks(examples))
	fmt.Printf("Predictions written to %s\n", outputDir)

	if !noStore {
		runID, err := recordRun(examples, reports)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not record run: %v\n", err)
		} else {
			fmt.Printf("Run recorded as %s\n", runID)
		}
	}
	return nil
}

// runPipeline loads and validates the inputs and runs the extraction
// pipeline. Shared by predict and evaluate.
func runPipeline() ([]extract.Example, []extract.Report, error) {
	examples, err := dataset.LoadExamples(examplesPath)
	if err != nil {
		return nil, nil, err
	}
	scores, err := dataset.LoadScores(scoresPath)
	if err != nil {
		return nil, nil, err
	}
	if err := dataset.Validate(examples, scores); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	reports, err := extract.Run(examples, scores, pipelineCfg)
	if err != nil {
		return nil, nil, err
	}
	fmt.Printf("Extraction finished in %s\n", time.Since(start).Round(time.Millisecond))
	return examples, reports, nil
}

func recordRun(examples []extract.Example, reports []extract.Report) (string, error) {
	s, err := store.Open()
	if err != nil {
		return "", err
	}
	defer s.Close()

	cfgJSON, err := json.Marshal(pipelineCfg)
	if err != nil {
		return "", err
	}

	answers := make([]store.Answer, 0, len(reports))
	for _, r := range reports {
		answers = append(answers, store.Answer{
			ExampleID:   r.ExampleID,
			Text:        r.Answer.Text,
			CauseText:   r.Answer.CauseText,
			EffectText:  r.Answer.EffectText,
			Probability: r.NBest[r.Selected].Probability,
		})
	}

	return s.RecordRun(context.Background(), store.Run{
		ExamplesFile: examplesPath,
		OutputDir:    outputDir,
		ExampleCount: len(examples),
		Config:       string(cfgJSON),
	}, answers)
}

func countChunks(examples []extract.Example) int {
	n := 0
	for _, ex := range examples {
		n += len(ex.Features)
	}
	return n
}
