package cmd

import (
	"fmt"
	"os"

	"github.com/sievelabs/causalspan/internal/extract"
	"github.com/sievelabs/causalspan/internal/metrics"
	"github.com/sievelabs/causalspan/internal/report"
	"github.com/spf13/cobra"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Predict and score against reference annotations",
	Long: `Run the extraction pipeline and compare the selected answers against
the reference cause/effect texts carried by the examples file.

Prints precision, recall, F1 and exact match, and writes
predictions_correct.json / predictions_wrong.json alongside the usual
prediction files.`,
	RunE: func(cmd *cobra.Command, args []string) error { return runEvaluate() },
}

func init() {
	addPipelineFlags(evaluateCmd)
}

func runEvaluate() error {
	examples, reports, err := runPipeline()
	if err != nil {
		return err
	}

	if err := report.Write(outputDir, reports); err != nil {
		return err
	}

	refs, preds, correct, wrong := compareAnswers(examples, reports)
	if err := report.WritePartitions(outputDir, correct, wrong); err != nil {
		return err
	}

	result, err := metrics.Evaluate(refs, preds, metrics.DefaultAlphabet)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Printf("F1: %f\n", result.F1)
	fmt.Printf("Recall: %f\n", result.Recall)
	fmt.Printf("Precision: %f\n", result.Precision)
	fmt.Printf("ExactMatch: %f\n", result.ExactMatch)
	fmt.Printf("Correct: %d  Wrong: %d\n", len(correct), len(wrong))

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

// compareAnswers pairs each example's reference annotation with its
// selected answer and partitions examples by exact cause+effect text
// match. Reports are emitted per input example in order, so the two
// slices are aligned by construction.
func compareAnswers(examples []extract.Example, reports []extract.Report) (refs, preds []metrics.Labeled, correct, wrong []report.Comparison) {
	for i, ex := range examples {
		r := reports[i]
		refs = append(refs, metrics.Labeled{
			ID:     ex.ID,
			Text:   ex.ContextText,
			Cause:  ex.CauseText,
			Effect: ex.EffectText,
		})
		preds = append(preds, metrics.Labeled{
			ID:     ex.ID,
			Text:   ex.ContextText,
			Cause:  r.Answer.CauseText,
			Effect: r.Answer.EffectText,
		})

		comparison := report.Comparison{
			Text:       ex.ContextText,
			CauseTrue:  ex.CauseText,
			EffectTrue: ex.EffectText,
			CausePred:  r.Answer.CauseText,
			EffectPred: r.Answer.EffectText,
		}
		if ex.CauseText == r.Answer.CauseText && ex.EffectText == r.Answer.EffectText {
			correct = append(correct, comparison)
		} else {
			wrong = append(wrong, comparison)
		}
	}
	return refs, preds, correct, wrong
}
