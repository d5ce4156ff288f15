package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sievelabs/causalspan/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id> [format] [output]",
	Short: "Export a recorded run's answers",
	Long: `Export the selected answers of a recorded run.

Supported formats:
  json  - JSON format (default)
  csv   - semicolon-delimited CSV

If no output path is given, a default filename is generated.

Examples:
  causalspan export 1a2b3c4d5e6f7a8b
  causalspan export 1a2b3c4d5e6f7a8b csv answers.csv`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, output := "json", ""
		if len(args) >= 2 {
			format = args[1]
		}
		if len(args) >= 3 {
			output = args[2]
		}
		return runExport(args[0], format, output)
	},
}

func runExport(runID, format, output string) error {
	s, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer s.Close()

	ctx := context.Background()
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	answers, err := s.RunAnswers(ctx, runID)
	if err != nil {
		return err
	}

	if output == "" {
		switch format {
		case "csv":
			output = fmt.Sprintf("run-%s.csv", run.ID)
		default:
			output = fmt.Sprintf("run-%s.json", run.ID)
		}
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(answers, "", "    ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
	case "csv":
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		defer f.Close()
		w := csv.NewWriter(f)
		w.Comma = ';'
		if err := w.Write([]string{"Index", "Text", "Cause", "Effect"}); err != nil {
			return err
		}
		for _, a := range answers {
			if err := w.Write([]string{a.ExampleID, a.Text, a.CauseText, a.EffectText}); err != nil {
				return err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s (supported: json, csv)", format)
	}

	fmt.Printf("Exported %d answers from run %s to %s\n", len(answers), run.ID, output)
	return nil
}
