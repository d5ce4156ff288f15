package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/sievelabs/causalspan/internal/store"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded extraction runs",
	RunE:  func(cmd *cobra.Command, args []string) error { return runRuns() },
}

func runRuns() error {
	s, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Printf("%-18s %-20s %-9s %s\n", "ID", "CREATED", "EXAMPLES", "INPUT")
	for _, r := range runs {
		fmt.Printf("%-18s %-20s %-9d %s\n",
			r.ID, r.CreatedAt.Local().Format(time.DateTime), r.ExampleCount, r.ExamplesFile)
	}
	return nil
}
