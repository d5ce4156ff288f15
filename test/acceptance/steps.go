package acceptance

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cucumber/godog"
)

var (
	buildOnce  sync.Once
	buildErr   error
	binaryPath string
)

// buildBinary compiles the causalspan binary once for the whole suite.
func buildBinary() error {
	buildOnce.Do(func() {
		if env := os.Getenv("CAUSALSPAN_TEST_BINARY"); env != "" {
			binaryPath = env
			return
		}
		binaryPath = filepath.Join(os.TempDir(), "causalspan-test")
		cmd := exec.Command("go", "build", "-o", binaryPath, "../..")
		out, err := cmd.CombinedOutput()
		if err != nil {
			buildErr = fmt.Errorf("go build failed: %v\n%s", err, out)
		}
	})
	return buildErr
}

// testContext holds state between steps of one scenario.
type testContext struct {
	workDir      string
	examplesPath string
	scoresPath   string
	outDir       string

	lastStdout   string
	lastStderr   string
	lastExitCode int
}

const fixtureExamples = `{
  "examples": [
    {
      "example_id": "docs.1",
      "context_text": "The drought caused famine",
      "cause_text": "The drought",
      "effect_text": "famine",
      "word_to_char_offset": [0, 4, 12, 19],
      "features": [
        {
          "unique_id": 1000,
          "tokens": ["[CLS]", "The", "drought", "caused", "famine", "[SEP]"],
          "token_to_orig_map": {"1": 0, "2": 1, "3": 2, "4": 3},
          "token_is_max_context": {"1": true, "2": true, "3": true, "4": true}
        }
      ]
    },
    {
      "example_id": "docs.2",
      "context_text": "No rain fell . Crops died everywhere",
      "cause_text": "No rain fell .",
      "effect_text": "Crops died everywhere",
      "word_to_char_offset": [0, 3, 8, 13, 15, 21, 26],
      "features": [
        {
          "unique_id": 2000,
          "tokens": ["[CLS]", "No", "rain", "fell", ".", "Crops", "died", "everywhere", "[SEP]"],
          "token_to_orig_map": {"1": 0, "2": 1, "3": 2, "4": 3, "5": 4, "6": 5, "7": 6},
          "token_is_max_context": {"1": true, "2": true, "3": true, "4": true, "5": true, "6": true, "7": true},
          "sentence_2_offset": 4
        }
      ]
    }
  ]
}`

const fixtureScores = `{
  "1000": {
    "start_cause_scores": [0, 9, 1, 0, 0, 0],
    "end_cause_scores": [0, 1, 9, 0, 0, 0],
    "start_effect_scores": [0, 0, 0, 1, 9, 0],
    "end_effect_scores": [0, 0, 0, 0, 9, 1]
  },
  "2000": {
    "start_cause_scores": [0, 9, 1, 0, 0, 0, 0, 0, 0],
    "end_cause_scores": [0, 0, 1, 8, 9, 0, 0, 0, 0],
    "start_effect_scores": [0, 0, 0, 0, 0, 9, 1, 0, 0],
    "end_effect_scores": [0, 0, 0, 0, 0, 0, 1, 9, 0]
  }
}`

func (tc *testContext) aScoredDataset() error {
	tc.examplesPath = filepath.Join(tc.workDir, "examples.json")
	tc.scoresPath = filepath.Join(tc.workDir, "scores.json")
	tc.outDir = filepath.Join(tc.workDir, "output")

	if err := os.WriteFile(tc.examplesPath, []byte(fixtureExamples), 0o644); err != nil {
		return err
	}
	return os.WriteFile(tc.scoresPath, []byte(fixtureScores), 0o644)
}

func (tc *testContext) runCausalspan(subcommand string) error {
	var args []string
	switch subcommand {
	case "predict", "evaluate":
		args = []string{subcommand,
			"--examples", tc.examplesPath,
			"--scores", tc.scoresPath,
			"--out", tc.outDir,
		}
	case "predict with sentence heuristics":
		args = []string{"predict",
			"--examples", tc.examplesPath,
			"--scores", tc.scoresPath,
			"--out", tc.outDir,
			"--full-sentence-heuristic",
			"--shared-sentence-heuristic",
			"--leading-special-tokens", "1",
		}
	case "verify":
		args = []string{"verify", "--examples", tc.examplesPath, "--scores", tc.scoresPath}
	default:
		args = strings.Fields(subcommand)
	}

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "CAUSALSPAN_DATA_DIR="+filepath.Join(tc.workDir, "data"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	tc.lastStdout = stdout.String()
	tc.lastStderr = stderr.String()
	tc.lastExitCode = 0
	if exitErr, ok := err.(*exec.ExitError); ok {
		tc.lastExitCode = exitErr.ExitCode()
	} else if err != nil {
		return err
	}
	return nil
}

func (tc *testContext) commandSucceeds() error {
	if tc.lastExitCode != 0 {
		return fmt.Errorf("exit code %d\nstdout: %s\nstderr: %s",
			tc.lastExitCode, tc.lastStdout, tc.lastStderr)
	}
	return nil
}

func (tc *testContext) outputDirContains(name string) error {
	if _, err := os.Stat(filepath.Join(tc.outDir, name)); err != nil {
		return fmt.Errorf("expected %s in %s: %v", name, tc.outDir, err)
	}
	return nil
}

func (tc *testContext) loadPredictions() (map[string]map[string]string, error) {
	data, err := os.ReadFile(filepath.Join(tc.outDir, "predictions.json"))
	if err != nil {
		return nil, err
	}
	var preds map[string]map[string]string
	if err := json.Unmarshal(data, &preds); err != nil {
		return nil, err
	}
	return preds, nil
}

func (tc *testContext) selectedFieldIs(field, exampleID, want string) error {
	preds, err := tc.loadPredictions()
	if err != nil {
		return err
	}
	entry, ok := preds[exampleID]
	if !ok {
		return fmt.Errorf("no prediction for %s", exampleID)
	}
	if got := entry[field]; got != want {
		return fmt.Errorf("%s of %s: want %q, got %q", field, exampleID, want, got)
	}
	return nil
}

func (tc *testContext) loadNBest() (map[string][]map[string]any, error) {
	data, err := os.ReadFile(filepath.Join(tc.outDir, "nbest_predictions.json"))
	if err != nil {
		return nil, err
	}
	var nbest map[string][]map[string]any
	if err := json.Unmarshal(data, &nbest); err != nil {
		return nil, err
	}
	return nbest, nil
}

func (tc *testContext) everyExampleHasPredictions() error {
	nbest, err := tc.loadNBest()
	if err != nil {
		return err
	}
	if len(nbest) == 0 {
		return fmt.Errorf("n-best report is empty")
	}
	for id, entries := range nbest {
		if len(entries) == 0 {
			return fmt.Errorf("example %s has no predictions", id)
		}
	}
	return nil
}

func (tc *testContext) probabilitiesSumToOne() error {
	nbest, err := tc.loadNBest()
	if err != nil {
		return err
	}
	for id, entries := range nbest {
		var sum float64
		for _, e := range entries {
			p, ok := e["probability"].(float64)
			if !ok {
				return fmt.Errorf("example %s: probability missing", id)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-6 {
			return fmt.Errorf("example %s: probabilities sum to %v", id, sum)
		}
	}
	return nil
}

func (tc *testContext) csvHeaderIs(want string) error {
	f, err := os.Open(filepath.Join(tc.outDir, "predictions.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	header, err := r.Read()
	if err != nil {
		return err
	}
	if got := strings.Join(header, ";"); got != want {
		return fmt.Errorf("header: want %q, got %q", want, got)
	}
	return nil
}

func (tc *testContext) outputContains(want string) error {
	if !strings.Contains(tc.lastStdout, want) && !strings.Contains(tc.lastStderr, want) {
		return fmt.Errorf("output does not contain %q\nstdout: %s\nstderr: %s",
			want, tc.lastStdout, tc.lastStderr)
	}
	return nil
}

// InitializeScenario wires the step definitions.
func InitializeScenario(sc *godog.ScenarioContext) {
	tc := &testContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		if err := buildBinary(); err != nil {
			return ctx, err
		}
		dir, err := os.MkdirTemp("", "causalspan-acceptance-*")
		if err != nil {
			return ctx, err
		}
		tc.workDir = dir
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if tc.workDir != "" {
			os.RemoveAll(tc.workDir)
		}
		return ctx, nil
	})

	sc.Step(`^a scored dataset with two examples$`, tc.aScoredDataset)
	sc.Step(`^I run causalspan (.+)$`, tc.runCausalspan)
	sc.Step(`^the command succeeds$`, tc.commandSucceeds)
	sc.Step(`^the output directory contains "([^"]+)"$`, tc.outputDirContains)
	sc.Step(`^the selected cause for "([^"]+)" is "([^"]+)"$`, func(id, want string) error {
		return tc.selectedFieldIs("cause_text", id, want)
	})
	sc.Step(`^the selected effect for "([^"]+)" is "([^"]+)"$`, func(id, want string) error {
		return tc.selectedFieldIs("effect_text", id, want)
	})
	sc.Step(`^every example has a non-empty n-best list$`, tc.everyExampleHasPredictions)
	sc.Step(`^the n-best probabilities of every example sum to 1$`, tc.probabilitiesSumToOne)
	sc.Step(`^the CSV report header is "([^"]+)"$`, tc.csvHeaderIs)
	sc.Step(`^the output contains "([^"]+)"$`, tc.outputContains)
}
