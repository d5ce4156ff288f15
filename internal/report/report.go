// Package report serializes pipeline results: the selected answers
// (JSON and semicolon-delimited CSV), the full n-best lists, and the
// evaluation-mode correct/wrong partitions. Output key order follows
// input example order.
package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sievelabs/causalspan/internal/extract"
)

// Output file names, fixed by the consumers downstream.
const (
	PredictionsFile      = "predictions.json"
	PredictionsCSVFile   = "predictions.csv"
	NBestPredictionsFile = "nbest_predictions.json"
	CorrectFile          = "predictions_correct.json"
	WrongFile            = "predictions_wrong.json"
)

// Comparison is one row of the correct/wrong partition files.
type Comparison struct {
	Text       string `json:"text"`
	CauseTrue  string `json:"cause_true"`
	EffectTrue string `json:"effect_true"`
	CausePred  string `json:"cause_pred"`
	EffectPred string `json:"effect_pred"`
}

// Write serializes the selected answers and n-best lists for all
// examples into dir, creating it if needed.
func Write(dir string, reports []extract.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	answers := newOrderedMap()
	nbest := newOrderedMap()
	for _, r := range reports {
		answers.set(r.ExampleID, r.Answer)
		nbest.set(r.ExampleID, r.NBest)
	}

	if err := writeJSON(filepath.Join(dir, PredictionsFile), answers); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(dir, PredictionsCSVFile), reports); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, NBestPredictionsFile), nbest)
}

// WritePartitions serializes the evaluation-mode partition files.
func WritePartitions(dir string, correct, wrong []Comparison) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if correct == nil {
		correct = []Comparison{}
	}
	if wrong == nil {
		wrong = []Comparison{}
	}
	if err := writeJSON(filepath.Join(dir, CorrectFile), correct); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, WrongFile), wrong)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeCSV(path string, reports []extract.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if err := w.Write([]string{"Index", "Text", "Cause", "Effect"}); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	for _, r := range reports {
		row := []string{r.ExampleID, r.Answer.Text, r.Answer.CauseText, r.Answer.EffectText}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", filepath.Base(path), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// orderedMap marshals as a JSON object whose keys keep insertion order,
// so report files list examples in input order.
type orderedMap struct {
	keys   []string
	values map[string]any
}

func newOrderedMap() *orderedMap {
	return &orderedMap{values: make(map[string]any)}
}

func (m *orderedMap) set(k string, v any) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

func (m *orderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyData, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyData)
		buf.WriteByte(':')
		valData, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valData)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
