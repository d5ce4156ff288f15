// Package dataset loads the serialized inputs of an extraction run: an
// examples file (tokenized documents with their chunk windows) and a
// scores file (per-chunk score arrays from the upstream model).
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/sievelabs/causalspan/internal/extract"
)

// File is the top-level shape of an examples file.
type File struct {
	Examples []ExampleRecord `json:"examples"`
}

// ExampleRecord is one document as serialized by the upstream
// tokenization step. cause_text/effect_text are present only in
// evaluation datasets.
type ExampleRecord struct {
	ExampleID        string          `json:"example_id"`
	ContextText      string          `json:"context_text"`
	CauseText        string          `json:"cause_text,omitempty"`
	EffectText       string          `json:"effect_text,omitempty"`
	WordToCharOffset []int           `json:"word_to_char_offset"`
	Features         []FeatureRecord `json:"features"`
}

// FeatureRecord is one tokenized window of an example. Token maps are
// keyed by the chunk-local token position (JSON object keys are
// strings; they are parsed on load).
type FeatureRecord struct {
	UniqueID          int64           `json:"unique_id"`
	Tokens            []string        `json:"tokens"`
	TokenToOrigMap    map[string]int  `json:"token_to_orig_map"`
	TokenIsMaxContext map[string]bool `json:"token_is_max_context"`
	Sentence2Offset   *int            `json:"sentence_2_offset"`
	Sentence3Offset   *int            `json:"sentence_3_offset"`
}

// ScoreRecord is one chunk's entry in a scores file.
type ScoreRecord struct {
	StartCauseScores  []float64 `json:"start_cause_scores"`
	EndCauseScores    []float64 `json:"end_cause_scores"`
	StartEffectScores []float64 `json:"start_effect_scores"`
	EndEffectScores   []float64 `json:"end_effect_scores"`
}

// LoadExamples reads and converts an examples file.
func LoadExamples(path string) ([]extract.Example, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read examples file: %w", err)
	}
	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse examples file: %w", err)
	}

	examples := make([]extract.Example, 0, len(file.Examples))
	for _, rec := range file.Examples {
		ex := extract.Example{
			ID:               rec.ExampleID,
			ContextText:      rec.ContextText,
			CauseText:        rec.CauseText,
			EffectText:       rec.EffectText,
			WordToCharOffset: rec.WordToCharOffset,
		}
		for _, fr := range rec.Features {
			feature, err := fr.toFeature()
			if err != nil {
				return nil, fmt.Errorf("example %s: %w", rec.ExampleID, err)
			}
			ex.Features = append(ex.Features, feature)
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func (fr FeatureRecord) toFeature() (extract.Feature, error) {
	f := extract.Feature{
		UniqueID:          fr.UniqueID,
		Tokens:            fr.Tokens,
		TokenToOrigMap:    make(map[int]int, len(fr.TokenToOrigMap)),
		TokenIsMaxContext: make(map[int]bool, len(fr.TokenIsMaxContext)),
	}
	for k, v := range fr.TokenToOrigMap {
		pos, err := strconv.Atoi(k)
		if err != nil {
			return extract.Feature{}, fmt.Errorf("chunk %d: bad token_to_orig_map key %q", fr.UniqueID, k)
		}
		f.TokenToOrigMap[pos] = v
	}
	for k, v := range fr.TokenIsMaxContext {
		pos, err := strconv.Atoi(k)
		if err != nil {
			return extract.Feature{}, fmt.Errorf("chunk %d: bad token_is_max_context key %q", fr.UniqueID, k)
		}
		f.TokenIsMaxContext[pos] = v
	}
	if fr.Sentence2Offset != nil {
		f.SentenceOffsets = append(f.SentenceOffsets, *fr.Sentence2Offset)
	}
	if fr.Sentence3Offset != nil {
		f.SentenceOffsets = append(f.SentenceOffsets, *fr.Sentence3Offset)
	}
	return f, nil
}

// LoadScores reads a scores file into a map keyed by chunk unique id.
func LoadScores(path string) (map[int64]extract.ScoreSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scores file: %w", err)
	}
	var records map[string]ScoreRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse scores file: %w", err)
	}

	scores := make(map[int64]extract.ScoreSet, len(records))
	for k, rec := range records {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("scores file: bad chunk id %q", k)
		}
		scores[id] = extract.ScoreSet{
			StartCause:  rec.StartCauseScores,
			EndCause:    rec.EndCauseScores,
			StartEffect: rec.StartEffectScores,
			EndEffect:   rec.EndEffectScores,
		}
	}
	return scores, nil
}

// Validate cross-checks examples against scores: every chunk needs a
// score set, all four arrays must match the chunk's token count, token
// maps must stay in bounds, and the word table must fit the text.
// Failures here mean upstream corruption, not a recoverable condition.
func Validate(examples []extract.Example, scores map[int64]extract.ScoreSet) error {
	for _, ex := range examples {
		for wordIdx, off := range ex.WordToCharOffset {
			if off < 0 || off > len(ex.ContextText) {
				return fmt.Errorf("example %s: word %d has char offset %d outside text of length %d",
					ex.ID, wordIdx, off, len(ex.ContextText))
			}
		}
		for _, f := range ex.Features {
			set, ok := scores[f.UniqueID]
			if !ok {
				return fmt.Errorf("example %s: chunk %d has no score set", ex.ID, f.UniqueID)
			}
			n := len(f.Tokens)
			for name, arr := range map[string][]float64{
				"start_cause_scores":  set.StartCause,
				"end_cause_scores":    set.EndCause,
				"start_effect_scores": set.StartEffect,
				"end_effect_scores":   set.EndEffect,
			} {
				if len(arr) != n {
					return fmt.Errorf("example %s: chunk %d: %s has %d entries for %d tokens",
						ex.ID, f.UniqueID, name, len(arr), n)
				}
			}
			for pos, wordIdx := range f.TokenToOrigMap {
				if pos < 0 || pos >= n {
					return fmt.Errorf("example %s: chunk %d: token_to_orig_map position %d outside %d tokens",
						ex.ID, f.UniqueID, pos, n)
				}
				if wordIdx < 0 || wordIdx >= len(ex.WordToCharOffset) {
					return fmt.Errorf("example %s: chunk %d: token %d maps to word %d outside word table of %d",
						ex.ID, f.UniqueID, pos, wordIdx, len(ex.WordToCharOffset))
				}
			}
			for _, b := range f.SentenceOffsets {
				if b < 0 || b >= n {
					return fmt.Errorf("example %s: chunk %d: sentence boundary %d outside %d tokens",
						ex.ID, f.UniqueID, b, n)
				}
			}
		}
	}
	return nil
}
