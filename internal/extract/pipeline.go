package extract

import (
	"fmt"
	"strconv"
	"strings"
)

// Entry is one row of an example's n-best report.
type Entry struct {
	Text             string  `json:"text"`
	Probability      float64 `json:"probability"`
	CauseText        string  `json:"cause_text"`
	CauseStartIndex  int     `json:"cause_start_index"`
	CauseEndIndex    int     `json:"cause_end_index"`
	CauseStartScore  float64 `json:"cause_start_score"`
	CauseEndScore    float64 `json:"cause_end_score"`
	EffectText       string  `json:"effect_text"`
	EffectStartScore float64 `json:"effect_start_score"`
	EffectEndScore   float64 `json:"effect_end_score"`
	EffectStartIndex int     `json:"effect_start_index"`
	EffectEndIndex   int     `json:"effect_end_index"`
	IsNew            bool    `json:"is_new"`
}

// Answer is the single selected answer for an example.
type Answer struct {
	Text       string `json:"text"`
	CauseText  string `json:"cause_text"`
	EffectText string `json:"effect_text"`
}

// Report is the terminal artifact for one example: the selected answer
// plus the full n-best list.
type Report struct {
	ExampleID string
	Answer    Answer
	// Selected is the n-best rank the answer was taken from.
	Selected int
	NBest    []Entry
}

// ProcessExample runs the full pipeline for one example: candidate
// generation over each of its chunks, dedup and ranking, text
// materialization, softmax probabilities, novelty flags, and answer
// selection. scores maps chunk unique ids to their score arrays.
func ProcessExample(ex Example, scores map[int64]ScoreSet, cfg Config) (Report, error) {
	var candidates []Candidate
	for i, f := range ex.Features {
		set, ok := scores[f.UniqueID]
		if !ok {
			return Report{}, fmt.Errorf("example %s: no scores for chunk %d", ex.ID, f.UniqueID)
		}
		candidates = append(candidates, generateCandidates(i, f, set, cfg)...)
	}

	nbest := materialize(rankCandidates(candidates), ex.Features, ex, cfg.NBestSize)
	if len(nbest) == 0 {
		nbest = append(nbest, emptySentinel())
	}

	totals := make([]float64, len(nbest))
	for i, n := range nbest {
		totals[i] = n.Total()
	}
	probs := softmax(totals)

	entries := make([]Entry, 0, len(nbest))
	var priorSpans []SpanCombination
	for i, n := range nbest {
		span := SpanCombination{
			CauseStart:  n.CauseStart,
			CauseEnd:    n.CauseEnd,
			EffectStart: n.EffectStart,
			EffectEnd:   n.EffectEnd,
		}
		isNew := true
		for _, prior := range priorSpans {
			if span.Overlaps(prior) {
				isNew = false
				break
			}
		}
		priorSpans = append(priorSpans, span)
		entries = append(entries, Entry{
			Text:             ex.ContextText,
			Probability:      probs[i],
			CauseText:        n.CauseText,
			CauseStartIndex:  n.CauseStart,
			CauseEndIndex:    n.CauseEnd,
			CauseStartScore:  n.CauseStartScore,
			CauseEndScore:    n.CauseEndScore,
			EffectText:       n.EffectText,
			EffectStartScore: n.EffectStartScore,
			EffectEndScore:   n.EffectEndScore,
			EffectStartIndex: n.EffectStart,
			EffectEndIndex:   n.EffectEnd,
			IsNew:            isNew,
		})
	}

	selected, err := answerIndex(ex.ID, len(entries), cfg)
	if err != nil {
		return Report{}, err
	}
	chosen := entries[selected]
	return Report{
		ExampleID: ex.ID,
		Answer: Answer{
			Text:       chosen.Text,
			CauseText:  chosen.CauseText,
			EffectText: chosen.EffectText,
		},
		Selected: selected,
		NBest:    entries,
	}, nil
}

// answerIndex picks the n-best rank of the official answer. The default
// is rank 0. With ordinal selection enabled and an example id of the
// form "base.segment.N", N is a 1-based ordinal into the n-best list
// (0 also selects the top entry). An ordinal beyond the list is an
// error rather than a silent clamp.
func answerIndex(exampleID string, nbestLen int, cfg Config) (int, error) {
	if !cfg.OrdinalSelection || strings.Count(exampleID, ".") != 2 {
		return 0, nil
	}
	parts := strings.Split(exampleID, ".")
	ordinal, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0, fmt.Errorf("example %s: ordinal suffix is not a number: %w", exampleID, err)
	}
	if ordinal > 0 {
		ordinal--
	}
	if ordinal < 0 || ordinal >= nbestLen {
		return 0, fmt.Errorf("example %s: ordinal %s selects rank %d but only %d predictions exist",
			exampleID, parts[len(parts)-1], ordinal, nbestLen)
	}
	return ordinal, nil
}

// Run processes every example in order. Examples are independent; only
// the order inside one example's n-best list is significant.
func Run(examples []Example, scores map[int64]ScoreSet, cfg Config) ([]Report, error) {
	reports := make([]Report, 0, len(examples))
	for _, ex := range examples {
		report, err := ProcessExample(ex, scores, cfg)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
