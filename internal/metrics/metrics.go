// Package metrics scores predicted cause/effect spans against reference
// annotations. Each example's text is encoded as one label per
// whitespace token (cause, effect, or neither); precision, recall and
// F1 are support-weighted over all tokens, and exact match is the
// fraction of examples whose full label sequence matches.
package metrics

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultAlphabet is the 3-symbol label alphabet: outside, cause,
// effect.
var DefaultAlphabet = []string{"-", "C", "E"}

const (
	labelOutside = "-"
	labelCause   = "C"
	labelEffect  = "E"
)

// Labeled is one example with its cause/effect annotation (reference or
// predicted).
type Labeled struct {
	ID     string
	Text   string
	Cause  string
	Effect string
}

// Result holds the aggregate scores of one evaluation.
type Result struct {
	Precision  float64
	Recall     float64
	F1         float64
	ExactMatch float64
}

// Evaluate compares predictions against references. Both slices must be
// aligned: same length, same text per position; anything else indicates
// upstream corruption and is returned as an error.
func Evaluate(refs, preds []Labeled, alphabet []string) (Result, error) {
	if len(refs) != len(preds) {
		return Result{}, fmt.Errorf("reference/prediction count mismatch: %d vs %d", len(refs), len(preds))
	}

	type counts struct{ tp, fp, fn int }
	perLabel := make(map[string]*counts, len(alphabet))
	for _, l := range alphabet {
		perLabel[l] = &counts{}
	}

	exactMatches := 0
	for i := range refs {
		refText := strings.TrimLeftFunc(refs[i].Text, unicode.IsSpace)
		predText := strings.TrimLeftFunc(preds[i].Text, unicode.IsSpace)
		if refText != predText {
			return Result{}, fmt.Errorf("example %s: reference text does not match prediction text", refs[i].ID)
		}

		refLabels := Encode(refs[i].Text, refs[i].Cause, refs[i].Effect)
		predLabels := Encode(preds[i].Text, preds[i].Cause, preds[i].Effect)

		exact := len(refLabels) == len(predLabels)
		for j := range refLabels {
			ref, pred := refLabels[j], predLabels[j]
			if ref == pred {
				perLabel[ref].tp++
			} else {
				if c, ok := perLabel[ref]; ok {
					c.fn++
				}
				if c, ok := perLabel[pred]; ok {
					c.fp++
				}
				exact = false
			}
		}
		if exact {
			exactMatches++
		}
	}

	var result Result
	var totalSupport int
	for _, l := range alphabet {
		c := perLabel[l]
		support := c.tp + c.fn
		if support == 0 {
			continue
		}
		var precision, recall, f1 float64
		if c.tp+c.fp > 0 {
			precision = float64(c.tp) / float64(c.tp+c.fp)
		}
		recall = float64(c.tp) / float64(support)
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		result.Precision += precision * float64(support)
		result.Recall += recall * float64(support)
		result.F1 += f1 * float64(support)
		totalSupport += support
	}
	if totalSupport > 0 {
		result.Precision /= float64(totalSupport)
		result.Recall /= float64(totalSupport)
		result.F1 /= float64(totalSupport)
	}
	if len(refs) > 0 {
		result.ExactMatch = float64(exactMatches) / float64(len(refs))
	}
	return result, nil
}

// Encode labels each whitespace token of text: C if the token lies in
// the cause substring, E if in the effect substring, - otherwise.
// Leading whitespace is stripped from all three inputs first.
func Encode(text, cause, effect string) []string {
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	cause = strings.TrimLeftFunc(cause, unicode.IsSpace)
	effect = strings.TrimLeftFunc(effect, unicode.IsSpace)

	causeStart, causeEnd := substringSpan(text, cause)
	effectStart, effectEnd := substringSpan(text, effect)

	var labels []string
	for _, tok := range tokenSpans(text) {
		switch {
		case tok.start < causeEnd && tok.end > causeStart:
			labels = append(labels, labelCause)
		case tok.start < effectEnd && tok.end > effectStart:
			labels = append(labels, labelEffect)
		default:
			labels = append(labels, labelOutside)
		}
	}
	return labels
}

// substringSpan locates s inside text and returns its [start, end) byte
// range, or an empty range when s is empty or absent.
func substringSpan(text, s string) (int, int) {
	if s == "" {
		return 0, 0
	}
	start := strings.Index(text, s)
	if start < 0 {
		return 0, 0
	}
	return start, start + len(s)
}

type tokenSpan struct {
	start, end int
}

// tokenSpans returns the [start, end) byte ranges of the whitespace
// separated tokens of text.
func tokenSpans(text string) []tokenSpan {
	var spans []tokenSpan
	start := -1
	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, tokenSpan{start, i})
				start = -1
			}
		} else if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, tokenSpan{start, len(text)})
	}
	return spans
}
