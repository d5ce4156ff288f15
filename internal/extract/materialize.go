package extract

import "strings"

// NBest is one materialized candidate: original text for both spans,
// the original word-index bounds they came from, and the four scores.
type NBest struct {
	CauseText  string
	CauseStart int
	CauseEnd   int

	EffectText  string
	EffectStart int
	EffectEnd   int

	CauseStartScore  float64
	CauseEndScore    float64
	EffectStartScore float64
	EffectEndScore   float64
}

// Total is the entry's ranking score.
func (n NBest) Total() float64 {
	return n.CauseStartScore + n.CauseEndScore + n.EffectStartScore + n.EffectEndScore
}

// emptySentinel is the placeholder entry emitted when an example yields
// no valid candidates at all, so every example has at least one answer.
func emptySentinel() NBest {
	return NBest{CauseText: "empty", EffectText: "empty"}
}

// materialize walks ranked candidates and maps them back to original
// text, stopping once nBestSize entries are accepted. A candidate whose
// cause starts at position 0 is the empty-answer sentinel: both texts
// are forced empty and its bounds pass through unchanged. A candidate
// whose cause text and effect text were both seen before is skipped.
func materialize(ranked []Candidate, features []Feature, ex Example, nBestSize int) []NBest {
	seenCause := make(map[string]bool)
	seenEffect := make(map[string]bool)

	var nbest []NBest
	for _, c := range ranked {
		if len(nbest) >= nBestSize {
			break
		}
		entry := NBest{
			CauseStartScore:  c.CauseStartScore,
			CauseEndScore:    c.CauseEndScore,
			EffectStartScore: c.EffectStartScore,
			EffectEndScore:   c.EffectEndScore,
		}
		if c.CauseStart > 0 {
			f := features[c.FeatureIndex]
			causeText, causeStart, causeEnd, ok := originalText(f, ex, Span{c.CauseStart, c.CauseEnd})
			if !ok {
				continue
			}
			effectText, effectStart, effectEnd, ok := originalText(f, ex, Span{c.EffectStart, c.EffectEnd})
			if !ok {
				continue
			}
			if seenCause[causeText] && seenEffect[effectText] {
				continue
			}
			seenCause[causeText] = true
			seenEffect[effectText] = true
			entry.CauseText = causeText
			entry.CauseStart = causeStart
			entry.CauseEnd = causeEnd
			entry.EffectText = effectText
			entry.EffectStart = effectStart
			entry.EffectEnd = effectEnd
		} else {
			seenCause[""] = true
			seenEffect[""] = true
			entry.CauseStart = c.CauseStart
			entry.CauseEnd = c.CauseEnd
			entry.EffectStart = c.EffectStart
			entry.EffectEnd = c.EffectEnd
		}
		nbest = append(nbest, entry)
	}
	return nbest
}

// originalText maps a chunk-token span back to the example's original
// text: token position -> original word index -> character offset. The
// slice runs to the next word's start, or to the end of the text for
// the last word, and is trimmed of surrounding whitespace. A span whose
// endpoint has no word mapping, such as a special token, cannot be
// materialized and reports ok false.
func originalText(f Feature, ex Example, s Span) (text string, wordStart, wordEnd int, ok bool) {
	wordStart, startOK := f.TokenToOrigMap[s.Start]
	wordEnd, endOK := f.TokenToOrigMap[s.End]
	if !startOK || !endOK || wordStart > wordEnd {
		return "", 0, 0, false
	}

	charStart := ex.WordToCharOffset[wordStart]
	charEnd := len(ex.ContextText)
	if wordEnd < len(ex.WordToCharOffset)-1 {
		charEnd = ex.WordToCharOffset[wordEnd+1]
	}
	return strings.TrimSpace(ex.ContextText[charStart:charEnd]), wordStart, wordEnd, true
}

// SpanCombination is the overlap-comparison key used only for novelty
// flags. It is deliberately distinct from candidate deduplication,
// which compares positions for value equality.
type SpanCombination struct {
	CauseStart  int
	CauseEnd    int
	EffectStart int
	EffectEnd   int
}

// Overlaps reports whether two combinations describe "the same answer":
// their cause footprints overlap and their effect footprints overlap,
// where an endpoint of one combination's cause landing inside the
// other's effect interval (and vice versa) also counts as overlap.
func (s SpanCombination) Overlaps(o SpanCombination) bool {
	causeOverlap := within(s.CauseStart, s.CauseEnd, o.CauseStart) ||
		within(s.CauseStart, s.CauseEnd, o.CauseEnd) ||
		within(s.EffectStart, s.EffectEnd, o.CauseStart) ||
		within(s.EffectStart, s.EffectEnd, o.CauseEnd)
	effectOverlap := within(s.EffectStart, s.EffectEnd, o.EffectStart) ||
		within(s.EffectStart, s.EffectEnd, o.EffectEnd) ||
		within(s.CauseStart, s.CauseEnd, o.EffectStart) ||
		within(s.CauseStart, s.CauseEnd, o.EffectEnd)
	return causeOverlap && effectOverlap
}

func within(lo, hi, x int) bool { return lo <= x && x <= hi }
