package extract

import "iter"

// spanCandidates enumerates candidate spans from two top-K position
// sets: every (start, end) pair in order, with a pair replaced by its
// two sub-spans when split is enabled and a sentence boundary falls
// strictly inside it. Lazy, so callers can compose filters without
// building the full cross product up front.
func spanCandidates(starts, ends, boundaries []int, split bool) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		for _, start := range starts {
			for _, end := range ends {
				pairs := [][2]int{{start, end}}
				if split {
					for _, b := range boundaries {
						if start < b && b < end {
							pairs = [][2]int{{start, b}, {b + 1, end}}
						}
					}
				}
				for _, p := range pairs {
					if !yield(Span{Start: p[0], End: p[1]}) {
						return
					}
				}
			}
		}
	}
}

// spansConflict reports whether either span's start endpoint falls
// inside the other span. This is the disjointness rule for cause and
// effect; it deliberately ignores end-only intersections.
func spansConflict(a, b Span) bool {
	if a.Start <= b.Start && b.Start <= a.End {
		return true
	}
	if b.Start <= a.Start && a.Start <= b.End {
		return true
	}
	return false
}

// mappedSpan reports whether both endpoints carry an original-word
// mapping.
func (f Feature) mappedSpan(s Span) bool {
	_, startOK := f.TokenToOrigMap[s.Start]
	_, endOK := f.TokenToOrigMap[s.End]
	return startOK && endOK
}

// validSpan reports whether a span can be an answer: within the token
// range, properly ordered, within the length cap, anchored on mapped
// content tokens, and starting at a position this chunk is
// authoritative for.
func (f Feature) validSpan(s Span, maxAnswerLength int) bool {
	if s.Start >= len(f.Tokens) || s.End >= len(f.Tokens) {
		return false
	}
	if !f.mappedSpan(s) {
		return false
	}
	if !f.TokenIsMaxContext[s.Start] {
		return false
	}
	if s.End < s.Start {
		return false
	}
	return s.Len() <= maxAnswerLength
}

// generateCandidates enumerates every structurally valid cause/effect
// span pair for one chunk: the cross product of the top-K start/end
// positions of the four score arrays, filtered for validity and
// optionally widened by the sentence extension heuristics. Scores are
// read at the final reported boundaries, after any widening.
func generateCandidates(featureIndex int, f Feature, scores ScoreSet, cfg Config) []Candidate {
	split := cfg.SentenceBoundaryHeuristic && len(f.SentenceOffsets) > 0

	causeStarts := bestIndexes(scores.StartCause, cfg.NBestSize)
	causeEnds := bestIndexes(scores.EndCause, cfg.NBestSize)
	effectStarts := bestIndexes(scores.StartEffect, cfg.NBestSize)
	effectEnds := bestIndexes(scores.EndEffect, cfg.NBestSize)

	var out []Candidate
	for cause := range spanCandidates(causeStarts, causeEnds, f.SentenceOffsets, split) {
		for effect := range spanCandidates(effectStarts, effectEnds, f.SentenceOffsets, split) {
			if spansConflict(cause, effect) {
				continue
			}
			if !f.validSpan(cause, cfg.MaxAnswerLength) || !f.validSpan(effect, cfg.MaxAnswerLength) {
				continue
			}
			cause, effect := extendToSentences(cause, effect, f, cfg)
			if !f.mappedSpan(cause) || !f.mappedSpan(effect) {
				continue
			}
			out = append(out, Candidate{
				FeatureIndex:     featureIndex,
				CauseStart:       cause.Start,
				CauseEnd:         cause.End,
				EffectStart:      effect.Start,
				EffectEnd:        effect.End,
				CauseStartScore:  scores.StartCause[cause.Start],
				CauseEndScore:    scores.EndCause[cause.End],
				EffectStartScore: scores.StartEffect[effect.Start],
				EffectEndScore:   scores.EndEffect[effect.End],
			})
		}
	}
	return out
}
