package extract

// extendToSentences applies the optional widening heuristics to a valid
// cause/effect pair. The two policies are mutually exclusive for a
// given candidate:
//
//   - full-sentence: when cause and effect touch disjoint sentence
//     sets, each span is widened to the full extent of its sentences.
//   - shared-sentence: when both spans touch exactly one sentence and
//     it is the same one, the earlier span's start is pulled back to the
//     sentence start and the later span's end is pushed to the sentence
//     end, so together they cover the sentence without overlapping.
//
// Both require at least one sentence boundary in the chunk; otherwise
// the spans pass through unchanged.
func extendToSentences(cause, effect Span, f Feature, cfg Config) (Span, Span) {
	if !cfg.FullSentenceHeuristic && !cfg.SharedSentenceHeuristic {
		return cause, effect
	}
	if len(f.SentenceOffsets) == 0 {
		return cause, effect
	}

	// Sentence i spans the half-open token range
	// [offsets[i], offsets[i+1]). The trailing separator token carries
	// no word mapping and is never part of a sentence, so the last
	// extent stops before it.
	offsets := make([]int, 0, len(f.SentenceOffsets)+2)
	offsets = append(offsets, cfg.LeadingSpecialTokens)
	for _, b := range f.SentenceOffsets {
		offsets = append(offsets, b+1)
	}
	offsets = append(offsets, len(f.Tokens)-1)

	causeSents := touchedSentences(cause, offsets)
	effectSents := touchedSentences(effect, offsets)
	if len(causeSents) == 0 || len(effectSents) == 0 {
		return cause, effect
	}

	if cfg.FullSentenceHeuristic && disjointSets(causeSents, effectSents) {
		cause = sentenceExtent(causeSents, offsets)
		effect = sentenceExtent(effectSents, offsets)
		return cause, effect
	}

	if cfg.SharedSentenceHeuristic &&
		!disjointSets(causeSents, effectSents) &&
		len(causeSents) == 1 && len(effectSents) == 1 {
		if cause.Start < effect.Start {
			cause.Start = offsets[causeSents[0]]
			effect.End = offsets[effectSents[0]+1] - 1
		} else {
			effect.Start = offsets[effectSents[0]]
			cause.End = offsets[causeSents[0]+1] - 1
		}
	}
	return cause, effect
}

// touchedSentences returns the sentence indices whose extent overlaps
// the span, in ascending order.
func touchedSentences(s Span, offsets []int) []int {
	var touched []int
	for i := 0; i < len(offsets)-1; i++ {
		if s.Start < offsets[i+1] && s.End >= offsets[i] {
			touched = append(touched, i)
		}
	}
	return touched
}

// sentenceExtent returns the span covering the full extent of the given
// sentences (which are ascending and contiguous for any real span).
func sentenceExtent(sents []int, offsets []int) Span {
	return Span{
		Start: offsets[sents[0]],
		End:   offsets[sents[len(sents)-1]+1] - 1,
	}
}

func disjointSets(a, b []int) bool {
	seen := make(map[int]bool, len(a))
	for _, x := range a {
		seen[x] = true
	}
	for _, x := range b {
		if seen[x] {
			return false
		}
	}
	return true
}
