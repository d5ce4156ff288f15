package extract

import "sort"

// rankCandidates collapses value-equal candidates and orders the result
// by descending score sum. Deduplication keeps the first occurrence and
// the sort is stable, so ties preserve generation order and the whole
// step is deterministic.
func rankCandidates(cands []Candidate) []Candidate {
	seen := make(map[key]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		k := c.dedupeKey()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total() > out[j].Total()
	})
	return out
}
