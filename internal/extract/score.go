package extract

import (
	"math"
	"sort"
)

// bestIndexes returns the positions of the n highest scores, highest
// first. Ties keep their original index order (the sort is stable).
func bestIndexes(scores []float64, n int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return scores[idx[i]] > scores[idx[j]]
	})
	if len(idx) > n {
		idx = idx[:n]
	}
	return idx
}

// softmax converts raw scores into probabilities summing to 1. The max
// score is subtracted before exponentiating for numerical stability.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	exps := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		exps[i] = math.Exp(s - max)
		sum += exps[i]
	}
	probs := make([]float64, len(exps))
	for i, e := range exps {
		probs[i] = e / sum
	}
	return probs
}
