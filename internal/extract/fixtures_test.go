package extract

// Shared fixtures: a single-sentence example ("The drought caused
// famine") and a two-sentence example, both with one chunk whose
// special tokens sit at positions 0 and len-1.

// droughtExample returns an example whose chunk tokenizes to
// [CLS, The, drought, caused, famine, SEP].
func droughtExample() Example {
	return Example{
		ID:          "docs.1",
		ContextText: "The drought caused famine",
		// word starts:  The=0 drought=4 caused=12 famine=19
		WordToCharOffset: []int{0, 4, 12, 19},
		Features: []Feature{
			{
				UniqueID: 1000,
				Tokens:   []string{"[CLS]", "The", "drought", "caused", "famine", "[SEP]"},
				TokenToOrigMap: map[int]int{
					1: 0, 2: 1, 3: 2, 4: 3,
				},
				TokenIsMaxContext: map[int]bool{
					1: true, 2: true, 3: true, 4: true,
				},
			},
		},
	}
}

// droughtScores peaks cause at "The drought" and effect at "famine".
func droughtScores() ScoreSet {
	return ScoreSet{
		StartCause:  []float64{0, 9, 1, 0, 0, 0},
		EndCause:    []float64{0, 1, 9, 0, 0, 0},
		StartEffect: []float64{0, 0, 0, 1, 9, 0},
		EndEffect:   []float64{0, 0, 0, 0, 9, 1},
	}
}

// twoSentenceExample has a boundary after "rain." (token 4):
// [CLS, No, rain, fell, ., Crops, died, everywhere, SEP].
func twoSentenceExample() Example {
	return Example{
		ID:          "docs.2",
		ContextText: "No rain fell . Crops died everywhere",
		// word starts: No=0 rain=3 fell=8 .=13 Crops=15 died=21 everywhere=26
		WordToCharOffset: []int{0, 3, 8, 13, 15, 21, 26},
		Features: []Feature{
			{
				UniqueID: 2000,
				Tokens:   []string{"[CLS]", "No", "rain", "fell", ".", "Crops", "died", "everywhere", "[SEP]"},
				TokenToOrigMap: map[int]int{
					1: 0, 2: 1, 3: 2, 4: 3, 5: 4, 6: 5, 7: 6,
				},
				TokenIsMaxContext: map[int]bool{
					1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true,
				},
				SentenceOffsets: []int{4},
			},
		},
	}
}

func uniformScores(n int) ScoreSet {
	arr := func() []float64 { return make([]float64, n) }
	return ScoreSet{StartCause: arr(), EndCause: arr(), StartEffect: arr(), EndEffect: arr()}
}
