// Package extract turns per-token cause/effect scores into ranked,
// non-overlapping cause and effect text spans. The pipeline is pure: it
// takes explicit configuration and input data and returns structured
// reports, with no I/O of its own.
package extract

// Config holds the tuning parameters for one extraction run.
type Config struct {
	NBestSize       int // number of candidate positions per score array, and the n-best cap
	MaxAnswerLength int // maximum span length, in tokens

	// SentenceBoundaryHeuristic splits a candidate span at a sentence
	// boundary that falls strictly inside it.
	SentenceBoundaryHeuristic bool
	// FullSentenceHeuristic widens cause and effect to their full
	// sentences when they live in disjoint sentence sets.
	FullSentenceHeuristic bool
	// SharedSentenceHeuristic widens the earlier span when cause and
	// effect share a single sentence.
	SharedSentenceHeuristic bool

	// OrdinalSelection enables the answer override parsed from the
	// example id's trailing ".N" segment.
	OrdinalSelection bool

	// LeadingSpecialTokens is the chunk position of the first content
	// token (tokens before it are model specials). Used as the start of
	// the first sentence by the extension heuristics.
	LeadingSpecialTokens int
}

// DefaultConfig returns the parameters used when no flags are given.
func DefaultConfig() Config {
	return Config{
		NBestSize:            5,
		MaxAnswerLength:      160,
		LeadingSpecialTokens: 2,
	}
}

// Feature is one tokenized window ("chunk") over an example's text.
// Long documents are split into overlapping windows; TokenIsMaxContext
// marks the positions for which this window is the authoritative one.
type Feature struct {
	UniqueID int64
	Tokens   []string

	// TokenToOrigMap maps a chunk-local token position to the index of
	// the original word it came from. Only content tokens are mapped.
	TokenToOrigMap map[int]int
	// TokenIsMaxContext is true for positions this chunk is
	// authoritative for.
	TokenIsMaxContext map[int]bool

	// SentenceOffsets holds up to two token positions marking sentence
	// boundaries inside the chunk, in ascending order.
	SentenceOffsets []int
}

// Example is one input document with its tokenized windows.
type Example struct {
	ID          string
	ContextText string

	// CauseText and EffectText are the reference annotations, present
	// only in evaluation datasets.
	CauseText  string
	EffectText string

	// WordToCharOffset maps a word index to the character offset of the
	// word's first character in ContextText.
	WordToCharOffset []int

	Features []Feature
}

// ScoreSet holds the four per-position score arrays the upstream model
// produced for one chunk. All four are the chunk's token count long.
type ScoreSet struct {
	StartCause  []float64
	EndCause    []float64
	StartEffect []float64
	EndEffect   []float64
}

// Span is a closed [Start, End] interval of chunk token positions.
type Span struct {
	Start int
	End   int
}

// Len returns the number of tokens the span covers.
func (s Span) Len() int { return s.End - s.Start + 1 }

// Candidate is one raw span-pair prediction for a chunk, before
// materialization. Candidates are value types: two with equal positions
// are the same prediction (scores are derived from positions).
type Candidate struct {
	FeatureIndex int

	CauseStart  int
	CauseEnd    int
	EffectStart int
	EffectEnd   int

	CauseStartScore  float64
	CauseEndScore    float64
	EffectStartScore float64
	EffectEndScore   float64
}

// Total is the candidate's ranking score.
func (c Candidate) Total() float64 {
	return c.CauseStartScore + c.CauseEndScore + c.EffectStartScore + c.EffectEndScore
}

// key identifies a candidate for deduplication: chunk plus the four
// positions. Kept separate from SpanCombination, which compares by
// interval overlap rather than value equality.
type key struct {
	feature                int
	causeStart, causeEnd   int
	effectStart, effectEnd int
}

func (c Candidate) dedupeKey() key {
	return key{c.FeatureIndex, c.CauseStart, c.CauseEnd, c.EffectStart, c.EffectEnd}
}
