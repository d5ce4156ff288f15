package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessExample(t *testing.T) {
	ex := droughtExample()
	scores := map[int64]ScoreSet{1000: droughtScores()}
	cfg := testConfig()

	report, err := ProcessExample(ex, scores, cfg)
	require.NoError(t, err)

	assert.Equal(t, "docs.1", report.ExampleID)
	require.NotEmpty(t, report.NBest)
	assert.LessOrEqual(t, len(report.NBest), cfg.NBestSize)

	top := report.NBest[0]
	assert.Equal(t, "The drought", top.CauseText)
	assert.Equal(t, "famine", top.EffectText)
	assert.Equal(t, ex.ContextText, top.Text)
	assert.True(t, top.IsNew, "first entry has nothing to overlap with")

	assert.Equal(t, "The drought", report.Answer.CauseText)
	assert.Equal(t, "famine", report.Answer.EffectText)
	assert.Equal(t, 0, report.Selected)

	var sum float64
	for _, e := range report.NBest {
		sum += e.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9, "probabilities must sum to 1")
}

func TestProcessExample_noCandidatesFallsBackToSentinel(t *testing.T) {
	ex := droughtExample()
	scores := map[int64]ScoreSet{1000: {}}

	report, err := ProcessExample(ex, scores, testConfig())
	require.NoError(t, err)

	require.Len(t, report.NBest, 1)
	entry := report.NBest[0]
	assert.Equal(t, "empty", entry.CauseText)
	assert.Equal(t, "empty", entry.EffectText)
	assert.Equal(t, 0.0, entry.CauseStartScore)
	assert.InDelta(t, 1.0, entry.Probability, 1e-9)
	assert.True(t, entry.IsNew)
	assert.Equal(t, "empty", report.Answer.CauseText)
}

func TestProcessExample_missingScores(t *testing.T) {
	ex := droughtExample()
	_, err := ProcessExample(ex, map[int64]ScoreSet{}, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scores for chunk")
}

func TestProcessExample_novelOverlapFlags(t *testing.T) {
	ex := twoSentenceExample()
	scores := map[int64]ScoreSet{2000: {
		StartCause:  []float64{0, 9, 8, 0, 0, 0, 0, 0, 0},
		EndCause:    []float64{0, 0, 8, 9, 0, 0, 0, 0, 0},
		StartEffect: []float64{0, 0, 0, 0, 0, 9, 8, 0, 0},
		EndEffect:   []float64{0, 0, 0, 0, 0, 0, 8, 9, 0},
	}}
	cfg := testConfig()
	cfg.NBestSize = 4

	report, err := ProcessExample(ex, scores, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, report.NBest)

	assert.True(t, report.NBest[0].IsNew)
	// The remaining entries shuffle the same two footprints around and
	// must not be flagged novel.
	for i, e := range report.NBest[1:] {
		assert.False(t, e.IsNew, "entry %d should overlap an earlier one", i+1)
	}
}

func TestProcessExample_fullSentenceWidening(t *testing.T) {
	ex := twoSentenceExample()
	// cause peaks mid-sentence-0 ("No rain fell"), effect mid-sentence-1
	// ("Crops died"): both must widen to their full sentences and still
	// materialize to text.
	scores := map[int64]ScoreSet{2000: {
		StartCause:  []float64{0, 9, 1, 0, 0, 0, 0, 0, 0},
		EndCause:    []float64{0, 0, 1, 9, 0, 0, 0, 0, 0},
		StartEffect: []float64{0, 0, 0, 0, 0, 9, 1, 0, 0},
		EndEffect:   []float64{0, 0, 0, 0, 0, 0, 9, 1, 0},
	}}
	cfg := testConfig()
	cfg.FullSentenceHeuristic = true

	report, err := ProcessExample(ex, scores, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, report.NBest)

	top := report.NBest[0]
	assert.Equal(t, "No rain fell .", top.CauseText)
	assert.Equal(t, "Crops died everywhere", top.EffectText)

	for i, e := range report.NBest {
		assert.GreaterOrEqual(t, e.CauseStartIndex, 0, "entry %d", i)
		assert.Less(t, e.CauseEndIndex, len(ex.WordToCharOffset), "entry %d", i)
		assert.GreaterOrEqual(t, e.EffectStartIndex, 0, "entry %d", i)
		assert.Less(t, e.EffectEndIndex, len(ex.WordToCharOffset), "entry %d", i)
	}
}

func TestProcessExample_sharedSentenceWidening(t *testing.T) {
	ex := twoSentenceExample()
	// cause and effect both inside the last sentence: the effect's end
	// widens to the sentence end, which is the last content word.
	scores := map[int64]ScoreSet{2000: {
		StartCause:  []float64{0, 0, 0, 0, 0, 9, 0, 0, 0},
		EndCause:    []float64{0, 0, 0, 0, 0, 9, 0, 0, 0},
		StartEffect: []float64{0, 0, 0, 0, 0, 0, 9, 0, 0},
		EndEffect:   []float64{0, 0, 0, 0, 0, 0, 9, 0, 0},
	}}
	cfg := testConfig()
	cfg.SharedSentenceHeuristic = true

	report, err := ProcessExample(ex, scores, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, report.NBest)

	top := report.NBest[0]
	assert.Equal(t, "Crops", top.CauseText)
	assert.Equal(t, "died everywhere", top.EffectText)
	assert.Equal(t, 6, top.EffectEndIndex, "effect ends on the last word")
}

func TestAnswerIndex(t *testing.T) {
	cfg := testConfig()
	cfg.OrdinalSelection = true

	tests := []struct {
		name     string
		id       string
		nbestLen int
		want     int
		wantErr  bool
	}{
		{"no suffix", "docs", 5, 0, false},
		{"one segment", "docs.7", 5, 0, false},
		{"ordinal two", "docs.7.2", 5, 1, false},
		{"ordinal one", "docs.7.1", 5, 0, false},
		{"ordinal zero stays zero", "docs.7.0", 5, 0, false},
		{"out of range", "docs.7.9", 5, 0, true},
		{"not a number", "docs.7.x", 5, 0, true},
	}
	for _, tt := range tests {
		got, err := answerIndex(tt.id, tt.nbestLen, cfg)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestAnswerIndex_disabled(t *testing.T) {
	got, err := answerIndex("docs.7.3", 5, testConfig())
	require.NoError(t, err)
	assert.Equal(t, 0, got, "ordinal suffix is ignored when selection is off")
}

func TestProcessExample_ordinalSelectsLowerRank(t *testing.T) {
	ex := twoSentenceExample()
	ex.ID = "docs.2.2"
	scores := map[int64]ScoreSet{2000: {
		StartCause:  []float64{0, 9, 0, 8, 0, 0, 0, 0, 0},
		EndCause:    []float64{0, 9, 0, 8, 0, 0, 0, 0, 0},
		StartEffect: []float64{0, 0, 0, 0, 0, 9, 0, 8, 0},
		EndEffect:   []float64{0, 0, 0, 0, 0, 9, 0, 8, 0},
	}}
	cfg := testConfig()
	cfg.OrdinalSelection = true

	report, err := ProcessExample(ex, scores, cfg)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(report.NBest), 2)

	assert.Equal(t, 1, report.Selected)
	assert.Equal(t, report.NBest[1].CauseText, report.Answer.CauseText)
	assert.Equal(t, report.NBest[1].EffectText, report.Answer.EffectText)
}

func TestRun_processesAllExamples(t *testing.T) {
	examples := []Example{droughtExample(), twoSentenceExample()}
	scores := map[int64]ScoreSet{
		1000: droughtScores(),
		2000: uniformScores(9),
	}

	reports, err := Run(examples, scores, testConfig())
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "docs.1", reports[0].ExampleID)
	assert.Equal(t, "docs.2", reports[1].ExampleID)
	for _, r := range reports {
		assert.NotEmpty(t, r.NBest, "every example gets at least one prediction")
		var sum float64
		for _, e := range r.NBest {
			sum += e.Probability
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestRun_probabilitiesAreFinite(t *testing.T) {
	ex := droughtExample()
	scores := droughtScores()
	for i := range scores.StartCause {
		scores.StartCause[i] += 5000 // extreme raw scores
	}
	reports, err := Run([]Example{ex}, map[int64]ScoreSet{1000: scores}, testConfig())
	require.NoError(t, err)
	for _, e := range reports[0].NBest {
		assert.False(t, math.IsNaN(e.Probability) || math.IsInf(e.Probability, 0))
	}
}
