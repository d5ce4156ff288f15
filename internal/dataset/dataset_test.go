package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sievelabs/causalspan/internal/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplesJSON = `{
  "examples": [
    {
      "example_id": "docs.1",
      "context_text": "The drought caused famine",
      "cause_text": "The drought",
      "effect_text": "famine",
      "word_to_char_offset": [0, 4, 12, 19],
      "features": [
        {
          "unique_id": 1000,
          "tokens": ["[CLS]", "The", "drought", "caused", "famine", "[SEP]"],
          "token_to_orig_map": {"1": 0, "2": 1, "3": 2, "4": 3},
          "token_is_max_context": {"1": true, "2": true, "3": true, "4": true},
          "sentence_2_offset": null,
          "sentence_3_offset": null
        }
      ]
    }
  ]
}`

const scoresJSON = `{
  "1000": {
    "start_cause_scores": [0, 9, 1, 0, 0, 0],
    "end_cause_scores": [0, 1, 9, 0, 0, 0],
    "start_effect_scores": [0, 0, 0, 1, 9, 0],
    "end_effect_scores": [0, 0, 0, 0, 9, 1]
  }
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadExamples(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples.json", examplesJSON))
	require.NoError(t, err)
	require.Len(t, examples, 1)

	ex := examples[0]
	assert.Equal(t, "docs.1", ex.ID)
	assert.Equal(t, "The drought caused famine", ex.ContextText)
	assert.Equal(t, "The drought", ex.CauseText)
	assert.Equal(t, []int{0, 4, 12, 19}, ex.WordToCharOffset)

	require.Len(t, ex.Features, 1)
	f := ex.Features[0]
	assert.Equal(t, int64(1000), f.UniqueID)
	assert.Len(t, f.Tokens, 6)
	assert.Equal(t, 1, f.TokenToOrigMap[2])
	assert.True(t, f.TokenIsMaxContext[4])
	assert.Empty(t, f.SentenceOffsets)
}

func TestLoadExamples_sentenceOffsets(t *testing.T) {
	const withOffsets = `{
  "examples": [
    {
      "example_id": "docs.2",
      "context_text": "a b",
      "word_to_char_offset": [0, 2],
      "features": [
        {
          "unique_id": 1,
          "tokens": ["[CLS]", "a", "b", "[SEP]"],
          "token_to_orig_map": {"1": 0, "2": 1},
          "token_is_max_context": {"1": true, "2": true},
          "sentence_2_offset": 1,
          "sentence_3_offset": 2
        }
      ]
    }
  ]
}`
	examples, err := LoadExamples(writeFile(t, "examples.json", withOffsets))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, examples[0].Features[0].SentenceOffsets)
}

func TestLoadExamples_badFile(t *testing.T) {
	_, err := LoadExamples(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadExamples(writeFile(t, "bad.json", "{not json"))
	assert.Error(t, err)
}

func TestLoadScores(t *testing.T) {
	scores, err := LoadScores(writeFile(t, "scores.json", scoresJSON))
	require.NoError(t, err)
	require.Contains(t, scores, int64(1000))
	set := scores[1000]
	assert.Len(t, set.StartCause, 6)
	assert.Equal(t, 9.0, set.StartCause[1])
	assert.Equal(t, 9.0, set.EndEffect[4])
}

func TestLoadScores_badChunkID(t *testing.T) {
	_, err := LoadScores(writeFile(t, "scores.json", `{"abc": {}}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad chunk id")
}

func TestValidate(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples.json", examplesJSON))
	require.NoError(t, err)
	scores, err := LoadScores(writeFile(t, "scores.json", scoresJSON))
	require.NoError(t, err)

	assert.NoError(t, Validate(examples, scores))
}

func TestValidate_missingScoreSet(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples.json", examplesJSON))
	require.NoError(t, err)

	err = Validate(examples, map[int64]extract.ScoreSet{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no score set")
}

func TestValidate_lengthMismatch(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples.json", examplesJSON))
	require.NoError(t, err)

	short := extract.ScoreSet{
		StartCause:  []float64{0, 1},
		EndCause:    make([]float64, 6),
		StartEffect: make([]float64, 6),
		EndEffect:   make([]float64, 6),
	}
	err = Validate(examples, map[int64]extract.ScoreSet{1000: short})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start_cause_scores")
}

func TestValidate_tokenMapOutOfBounds(t *testing.T) {
	examples, err := LoadExamples(writeFile(t, "examples.json", examplesJSON))
	require.NoError(t, err)
	examples[0].Features[0].TokenToOrigMap[4] = 99

	scores, err := LoadScores(writeFile(t, "scores.json", scoresJSON))
	require.NoError(t, err)

	err = Validate(examples, scores)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word table")
}
