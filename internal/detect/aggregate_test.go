package detect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarguard/internal/models"
)

func TestMatchAggregator_Deduplicate(t *testing.T) {
	exact := models.Match{Text: "shared snippet of text", Source: "Paper A", Similarity: 1.0, Type: models.MatchExact}
	weaker := models.Match{Text: "shared snippet of text", Source: "Paper A", Similarity: 0.8, Type: models.MatchParaphrase}
	otherSource := models.Match{Text: "shared snippet of text", Source: "Paper B", Similarity: 0.9, Type: models.MatchParaphrase}

	out := NewMatchAggregator().Deduplicate([]models.Match{exact, weaker, otherSource})

	require.Len(t, out, 2)
	assert.Equal(t, exact, out[0])
	assert.Equal(t, otherSource, out[1])
}

func TestMatchAggregator_DeduplicateUsesSnippetPrefix(t *testing.T) {
	prefix := strings.Repeat("x", dedupPrefixLen)
	a := models.Match{Text: prefix + " first tail", Source: "Paper A"}
	b := models.Match{Text: prefix + " second tail", Source: "Paper A"}

	out := NewMatchAggregator().Deduplicate([]models.Match{a, b})

	require.Len(t, out, 1)
	assert.Equal(t, a, out[0])
}

func TestMatchAggregator_DeduplicateIdempotent(t *testing.T) {
	agg := NewMatchAggregator()
	matches := []models.Match{
		{Text: "first snippet", Source: "A"},
		{Text: "first snippet", Source: "A"},
		{Text: "second snippet", Source: "B"},
	}

	once := agg.Deduplicate(matches)
	twice := agg.Deduplicate(once)

	assert.Equal(t, once, twice)
}

func TestMatchAggregator_ScoreNoMatches(t *testing.T) {
	result := NewMatchAggregator().Score("five words of original text", nil)

	assert.Equal(t, 100.0, result.OriginalityScore)
	assert.Equal(t, 0, result.TotalMatches)
	assert.NotNil(t, result.Matches)
	assert.Empty(t, result.Matches)
	assert.NotNil(t, result.Statistics.MatchesByType)
	assert.Equal(t, 5, result.Statistics.TotalWords)
}

func TestMatchAggregator_ScoreEmptyText(t *testing.T) {
	result := NewMatchAggregator().Score("", nil)

	assert.Equal(t, 0.0, result.OriginalityScore)
	assert.Equal(t, 0, result.Statistics.TotalWords)
	assert.Equal(t, 0.0, result.Statistics.MatchPercentage)
}

func TestMatchAggregator_PenaltyTiers(t *testing.T) {
	tests := []struct {
		name       string
		similarity float64
		score      float64
	}{
		{"high tier at 0.9", 0.9, 89.0},
		{"mid tier at 0.8", 0.8, 94.0},
		{"low tier at 0.7", 0.7, 97.0},
		{"below the lowest tier", 0.69, 99.0},
	}

	text := genWords(100)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := []models.Match{{Text: "word0", Source: "Paper A", Similarity: tt.similarity}}
			result := NewMatchAggregator().Score(text, matches)
			assert.InDelta(t, tt.score, result.OriginalityScore, 1e-9)
		})
	}
}

func TestMatchAggregator_ScoreAccumulatesPenalties(t *testing.T) {
	text := genWords(200)
	matches := []models.Match{
		{Text: "word0 word1", Source: "A", Similarity: 0.95},
		{Text: "word2 word3", Source: "B", Similarity: 0.85},
		{Text: "word4 word5", Source: "C", Similarity: 0.75},
	}

	result := NewMatchAggregator().Score(text, matches)

	// 6 of 200 words matched gives base 97; penalties 10+5+2 land on 80.
	assert.InDelta(t, 80.0, result.OriginalityScore, 1e-9)
	assert.Equal(t, 3, result.TotalMatches)
}

func TestMatchAggregator_ScoreFloorsAtZero(t *testing.T) {
	text := "only three words"
	matches := []models.Match{
		{Text: "only three words and then some more text", Source: "A", Similarity: 0.95},
	}

	result := NewMatchAggregator().Score(text, matches)

	assert.Equal(t, 0.0, result.OriginalityScore)
	// Statistics keep the raw tally even when it exceeds the document.
	assert.Equal(t, 8, result.Statistics.MatchedWords)
	assert.InDelta(t, 266.666, result.Statistics.MatchPercentage, 0.01)
}

func TestMatchAggregator_ScoreRoundedToTwoDecimals(t *testing.T) {
	text := "alpha beta gamma"
	matches := []models.Match{{Text: "alpha", Source: "A", Similarity: 0.5}}

	result := NewMatchAggregator().Score(text, matches)

	// One of three words matched with no tier penalty: 66.666... rounds
	// to 66.67 while the percentage stays unrounded.
	assert.Equal(t, 66.67, result.OriginalityScore)
	assert.InDelta(t, 33.3333, result.Statistics.MatchPercentage, 0.001)
}

func TestMatchAggregator_Statistics(t *testing.T) {
	text := genWords(10)
	matches := []models.Match{
		{Text: "word0 word1 word2", Source: "Paper A", Similarity: 0.9, Type: models.MatchExact},
		{Text: "word3 word4", Source: "Paper A", Similarity: 0.7, Type: models.MatchParaphrase},
		{Text: "word5", Source: "Paper B", Similarity: 0.8, Type: models.MatchParaphrase},
	}

	stats := NewMatchAggregator().Score(text, matches).Statistics

	assert.Equal(t, 10, stats.TotalWords)
	assert.Equal(t, 6, stats.MatchedWords)
	assert.InDelta(t, 60.0, stats.MatchPercentage, 1e-9)
	assert.Equal(t, 2, stats.UniqueSources)
	assert.Equal(t, 0.9, stats.HighestSimilarity)
	assert.InDelta(t, 0.8, stats.AverageSimilarity, 1e-9)
	assert.Equal(t, map[string]int{"exact": 1, "paraphrase": 2}, stats.MatchesByType)
}
