package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholarguard/internal/models"
)

// fakeEmbedder returns a registered vector per text, falling back to a
// shared vector for unregistered texts.
type fakeEmbedder struct {
	vectors  map[string][]float64
	fallback []float64
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if vec, ok := f.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = f.fallback
		}
	}
	return out, nil
}

func (f *fakeEmbedder) Name() string { return "fake-embedder" }

type fakeSearchProvider struct {
	mu      sync.Mutex
	papers  []models.Paper
	err     error
	queries []string
}

func (f *fakeSearchProvider) Search(ctx context.Context, query string, limit int) ([]models.Paper, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if len(f.papers) > limit {
		return f.papers[:limit], nil
	}
	return f.papers, nil
}

func (f *fakeSearchProvider) Name() string { return "fake-search" }

func (f *fakeSearchProvider) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func TestSemanticMatcher_FlagsCloseCandidates(t *testing.T) {
	chunk := Chunk{Text: "neural networks generalize surprisingly well", Start: 10, End: 55, Index: 0}
	paper := models.Paper{
		Title:    "On Generalization",
		Abstract: "Neural networks generalize.",
		Authors:  []string{"A", "B", "C", "D"},
		Year:     2021,
		URL:      "https://example.org/p1",
	}
	embedder := &fakeEmbedder{vectors: map[string][]float64{
		chunk.Text: {1, 0},
		"On Generalization Neural networks generalize.": {1, 0},
	}}
	search := &fakeSearchProvider{papers: []models.Paper{paper}}

	matches := NewSemanticMatcher(embedder, search, SemanticConfig{}).
		Detect(context.Background(), []Chunk{chunk}, true)

	require.Len(t, matches, 1)
	m := matches[0]
	assert.Equal(t, chunk.Text, m.Text)
	assert.Equal(t, "On Generalization", m.Source)
	assert.Equal(t, "https://example.org/p1", m.SourceURL)
	assert.Equal(t, 2021, m.SourceYear)
	assert.Equal(t, []string{"A", "B", "C"}, m.SourceAuthors)
	assert.InDelta(t, 1.0, m.Similarity, 1e-9)
	assert.Equal(t, models.MatchHighSimilarity, m.Type)
	assert.Equal(t, 10, m.StartPos)
	assert.Equal(t, 55, m.EndPos)
}

func TestSemanticMatcher_ClassifiesBySimilarity(t *testing.T) {
	chunk := Chunk{Text: "query chunk text"}

	tests := []struct {
		name      string
		candidate []float64
		matched   bool
		matchType models.MatchType
	}{
		{"high similarity", []float64{1, 0}, true, models.MatchHighSimilarity},
		{"paraphrase", []float64{0.8, 0.6}, true, models.MatchParaphrase},
		{"below threshold", []float64{0.6, 0.8}, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embedder := &fakeEmbedder{
				vectors:  map[string][]float64{chunk.Text: {1, 0}},
				fallback: tt.candidate,
			}
			search := &fakeSearchProvider{papers: []models.Paper{{Title: "Candidate", Abstract: "body"}}}

			matches := NewSemanticMatcher(embedder, search, SemanticConfig{}).
				Detect(context.Background(), []Chunk{chunk}, true)

			if !tt.matched {
				assert.Empty(t, matches)
				return
			}
			require.Len(t, matches, 1)
			assert.Equal(t, tt.matchType, matches[0].Type)
		})
	}
}

func TestSemanticMatcher_UntitledCandidate(t *testing.T) {
	chunk := Chunk{Text: "query chunk text"}
	embedder := &fakeEmbedder{fallback: []float64{1, 0}}
	search := &fakeSearchProvider{papers: []models.Paper{{Abstract: "abstract only"}}}

	matches := NewSemanticMatcher(embedder, search, SemanticConfig{}).
		Detect(context.Background(), []Chunk{chunk}, true)

	require.Len(t, matches, 1)
	assert.Equal(t, "Unknown", matches[0].Source)
}

func TestSemanticMatcher_SkipsEmptyCandidates(t *testing.T) {
	chunk := Chunk{Text: "query chunk text"}
	embedder := &fakeEmbedder{fallback: []float64{1, 0}}
	search := &fakeSearchProvider{papers: []models.Paper{{Title: "", Abstract: "   "}}}

	matches := NewSemanticMatcher(embedder, search, SemanticConfig{}).
		Detect(context.Background(), []Chunk{chunk}, true)

	assert.Empty(t, matches)
}

func TestSemanticMatcher_ResultsFollowChunkOrder(t *testing.T) {
	chunks := []Chunk{
		{Text: "first chunk text about databases", Start: 0, End: 32, Index: 0},
		{Text: "second chunk text about networks", Start: 40, End: 72, Index: 1},
	}
	embedder := &fakeEmbedder{fallback: []float64{1, 0}}
	search := &fakeSearchProvider{papers: []models.Paper{{Title: "Reference", Abstract: "body"}}}

	matches := NewSemanticMatcher(embedder, search, SemanticConfig{Concurrency: 4}).
		Detect(context.Background(), chunks, true)

	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].StartPos)
	assert.Equal(t, 40, matches[1].StartPos)
}

func TestSemanticMatcher_BoundsChunkPrefix(t *testing.T) {
	chunks := make([]Chunk, 8)
	for i := range chunks {
		chunks[i] = Chunk{Text: fmt.Sprintf("chunk number %d text", i), Index: i}
	}
	embedder := &fakeEmbedder{fallback: []float64{0, 1}}
	search := &fakeSearchProvider{}

	matches := NewSemanticMatcher(embedder, search, SemanticConfig{ChunkLimit: 3}).
		Detect(context.Background(), chunks, true)

	assert.Empty(t, matches)
	assert.Equal(t, 3, search.queryCount())
}

func TestSemanticMatcher_DegradedPaths(t *testing.T) {
	chunks := []Chunk{{Text: "some chunk text"}}
	embedder := &fakeEmbedder{fallback: []float64{1, 0}}
	search := &fakeSearchProvider{papers: []models.Paper{{Title: "Candidate", Abstract: "body"}}}

	t.Run("offline check", func(t *testing.T) {
		matcher := NewSemanticMatcher(embedder, search, SemanticConfig{})
		assert.Nil(t, matcher.Detect(context.Background(), chunks, false))
	})

	t.Run("no embedder", func(t *testing.T) {
		matcher := NewSemanticMatcher(nil, search, SemanticConfig{})
		assert.Nil(t, matcher.Detect(context.Background(), chunks, true))
	})

	t.Run("no search provider", func(t *testing.T) {
		matcher := NewSemanticMatcher(embedder, nil, SemanticConfig{})
		assert.Nil(t, matcher.Detect(context.Background(), chunks, true))
	})

	t.Run("no chunks", func(t *testing.T) {
		matcher := NewSemanticMatcher(embedder, search, SemanticConfig{})
		assert.Nil(t, matcher.Detect(context.Background(), nil, true))
	})

	t.Run("embedding failure", func(t *testing.T) {
		failing := &fakeEmbedder{err: errors.New("quota exceeded")}
		matcher := NewSemanticMatcher(failing, search, SemanticConfig{})
		assert.Nil(t, matcher.Detect(context.Background(), chunks, true))
	})

	t.Run("search failure", func(t *testing.T) {
		failing := &fakeSearchProvider{err: errors.New("upstream down")}
		matcher := NewSemanticMatcher(embedder, failing, SemanticConfig{})
		assert.Empty(t, matcher.Detect(context.Background(), chunks, true))
	})
}
