package detect

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
	"scholarguard/internal/providers/embeddings"
	"scholarguard/internal/providers/scholar"
	"scholarguard/internal/scoring"
)

const (
	DefaultSemanticThreshold  = 0.75
	DefaultSemanticChunkLimit = 5
	DefaultSearchLimit        = 10
	DefaultEmbedConcurrency   = 4

	// Similarity at or above this reclassifies a paraphrase match
	highSimilarityThreshold = 0.9

	// Search providers reject very long query strings
	maxQueryLen = 500

	maxMatchAuthors = 3
)

// SemanticConfig tunes the paraphrase layer. Zero values fall back to
// the package defaults.
type SemanticConfig struct {
	Threshold   float64
	ChunkLimit  int
	SearchLimit int
	Concurrency int
}

// SemanticMatcher is the paraphrase layer: it embeds a bounded prefix
// of chunks, searches an academic corpus for candidate papers per
// chunk, and flags candidates whose embeddings sit close to the chunk.
// Every external failure degrades to "no match for this chunk".
type SemanticMatcher struct {
	embedder    embeddings.Provider
	search      scholar.Provider
	threshold   float64
	chunkLimit  int
	searchLimit int
	concurrency int
}

func NewSemanticMatcher(embedder embeddings.Provider, search scholar.Provider, cfg SemanticConfig) *SemanticMatcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultSemanticThreshold
	}
	if cfg.ChunkLimit <= 0 {
		cfg.ChunkLimit = DefaultSemanticChunkLimit
	}
	if cfg.SearchLimit <= 0 {
		cfg.SearchLimit = DefaultSearchLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultEmbedConcurrency
	}
	return &SemanticMatcher{
		embedder:    embedder,
		search:      search,
		threshold:   cfg.Threshold,
		chunkLimit:  cfg.ChunkLimit,
		searchLimit: cfg.SearchLimit,
		concurrency: cfg.Concurrency,
	}
}

// Detect runs the semantic layer over the first chunkLimit chunks.
// It returns nil without error when checkOnline is false or no
// embedding provider is configured. Per-chunk work is fanned out on a
// bounded semaphore; results are collected in chunk-index order so the
// output is deterministic regardless of completion order.
func (s *SemanticMatcher) Detect(ctx context.Context, chunks []Chunk, checkOnline bool) []models.Match {
	if !checkOnline || s.embedder == nil || s.search == nil || len(chunks) == 0 {
		return nil
	}

	prefix := chunks
	if len(prefix) > s.chunkLimit {
		prefix = prefix[:s.chunkLimit]
	}

	texts := make([]string, len(prefix))
	for i, chunk := range prefix {
		texts[i] = chunk.Text
	}

	chunkVecs, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		metrics.IncProviderError(s.embedder.Name())
		log.Warn().Err(err).Msg("Chunk embedding failed, skipping semantic layer")
		return nil
	}
	if len(chunkVecs) != len(prefix) {
		log.Warn().
			Int("expected", len(prefix)).
			Int("got", len(chunkVecs)).
			Msg("Chunk embedding count mismatch, skipping semantic layer")
		return nil
	}

	perChunk := make([][]models.Match, len(prefix))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	for i := range prefix {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			perChunk[i] = s.matchChunk(ctx, prefix[i], chunkVecs[i])
		}(i)
	}
	wg.Wait()

	matches := make([]models.Match, 0)
	for _, chunkMatches := range perChunk {
		matches = append(matches, chunkMatches...)
	}
	return matches
}

func (s *SemanticMatcher) matchChunk(ctx context.Context, chunk Chunk, chunkVec []float64) []models.Match {
	candidates, err := s.search.Search(ctx, truncate(chunk.Text, maxQueryLen), s.searchLimit)
	if err != nil {
		metrics.IncProviderError(s.search.Name())
		log.Warn().Err(err).Int("chunk", chunk.Index).Msg("Candidate search failed")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}

	docs := make([]string, 0, len(candidates))
	docIdx := make([]int, 0, len(candidates))
	for i, cand := range candidates {
		text := strings.TrimSpace(cand.Title + " " + cand.Abstract)
		if text == "" {
			continue
		}
		docs = append(docs, text)
		docIdx = append(docIdx, i)
	}
	if len(docs) == 0 {
		return nil
	}

	candVecs, err := s.embedder.Embed(ctx, docs)
	if err != nil {
		metrics.IncProviderError(s.embedder.Name())
		log.Warn().Err(err).Int("chunk", chunk.Index).Msg("Candidate embedding failed")
		return nil
	}
	if len(candVecs) != len(docs) {
		return nil
	}

	matches := make([]models.Match, 0)
	for k, vec := range candVecs {
		cand := candidates[docIdx[k]]
		sim := scoring.Cosine(chunkVec, vec)
		if sim < s.threshold {
			continue
		}

		matchType := models.MatchParaphrase
		if sim >= highSimilarityThreshold {
			matchType = models.MatchHighSimilarity
		}

		authors := cand.Authors
		if len(authors) > maxMatchAuthors {
			authors = authors[:maxMatchAuthors]
		}

		source := cand.Title
		if source == "" {
			source = "Unknown"
		}

		matches = append(matches, models.Match{
			Text:          truncate(chunk.Text, matchPreviewLen),
			Source:        source,
			SourceURL:     cand.URL,
			SourceYear:    cand.Year,
			SourceAuthors: authors,
			Similarity:    sim,
			StartPos:      chunk.Start,
			EndPos:        chunk.End,
			Type:          matchType,
		})
	}
	return matches
}
