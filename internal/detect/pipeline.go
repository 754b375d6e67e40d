package detect

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"scholarguard/internal/metrics"
	"scholarguard/internal/models"
)

// ErrUnsupportedLanguage rejects a check whose language code is outside
// the supported set.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var supportedLanguages = map[string]bool{
	"en": true,
	"te": true,
	"hi": true,
	"ur": true,
	"sa": true,
}

// SupportedLanguage reports whether a language code is accepted by the
// pipeline. The empty code passes since Check defaults it to "en".
func SupportedLanguage(language string) bool {
	return language == "" || supportedLanguages[language]
}

// Pipeline wires the three detection layers and the aggregator into the
// plagiarism check entry point.
type Pipeline struct {
	fingerprint  *FingerprintIndex
	ngram        *NGramOverlapDetector
	semantic     *SemanticMatcher
	aggregator   *MatchAggregator
	minChunkSize int
}

func NewPipeline(fingerprint *FingerprintIndex, ngram *NGramOverlapDetector, semantic *SemanticMatcher, minChunkSize int) *Pipeline {
	if minChunkSize <= 0 {
		minChunkSize = DefaultMinChunkSize
	}
	return &Pipeline{
		fingerprint:  fingerprint,
		ngram:        ngram,
		semantic:     semantic,
		aggregator:   NewMatchAggregator(),
		minChunkSize: minChunkSize,
	}
}

// Check runs the detection cascade over text. Matches are collected in
// layer order (exact, near-duplicate, paraphrase) so first-wins dedup
// never lets a weaker match displace a stronger one for the same
// snippet. Whitespace-only input yields a zero result without error;
// an unsupported language code is the only error path.
func (p *Pipeline) Check(ctx context.Context, text, language string, checkOnline bool) (models.DetectionResult, error) {
	if language == "" {
		language = "en"
	}
	if !supportedLanguages[language] {
		return models.DetectionResult{}, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, language)
	}

	start := time.Now()
	defer func() {
		metrics.ObserveCheckDuration(time.Since(start).Seconds())
	}()

	if strings.TrimSpace(text) == "" {
		return p.aggregator.Score(text, nil), nil
	}

	log.Info().
		Int("textLen", len(text)).
		Str("language", language).
		Bool("checkOnline", checkOnline).
		Msg("Starting plagiarism check")

	chunks := ChunkText(text, p.minChunkSize)
	log.Debug().Int("chunks", len(chunks)).Msg("Text chunked")

	selfID := Fingerprint(text)

	raw := make([]models.Match, 0)
	raw = append(raw, p.fingerprint.Detect(ctx, chunks, selfID)...)
	raw = append(raw, p.ngram.Detect(chunks)...)
	raw = append(raw, p.semantic.Detect(ctx, chunks, checkOnline)...)

	deduped := p.aggregator.Deduplicate(raw)
	result := p.aggregator.Score(text, deduped)

	for matchType, count := range result.Statistics.MatchesByType {
		metrics.IncMatches(matchType, count)
	}

	// Write-through so later submissions and ingested documents can hit
	// Layer 1. Lookups exclude the submitting document via selfID, so
	// re-checking identical text never matches itself.
	if err := p.fingerprint.StoreChunks(ctx, chunks, &models.FingerprintRecord{
		DocID:  selfID,
		Title:  "Prior submission " + selfID[:8],
		Source: "submission",
	}); err != nil {
		log.Warn().Err(err).Msg("Fingerprint write-through incomplete")
	}

	log.Info().
		Float64("originalityScore", result.OriginalityScore).
		Int("totalMatches", result.TotalMatches).
		Dur("took", time.Since(start)).
		Msg("Plagiarism check complete")

	return result, nil
}
