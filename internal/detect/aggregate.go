package detect

import (
	"math"
	"strings"

	"scholarguard/internal/models"
	"scholarguard/internal/scoring"
)

// dedupPrefixLen is the snippet prefix length used in the dedup key
const dedupPrefixLen = 50

// Similarity tiers and their originality penalties
const (
	penaltyHighTier = 10.0
	penaltyMidTier  = 5.0
	penaltyLowTier  = 2.0
)

// MatchAggregator deduplicates raw matches from the detection layers
// and folds them into a scored DetectionResult.
type MatchAggregator struct{}

func NewMatchAggregator() *MatchAggregator {
	return &MatchAggregator{}
}

// Deduplicate drops matches that repeat an earlier match's snippet
// prefix and source. First occurrence wins and insertion order is
// preserved, so an exact match from an earlier layer is never displaced
// by a weaker paraphrase match for the same snippet.
func (a *MatchAggregator) Deduplicate(matches []models.Match) []models.Match {
	type dedupKey struct {
		prefix string
		source string
	}

	seen := make(map[dedupKey]struct{}, len(matches))
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		key := dedupKey{prefix: truncate(m.Text, dedupPrefixLen), source: m.Source}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m)
	}
	return out
}

// Score computes the originality score for text given its deduplicated
// matches. Matched words sum each match snippet's word count without
// merging overlapping spans, so heavily overlapping matches can push the
// tally past the document total; the base score is clamped to [0,100]
// before tier penalties apply. Empty text scores 0.0, never NaN.
func (a *MatchAggregator) Score(text string, matches []models.Match) models.DetectionResult {
	if matches == nil {
		matches = []models.Match{}
	}

	totalWords := len(strings.Fields(text))
	matchedWords := 0
	for _, m := range matches {
		matchedWords += len(strings.Fields(m.Text))
	}

	result := models.DetectionResult{
		TotalMatches: len(matches),
		Matches:      matches,
		Statistics:   buildStatistics(totalWords, matchedWords, matches),
	}

	if totalWords == 0 {
		result.OriginalityScore = 0.0
		return result
	}

	base := scoring.Clamp(100*(1-float64(matchedWords)/float64(totalWords)), 0, 100)

	penalty := 0.0
	for _, m := range matches {
		switch {
		case m.Similarity >= 0.9:
			penalty += penaltyHighTier
		case m.Similarity >= 0.8:
			penalty += penaltyMidTier
		case m.Similarity >= 0.7:
			penalty += penaltyLowTier
		}
	}

	result.OriginalityScore = scoring.Round2(math.Max(0, base-penalty))
	return result
}

func buildStatistics(totalWords, matchedWords int, matches []models.Match) models.Statistics {
	stats := models.Statistics{
		TotalWords:    totalWords,
		MatchedWords:  matchedWords,
		MatchesByType: make(map[string]int),
	}

	sources := make(map[string]struct{})
	simSum := 0.0
	for _, m := range matches {
		sources[m.Source] = struct{}{}
		stats.MatchesByType[string(m.Type)]++
		simSum += m.Similarity
		if m.Similarity > stats.HighestSimilarity {
			stats.HighestSimilarity = m.Similarity
		}
	}
	stats.UniqueSources = len(sources)

	if totalWords > 0 {
		stats.MatchPercentage = float64(matchedWords) / float64(totalWords) * 100
	}
	if len(matches) > 0 {
		stats.AverageSimilarity = simSum / float64(len(matches))
	}

	return stats
}
