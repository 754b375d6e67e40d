package detect

import (
	"fmt"
	"strings"

	"scholarguard/internal/models"
)

const (
	DefaultNGramSize      = 5
	DefaultNGramThreshold = 0.6
)

// NGramOverlapDetector is the near-duplicate layer: it shingles each
// chunk into word n-grams and flags chunk pairs whose Jaccard overlap
// crosses the threshold. This catches lightly edited or reordered copy
// that the exact-match layer misses.
type NGramOverlapDetector struct {
	n         int
	threshold float64
}

func NewNGramOverlapDetector(n int, threshold float64) *NGramOverlapDetector {
	if n <= 0 {
		n = DefaultNGramSize
	}
	if threshold <= 0 {
		threshold = DefaultNGramThreshold
	}
	return &NGramOverlapDetector{n: n, threshold: threshold}
}

// Detect compares every unordered chunk pair (i < j) and emits one
// near_duplicate match per pair at or above the threshold. Pairwise
// comparison is O(k²) in chunk count, acceptable while documents split
// into tens of chunks rather than thousands.
func (d *NGramOverlapDetector) Detect(chunks []Chunk) []models.Match {
	grams := make([]map[string]struct{}, len(chunks))
	for i, chunk := range chunks {
		grams[i] = buildNGrams(chunk.Text, d.n)
	}

	matches := make([]models.Match, 0)
	for i := 0; i < len(chunks); i++ {
		if len(grams[i]) == 0 {
			continue
		}
		for j := i + 1; j < len(chunks); j++ {
			if len(grams[j]) == 0 {
				continue
			}
			sim := Jaccard(grams[i], grams[j])
			if sim < d.threshold {
				continue
			}
			matches = append(matches, models.Match{
				Text:       truncate(chunks[i].Text, matchPreviewLen),
				Source:     fmt.Sprintf("Internal chunk %d", chunks[j].Index),
				Similarity: sim,
				StartPos:   chunks[i].Start,
				EndPos:     chunks[i].End,
				Type:       models.MatchNearDuplicate,
			})
		}
	}

	return matches
}

// buildNGrams returns the set of contiguous lower-cased word n-grams.
// A chunk shorter than n words yields an empty set and is skipped.
func buildNGrams(text string, n int) map[string]struct{} {
	words := strings.Fields(strings.ToLower(text))
	grams := make(map[string]struct{})
	for i := 0; i+n <= len(words); i++ {
		grams[strings.Join(words[i:i+n], " ")] = struct{}{}
	}
	return grams
}

// Jaccard returns |A∩B| / |A∪B| between two sets, 0 when both are empty
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for gram := range a {
		if _, ok := b[gram]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
