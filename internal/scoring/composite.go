package scoring

import "math"

// Composite combines named signals into a single score via a weighted sum.
// Every signal is expected to be normalized to [0, 1] by the caller, and
// the weights for one use case sum to 1.0 by convention (caller
// responsibility, not enforced). A signal missing from components
// contributes 0, which lets callers treat optional signals as absent.
func Composite(components map[string]float64, weights map[string]float64) float64 {
	score := 0.0
	for name, weight := range weights {
		score += components[name] * weight
	}
	return score
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Round2 rounds v to two decimal places
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Cosine returns the cosine similarity between two vectors, 0 for
// mismatched lengths or zero vectors.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
