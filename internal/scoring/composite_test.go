package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposite(t *testing.T) {
	weights := map[string]float64{"frequency": 0.3, "citation": 0.4, "recency": 0.3}

	t.Run("weighted sum", func(t *testing.T) {
		components := map[string]float64{"frequency": 1.0, "citation": 0.5, "recency": 0.0}
		assert.InDelta(t, 0.5, Composite(components, weights), 1e-9)
	})

	t.Run("missing component contributes zero", func(t *testing.T) {
		components := map[string]float64{"citation": 1.0}
		assert.InDelta(t, 0.4, Composite(components, weights), 1e-9)
	})

	t.Run("empty weights yield zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Composite(map[string]float64{"anything": 1.0}, nil))
	})

	t.Run("all components at one sum to total weight", func(t *testing.T) {
		components := map[string]float64{"frequency": 1.0, "citation": 1.0, "recency": 1.0}
		assert.InDelta(t, 1.0, Composite(components, weights), 1e-9)
	})
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 100))
	assert.Equal(t, 100.0, Clamp(250, 0, 100))
	assert.Equal(t, 42.5, Clamp(42.5, 0, 100))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(66.666666))
	assert.Equal(t, 66.66, Round2(66.664))
	assert.Equal(t, 100.0, Round2(100.0))
	assert.Equal(t, 0.0, Round2(0.0))
	assert.Equal(t, -1.23, Round2(-1.234))
}

func TestCosine(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-9)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-9)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float64{1, 0}, []float64{-1, 0}), 1e-9)
	})

	t.Run("scale invariant", func(t *testing.T) {
		a := []float64{0.2, 0.5, 0.9}
		b := []float64{0.4, 1.0, 1.8}
		assert.InDelta(t, 1.0, Cosine(a, b), 1e-9)
	})

	t.Run("mismatched lengths", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{1, 2}, []float64{1, 2, 3}))
	})

	t.Run("empty vectors", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine(nil, nil))
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 2}))
	})
}
