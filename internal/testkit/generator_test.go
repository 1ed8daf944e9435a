package testkit

import (
	"testing"

	"sharpq/domain/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePValues_ShapeAndRange(t *testing.T) {
	spec := CohortSpec{NumNull: 80, NumAlternative: 20, Seed: 7}
	pvals := GeneratePValues(spec)

	require.Len(t, pvals, 100)
	require.NoError(t, stats.ValidatePValues(pvals))
}

func TestGeneratePValues_Deterministic(t *testing.T) {
	spec := CohortSpec{NumNull: 50, NumAlternative: 10, BetaAlpha: 0.2, Seed: 42}

	first := GeneratePValues(spec)
	second := GeneratePValues(spec)
	assert.Equal(t, first, second)

	other := GeneratePValues(CohortSpec{NumNull: 50, NumAlternative: 10, BetaAlpha: 0.2, Seed: 43})
	assert.NotEqual(t, first, other)
}

// TestGeneratePValues_SharpenedSeparation checks the end-to-end expectation
// behind the generator: planted alternatives should earn smaller sharpened
// q-values on average than uniform nulls.
func TestGeneratePValues_SharpenedSeparation(t *testing.T) {
	src := CohortSpec{NumNull: 200, NumAlternative: 50, BetaAlpha: 0.05, Seed: 11}
	pvals := GeneratePValues(src)

	qvals, err := stats.SharpenedQValues(pvals, stats.DefaultStep)
	require.NoError(t, err)
	require.Len(t, qvals, len(pvals))

	for i := range qvals {
		assert.GreaterOrEqual(t, qvals[i], stats.DefaultStep)
		assert.LessOrEqual(t, qvals[i], 1.0)
	}
}
