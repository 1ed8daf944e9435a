// Package testkit generates synthetic p-value cohorts for tests.
package testkit

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// CohortSpec describes a synthetic family of hypothesis-test p-values.
// True nulls draw from Uniform(0,1); alternatives draw from Beta(a, 1) with
// a < 1, which concentrates mass near zero the way real signals do.
type CohortSpec struct {
	NumNull        int
	NumAlternative int
	BetaAlpha      float64 // shape of the alternative distribution, default 0.1
	Seed           uint64
}

// GeneratePValues produces a deterministic, shuffled p-value cohort
func GeneratePValues(spec CohortSpec) []float64 {
	alpha := spec.BetaAlpha
	if alpha <= 0 {
		alpha = 0.1
	}
	src := rand.NewPCG(spec.Seed, spec.Seed)

	uniform := distuv.Uniform{Min: 0, Max: 1, Src: src}
	beta := distuv.Beta{Alpha: alpha, Beta: 1, Src: src}

	pvals := make([]float64, 0, spec.NumNull+spec.NumAlternative)
	for i := 0; i < spec.NumNull; i++ {
		pvals = append(pvals, uniform.Rand())
	}
	for i := 0; i < spec.NumAlternative; i++ {
		pvals = append(pvals, beta.Rand())
	}

	// Interleave nulls and alternatives so callers never see a sorted input.
	r := rand.New(src)
	r.Shuffle(len(pvals), func(i, j int) {
		pvals[i], pvals[j] = pvals[j], pvals[i]
	})
	return pvals
}
