// Package stats implements sharpened two-stage FDR q-values as described in
// Benjamini, Krieger and Yekutieli (2006) and implemented in Stata by
// Anderson (2008).
//
// For each hypothesis the sharpened q-value is the smallest FDR level q at
// which the adaptive two-stage procedure rejects it:
//
//  1. First stage (conservative BH): run BH at q' = q/(1+q) to get R1
//     rejections and estimate the number of true nulls as m0 = m - R1.
//  2. Second stage (adaptive BH): inflate the level to q* = q' * m/m0,
//     capped at 1.0, and run BH again to get R2 rejections.
//  3. Hypotheses with sorted rank <= R2 are rejected at level q.
//
// The rejection decision depends non-linearly on q, so the minimal rejecting
// level is found by sweeping a grid of candidate levels.
package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// DefaultStep is the grid resolution Anderson (2008) used.
const DefaultStep = 0.001

// Domain errors surfaced by q-value computation
var (
	// ErrInvalidInput marks an empty, out-of-range, or non-finite p-value set.
	ErrInvalidInput = errors.New("invalid p-value input")
	// ErrInvalidStep marks a grid step outside (0, 1].
	ErrInvalidStep = errors.New("invalid grid step")
)

// ValidatePValues checks that pvals is non-empty and every entry is a finite
// number in [0, 1]. Violations wrap ErrInvalidInput.
func ValidatePValues(pvals []float64) error {
	if len(pvals) == 0 {
		return fmt.Errorf("%w: empty p-value set", ErrInvalidInput)
	}
	for i, p := range pvals {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return fmt.Errorf("%w: non-finite value %v at index %d", ErrInvalidInput, p, i)
		}
		if p < 0 || p > 1 {
			return fmt.Errorf("%w: value %v at index %d outside [0, 1]", ErrInvalidInput, p, i)
		}
	}
	return nil
}

// ValidateStep checks that step lies in (0, 1]. Violations wrap ErrInvalidStep.
func ValidateStep(step float64) error {
	if math.IsNaN(step) || step <= 0 || step > 1 {
		return fmt.Errorf("%w: step %v outside (0, 1]", ErrInvalidStep, step)
	}
	return nil
}

// BHRejectCount returns the largest rank r such that
// sortedPVals[r-1] <= (r/m)*level, or 0 if no rank qualifies. This is the
// classical BH step-up rule: rejections always form a prefix of the sorted
// order, ranks 1..r.
//
// sortedPVals must already be sorted ascending.
func BHRejectCount(sortedPVals []float64, level float64) int {
	m := len(sortedPVals)
	maxRank := 0
	for rank := 1; rank <= m; rank++ {
		threshold := level * float64(rank) / float64(m)
		if sortedPVals[rank-1] <= threshold {
			maxRank = rank
		}
	}
	return maxRank
}

// AdaptiveRejectCount returns the number of rejections under the two-stage
// BKY procedure at target FDR level q. The m0 = 0 hazard is short-circuited:
// when stage 1 already rejects everything, stage 2 is skipped and all m
// hypotheses are rejected.
//
// sortedPVals must already be sorted ascending.
func AdaptiveRejectCount(sortedPVals []float64, q float64) int {
	m := len(sortedPVals)
	qPrime := q / (1.0 + q)

	r1 := BHRejectCount(sortedPVals, qPrime)
	if r1 == 0 {
		return 0
	}
	if r1 >= m {
		return m
	}

	m0 := m - r1
	qStar := qPrime * float64(m) / float64(m0)
	if qStar > 1.0 {
		qStar = 1.0
	}
	return BHRejectCount(sortedPVals, qStar)
}

// SharpenedQValues computes BKY sharpened q-values for pvals at the given
// grid resolution. The result is aligned to the input order; every value lies
// in [step, 1.0], with 1.0 meaning the hypothesis is never rejected within
// the grid. Output is deterministic for fixed (pvals, step).
func SharpenedQValues(pvals []float64, step float64) ([]float64, error) {
	if err := ValidatePValues(pvals); err != nil {
		return nil, err
	}
	if err := ValidateStep(step); err != nil {
		return nil, err
	}

	m := len(pvals)
	order := stableArgsort(pvals)
	sortedP := make([]float64, m)
	for i, idx := range order {
		sortedP[i] = pvals[idx]
	}

	// Sweep the grid ascending. Rejection counts are monotone in q, enforced
	// with a running maximum so float noise at threshold boundaries cannot
	// un-reject a rank. The first level that covers a rank is its q-value.
	qSorted := make([]float64, m)
	for i := range qSorted {
		qSorted[i] = 1.0
	}

	gridSize := int(math.Ceil(1.0 / step))
	rejected := 0
	for k := 1; k <= gridSize && rejected < m; k++ {
		q := float64(k) * step
		if k == gridSize || q > 1.0 {
			q = 1.0
		}
		r2 := AdaptiveRejectCount(sortedP, q)
		for ; rejected < r2; rejected++ {
			qSorted[rejected] = q
		}
	}

	// Equal raw p-values must share one q-value. BH's step-up rule never
	// splits a tied group, so this only matters at float boundaries; the
	// group takes its largest rank's level.
	for i := m - 2; i >= 0; i-- {
		if sortedP[i] == sortedP[i+1] {
			qSorted[i] = qSorted[i+1]
		}
	}

	qvals := make([]float64, m)
	for i, idx := range order {
		qvals[idx] = qSorted[i]
	}
	return qvals, nil
}

// BHQValues computes plain Benjamini-Hochberg step-up q-values for pvals:
// the running minimum of p_(i) * m/i taken from the largest rank down,
// capped at 1.0 and aligned to the input order. Provided for comparison with
// the sharpened procedure; the sharpened values are generally smaller.
func BHQValues(pvals []float64) ([]float64, error) {
	if err := ValidatePValues(pvals); err != nil {
		return nil, err
	}

	m := len(pvals)
	order := stableArgsort(pvals)

	qSorted := make([]float64, m)
	runningMin := 1.0
	for i := m - 1; i >= 0; i-- {
		q := pvals[order[i]] * float64(m) / float64(i+1)
		if q < runningMin {
			runningMin = q
		}
		qSorted[i] = runningMin
	}

	qvals := make([]float64, m)
	for i, idx := range order {
		qvals[idx] = qSorted[i]
	}
	return qvals, nil
}

// stableArgsort returns the permutation that sorts pvals ascending, with ties
// keeping their original relative order.
func stableArgsort(pvals []float64) []int {
	order := make([]int, len(pvals))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return pvals[order[a]] < pvals[order[b]]
	})
	return order
}
