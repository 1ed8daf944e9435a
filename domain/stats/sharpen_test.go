package stats

import (
	"errors"
	"math"
	"sort"
	"testing"
)

const floatTol = 1e-6

// Golden fixtures validated against the Stata sharpened q-value
// implementation (Anderson 2008). Expected values are Stata output rounded
// to three decimals, which the 0.001 grid reproduces exactly.
var stataGoldens = []struct {
	name     string
	pvals    []float64
	expected []float64
}{
	{
		name:     "mixed_with_tied_tail",
		pvals:    []float64{0.02, 0.01, 0.03, 0.08, 0.168, 0.168, 0.168},
		expected: []float64{0.076, 0.076, 0.076, 0.087, 0.107, 0.107, 0.107},
	},
	{
		name:     "spread_over_four_decades",
		pvals:    []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		expected: []float64{0.007, 0.013, 0.016, 0.039, 0.064, 0.137},
	},
	{
		name:     "all_large",
		pvals:    []float64{0.9, 0.8, 0.7, 0.6, 0.5},
		expected: []float64{1.0, 1.0, 1.0, 1.0, 1.0},
	},
	{
		name:     "single_small",
		pvals:    []float64{0.001},
		expected: []float64{0.002},
	},
	{
		name:     "all_tied_small",
		pvals:    []float64{0.001, 0.001, 0.001, 0.001, 0.001},
		expected: []float64{0.002, 0.002, 0.002, 0.002, 0.002},
	},
	{
		name:     "two_tied_groups",
		pvals:    []float64{0.05, 0.05, 0.05, 0.1, 0.1},
		expected: []float64{0.091, 0.091, 0.091, 0.091, 0.091},
	},
	{
		name:     "uniform_ladder",
		pvals:    []float64{0.01, 0.02, 0.03, 0.04, 0.05, 0.06, 0.07, 0.08, 0.09, 0.1},
		expected: []float64{0.112, 0.112, 0.112, 0.112, 0.112, 0.112, 0.112, 0.112, 0.112, 0.112},
	},
	{
		name:     "very_small_values",
		pvals:    []float64{0.0001, 0.0005, 0.001, 0.005, 0.01},
		expected: []float64{0.001, 0.002, 0.002, 0.003, 0.005},
	},
	{
		name:     "no_signal",
		pvals:    []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
		expected: []float64{1.0, 1.0, 1.0, 1.0, 1.0, 1.0, 1.0},
	},
	{
		name:  "one_strong_rest_weak",
		pvals: []float64{0.001, 0.05, 0.1, 0.15, 0.2, 0.25, 0.3, 0.35, 0.4, 0.45, 0.5},
		expected: []float64{0.012, 0.334, 0.429, 0.51, 0.563, 0.579, 0.579,
			0.579, 0.579, 0.579, 0.579},
	},
}

func TestSharpenedQValues_StataGoldens(t *testing.T) {
	for _, tc := range stataGoldens {
		t.Run(tc.name, func(t *testing.T) {
			qvals, err := SharpenedQValues(tc.pvals, DefaultStep)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if len(qvals) != len(tc.expected) {
				t.Fatalf("Expected %d q-values, got %d", len(tc.expected), len(qvals))
			}
			for i := range qvals {
				if math.Abs(qvals[i]-tc.expected[i]) > floatTol {
					t.Errorf("q-value mismatch at index %d: got %v, want %v",
						i, qvals[i], tc.expected[i])
				}
			}
		})
	}
}

func TestBHRejectCount(t *testing.T) {
	tests := []struct {
		name     string
		sorted   []float64
		level    float64
		expected int
	}{
		{"no_rejections", []float64{0.5, 0.6, 0.9}, 0.05, 0},
		{"all_rejected", []float64{0.001, 0.002, 0.003}, 0.05, 3},
		{"prefix_rejected", []float64{0.01, 0.02, 0.5, 0.9}, 0.05, 2},
		{"inclusive_threshold", []float64{0.05}, 0.05, 1},
		{"zero_pvalue_any_level", []float64{0.0}, 0.001, 1},
		{"step_up_recovers_rank", []float64{0.01, 0.011, 0.012}, 0.05, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := BHRejectCount(tc.sorted, tc.level)
			if got != tc.expected {
				t.Errorf("Expected %d rejections, got %d", tc.expected, got)
			}
		})
	}
}

func TestAdaptiveRejectCount_ShortCircuits(t *testing.T) {
	// Stage 1 rejects nothing: adaptive count is zero.
	if got := AdaptiveRejectCount([]float64{0.5, 0.6, 0.7}, 0.05); got != 0 {
		t.Errorf("Expected 0 rejections for weak p-values, got %d", got)
	}

	// Stage 1 rejects everything: stage 2 is skipped, all m rejected.
	if got := AdaptiveRejectCount([]float64{0.0, 0.0, 0.0}, 0.05); got != 3 {
		t.Errorf("Expected all 3 rejections for zero p-values, got %d", got)
	}
}

func TestAdaptiveRejectCount_MonotoneInLevel(t *testing.T) {
	sorted := []float64{0.003, 0.01, 0.04, 0.12, 0.3, 0.61, 0.88}

	prev := 0
	for k := 1; k <= 1000; k++ {
		q := float64(k) * 0.001
		r := AdaptiveRejectCount(sorted, q)
		if r < prev {
			t.Fatalf("Rejection count decreased from %d to %d at q=%v", prev, r, q)
		}
		prev = r
	}
}

func TestSharpenedQValues_DegenerateAllZero(t *testing.T) {
	for _, step := range []float64{0.001, 0.01, 0.25, 1.0} {
		qvals, err := SharpenedQValues([]float64{0, 0, 0, 0, 0}, step)
		if err != nil {
			t.Fatalf("Unexpected error at step %v: %v", step, err)
		}
		for i, q := range qvals {
			if q != step {
				t.Errorf("step %v: expected q-value %v at index %d, got %v", step, step, i, q)
			}
		}
	}
}

func TestSharpenedQValues_SingleMidPValue(t *testing.T) {
	// p = 0.5 needs q' = q/(1+q) to reach 0.5, i.e. q = 1.0.
	for _, step := range []float64{0.001, 0.1, 0.5} {
		qvals, err := SharpenedQValues([]float64{0.5}, step)
		if err != nil {
			t.Fatalf("Unexpected error at step %v: %v", step, err)
		}
		if len(qvals) != 1 || qvals[0] != 1.0 {
			t.Errorf("step %v: expected [1.0], got %v", step, qvals)
		}
	}
}

func TestSharpenedQValues_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		pvals   []float64
		step    float64
		wantErr error
	}{
		{"empty", []float64{}, 0.001, ErrInvalidInput},
		{"nil", nil, 0.001, ErrInvalidInput},
		{"above_one", []float64{0.2, 1.5}, 0.001, ErrInvalidInput},
		{"negative", []float64{-0.1}, 0.001, ErrInvalidInput},
		{"nan", []float64{math.NaN()}, 0.001, ErrInvalidInput},
		{"inf", []float64{math.Inf(1)}, 0.001, ErrInvalidInput},
		{"zero_step", []float64{0.5}, 0, ErrInvalidStep},
		{"negative_step", []float64{0.5}, -0.01, ErrInvalidStep},
		{"step_above_one", []float64{0.5}, 1.5, ErrInvalidStep},
		{"nan_step", []float64{0.5}, math.NaN(), ErrInvalidStep},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			qvals, err := SharpenedQValues(tc.pvals, tc.step)
			if err == nil {
				t.Fatal("Expected an error, got none")
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected error wrapping %v, got %v", tc.wantErr, err)
			}
			if qvals != nil {
				t.Error("No partial results should be returned on invalid input")
			}
		})
	}
}

func TestSharpenedQValues_Properties(t *testing.T) {
	pvals := []float64{0.01, 0.04, 0.03, 0.20, 0.15, 0.04, 0.77, 0.002, 0.31, 0.04}
	step := 0.001

	qvals, err := SharpenedQValues(pvals, step)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Shape: one q-value per p-value.
	if len(qvals) != len(pvals) {
		t.Fatalf("Expected %d q-values, got %d", len(pvals), len(qvals))
	}

	// Range: all output in [step, 1.0].
	for i, q := range qvals {
		if q < step || q > 1.0 {
			t.Errorf("q-value %v at index %d outside [%v, 1.0]", q, i, step)
		}
	}

	// Monotonicity: ascending p-values get non-decreasing q-values.
	type pair struct{ p, q float64 }
	pairs := make([]pair, len(pvals))
	for i := range pvals {
		pairs[i] = pair{pvals[i], qvals[i]}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].p < pairs[b].p })
	for i := 1; i < len(pairs); i++ {
		if pairs[i].q < pairs[i-1].q {
			t.Errorf("q-values not monotone over sorted p-values: %v after %v",
				pairs[i].q, pairs[i-1].q)
		}
	}

	// Tie consistency: equal p-values get identical q-values.
	for i := range pvals {
		for j := i + 1; j < len(pvals); j++ {
			if pvals[i] == pvals[j] && qvals[i] != qvals[j] {
				t.Errorf("Tied p-values at %d and %d got different q-values: %v vs %v",
					i, j, qvals[i], qvals[j])
			}
		}
	}

	// Determinism: repeated calls are bit-identical.
	again, err := SharpenedQValues(pvals, step)
	if err != nil {
		t.Fatalf("Unexpected error on repeat call: %v", err)
	}
	for i := range qvals {
		if qvals[i] != again[i] {
			t.Errorf("Non-deterministic q-value at index %d: %v vs %v", i, qvals[i], again[i])
		}
	}
}

// TestSharpenedQValues_AgainstDescendingSweep cross-checks the ascending grid
// sweep against an independent top-down formulation of the same procedure.
func TestSharpenedQValues_AgainstDescendingSweep(t *testing.T) {
	fixtures := [][]float64{
		{0.01, 0.04, 0.03, 0.20, 0.15},
		{0.0001, 0.03, 0.03, 0.5, 0.99, 1.0},
		{0.002, 0.009, 0.044, 0.044, 0.11, 0.28, 0.6},
	}

	for _, pvals := range fixtures {
		got, err := SharpenedQValues(pvals, DefaultStep)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		want := descendingSweepQValues(pvals, DefaultStep)
		for i := range got {
			if math.Abs(got[i]-want[i]) > 1e-10 {
				t.Errorf("Mismatch with descending sweep at index %d: got %v, want %v",
					i, got[i], want[i])
			}
		}
	}
}

// descendingSweepQValues is a deliberately naive reference: it walks the grid
// from 1.0 downward and records the minimum level that rejects each rank,
// with no early exit and no running maximum.
func descendingSweepQValues(pvals []float64, step float64) []float64 {
	m := len(pvals)
	order := stableArgsort(pvals)
	sortedP := make([]float64, m)
	for i, idx := range order {
		sortedP[i] = pvals[idx]
	}

	qSorted := make([]float64, m)
	for i := range qSorted {
		qSorted[i] = 1.0
	}

	gridSize := int(math.Ceil(1.0 / step))
	for k := gridSize; k >= 1; k-- {
		q := float64(k) * step
		if k == gridSize || q > 1.0 {
			q = 1.0
		}
		r2 := AdaptiveRejectCount(sortedP, q)
		for i := 0; i < r2; i++ {
			if q < qSorted[i] {
				qSorted[i] = q
			}
		}
	}

	qvals := make([]float64, m)
	for i, idx := range order {
		qvals[idx] = qSorted[i]
	}
	return qvals
}

func TestBHQValues(t *testing.T) {
	// Evenly spaced p-values collapse to a single plain BH q-value.
	qvals, err := BHQValues([]float64{0.01, 0.02, 0.03, 0.04})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, q := range qvals {
		if math.Abs(q-0.04) > floatTol {
			t.Errorf("Expected 0.04 at index %d, got %v", i, q)
		}
	}

	// Caller order is preserved through the sort permutation.
	qvals, err = BHQValues([]float64{0.9, 0.001})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if qvals[0] != 0.9 {
		t.Errorf("Expected q-value 0.9 for p=0.9, got %v", qvals[0])
	}
	if math.Abs(qvals[1]-0.002) > floatTol {
		t.Errorf("Expected q-value 0.002 for p=0.001, got %v", qvals[1])
	}

	if _, err := BHQValues(nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty input, got %v", err)
	}
}
