package stats

import (
	"sharpq/domain/core"
)

// FDRMethod defines the false-discovery-rate correction procedure
type FDRMethod string

const (
	// MethodBH is the classical Benjamini-Hochberg step-up procedure.
	MethodBH FDRMethod = "BH"
	// MethodBKY is the adaptive two-stage Benjamini-Krieger-Yekutieli
	// procedure as operationalized by Anderson (2008).
	MethodBKY FDRMethod = "BKY"
)

// FamilyInput defines one statistical family submitted for q-value correction
type FamilyInput struct {
	FamilyKey string    `json:"family_key"`       // Grouping key, e.g. "pairwise/pearson"
	PValues   []float64 `json:"p_values"`         // Raw p-values, caller order
	Labels    []string  `json:"labels,omitempty"` // Optional per-hypothesis labels, aligned to PValues
}

// FamilyResult holds the corrected q-values for one family
type FamilyResult struct {
	FamilyID  core.FamilyID `json:"family_id"`  // Stable hash of key + inputs
	FamilyKey string        `json:"family_key"` // The key used to compute FamilyID
	Method    FDRMethod     `json:"method"`     // Correction method applied
	Step      float64       `json:"step"`       // Grid resolution used
	NumTests  int           `json:"num_tests"`  // Total tests in this family
	QValues   []float64     `json:"q_values"`   // Sharpened q-values, caller order
	Labels    []string      `json:"labels,omitempty"`

	Summary   *FamilySummary `json:"summary,omitempty"` // Descriptive stats of the raw p-values
	CreatedAt core.Timestamp `json:"created_at"`
}

// DiscoveriesAt counts hypotheses whose q-value is at or below the given level
func (r *FamilyResult) DiscoveriesAt(level float64) int {
	n := 0
	for _, q := range r.QValues {
		if q <= level {
			n++
		}
	}
	return n
}

// FamilySummary captures descriptive statistics of one family's raw p-values
type FamilySummary struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`

	// DiscoveryRate05 is the share of hypotheses with a sharpened q-value <= 0.05.
	DiscoveryRate05 float64 `json:"discovery_rate_05"`
	// DiscoveryRate10 is the share of hypotheses with a sharpened q-value <= 0.10.
	DiscoveryRate10 float64 `json:"discovery_rate_10"`
}

// SweepManifest captures the complete specification and results of a q-value sweep
type SweepManifest struct {
	SweepID     core.SweepID `json:"sweep_id"`
	Step        float64      `json:"step"`         // Grid resolution
	Method      FDRMethod    `json:"method"`       // Correction method applied
	CodeVersion string       `json:"code_version"` // Algorithm version for auditability

	FamilyIDs  []core.FamilyID `json:"family_ids"`  // Families in execution order
	TotalTests int             `json:"total_tests"` // Hypotheses across all families
	RuntimeMs  int64           `json:"runtime_ms"`  // Total execution time

	Fingerprint core.Hash      `json:"fingerprint"` // Complete sweep fingerprint
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewSweepManifest creates a sweep manifest with a computed fingerprint
func NewSweepManifest(sweepID core.SweepID, method FDRMethod, step float64, codeVersion string, familyIDs []core.FamilyID, totalTests int) *SweepManifest {
	return &SweepManifest{
		SweepID:     sweepID,
		Step:        step,
		Method:      method,
		CodeVersion: codeVersion,
		FamilyIDs:   familyIDs,
		TotalTests:  totalTests,
		Fingerprint: core.ComputeSweepFingerprint(familyIDs, step, codeVersion),
		CreatedAt:   core.Now(),
	}
}
