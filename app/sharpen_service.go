package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"sharpq/domain/core"
	"sharpq/domain/stats"
	"sharpq/internal/errors"
	"sharpq/ports"

	mfstats "github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

// CodeVersion identifies the algorithm revision recorded in sweep manifests.
const CodeVersion = "v0.1.0"

// defaultMaxParallel bounds concurrent family computations in one sweep.
const defaultMaxParallel = 4

// SharpenService runs q-value correction sweeps over statistical families
type SharpenService struct {
	ledger ports.LedgerWriterPort
}

// SweepRequest defines the inputs for a deterministic q-value sweep
type SweepRequest struct {
	SweepID     core.SweepID        // optional, generated if empty
	Families    []stats.FamilyInput // independent FDR families
	Step        float64             // grid resolution, DefaultStep if zero
	Method      stats.FDRMethod     // MethodBKY if empty
	MaxParallel int                 // concurrent families, defaultMaxParallel if zero
}

// SweepResult contains the complete output of a q-value sweep
type SweepResult struct {
	SweepID   core.SweepID         `json:"sweep_id"`
	Families  []stats.FamilyResult `json:"families"` // request order
	Manifest  *stats.SweepManifest `json:"manifest"`
	RuntimeMs int64                `json:"runtime_ms"`
}

// NewSharpenService creates a sharpen service
func NewSharpenService(ledger ports.LedgerWriterPort) *SharpenService {
	return &SharpenService{ledger: ledger}
}

// RunSweep computes q-values for every family in the request and appends the
// resulting artifacts to the ledger. Families are independent of one another
// and are computed concurrently; results keep the request order and the sweep
// is deterministic for a fixed request.
func (s *SharpenService) RunSweep(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	startTime := time.Now()

	if len(req.Families) == 0 {
		return nil, errors.InvalidInput("sweep request contains no families")
	}

	sweepID := req.SweepID
	if sweepID == "" {
		sweepID = core.SweepID(core.NewID())
	}
	step := req.Step
	if step == 0 {
		step = stats.DefaultStep
	}
	method := req.Method
	if method == "" {
		method = stats.MethodBKY
	}
	if method != stats.MethodBKY && method != stats.MethodBH {
		return nil, errors.InvalidInputf("unsupported FDR method %q", method)
	}
	maxParallel := req.MaxParallel
	if maxParallel <= 0 {
		maxParallel = defaultMaxParallel
	}

	for i, family := range req.Families {
		if len(family.Labels) > 0 && len(family.Labels) != len(family.PValues) {
			return nil, errors.InvalidInputf(
				"family %d (%s): %d labels for %d p-values",
				i, family.FamilyKey, len(family.Labels), len(family.PValues))
		}
	}

	results := make([]stats.FamilyResult, len(req.Families))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)
	for i, family := range req.Families {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := computeFamily(family, method, step)
			if err != nil {
				return wrapFamilyError(err, i, family.FamilyKey)
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Persist artifacts sequentially in request order so ledger replay is
	// deterministic.
	familyIDs := make([]core.FamilyID, len(results))
	totalTests := 0
	for i := range results {
		familyIDs[i] = results[i].FamilyID
		totalTests += results[i].NumTests

		qArtifact := core.Artifact{
			ID:        core.NewID(),
			Kind:      core.ArtifactQValues,
			Payload:   results[i],
			CreatedAt: core.Now(),
		}
		if err := s.ledger.StoreArtifact(ctx, sweepID, qArtifact); err != nil {
			return nil, errors.Wrap(err, "failed to store q-value artifact")
		}

		summaryArtifact := core.Artifact{
			ID:        core.NewID(),
			Kind:      core.ArtifactFamilySummary,
			Payload:   results[i].Summary,
			CreatedAt: core.Now(),
		}
		if err := s.ledger.StoreArtifact(ctx, sweepID, summaryArtifact); err != nil {
			return nil, errors.Wrap(err, "failed to store family summary artifact")
		}
	}

	manifest := stats.NewSweepManifest(sweepID, method, step, CodeVersion, familyIDs, totalTests)
	manifest.RuntimeMs = time.Since(startTime).Milliseconds()

	manifestArtifact := core.Artifact{
		ID:        core.NewID(),
		Kind:      core.ArtifactSweepManifest,
		Payload:   manifest,
		CreatedAt: core.Now(),
	}
	if err := s.ledger.StoreArtifact(ctx, sweepID, manifestArtifact); err != nil {
		return nil, errors.Wrap(err, "failed to store sweep manifest")
	}

	return &SweepResult{
		SweepID:   sweepID,
		Families:  results,
		Manifest:  manifest,
		RuntimeMs: manifest.RuntimeMs,
	}, nil
}

// wrapFamilyError maps domain validation errors onto the application error
// taxonomy so callers can distinguish bad input from internal failures
func wrapFamilyError(err error, idx int, key string) error {
	message := fmt.Sprintf("family %d (%s): %v", idx, key, err)
	switch {
	case stderrors.Is(err, stats.ErrInvalidInput):
		return &errors.AppError{Code: errors.CodeInvalidInput, Message: message, Cause: err}
	case stderrors.Is(err, stats.ErrInvalidStep):
		return &errors.AppError{Code: errors.CodeInvalidStep, Message: message, Cause: err}
	default:
		return errors.Wrap(err, message)
	}
}

// computeFamily runs the configured correction for one family
func computeFamily(family stats.FamilyInput, method stats.FDRMethod, step float64) (*stats.FamilyResult, error) {
	var qvals []float64
	var err error
	switch method {
	case stats.MethodBH:
		qvals, err = stats.BHQValues(family.PValues)
	default:
		qvals, err = stats.SharpenedQValues(family.PValues, step)
	}
	if err != nil {
		return nil, err
	}

	return &stats.FamilyResult{
		FamilyID:  core.ComputeFamilyID(family.FamilyKey, family.PValues),
		FamilyKey: family.FamilyKey,
		Method:    method,
		Step:      step,
		NumTests:  len(family.PValues),
		QValues:   qvals,
		Labels:    family.Labels,
		Summary:   summarizeFamily(family.PValues, qvals),
		CreatedAt: core.Now(),
	}, nil
}

// summarizeFamily computes descriptive statistics of the raw p-values
func summarizeFamily(pvals []float64, qvals []float64) *stats.FamilySummary {
	mean, _ := mfstats.Mean(pvals)
	median, _ := mfstats.Median(pvals)
	min, _ := mfstats.Min(pvals)
	max, _ := mfstats.Max(pvals)
	stdDev, _ := mfstats.StandardDeviation(pvals)

	return &stats.FamilySummary{
		Mean:            mean,
		Median:          median,
		Min:             min,
		Max:             max,
		StdDev:          stdDev,
		DiscoveryRate05: discoveryRate(qvals, 0.05),
		DiscoveryRate10: discoveryRate(qvals, 0.10),
	}
}

// discoveryRate returns the share of q-values at or below level
func discoveryRate(qvals []float64, level float64) float64 {
	if len(qvals) == 0 {
		return 0
	}
	n := 0
	for _, q := range qvals {
		if q <= level {
			n++
		}
	}
	return float64(n) / float64(len(qvals))
}
