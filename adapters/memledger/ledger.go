// Package memledger provides an in-memory, append-only artifact ledger.
// Sweeps are pure batch transforms with no persistence requirement, so the
// ledger keeps the audit-artifact flow without a database behind it.
package memledger

import (
	"context"
	"fmt"
	"sync"

	"sharpq/domain/core"
	"sharpq/ports"
)

// Ledger implements ports.LedgerPort with in-memory storage
type Ledger struct {
	artifacts      map[core.ID]core.Artifact
	sweepArtifacts map[core.SweepID][]core.ID
	mu             sync.RWMutex
}

// New creates an empty in-memory ledger
func New() *Ledger {
	return &Ledger{
		artifacts:      make(map[core.ID]core.Artifact),
		sweepArtifacts: make(map[core.SweepID][]core.ID),
	}
}

func (l *Ledger) StoreArtifact(ctx context.Context, sweepID core.SweepID, artifact core.Artifact) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.artifacts[artifact.ID] = artifact
	l.sweepArtifacts[sweepID] = append(l.sweepArtifacts[sweepID], artifact.ID)
	return nil
}

func (l *Ledger) ListArtifacts(ctx context.Context, filters ports.ArtifactFilters) ([]core.Artifact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var ids []core.ID
	if filters.SweepID != nil {
		ids = l.sweepArtifacts[*filters.SweepID]
	} else {
		for _, sweepIDs := range l.sweepArtifacts {
			ids = append(ids, sweepIDs...)
		}
	}

	results := make([]core.Artifact, 0, len(ids))
	for _, id := range ids {
		artifact, ok := l.artifacts[id]
		if !ok {
			continue
		}
		if filters.Kind != nil && artifact.Kind != *filters.Kind {
			continue
		}
		results = append(results, artifact)
		if filters.Limit > 0 && len(results) >= filters.Limit {
			break
		}
	}
	return results, nil
}

func (l *Ledger) GetArtifact(ctx context.Context, artifactID core.ID) (*core.Artifact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	artifact, exists := l.artifacts[artifactID]
	if !exists {
		return nil, fmt.Errorf("artifact not found: %s", artifactID)
	}
	return &artifact, nil
}

func (l *Ledger) GetArtifactsBySweep(ctx context.Context, sweepID core.SweepID) ([]core.Artifact, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	ids := l.sweepArtifacts[sweepID]
	artifacts := make([]core.Artifact, 0, len(ids))
	for _, id := range ids {
		if artifact, ok := l.artifacts[id]; ok {
			artifacts = append(artifacts, artifact)
		}
	}
	return artifacts, nil
}
