package ports

import (
	"context"

	"sharpq/domain/core"
)

// LedgerWriterPort provides append-only write access to artifacts
// This is the ONLY way to write artifacts - prevents read-after-write coupling
type LedgerWriterPort interface {
	StoreArtifact(ctx context.Context, sweepID core.SweepID, artifact core.Artifact) error
}

// LedgerReaderPort provides read-only access to stored artifacts
// Use this for queries, replay, and API access
type LedgerReaderPort interface {
	ListArtifacts(ctx context.Context, filters ArtifactFilters) ([]core.Artifact, error)
	GetArtifact(ctx context.Context, artifactID core.ID) (*core.Artifact, error)
	GetArtifactsBySweep(ctx context.Context, sweepID core.SweepID) ([]core.Artifact, error)
}

// ArtifactFilters for querying artifacts
type ArtifactFilters struct {
	SweepID *core.SweepID
	Kind    *core.ArtifactKind
	Limit   int
}

// LedgerPort combines read and write access
type LedgerPort interface {
	LedgerWriterPort
	LedgerReaderPort
}
