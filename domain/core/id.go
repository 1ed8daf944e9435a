package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	SweepID     ID
	FamilyID    ID
	VariableKey ID
)

// String conversions for domain IDs
func (id SweepID) String() string     { return ID(id).String() }
func (id FamilyID) String() string    { return ID(id).String() }
func (id VariableKey) String() string { return ID(id).String() }

// ParseSweepID parses a string into SweepID
func ParseSweepID(s string) (SweepID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("sweep ID cannot be empty")
	}
	return SweepID(s), nil
}

// ParseFamilyID parses a string into FamilyID
func ParseFamilyID(s string) (FamilyID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("family ID cannot be empty")
	}
	return FamilyID(s), nil
}

// Artifact represents any output of the system
type Artifact struct {
	ID        ID           `json:"id"`
	Kind      ArtifactKind `json:"kind"`
	Payload   interface{}  `json:"payload"`
	CreatedAt Timestamp    `json:"created_at"`
}

// ArtifactKind defines types of artifacts
type ArtifactKind string

const (
	// ArtifactQValues carries the per-hypothesis sharpened q-values of one family.
	ArtifactQValues ArtifactKind = "qvalues"
	// ArtifactFamilySummary carries descriptive statistics of one family's raw p-values.
	ArtifactFamilySummary ArtifactKind = "family_summary"
	// ArtifactSweepManifest captures audit metadata for a sweep (counts, step, fingerprint).
	ArtifactSweepManifest ArtifactKind = "sweep_manifest"
)
