package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ComputeFamilyID derives a stable family identifier from the family key and
// its input p-values. Two families with identical keys and identical inputs
// hash to the same ID.
func ComputeFamilyID(key string, pvals []float64) FamilyID {
	var data strings.Builder
	data.WriteString(key)
	for _, p := range pvals {
		data.WriteByte('|')
		data.WriteString(strconv.FormatFloat(p, 'g', -1, 64))
	}
	return FamilyID(NewHash([]byte(data.String())))
}

// ComputeSweepFingerprint hashes the complete specification of a sweep:
// family IDs in execution order, the grid step, and the code version.
func ComputeSweepFingerprint(familyIDs []FamilyID, step float64, codeVersion string) Hash {
	var data strings.Builder
	for _, id := range familyIDs {
		data.WriteString(id.String())
		data.WriteByte('|')
	}
	data.WriteString(fmt.Sprintf("step=%s|version=%s",
		strconv.FormatFloat(step, 'g', -1, 64), codeVersion))
	return NewHash([]byte(data.String()))
}
