package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
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

// Domain-specific hash types
type (
	DataHash   Hash
	CurveHash  Hash
	ConfigHash Hash
)

// Constructors
func NewDataHash(data []byte) DataHash     { return DataHash(NewHash(data)) }
func NewCurveHash(data []byte) CurveHash   { return CurveHash(NewHash(data)) }
func NewConfigHash(data []byte) ConfigHash { return ConfigHash(NewHash(data)) }

// String conversions
func (h DataHash) String() string   { return Hash(h).String() }
func (h CurveHash) String() string  { return Hash(h).String() }
func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeBitsHash hashes a binary bit sequence for calibration reproducibility.
// The hash covers the exact bit order, so reordered inputs produce different hashes.
func ComputeBitsHash(bits []int) DataHash {
	var data strings.Builder
	data.Grow(len(bits))
	for _, b := range bits {
		if b == 0 {
			data.WriteByte('0')
		} else {
			data.WriteByte('1')
		}
	}
	return NewDataHash([]byte(data.String()))
}

// ComputeCurveHash hashes an exclusion curve's numeric content.
// Rows are hashed in the given order; callers should sort first if order is
// not meaningful.
func ComputeCurveHash(lambdas, alphas []float64) CurveHash {
	var data strings.Builder
	for i := range lambdas {
		data.WriteString(strconv.FormatFloat(lambdas[i], 'e', 17, 64))
		data.WriteByte(',')
		if i < len(alphas) {
			data.WriteString(strconv.FormatFloat(alphas[i], 'e', 17, 64))
		}
		data.WriteByte('\n')
	}
	return NewCurveHash([]byte(data.String()))
}

// ComputeConfigHash hashes a flat configuration map with sorted keys so the
// result is independent of map iteration order.
func ComputeConfigHash(fields map[string]interface{}) ConfigHash {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		data.WriteString(fmt.Sprintf("%v", fields[key]))
	}
	return NewConfigHash([]byte(data.String()))
}
