// Package qrng holds the domain types for quantum-RNG bit sequences and
// their ingestion provenance.
package qrng

import (
	"time"

	"scfscan/domain/core"
)

// Bit is one validated row of a QRNG capture: when it was sampled, its
// value, and which hardware source produced it.
type Bit struct {
	Timestamp time.Time
	Bit       int
	SourceID  core.SourceID
}

// Manifest is the provenance record written alongside every ingested
// capture file.
type Manifest struct {
	RunID        core.RunID     `json:"run_id"`
	Filename     string         `json:"filename"`
	SHA256       string         `json:"sha256"`
	Rows         int            `json:"rows"`
	TimeMin      time.Time      `json:"time_min"`
	TimeMax      time.Time      `json:"time_max"`
	SourceCounts map[string]int `json:"source_counts"`
	Warnings     []string       `json:"warnings,omitempty"`
}

// BySource groups bit values per source, preserving file order within each
// source.
func BySource(bits []Bit) map[string][]int {
	out := make(map[string][]int)
	for _, b := range bits {
		key := b.SourceID.String()
		out[key] = append(out[key], b.Bit)
	}
	return out
}
