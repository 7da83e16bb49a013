package calibration

import (
	"time"

	"scfscan/domain/core"
)

// Record is one source's calibration result, tagged with the reproducibility
// hash of its exact input bits.
type Record struct {
	SourceID   string        `json:"source_id"`
	NBits      int           `json:"n_bits"`
	EpsilonMax float64       `json:"epsilon_max"`
	CILower    float64       `json:"ci_lower"`
	CIUpper    float64       `json:"ci_upper"`
	Method     Method        `json:"method"`
	NBootstrap int           `json:"n_bootstrap,omitempty"`
	Seed       int64         `json:"seed,omitempty"`
	DataHash   core.DataHash `json:"data_hash"`
}

// Pooled is the combined multi-source bound.
type Pooled struct {
	EpsilonMax float64 `json:"epsilon_max"`
	CILower    float64 `json:"ci_lower"`
	CIUpper    float64 `json:"ci_upper"`
	Method     string  `json:"method"`
}

// Reproducibility records everything needed to regenerate the document
// byte-for-byte (modulo timestamps).
type Reproducibility struct {
	RunID       core.RunID        `json:"run_id"`
	DataHashes  map[string]string `json:"data_hashes"`
	SeedUsed    int64             `json:"seed_used"`
	Method      Method            `json:"method"`
	NBootstrap  int               `json:"n_bootstrap"`
	ConfigHash  string            `json:"config_hash"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Document is the calibration JSON written for downstream consumers.
type Document struct {
	Sources         []Record           `json:"sources"`
	Pooled          Pooled             `json:"pooled"`
	Sensitivity     map[string]float64 `json:"sensitivity"`
	Reproducibility Reproducibility    `json:"reproducibility"`
}

// NewRecord builds a Record from an estimate and its input bits.
func NewRecord(sourceID string, bits []int, est Estimate) Record {
	return Record{
		SourceID:   sourceID,
		NBits:      len(bits),
		EpsilonMax: est.EpsilonMax,
		CILower:    est.CILower,
		CIUpper:    est.CIUpper,
		Method:     est.Method,
		NBootstrap: est.NBootstrap,
		Seed:       est.Seed,
		DataHash:   core.ComputeBitsHash(bits),
	}
}
