package calibration

import (
	"fmt"

	"scfscan/domain/core"
)

// ConfigFingerprint hashes the estimation parameters that determine a
// calibration run's output. Two runs over the same captures with equal
// fingerprints and seeds must produce identical documents.
func ConfigFingerprint(method Method, nBootstrap int, seed int64, window int, poolMode string) core.ConfigHash {
	return core.ComputeConfigHash(map[string]interface{}{
		"method":      string(method),
		"n_bootstrap": nBootstrap,
		"seed":        seed,
		"window":      window,
		"pool_mode":   poolMode,
	})
}

// Verify checks a fresh calibration run against a previously published
// document: same seed, same estimation config, same per-source input bits.
// Mismatches come back wrapping the determinism sentinels so callers can
// distinguish them from I/O failures.
func Verify(prior, current *Document) error {
	if prior == nil || current == nil {
		return core.ErrEmptyInput
	}

	if prior.Reproducibility.SeedUsed != current.Reproducibility.SeedUsed {
		return fmt.Errorf("%w: document used seed %d, this run used %d",
			core.ErrSeedMismatch, prior.Reproducibility.SeedUsed, current.Reproducibility.SeedUsed)
	}
	if prior.Reproducibility.ConfigHash != "" &&
		prior.Reproducibility.ConfigHash != current.Reproducibility.ConfigHash {
		return fmt.Errorf("%w: estimation config changed since the document was generated",
			core.ErrHashMismatch)
	}

	for id, want := range prior.Reproducibility.DataHashes {
		got, ok := current.Reproducibility.DataHashes[id]
		if !ok {
			return fmt.Errorf("%w: source %s is missing from this run", core.ErrHashMismatch, id)
		}
		if got != want {
			return fmt.Errorf("%w: source %s bits differ from the documented capture",
				core.ErrHashMismatch, id)
		}
	}
	return nil
}
