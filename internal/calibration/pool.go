package calibration

import (
	"math"

	"scfscan/domain/core"
)

// Pooling modes.
const (
	PoolInverseVariance = "inverse_variance"
	PoolConservativeMax = "max"
)

// ci95Width converts a 95% interval width to an approximate standard
// deviation (width / (2 * 1.96)).
const ciToSigma = 3.92

// sigmaFloor keeps degenerate zero-width intervals from collapsing the
// weighting.
const sigmaFloor = 1e-12

// Pool combines per-source calibration records into one bound. The
// inverse-variance mode weights each source by 1/sigma^2 with sigma taken
// from its CI width; the max mode conservatively adopts the worst source.
// The pooled lower bound is clamped at zero since a bias magnitude cannot be
// negative.
func Pool(records []Record, mode string) (Pooled, error) {
	if len(records) == 0 {
		return Pooled{}, core.ErrEmptyInput
	}

	switch mode {
	case PoolConservativeMax:
		worst := records[0]
		for _, r := range records[1:] {
			if r.EpsilonMax > worst.EpsilonMax {
				worst = r
			}
		}
		return Pooled{
			EpsilonMax: worst.EpsilonMax,
			CILower:    math.Max(worst.CILower, 0),
			CIUpper:    worst.CIUpper,
			Method:     PoolConservativeMax,
		}, nil

	case PoolInverseVariance, "":
		sumW, sumWE := 0.0, 0.0
		for _, r := range records {
			sigma := (r.CIUpper - r.CILower) / ciToSigma
			if sigma < sigmaFloor {
				sigma = sigmaFloor
			}
			w := 1 / (sigma * sigma)
			sumW += w
			sumWE += w * r.EpsilonMax
		}

		eps := sumWE / sumW
		pooledSigma := math.Sqrt(1 / sumW)
		return Pooled{
			EpsilonMax: eps,
			CILower:    math.Max(eps-1.96*pooledSigma, 0),
			CIUpper:    eps + 1.96*pooledSigma,
			Method:     PoolInverseVariance,
		}, nil

	default:
		return Pooled{}, core.NewValidationError("mode", "unknown pooling mode "+mode)
	}
}
