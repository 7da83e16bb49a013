// Package calibration derives the QRNG tilt bound epsilon_max from raw bit
// sequences, with bootstrap or analytic confidence intervals, and pools
// per-source results into a combined bound.
package calibration

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"scfscan/domain/core"
)

// Method names for epsilon_max confidence intervals.
type Method string

const (
	MethodBootstrap95  Method = "bootstrap_95"
	MethodChi295       Method = "chi2_95"
	MethodMaxDeviation Method = "max_deviation"
)

// DefaultNBootstrap is the resample count for the bootstrap method.
const DefaultNBootstrap = 1000

// DefaultDeviationWindow is the block size for the max_deviation method.
const DefaultDeviationWindow = 1000

// Estimate is a derived epsilon_max with its confidence interval and the
// parameters that produced it.
type Estimate struct {
	EpsilonMax float64 `json:"epsilon_max"`
	CILower    float64 `json:"ci_lower"`
	CIUpper    float64 `json:"ci_upper"`
	Method     Method  `json:"method"`
	NBootstrap int     `json:"n_bootstrap,omitempty"`
	Seed       int64   `json:"seed,omitempty"`
}

// EpsilonHat is the point estimate: the absolute deviation of the bit mean
// from the unbiased 0.5.
func EpsilonHat(bits []int) (float64, error) {
	if len(bits) == 0 {
		return 0, core.ErrEmptyInput
	}
	sum := 0
	for _, b := range bits {
		sum += b
	}
	return math.Abs(float64(sum)/float64(len(bits)) - 0.5), nil
}

// Bootstrap95 resamples the bit sequence with replacement nBootstrap times
// and takes the 2.5/97.5 percentiles of the resampled deviations as the 95%
// interval. Resample b draws from a generator seeded seed+b, so a fixed seed
// reproduces byte-identical output. This determinism is a contract, not a
// convenience.
func Bootstrap95(bits []int, nBootstrap int, seed int64) (Estimate, error) {
	eps, err := EpsilonHat(bits)
	if err != nil {
		return Estimate{}, err
	}
	if nBootstrap <= 0 {
		nBootstrap = DefaultNBootstrap
	}

	n := len(bits)
	resampled := make([]float64, nBootstrap)
	for b := 0; b < nBootstrap; b++ {
		rng := rand.New(rand.NewSource(seed + int64(b)))
		sum := 0
		for i := 0; i < n; i++ {
			sum += bits[rng.Intn(n)]
		}
		resampled[b] = math.Abs(float64(sum)/float64(n) - 0.5)
	}

	lo, err := stats.Percentile(resampled, 2.5)
	if err != nil {
		return Estimate{}, err
	}
	hi, err := stats.Percentile(resampled, 97.5)
	if err != nil {
		return Estimate{}, err
	}

	return Estimate{
		EpsilonMax: eps,
		CILower:    lo,
		CIUpper:    hi,
		Method:     MethodBootstrap95,
		NBootstrap: nBootstrap,
		Seed:       seed,
	}, nil
}

// Chi295 derives the interval analytically from the binomial normal
// approximation on the bit proportion, then folds it around 0.5. When the
// proportion interval straddles 0.5 the lower epsilon bound is zero.
func Chi295(bits []int) (Estimate, error) {
	eps, err := EpsilonHat(bits)
	if err != nil {
		return Estimate{}, err
	}

	n := float64(len(bits))
	sum := 0
	for _, b := range bits {
		sum += b
	}
	p := float64(sum) / n
	se := math.Sqrt(p * (1 - p) / n)
	z := distuv.Normal{Mu: 0, Sigma: 1}.Quantile(0.975)

	lo, hi := p-z*se, p+z*se
	ciUpper := math.Max(math.Abs(lo-0.5), math.Abs(hi-0.5))
	ciLower := 0.0
	if lo > 0.5 || hi < 0.5 {
		ciLower = math.Min(math.Abs(lo-0.5), math.Abs(hi-0.5))
	}

	return Estimate{
		EpsilonMax: eps,
		CILower:    ciLower,
		CIUpper:    ciUpper,
		Method:     MethodChi295,
	}, nil
}

// MaxDeviation takes the worst block-wise deviation as a conservative
// ceiling. No sampling distribution is attached: the interval runs from zero
// to the ceiling itself.
func MaxDeviation(bits []int, window int) (Estimate, error) {
	if len(bits) == 0 {
		return Estimate{}, core.ErrEmptyInput
	}
	if window <= 0 || window > len(bits) {
		window = len(bits)
		if DefaultDeviationWindow < window {
			window = DefaultDeviationWindow
		}
	}

	worst := 0.0
	for start := 0; start+window <= len(bits); start += window {
		sum := 0
		for _, b := range bits[start : start+window] {
			sum += b
		}
		dev := math.Abs(float64(sum)/float64(window) - 0.5)
		if dev > worst {
			worst = dev
		}
	}

	return Estimate{
		EpsilonMax: worst,
		CILower:    0,
		CIUpper:    worst,
		Method:     MethodMaxDeviation,
	}, nil
}

// Calibrate dispatches on the method name.
func Calibrate(bits []int, method Method, nBootstrap int, seed int64, window int) (Estimate, error) {
	switch method {
	case MethodBootstrap95, "":
		return Bootstrap95(bits, nBootstrap, seed)
	case MethodChi295:
		return Chi295(bits)
	case MethodMaxDeviation:
		return MaxDeviation(bits, window)
	default:
		return Estimate{}, core.NewValidationError("method", "unknown calibration method "+string(method))
	}
}
