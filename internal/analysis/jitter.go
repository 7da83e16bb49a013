package analysis

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"scfscan/adapters/channels"
	"scfscan/domain/core"
	"scfscan/domain/curve"
	"scfscan/domain/island"
)

// Jitter defaults: trial count, digitization noise in log10(alpha), and the
// floor keeping perturbed strengths positive.
const (
	DefaultJitterTrials = 200
	DefaultJitterSigma  = 0.1
	jitterAlphaFloor    = 1e-20
)

// JitterConfig controls the curve-jitter Monte Carlo. Trial t uses seed
// Seed+t, so a fixed Seed reproduces the full trial set regardless of
// scheduling.
type JitterConfig struct {
	Trials     int
	SigmaLog10 float64
	Seed       int64
}

// JitterResult reports how often a viable island survives digitization noise
// on the exclusion envelope, and how much its percentile boundaries move.
type JitterResult struct {
	Trials       int                          `json:"trials"`
	Survived     int                          `json:"survived"`
	SurvivalRate float64                      `json:"survival_rate"`
	Verdict      string                       `json:"verdict"`
	BoundaryMean map[string]island.CoordStats `json:"boundary_mean,omitempty"`
	BoundaryStd  map[string]island.CoordStats `json:"boundary_std,omitempty"`
}

// JitterEnvelope perturbs the fifth-force envelope with Gaussian noise in
// log-strength space, relabels the grid per trial, and summarizes island
// survival. The coordinate grids are only read, never written, so trials run
// in parallel.
func JitterEnvelope(rangeGrid, strengthGrid [][]float64, coordGrids map[string][][]float64, base channels.SetConfig, env curve.Curve, cfg JitterConfig, useNormalized bool) (*JitterResult, error) {
	if len(env) == 0 {
		return nil, core.ErrEmptyInput
	}
	if cfg.Trials <= 0 {
		cfg.Trials = DefaultJitterTrials
	}
	if cfg.SigmaLog10 <= 0 {
		cfg.SigmaLog10 = DefaultJitterSigma
	}
	resolved := base.Resolved()

	summaries := make([]*island.Summary, cfg.Trials)

	var g errgroup.Group
	for t := 0; t < cfg.Trials; t++ {
		t := t
		g.Go(func() error {
			rng := rand.New(rand.NewSource(cfg.Seed + int64(t)))
			trialCfg := resolved
			trialCfg.FifthForce.Envelope = perturbCurve(env, rng, cfg.SigmaLog10)

			chs := channels.NewSet(trialCfg)
			labels, _, err := LabelGrid(rangeGrid, strengthGrid, chs, useNormalized)
			if err != nil {
				return err
			}

			summary, err := island.Summarize(ViableMask(labels), coordGrids)
			if err != nil {
				return err
			}
			summaries[t] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &JitterResult{Trials: cfg.Trials}
	perCoord := make(map[string][]island.CoordStats)
	for _, s := range summaries {
		if s == nil {
			continue
		}
		result.Survived++
		for name, cs := range s.Coords {
			perCoord[name] = append(perCoord[name], cs)
		}
	}

	result.SurvivalRate = float64(result.Survived) / float64(cfg.Trials)
	switch {
	case result.SurvivalRate > 0.7:
		result.Verdict = VerdictRobust
	case result.SurvivalRate >= 0.5:
		result.Verdict = VerdictModerate
	default:
		result.Verdict = VerdictFragile
	}

	if result.Survived > 0 {
		result.BoundaryMean = make(map[string]island.CoordStats, len(perCoord))
		result.BoundaryStd = make(map[string]island.CoordStats, len(perCoord))
		for name, series := range perCoord {
			mean, std, err := aggregateStats(series)
			if err != nil {
				return nil, err
			}
			result.BoundaryMean[name] = mean
			result.BoundaryStd[name] = std
		}
	}

	return result, nil
}

// perturbCurve adds Gaussian noise to log10(alpha) per point, clamped to the
// positive floor.
func perturbCurve(env curve.Curve, rng *rand.Rand, sigma float64) curve.Curve {
	out := make(curve.Curve, len(env))
	for i, p := range env {
		logAlpha := math.Log10(p.Alpha) + rng.NormFloat64()*sigma
		p.Alpha = math.Max(math.Pow(10, logAlpha), jitterAlphaFloor)
		out[i] = p
	}
	return out
}

func aggregateStats(series []island.CoordStats) (mean, std island.CoordStats, err error) {
	fields := []func(cs island.CoordStats) float64{
		func(cs island.CoordStats) float64 { return cs.Min },
		func(cs island.CoordStats) float64 { return cs.Max },
		func(cs island.CoordStats) float64 { return cs.P05 },
		func(cs island.CoordStats) float64 { return cs.P50 },
		func(cs island.CoordStats) float64 { return cs.P95 },
	}
	assign := []func(cs *island.CoordStats, v float64){
		func(cs *island.CoordStats, v float64) { cs.Min = v },
		func(cs *island.CoordStats, v float64) { cs.Max = v },
		func(cs *island.CoordStats, v float64) { cs.P05 = v },
		func(cs *island.CoordStats, v float64) { cs.P50 = v },
		func(cs *island.CoordStats, v float64) { cs.P95 = v },
	}

	for k := range fields {
		values := make([]float64, len(series))
		for i, cs := range series {
			values[i] = fields[k](cs)
		}
		m, err := stats.Mean(values)
		if err != nil {
			return mean, std, err
		}
		s, err := stats.StandardDeviation(values)
		if err != nil {
			return mean, std, err
		}
		assign[k](&mean, m)
		assign[k](&std, s)
	}
	return mean, std, nil
}
