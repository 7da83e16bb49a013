package analysis

import (
	"scfscan/adapters/channels"
	"scfscan/domain/constraint"
	"scfscan/domain/curve"
	"scfscan/domain/island"
)

// DefaultBoundScale is the fractional bound perturbation applied per
// scenario.
const DefaultBoundScale = 0.10

// Robustness verdicts.
const (
	VerdictRobust   = "robust"
	VerdictModerate = "moderate"
	VerdictFragile  = "fragile"
	VerdictEmpty    = "empty"
)

// Scenario is one perturbed labeling run: a named bound scaled up or down.
type Scenario struct {
	Name       string            `json:"name"`
	NViable    int               `json:"n_viable"`
	TopChannel string            `json:"top_channel"`
	Dominance  *island.Dominance `json:"dominance"`
}

// RobustnessReport holds the baseline run, every perturbed run, and the
// overall verdict: robust when the baseline-dominant channel keeps the
// largest share under every perturbation, fragile otherwise.
type RobustnessReport struct {
	Baseline  Scenario   `json:"baseline"`
	Scenarios []Scenario `json:"scenarios"`
	Verdict   string     `json:"verdict"`
	Scale     float64    `json:"scale"`
}

// PerturbBounds re-runs grid labeling with each channel bound individually
// scaled by +/-scale. All four bounds participate, including the ATLAS
// 2-sigma width.
func PerturbBounds(rangeGrid, strengthGrid [][]float64, base channels.SetConfig, useNormalized bool, scale float64) (*RobustnessReport, error) {
	if scale <= 0 {
		scale = DefaultBoundScale
	}
	resolved := base.Resolved()

	baseline, err := runScenario("baseline", resolved, rangeGrid, strengthGrid, useNormalized)
	if err != nil {
		return nil, err
	}

	report := &RobustnessReport{Baseline: baseline, Scale: scale}

	type mutation struct {
		name   string
		mutate func(cfg channels.SetConfig, factor float64) channels.SetConfig
	}
	mutations := []mutation{
		{"atlas_width", func(cfg channels.SetConfig, f float64) channels.SetConfig {
			cfg.AtlasMu.Sigma *= f
			return cfg
		}},
		{"higgs_br_max", func(cfg channels.SetConfig, f float64) channels.SetConfig {
			cfg.HiggsInvisible.BrMax *= f
			return cfg
		}},
		{"ff_alpha_max", scaleFifthForce},
		{"qrng_epsilon_max", func(cfg channels.SetConfig, f float64) channels.SetConfig {
			cfg.QRNGTilt.EpsilonMax *= f
			return cfg
		}},
	}

	for _, m := range mutations {
		for _, dir := range []struct {
			suffix string
			factor float64
		}{{"_up", 1 + scale}, {"_down", 1 - scale}} {
			cfg := m.mutate(resolved, dir.factor)
			sc, err := runScenario(m.name+dir.suffix, cfg, rangeGrid, strengthGrid, useNormalized)
			if err != nil {
				return nil, err
			}
			report.Scenarios = append(report.Scenarios, sc)
		}
	}

	report.Verdict = verdict(baseline, report.Scenarios)
	return report, nil
}

// scaleFifthForce perturbs whatever resolves the allowed alpha: the explicit
// override if set, the envelope alphas if present, the bare fallback
// otherwise.
func scaleFifthForce(cfg channels.SetConfig, f float64) channels.SetConfig {
	switch {
	case cfg.FifthForce.AlphaMaxOverride > 0:
		cfg.FifthForce.AlphaMaxOverride *= f
	case cfg.FifthForce.Envelope != nil:
		scaled := make(curve.Curve, len(cfg.FifthForce.Envelope))
		for i, p := range cfg.FifthForce.Envelope {
			p.Alpha *= f
			scaled[i] = p
		}
		cfg.FifthForce.Envelope = scaled
	default:
		cfg.FifthForce.AlphaMaxOverride = constraint.DefaultAlphaMaxFallback * f
	}
	return cfg
}

func runScenario(name string, cfg channels.SetConfig, rangeGrid, strengthGrid [][]float64, useNormalized bool) (Scenario, error) {
	chs := channels.NewSet(cfg)
	labels, _, err := LabelGrid(rangeGrid, strengthGrid, chs, useNormalized)
	if err != nil {
		return Scenario{}, err
	}

	dom := DominanceBreakdown(labels, chs)
	top, _ := TopChannel(dom, chs)

	n := 0
	for _, row := range labels {
		for _, l := range row {
			if l != constraint.LabelExcluded {
				n++
			}
		}
	}

	return Scenario{Name: name, NViable: n, TopChannel: top, Dominance: dom}, nil
}

func verdict(baseline Scenario, scenarios []Scenario) string {
	if baseline.NViable == 0 {
		return VerdictEmpty
	}
	for _, sc := range scenarios {
		if sc.TopChannel != baseline.TopChannel {
			return VerdictFragile
		}
	}
	return VerdictRobust
}
