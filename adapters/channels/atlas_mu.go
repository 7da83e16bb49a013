package channels

import (
	"scfscan/domain/constraint"
)

// AtlasMuChannel compares the predicted Higgs signal-strength shift against
// the ATLAS combined measurement's 2-sigma window.
type AtlasMuChannel struct {
	cfg AtlasMuConfig
}

// AtlasMuConfig holds the measurement and the alpha-to-deviation mapping.
type AtlasMuConfig struct {
	Mu          float64 // central value of the measurement
	Sigma       float64 // 1-sigma uncertainty
	SignalScale float64 // deviation per unit alpha, toy calibration constant
}

// DefaultAtlasMuConfig returns the published measurement with the historical
// toy scaling.
func DefaultAtlasMuConfig() AtlasMuConfig {
	return AtlasMuConfig{
		Mu:          constraint.DefaultAtlasMu,
		Sigma:       constraint.DefaultAtlasSigma,
		SignalScale: constraint.DefaultMuSignalScale,
	}
}

// NewAtlasMuChannel creates the ATLAS signal-strength channel. Zero config
// fields fall back to defaults.
func NewAtlasMuChannel(cfg AtlasMuConfig) *AtlasMuChannel {
	def := DefaultAtlasMuConfig()
	if cfg.Mu == 0 {
		cfg.Mu = def.Mu
	}
	if cfg.Sigma == 0 {
		cfg.Sigma = def.Sigma
	}
	if cfg.SignalScale == 0 {
		cfg.SignalScale = def.SignalScale
	}
	return &AtlasMuChannel{cfg: cfg}
}

// Name returns the channel name
func (c *AtlasMuChannel) Name() string {
	return "ATLAS_mu"
}

// Description returns a human-readable description
func (c *AtlasMuChannel) Description() string {
	return "Higgs signal-strength deviation vs the ATLAS 2-sigma window"
}

// Evaluate computes the slack to the nearer violated side of the 2-sigma
// window. The predicted signal strength is 1 + alpha*SignalScale; a positive
// deviation presses against the upper limit, anything else against the
// lower, including the exact zero. Bound is the 2-sigma width.
func (c *AtlasMuChannel) Evaluate(p constraint.Point) constraint.Result {
	deviation := p.Strength * c.cfg.SignalScale
	predicted := 1 + deviation
	upper := c.cfg.Mu + 2*c.cfg.Sigma
	lower := c.cfg.Mu - 2*c.cfg.Sigma

	var slack float64
	if deviation > 0 {
		slack = upper - predicted
	} else {
		slack = predicted - lower
	}

	return constraint.Result{Slack: slack, Bound: 2 * c.cfg.Sigma}
}
