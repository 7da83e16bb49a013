package channels

import (
	"scfscan/domain/constraint"
	"scfscan/domain/curve"
)

// FifthForceChannel compares the (lab-screened) interaction strength against
// torsion-balance / Casimir exclusion envelopes at the point's range.
type FifthForceChannel struct {
	cfg FifthForceConfig
}

// FifthForceConfig resolves the allowed maximum strength in priority order:
// explicit override, envelope lookup near the range value, fallback constant.
// The fallback differs depending on whether an envelope was supplied at all,
// mirroring the documented ad hoc defaults.
type FifthForceConfig struct {
	LabScreening     float64     // Theta_lab, applied squared to the strength
	AlphaMaxOverride float64     // explicit allowed maximum; 0 = unset
	Envelope         curve.Curve // merged exclusion envelope; nil = none
}

// DefaultFifthForceConfig returns an unscreened channel with no envelope.
func DefaultFifthForceConfig() FifthForceConfig {
	return FifthForceConfig{LabScreening: constraint.DefaultLabScreening}
}

// NewFifthForceChannel creates the fifth-force channel. A zero screening
// factor falls back to the default (no screening).
func NewFifthForceChannel(cfg FifthForceConfig) *FifthForceChannel {
	if cfg.LabScreening == 0 {
		cfg.LabScreening = constraint.DefaultLabScreening
	}
	return &FifthForceChannel{cfg: cfg}
}

// Name returns the channel name
func (c *FifthForceChannel) Name() string {
	return "Fifth_force"
}

// Description returns a human-readable description
func (c *FifthForceChannel) Description() string {
	return "Yukawa fifth-force exclusion envelope at the interaction range"
}

// Evaluate screens the strength by Theta_lab^2 and compares it to the
// allowed maximum at this range.
func (c *FifthForceChannel) Evaluate(p constraint.Point) constraint.Result {
	effective := c.cfg.LabScreening * c.cfg.LabScreening * p.Strength
	allowed := c.allowedMax(p.RangeM)
	return constraint.Result{Slack: allowed - effective, Bound: allowed}
}

func (c *FifthForceChannel) allowedMax(rangeM float64) float64 {
	if c.cfg.AlphaMaxOverride > 0 {
		return c.cfg.AlphaMaxOverride
	}
	if c.cfg.Envelope != nil {
		if alpha, ok := c.cfg.Envelope.MinExcludedAlphaNear(rangeM); ok {
			return alpha
		}
		return constraint.DefaultAlphaMaxEnvelopeFallback
	}
	return constraint.DefaultAlphaMaxFallback
}
