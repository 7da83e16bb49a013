package channels

import (
	"scfscan/domain/constraint"
	"scfscan/domain/yukawa"
)

// HiggsInvisibleChannel bounds the invisible Higgs branching ratio a light
// mediator would open up.
type HiggsInvisibleChannel struct {
	cfg HiggsInvisibleConfig
}

// HiggsInvisibleConfig holds the branching-ratio ceiling and the linear
// alpha-to-branching estimate.
type HiggsInvisibleConfig struct {
	BrMax      float64 // invisible branching-ratio limit
	BrPerAlpha float64 // branching ratio per unit alpha below threshold
}

// DefaultHiggsInvisibleConfig returns the conservative published limit.
func DefaultHiggsInvisibleConfig() HiggsInvisibleConfig {
	return HiggsInvisibleConfig{
		BrMax:      constraint.DefaultBrMax,
		BrPerAlpha: constraint.DefaultBrPerAlpha,
	}
}

// NewHiggsInvisibleChannel creates the invisible-width channel. Zero config
// fields fall back to defaults.
func NewHiggsInvisibleChannel(cfg HiggsInvisibleConfig) *HiggsInvisibleChannel {
	def := DefaultHiggsInvisibleConfig()
	if cfg.BrMax == 0 {
		cfg.BrMax = def.BrMax
	}
	if cfg.BrPerAlpha == 0 {
		cfg.BrPerAlpha = def.BrPerAlpha
	}
	return &HiggsInvisibleChannel{cfg: cfg}
}

// Name returns the channel name
func (c *HiggsInvisibleChannel) Name() string {
	return "Higgs_inv"
}

// Description returns a human-readable description
func (c *HiggsInvisibleChannel) Description() string {
	return "Invisible Higgs branching ratio opened by a light mediator"
}

// Evaluate estimates the invisible branching ratio. The decay channel is
// only open when the mediator mass (derived from the interaction range) is
// below half the Higgs mass; above threshold the phase space is closed and
// the estimated branching ratio is zero.
func (c *HiggsInvisibleChannel) Evaluate(p constraint.Point) constraint.Result {
	mediatorMass := yukawa.MassFromRange(p.RangeM)

	br := 0.0
	if mediatorMass < yukawa.HiggsMass/2 {
		br = p.Strength * c.cfg.BrPerAlpha
	}

	return constraint.Result{Slack: c.cfg.BrMax - br, Bound: c.cfg.BrMax}
}
