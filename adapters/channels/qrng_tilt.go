package channels

import (
	"math"

	"scfscan/domain/constraint"
)

// QRNGTiltChannel bounds the predicted bit-bias tilt in quantum random
// number generators by the calibrated epsilon ceiling.
type QRNGTiltChannel struct {
	cfg QRNGTiltConfig
}

// QRNGTiltConfig holds the calibrated bias ceiling and the alpha-to-bias
// mapping.
type QRNGTiltConfig struct {
	EpsilonMax float64 // calibrated bias ceiling (see internal/calibration)
	TiltScale  float64 // predicted bias per unit alpha, toy calibration constant
}

// DefaultQRNGTiltConfig returns the pooled multi-source calibration value.
func DefaultQRNGTiltConfig() QRNGTiltConfig {
	return QRNGTiltConfig{
		EpsilonMax: constraint.DefaultEpsilonMax,
		TiltScale:  constraint.DefaultTiltScale,
	}
}

// NewQRNGTiltChannel creates the QRNG tilt channel. Zero config fields fall
// back to defaults.
func NewQRNGTiltChannel(cfg QRNGTiltConfig) *QRNGTiltChannel {
	def := DefaultQRNGTiltConfig()
	if cfg.EpsilonMax == 0 {
		cfg.EpsilonMax = def.EpsilonMax
	}
	if cfg.TiltScale == 0 {
		cfg.TiltScale = def.TiltScale
	}
	return &QRNGTiltChannel{cfg: cfg}
}

// Name returns the channel name
func (c *QRNGTiltChannel) Name() string {
	return "QRNG_tilt"
}

// Description returns a human-readable description
func (c *QRNGTiltChannel) Description() string {
	return "Predicted QRNG bit-bias tilt vs the calibrated epsilon ceiling"
}

// Evaluate maps alpha to a predicted bias and measures the distance to the
// ceiling. The bias enters by magnitude, so both tilt signs are bounded.
func (c *QRNGTiltChannel) Evaluate(p constraint.Point) constraint.Result {
	bias := p.Strength * c.cfg.TiltScale
	return constraint.Result{
		Slack: c.cfg.EpsilonMax - math.Abs(bias),
		Bound: c.cfg.EpsilonMax,
	}
}
