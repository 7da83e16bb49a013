// Package channels implements the four experimental constraint channels
// behind the constraint.Channel interface. The labeler iterates whatever
// channel list it is given, so adding a channel is a configuration change
// here rather than a labeler change.
package channels

import (
	"scfscan/domain/constraint"
)

// SetConfig aggregates per-channel configuration for the standard channel
// set. Zero fields mean defaults throughout.
type SetConfig struct {
	AtlasMu        AtlasMuConfig
	HiggsInvisible HiggsInvisibleConfig
	FifthForce     FifthForceConfig
	QRNGTilt       QRNGTiltConfig
}

// DefaultSetConfig returns the standard calibration for all four channels.
func DefaultSetConfig() SetConfig {
	return SetConfig{
		AtlasMu:        DefaultAtlasMuConfig(),
		HiggsInvisible: DefaultHiggsInvisibleConfig(),
		FifthForce:     DefaultFifthForceConfig(),
		QRNGTilt:       DefaultQRNGTiltConfig(),
	}
}

// Resolved returns a copy with every zero field replaced by its default, so
// callers that scale bounds (the robustness harness) operate on concrete
// values instead of zero placeholders.
func (cfg SetConfig) Resolved() SetConfig {
	def := DefaultSetConfig()
	if cfg.AtlasMu.Mu == 0 {
		cfg.AtlasMu.Mu = def.AtlasMu.Mu
	}
	if cfg.AtlasMu.Sigma == 0 {
		cfg.AtlasMu.Sigma = def.AtlasMu.Sigma
	}
	if cfg.AtlasMu.SignalScale == 0 {
		cfg.AtlasMu.SignalScale = def.AtlasMu.SignalScale
	}
	if cfg.HiggsInvisible.BrMax == 0 {
		cfg.HiggsInvisible.BrMax = def.HiggsInvisible.BrMax
	}
	if cfg.HiggsInvisible.BrPerAlpha == 0 {
		cfg.HiggsInvisible.BrPerAlpha = def.HiggsInvisible.BrPerAlpha
	}
	if cfg.FifthForce.LabScreening == 0 {
		cfg.FifthForce.LabScreening = def.FifthForce.LabScreening
	}
	if cfg.QRNGTilt.EpsilonMax == 0 {
		cfg.QRNGTilt.EpsilonMax = def.QRNGTilt.EpsilonMax
	}
	if cfg.QRNGTilt.TiltScale == 0 {
		cfg.QRNGTilt.TiltScale = def.QRNGTilt.TiltScale
	}
	return cfg
}

// NewSet builds the standard channel list in its canonical order. Dominance
// labels are indices into this order, so it is part of the output contract:
// 0=ATLAS_mu, 1=Higgs_inv, 2=Fifth_force, 3=QRNG_tilt.
func NewSet(cfg SetConfig) []constraint.Channel {
	return []constraint.Channel{
		NewAtlasMuChannel(cfg.AtlasMu),
		NewHiggsInvisibleChannel(cfg.HiggsInvisible),
		NewFifthForceChannel(cfg.FifthForce),
		NewQRNGTiltChannel(cfg.QRNGTilt),
	}
}

// Names returns the channel names in list order.
func Names(chs []constraint.Channel) []string {
	names := make([]string, len(chs))
	for i, ch := range chs {
		names[i] = ch.Name()
	}
	return names
}
