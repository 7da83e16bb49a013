package constraint

// Default channel calibration constants. These were once scattered through
// evaluator call sites as hardcoded literals; they live here as the single
// named source of defaults, and every one of them is overridable through the
// channel Config structs and the environment configuration.
const (
	// ATLAS signal-strength measurement mu = 1.023 +/- 0.056.
	DefaultAtlasMu    = 1.023
	DefaultAtlasSigma = 0.056

	// DefaultMuSignalScale maps alpha to a mu deviation. A placeholder toy
	// scaling kept as a calibration input, not a derived physical value.
	DefaultMuSignalScale = 1e6

	// Invisible branching-ratio ceiling: conservative and tight variants.
	DefaultBrMax      = 0.145
	TightBrMax        = 0.107
	DefaultBrPerAlpha = 0.1

	// Fifth-force allowed-alpha fallbacks. The envelope fallback applies when
	// an envelope table was supplied but has no excluded point near the range
	// in question; the bare fallback applies when no envelope exists at all.
	DefaultAlphaMaxEnvelopeFallback = 1e-3
	DefaultAlphaMaxFallback         = 1e-6

	// DefaultLabScreening is the laboratory screening factor Theta_lab.
	DefaultLabScreening = 1.0

	// QRNG tilt bound and the alpha-to-bias toy scaling.
	DefaultEpsilonMax = 0.002292
	DefaultTiltScale  = 1e3
)
