package constraint

// Point is a single location in derived parameter space: an interaction
// strength alpha (dimensionless) and an interaction range lambda (meters).
// Evaluators that need the mediator mass derive it from the range.
type Point struct {
	Strength float64 // alpha
	RangeM   float64 // lambda, meters
}

// Result is one channel's verdict at one point. Slack is the signed distance
// from the exclusion boundary (positive = inside the allowed region, negative
// = excluded, zero = exactly on the boundary). Bound is the channel's
// characteristic scale used to normalize slacks for cross-channel comparison.
// A negative slack is the designed excluded signal, never an error.
type Result struct {
	Slack float64 `json:"slack"`
	Bound float64 `json:"bound"`
}

// Normalized returns slack/bound when bound is positive, raw slack otherwise.
// The raw fallback avoids division by zero for degenerate bounds; this is a
// deliberate policy, not a numerical accident.
func (r Result) Normalized() float64 {
	if r.Bound > 0 {
		return r.Slack / r.Bound
	}
	return r.Slack
}

// Channel is a single experimental exclusion boundary. Evaluate must be a
// pure function of the point and the channel's own configuration: no shared
// mutable state, total over all finite inputs.
type Channel interface {
	Name() string
	Description() string
	Evaluate(p Point) Result
}

// LabelExcluded marks a grid point violating at least one channel. Viable
// points carry the index of their dominant (tightest) channel instead.
const LabelExcluded = -1
