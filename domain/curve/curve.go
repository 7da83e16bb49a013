package curve

import (
	"math"
	"sort"

	"scfscan/domain/core"
)

// Point is one digitized row of an exclusion curve: an interaction range
// lambda (meters), a strength alpha, whether the point is excluded, and the
// publication it was digitized from.
type Point struct {
	Lambda   float64
	Alpha    float64
	Excluded bool
	Source   string
}

// Curve is an ordered (non-unique lambda) table of digitized points.
type Curve []Point

// EnvelopeSource labels points produced by envelope merging.
const EnvelopeSource = "envelope"

// DefaultEnvelopeResolution is the number of log-lambda bins used when
// merging curves into an envelope.
const DefaultEnvelopeResolution = 1000

// Excluded returns only the excluded points of the curve.
func (c Curve) ExcludedPoints() Curve {
	out := make(Curve, 0, len(c))
	for _, p := range c {
		if p.Excluded {
			out = append(out, p)
		}
	}
	return out
}

// MinExcludedAlphaNear returns the alpha of the excluded point whose lambda is
// nearest (in log space) to the given range value. Among equally-near points
// the smallest alpha wins. Returns false when the curve has no excluded point.
func (c Curve) MinExcludedAlphaNear(lambda float64) (float64, bool) {
	best := math.Inf(1)
	bestDist := math.Inf(1)
	found := false
	logL := math.Log10(lambda)

	for _, p := range c {
		if !p.Excluded || p.Lambda <= 0 {
			continue
		}
		d := math.Abs(math.Log10(p.Lambda) - logL)
		if d < bestDist || (d == bestDist && p.Alpha < best) {
			bestDist = d
			best = p.Alpha
			found = true
		}
	}
	return best, found
}

// MergeEnvelope combines several digitized curves into the most restrictive
// envelope: lambda is binned into a fine log grid and each bin keeps the
// minimum excluded alpha among points within a +/-10% lambda window of the
// bin center. An input with no excluded points yields an empty curve, which
// is a distinct outcome rather than an error.
func MergeEnvelope(curves []Curve, resolution int) (Curve, error) {
	if resolution <= 0 {
		resolution = DefaultEnvelopeResolution
	}
	if len(curves) == 0 {
		return nil, core.ErrEmptyInput
	}

	var excluded Curve
	for _, c := range curves {
		excluded = append(excluded, c.ExcludedPoints()...)
	}
	if len(excluded) == 0 {
		return Curve{}, nil
	}

	loLam, hiLam := math.Inf(1), math.Inf(-1)
	for _, p := range excluded {
		if p.Lambda <= 0 {
			return nil, core.NewValidationError("lambda", "must be positive for envelope merging")
		}
		loLam = math.Min(loLam, p.Lambda)
		hiLam = math.Max(hiLam, p.Lambda)
	}

	loLog, hiLog := math.Log10(loLam), math.Log10(hiLam)
	out := make(Curve, 0, resolution)
	for i := 0; i < resolution; i++ {
		frac := 0.0
		if resolution > 1 {
			frac = float64(i) / float64(resolution-1)
		}
		center := math.Pow(10, loLog+frac*(hiLog-loLog))

		minAlpha := math.Inf(1)
		hit := false
		for _, p := range excluded {
			if p.Lambda >= center*0.9 && p.Lambda <= center*1.1 {
				if p.Alpha < minAlpha {
					minAlpha = p.Alpha
					hit = true
				}
			}
		}
		if hit {
			out = append(out, Point{Lambda: center, Alpha: minAlpha, Excluded: true, Source: EnvelopeSource})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Lambda < out[j].Lambda })
	return out, nil
}

// Hash returns a reproducibility hash over the curve's numeric content in its
// current row order.
func (c Curve) Hash() core.CurveHash {
	lambdas := make([]float64, len(c))
	alphas := make([]float64, len(c))
	for i, p := range c {
		lambdas[i] = p.Lambda
		alphas[i] = p.Alpha
	}
	return core.ComputeCurveHash(lambdas, alphas)
}
