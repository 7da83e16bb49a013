package yukawa

import (
	"math"
	"strings"

	"scfscan/domain/core"
)

// Physical constants, GeV units unless noted.
const (
	// HBarC converts an energy-units mass to a Compton range in meters.
	HBarC = 197.3e-15 // GeV*m

	HiggsMass         = 125.0
	HiggsVEV          = 246.0
	ReducedPlanckMass = 2.435e18
)

// Model selects how the mixing angle maps to an interaction strength.
type Model string

const (
	ModelSimple        Model = "simple"
	ModelNormalized    Model = "normalized"
	ModelScreened      Model = "screened"
	ModelScaleBreaking Model = "scale_breaking"
	ModelPortal        Model = "portal"
)

// Unit names accepted for the mediator mass.
type Unit string

const (
	UnitEV  Unit = "ev"
	UnitKeV Unit = "kev"
	UnitMeV Unit = "mev"
	UnitGeV Unit = "gev"
)

var unitToGeV = map[Unit]float64{
	UnitEV:  1e-9,
	UnitKeV: 1e-6,
	UnitMeV: 1e-3,
	UnitGeV: 1.0,
}

// Options carries the optional model parameters. Zero values mean "not
// supplied": the portal coupling then defaults to 1.0 and the screening
// factor to 1.0 (no screening); a zero breaking mass simply skips the
// suppression factor in the normalized variant.
type Options struct {
	Unit            Unit    // mass unit, default GeV
	BreakingMass    float64 // mu_sb in GeV
	PortalCoupling  float64 // g, portal variant only
	ScreeningFactor float64 // Theta, applied squared when screening is on
	Screened        bool    // apply screening in the normalized variant
}

// Map converts fundamental parameters (mediator mass, mixing angle) into
// derived Yukawa parameters (interaction range in meters, dimensionless
// interaction strength) under the selected model variant. Pure and
// side-effect free; safe to call per grid point in any order.
func Map(mass, mixingAngle float64, model Model, opts Options) (rangeM, strength float64, err error) {
	massGeV, err := MassToGeV(mass, opts.Unit)
	if err != nil {
		return 0, 0, err
	}

	rangeM = HBarC / massGeV

	switch model {
	case ModelSimple:
		strength = mixingAngle * mixingAngle

	case ModelNormalized, ModelScreened:
		beta := (ReducedPlanckMass / HiggsVEV) * math.Sin(mixingAngle)
		strength = 2 * beta * beta
		if opts.BreakingMass > 0 {
			s := opts.BreakingMass / HiggsMass
			strength *= s * s * s * s
		}
		if model == ModelScreened || opts.Screened {
			theta := opts.ScreeningFactor
			if theta == 0 {
				theta = 1.0
			}
			strength *= theta * theta
		}

	case ModelScaleBreaking:
		if opts.BreakingMass <= 0 {
			return 0, 0, core.NewMissingParameterError("breaking_mass", string(model))
		}
		s := opts.BreakingMass / HiggsMass
		strength = mixingAngle * mixingAngle * s * s

	case ModelPortal:
		g := opts.PortalCoupling
		if g == 0 {
			g = 1.0
		}
		strength = mixingAngle * mixingAngle * g * g

	default:
		return 0, 0, core.NewUnknownModelError(string(model))
	}

	return rangeM, strength, nil
}

// MassToGeV converts a mass to GeV. An empty unit means GeV. Mass must be
// strictly positive.
func MassToGeV(mass float64, unit Unit) (float64, error) {
	if mass <= 0 {
		return 0, core.NewValidationError("mass", "must be positive")
	}
	if unit == "" {
		unit = UnitGeV
	}
	factor, ok := unitToGeV[Unit(strings.ToLower(string(unit)))]
	if !ok {
		return 0, core.NewUnknownMassUnitError(string(unit))
	}
	return mass * factor, nil
}

// MassFromRange inverts the range mapping: the mediator mass in GeV whose
// Compton range equals rangeM meters.
func MassFromRange(rangeM float64) float64 {
	return HBarC / rangeM
}

// MapGrid applies Map over a meshgrid of mass and mixing-angle axes,
// returning rangeM and strength grids with shape [len(masses)][len(angles)].
func MapGrid(masses, angles []float64, model Model, opts Options) (rangeGrid, strengthGrid [][]float64, err error) {
	if len(masses) == 0 || len(angles) == 0 {
		return nil, nil, core.ErrEmptyInput
	}

	rangeGrid = make([][]float64, len(masses))
	strengthGrid = make([][]float64, len(masses))
	for i, m := range masses {
		rangeGrid[i] = make([]float64, len(angles))
		strengthGrid[i] = make([]float64, len(angles))
		for j, a := range angles {
			r, s, err := Map(m, a, model, opts)
			if err != nil {
				return nil, nil, err
			}
			rangeGrid[i][j] = r
			strengthGrid[i][j] = s
		}
	}
	return rangeGrid, strengthGrid, nil
}
