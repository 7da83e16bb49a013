// Package app wires the domain packages into the use cases the CLI exposes:
// grid scans, tilt calibration, robustness harnesses, parameter sweeps, and
// island comparison.
package app

import (
	"context"
	"time"

	"scfscan/adapters/channels"
	"scfscan/domain/core"
	"scfscan/domain/island"
	"scfscan/domain/yukawa"
	"scfscan/internal"
	"scfscan/internal/analysis"
)

// ScanRequest defines one labeling run over the fundamental parameter grid.
// Zero axis fields fall back to the defaults below; a zero Channels config
// resolves to the standard calibration.
type ScanRequest struct {
	MassMin     float64
	MassMax     float64
	MassPoints  int
	AngleMin    float64
	AngleMax    float64
	AnglePoints int

	Model    yukawa.Model
	Options  yukawa.Options
	Channels channels.SetConfig

	// RawSlack compares channels by raw slack instead of slack divided by
	// the channel bound. The default, normalized comparison is what makes
	// dominance meaningful across channels with very different scales.
	RawSlack bool
}

// Default scan axes: mediator masses from sub-eV to the weak scale, mixing
// angles down to where every channel is slack.
const (
	DefaultMassMin     = 1e-11
	DefaultMassMax     = 1e2
	DefaultMassPoints  = 200
	DefaultAngleMin    = 1e-12
	DefaultAngleMax    = 1.0
	DefaultAnglePoints = 200
)

// ScanResult is one labeled grid with its island reduction and provenance.
type ScanResult struct {
	RunID        core.RunID             `json:"run_id"`
	GeneratedAt  time.Time              `json:"generated_at"`
	Model        yukawa.Model           `json:"model"`
	ChannelNames []string               `json:"channel_names"`
	Labels       [][]int                `json:"labels"`
	Summary      *island.Summary        `json:"summary,omitempty"`
	Slacks       [][][]float64          `json:"-"`
	CoordGrids   map[string][][]float64 `json:"-"`
	RangeGrid    [][]float64            `json:"-"`
	StrengthGrid [][]float64            `json:"-"`
}

// OverlapService runs constraint-overlap scans end to end: parameter mapping,
// grid labeling, island summarization.
type OverlapService struct {
	logger *internal.Logger
}

// NewOverlapService creates the scan service.
func NewOverlapService(logger *internal.Logger) *OverlapService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &OverlapService{logger: logger}
}

func (r *ScanRequest) withDefaults() ScanRequest {
	out := *r
	if out.MassMin == 0 {
		out.MassMin = DefaultMassMin
	}
	if out.MassMax == 0 {
		out.MassMax = DefaultMassMax
	}
	if out.MassPoints == 0 {
		out.MassPoints = DefaultMassPoints
	}
	if out.AngleMin == 0 {
		out.AngleMin = DefaultAngleMin
	}
	if out.AngleMax == 0 {
		out.AngleMax = DefaultAngleMax
	}
	if out.AnglePoints == 0 {
		out.AnglePoints = DefaultAnglePoints
	}
	if out.Model == "" {
		out.Model = yukawa.ModelSimple
	}
	return out
}

// BuildGrids maps the request axes through the parameter mapper, returning
// the range and strength grids plus the named coordinate grids the island
// summarizer reduces: lambda_m, alpha, m_phi, theta.
func (s *OverlapService) BuildGrids(req ScanRequest) (rangeGrid, strengthGrid [][]float64, coordGrids map[string][][]float64, err error) {
	req = req.withDefaults()

	masses, err := analysis.Logspace(req.MassMin, req.MassMax, req.MassPoints)
	if err != nil {
		return nil, nil, nil, err
	}
	angles, err := analysis.Logspace(req.AngleMin, req.AngleMax, req.AnglePoints)
	if err != nil {
		return nil, nil, nil, err
	}

	rangeGrid, strengthGrid, err = yukawa.MapGrid(masses, angles, req.Model, req.Options)
	if err != nil {
		return nil, nil, nil, err
	}

	massGrid, angleGrid := analysis.Meshgrid(masses, angles)
	coordGrids = map[string][][]float64{
		"lambda_m": rangeGrid,
		"alpha":    strengthGrid,
		"m_phi":    massGrid,
		"theta":    angleGrid,
	}
	return rangeGrid, strengthGrid, coordGrids, nil
}

// Run executes the scan: build grids, label every cell, reduce the viable
// island. An empty island yields a result with a nil Summary.
func (s *OverlapService) Run(ctx context.Context, req ScanRequest) (*ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req = req.withDefaults()

	rangeGrid, strengthGrid, coordGrids, err := s.BuildGrids(req)
	if err != nil {
		return nil, err
	}

	chs := channels.NewSet(req.Channels)
	s.logger.Info("labeling %dx%d grid, model=%s, normalized=%v",
		req.MassPoints, req.AnglePoints, req.Model, !req.RawSlack)

	labels, slacks, err := analysis.LabelGrid(rangeGrid, strengthGrid, chs, !req.RawSlack)
	if err != nil {
		return nil, err
	}

	summary, err := island.Summarize(analysis.ViableMask(labels), coordGrids)
	if err != nil {
		return nil, err
	}
	if summary != nil {
		summary.Dominance = analysis.DominanceBreakdown(labels, chs)
		s.logger.Info("viable island: %d points", summary.NViablePoints)
	} else {
		s.logger.Warn("no viable points on this grid")
	}

	return &ScanResult{
		RunID:        core.NewRunID(),
		GeneratedAt:  time.Now().UTC(),
		Model:        req.Model,
		ChannelNames: channels.Names(chs),
		Labels:       labels,
		Slacks:       slacks,
		Summary:      summary,
		CoordGrids:   coordGrids,
		RangeGrid:    rangeGrid,
		StrengthGrid: strengthGrid,
	}, nil
}
