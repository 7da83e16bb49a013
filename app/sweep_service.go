package app

import (
	"context"
	"time"

	"scfscan/domain/core"
	"scfscan/domain/island"
	"scfscan/internal"
	"scfscan/internal/analysis"
)

// SweepRequest scans the island against a log-spaced series of
// symmetry-breaking masses, holding everything else fixed.
type SweepRequest struct {
	Scan ScanRequest

	BreakingMassMin    float64
	BreakingMassMax    float64
	BreakingMassPoints int
}

// Default breaking-mass axis: GeV-scale to well above the Higgs mass.
const (
	DefaultBreakingMassMin    = 1.0
	DefaultBreakingMassMax    = 1e4
	DefaultBreakingMassPoints = 20
)

// SweepPoint is the island outcome at one breaking mass.
type SweepPoint struct {
	BreakingMass float64         `json:"breaking_mass"`
	NViable      int             `json:"n_viable"`
	TopChannel   string          `json:"top_channel,omitempty"`
	Summary      *island.Summary `json:"summary,omitempty"`
}

// SweepResult is the full breaking-mass sweep with provenance.
type SweepResult struct {
	RunID       core.RunID   `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Points      []SweepPoint `json:"points"`
}

// SweepService maps island presence and size across the breaking-mass axis.
type SweepService struct {
	overlap *OverlapService
	logger  *internal.Logger
}

// NewSweepService creates the sweep service.
func NewSweepService(logger *internal.Logger) *SweepService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SweepService{
		overlap: NewOverlapService(logger),
		logger:  logger,
	}
}

// Run labels the grid once per breaking mass and records the island at each.
func (s *SweepService) Run(ctx context.Context, req SweepRequest) (*SweepResult, error) {
	if req.BreakingMassMin == 0 {
		req.BreakingMassMin = DefaultBreakingMassMin
	}
	if req.BreakingMassMax == 0 {
		req.BreakingMassMax = DefaultBreakingMassMax
	}
	if req.BreakingMassPoints == 0 {
		req.BreakingMassPoints = DefaultBreakingMassPoints
	}

	values, err := analysis.Logspace(req.BreakingMassMin, req.BreakingMassMax, req.BreakingMassPoints)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{
		RunID:       core.NewRunID(),
		GeneratedAt: time.Now().UTC(),
		Points:      make([]SweepPoint, 0, len(values)),
	}

	for _, mu := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		scanReq := req.Scan
		scanReq.Options.BreakingMass = mu

		scan, err := s.overlap.Run(ctx, scanReq)
		if err != nil {
			return nil, err
		}

		point := SweepPoint{BreakingMass: mu}
		if scan.Summary != nil {
			point.NViable = scan.Summary.NViablePoints
			point.Summary = scan.Summary
			if scan.Summary.Dominance != nil {
				point.TopChannel = topByCount(scan.Summary.Dominance)
			}
		}
		result.Points = append(result.Points, point)
		s.logger.Debug("breaking mass %.4g: %d viable", mu, point.NViable)
	}

	return result, nil
}

// topByCount picks the largest dominance count, ties resolving
// alphabetically for stable output.
func topByCount(d *island.Dominance) string {
	best := ""
	bestCount := -1
	for name, n := range d.Counts {
		if n > bestCount || (n == bestCount && name < best) {
			best = name
			bestCount = n
		}
	}
	return best
}
