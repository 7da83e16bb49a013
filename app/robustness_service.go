package app

import (
	"context"

	"scfscan/domain/curve"
	"scfscan/internal"
	"scfscan/internal/analysis"
)

// RobustnessService runs the two robustness harnesses over a scan request:
// deterministic bound perturbation and Monte Carlo envelope jitter.
type RobustnessService struct {
	overlap *OverlapService
	logger  *internal.Logger
}

// NewRobustnessService creates the robustness service.
func NewRobustnessService(logger *internal.Logger) *RobustnessService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &RobustnessService{
		overlap: NewOverlapService(logger),
		logger:  logger,
	}
}

// PerturbBounds relabels the request grid with each channel bound scaled up
// and down by the given fraction.
func (s *RobustnessService) PerturbBounds(ctx context.Context, req ScanRequest, scale float64) (*analysis.RobustnessReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rangeGrid, strengthGrid, _, err := s.overlap.BuildGrids(req)
	if err != nil {
		return nil, err
	}

	report, err := analysis.PerturbBounds(rangeGrid, strengthGrid, req.Channels, !req.RawSlack, scale)
	if err != nil {
		return nil, err
	}
	s.logger.Info("bound perturbation verdict: %s (baseline %d viable)", report.Verdict, report.Baseline.NViable)
	return report, nil
}

// JitterEnvelope relabels the request grid under repeated Gaussian
// digitization noise on the fifth-force envelope.
func (s *RobustnessService) JitterEnvelope(ctx context.Context, req ScanRequest, env curve.Curve, cfg analysis.JitterConfig) (*analysis.JitterResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rangeGrid, strengthGrid, coordGrids, err := s.overlap.BuildGrids(req)
	if err != nil {
		return nil, err
	}

	result, err := analysis.JitterEnvelope(rangeGrid, strengthGrid, coordGrids, req.Channels, env, cfg, !req.RawSlack)
	if err != nil {
		return nil, err
	}
	s.logger.Info("jitter verdict: %s (%d/%d trials survived)", result.Verdict, result.Survived, result.Trials)
	return result, nil
}
