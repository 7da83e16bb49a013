package app

import (
	"context"
	"sort"
	"time"

	"scfscan/domain/core"
	"scfscan/domain/qrng"
	"scfscan/internal"
	"scfscan/internal/calibration"
	"scfscan/ports"
)

// CalibrationRequest selects the estimation method and its parameters.
type CalibrationRequest struct {
	Method     calibration.Method
	NBootstrap int
	Seed       int64
	Window     int
	PoolMode   string

	// SkipSensitivity disables the doubled-bootstrap and shifted-seed
	// re-runs, which double the cost of large captures.
	SkipSensitivity bool
}

// resolvedNBootstrap applies the estimator default so derived counts, like
// the doubled sensitivity variant, scale from the effective value rather
// than a zero request field.
func (r CalibrationRequest) resolvedNBootstrap() int {
	if r.NBootstrap <= 0 {
		return calibration.DefaultNBootstrap
	}
	return r.NBootstrap
}

// CalibrationService turns raw QRNG bit captures into the pooled epsilon_max
// document the tilt channel consumes.
type CalibrationService struct {
	logger *internal.Logger
}

// NewCalibrationService creates the calibration service.
func NewCalibrationService(logger *internal.Logger) *CalibrationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CalibrationService{logger: logger}
}

// Run fetches bits from every source, calibrates per hardware source, pools
// the per-source bounds, and attaches sensitivity and reproducibility
// sections.
func (s *CalibrationService) Run(ctx context.Context, sources []ports.BitSource, req CalibrationRequest) (*calibration.Document, error) {
	if len(sources) == 0 {
		return nil, core.ErrEmptyInput
	}

	bySource := make(map[string][]int)
	dataHashes := make(map[string]string)

	for _, src := range sources {
		bits, manifest, err := src.Bits(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info("source %s: %d rows, sha256=%s", src.Name(), manifest.Rows, manifest.SHA256)
		for id, vals := range qrng.BySource(bits) {
			bySource[id] = append(bySource[id], vals...)
		}
	}

	ids := make([]string, 0, len(bySource))
	for id := range bySource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]calibration.Record, 0, len(ids))
	for _, id := range ids {
		bits := bySource[id]
		est, err := calibration.Calibrate(bits, req.Method, req.NBootstrap, req.Seed, req.Window)
		if err != nil {
			return nil, err
		}
		rec := calibration.NewRecord(id, bits, est)
		records = append(records, rec)
		dataHashes[id] = string(rec.DataHash)
		s.logger.Info("source %s: epsilon_max=%.6g [%.6g, %.6g]", id, est.EpsilonMax, est.CILower, est.CIUpper)
	}

	pooled, err := calibration.Pool(records, req.PoolMode)
	if err != nil {
		return nil, err
	}

	fingerprint := calibration.ConfigFingerprint(
		records[0].Method, records[0].NBootstrap, req.Seed, req.Window, pooled.Method)

	doc := &calibration.Document{
		Sources: records,
		Pooled:  pooled,
		Reproducibility: calibration.Reproducibility{
			RunID:       core.NewRunID(),
			DataHashes:  dataHashes,
			SeedUsed:    req.Seed,
			Method:      records[0].Method,
			NBootstrap:  records[0].NBootstrap,
			ConfigHash:  fingerprint.String(),
			GeneratedAt: time.Now().UTC(),
		},
	}

	if !req.SkipSensitivity {
		sensitivity, err := s.sensitivity(bySource, ids, req)
		if err != nil {
			return nil, err
		}
		doc.Sensitivity = sensitivity
	}

	return doc, nil
}

// VerifyAgainst re-runs the calibration over the given sources and checks
// the result against a previously published document. Determinism breaks,
// like a changed seed or captures whose bits no longer hash to the
// documented values, surface as core determinism errors.
func (s *CalibrationService) VerifyAgainst(ctx context.Context, sources []ports.BitSource, prior *calibration.Document, req CalibrationRequest) error {
	req.SkipSensitivity = true
	doc, err := s.Run(ctx, sources, req)
	if err != nil {
		return err
	}
	return calibration.Verify(prior, doc)
}

// sensitivity re-pools under perturbed estimation parameters. Stable pooled
// bounds across these re-runs are the evidence that the headline number is
// not a bootstrap artifact.
func (s *CalibrationService) sensitivity(bySource map[string][]int, ids []string, req CalibrationRequest) (map[string]float64, error) {
	variants := []struct {
		name       string
		nBootstrap int
		seed       int64
	}{
		{"n_bootstrap_x2", req.resolvedNBootstrap() * 2, req.Seed},
		{"seed_shift", req.resolvedNBootstrap(), req.Seed + 1},
	}

	out := make(map[string]float64, len(variants))
	for _, v := range variants {
		records := make([]calibration.Record, 0, len(ids))
		for _, id := range ids {
			bits := bySource[id]
			est, err := calibration.Calibrate(bits, req.Method, v.nBootstrap, v.seed, req.Window)
			if err != nil {
				return nil, err
			}
			records = append(records, calibration.NewRecord(id, bits, est))
		}
		pooled, err := calibration.Pool(records, req.PoolMode)
		if err != nil {
			return nil, err
		}
		out[v.name] = pooled.EpsilonMax
	}
	return out, nil
}
