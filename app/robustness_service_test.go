package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scfscan/domain/curve"
	"scfscan/domain/yukawa"
	"scfscan/internal/analysis"
)

func quietScanRequest() ScanRequest {
	return ScanRequest{
		MassMin: 1, MassMax: 10, MassPoints: 3,
		AngleMin: 1e-9, AngleMax: 1e-8, AnglePoints: 3,
		Model: yukawa.ModelSimple,
	}
}

func TestRobustnessServicePerturbBounds(t *testing.T) {
	svc := NewRobustnessService(nil)

	report, err := svc.PerturbBounds(context.Background(), quietScanRequest(), 0)
	require.NoError(t, err)

	assert.Equal(t, analysis.DefaultBoundScale, report.Scale)
	assert.Equal(t, 9, report.Baseline.NViable)
	assert.Len(t, report.Scenarios, 8)
	// Six decades of headroom: no 10% bound shift empties the island.
	assert.Equal(t, analysis.VerdictRobust, report.Verdict)
}

func TestRobustnessServiceJitterEnvelope(t *testing.T) {
	svc := NewRobustnessService(nil)

	env := curve.Curve{
		{Lambda: 1e-14, Alpha: 1e-3, Excluded: true, Source: "envelope"},
		{Lambda: 1e-13, Alpha: 1e-3, Excluded: true, Source: "envelope"},
		{Lambda: 1e-12, Alpha: 1e-3, Excluded: true, Source: "envelope"},
	}

	result, err := svc.JitterEnvelope(context.Background(), quietScanRequest(), env, analysis.JitterConfig{
		Trials: 20, Seed: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Trials)
	// Strengths sit at 1e-18..1e-16 against a 1e-3 envelope; 0.1-decade
	// jitter cannot close that gap.
	assert.Equal(t, 20, result.Survived)
	assert.Equal(t, analysis.VerdictRobust, result.Verdict)
}

func TestRobustnessServiceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewRobustnessService(nil)
	_, err := svc.PerturbBounds(ctx, quietScanRequest(), 0.1)
	assert.Error(t, err)
	_, err = svc.JitterEnvelope(ctx, quietScanRequest(), curve.Curve{{Lambda: 1, Alpha: 1, Excluded: true, Source: "s"}}, analysis.JitterConfig{Trials: 1})
	assert.Error(t, err)
}
