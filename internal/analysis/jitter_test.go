package analysis

import (
	"testing"

	"scfscan/adapters/channels"
	"scfscan/domain/curve"
)

func jitterFixture() (rg, sg [][]float64, coords map[string][][]float64, env curve.Curve) {
	rg = uniformGrid(2, 2, 1e-5)
	sg = uniformGrid(2, 2, 1e-9)
	coords = map[string][][]float64{
		"lambda_m": rg,
		"alpha":    sg,
	}
	env = curve.Curve{
		{Lambda: 1e-6, Alpha: 1e-3, Excluded: true, Source: "env"},
		{Lambda: 1e-5, Alpha: 1e-3, Excluded: true, Source: "env"},
		{Lambda: 1e-4, Alpha: 1e-3, Excluded: true, Source: "env"},
	}
	return rg, sg, coords, env
}

func TestJitterEnvelopeSurvivalRobust(t *testing.T) {
	rg, sg, coords, env := jitterFixture()

	// Strength sits six decades under the envelope; 0.1 dex of noise cannot
	// close that gap, so every trial must keep the island alive.
	result, err := JitterEnvelope(rg, sg, coords, channels.SetConfig{}, env, JitterConfig{Trials: 50, Seed: 7}, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.Trials != 50 {
		t.Errorf("Trials: got %d, want 50", result.Trials)
	}
	if result.Survived != 50 || result.SurvivalRate != 1.0 {
		t.Errorf("Survival: got %d/%d (%g)", result.Survived, result.Trials, result.SurvivalRate)
	}
	if result.Verdict != VerdictRobust {
		t.Errorf("Verdict: got %s, want robust", result.Verdict)
	}

	// The island itself is identical across trials (only the fifth-force
	// bound moves, never the membership), so boundary spread is negligible.
	std := result.BoundaryStd["alpha"]
	if std.Min > 1e-20 || std.P50 > 1e-20 || std.Max > 1e-20 {
		t.Errorf("Boundary std should vanish for a stable island, got %+v", std)
	}
	mean := result.BoundaryMean["alpha"]
	if mean.P50 < 0.999e-9 || mean.P50 > 1.001e-9 {
		t.Errorf("Boundary mean p50: got %g, want ~1e-9", mean.P50)
	}
}

func TestJitterEnvelopeDeterministicForSeed(t *testing.T) {
	rg, sg, coords, env := jitterFixture()
	cfg := JitterConfig{Trials: 20, Seed: 42}

	a, err := JitterEnvelope(rg, sg, coords, channels.SetConfig{}, env, cfg, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := JitterEnvelope(rg, sg, coords, channels.SetConfig{}, env, cfg, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if a.SurvivalRate != b.SurvivalRate || a.Survived != b.Survived {
		t.Errorf("Same seed produced different survival: %+v vs %+v", a, b)
	}
	for name := range a.BoundaryMean {
		if a.BoundaryMean[name] != b.BoundaryMean[name] {
			t.Errorf("Same seed produced different boundary means for %s", name)
		}
	}
}

func TestJitterEnvelopeDefaults(t *testing.T) {
	rg, sg, coords, env := jitterFixture()

	result, err := JitterEnvelope(rg, sg, coords, channels.SetConfig{}, env, JitterConfig{}, true)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.Trials != DefaultJitterTrials {
		t.Errorf("Default trials: got %d, want %d", result.Trials, DefaultJitterTrials)
	}
}

func TestJitterEnvelopeEmptyEnvelope(t *testing.T) {
	rg, sg, coords, _ := jitterFixture()
	if _, err := JitterEnvelope(rg, sg, coords, channels.SetConfig{}, nil, JitterConfig{Trials: 5}, true); err == nil {
		t.Error("Expected error for empty envelope")
	}
}
