package calibration

import (
	"errors"
	"math"
	"testing"

	"scfscan/domain/core"
)

// lcgBits produces a deterministic bit sequence with the given ones
// probability, using a plain LCG so tests never depend on library RNG
// internals.
func lcgBits(n int, pOne float64, seed uint64) []int {
	bits := make([]int, n)
	state := seed
	for i := range bits {
		state = state*6364136223846793005 + 1442695040888963407
		u := float64(state>>11) / float64(1<<53)
		if u < pOne {
			bits[i] = 1
		}
	}
	return bits
}

func TestEpsilonHat(t *testing.T) {
	eps, err := EpsilonHat([]int{1, 1, 1, 0})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if eps != 0.25 {
		t.Errorf("EpsilonHat: got %g, want 0.25", eps)
	}

	if _, err := EpsilonHat(nil); err == nil {
		t.Error("Expected error for empty sequence")
	}
}

func TestBootstrapDeterministicForSeed(t *testing.T) {
	bits := lcgBits(2000, 0.52, 1)

	a, err := Bootstrap95(bits, 200, 12345)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := Bootstrap95(bits, 200, 12345)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if a.EpsilonMax != b.EpsilonMax || a.CILower != b.CILower || a.CIUpper != b.CIUpper {
		t.Errorf("Same seed must reproduce identical output: %+v vs %+v", a, b)
	}
}

func TestBootstrapSeedStability(t *testing.T) {
	bits := lcgBits(5000, 0.53, 2)

	a, err := Bootstrap95(bits, 2000, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	b, err := Bootstrap95(bits, 2000, 99)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// The point estimate never depends on the seed.
	if a.EpsilonMax != b.EpsilonMax {
		t.Errorf("Point estimate moved with seed: %g vs %g", a.EpsilonMax, b.EpsilonMax)
	}

	// CI bounds may differ across seeds but stay tightly bounded.
	if math.Abs(a.CILower-b.CILower) > 0.002 || math.Abs(a.CIUpper-b.CIUpper) > 0.002 {
		t.Errorf("CI bounds drifted across seeds: [%g,%g] vs [%g,%g]",
			a.CILower, a.CIUpper, b.CILower, b.CIUpper)
	}
	t.Logf("seed 1 CI [%g,%g], seed 99 CI [%g,%g]", a.CILower, a.CIUpper, b.CILower, b.CIUpper)
}

func TestBootstrapCIBracketsEstimate(t *testing.T) {
	bits := lcgBits(4000, 0.55, 3)

	est, err := Bootstrap95(bits, 500, 7)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if est.CILower > est.EpsilonMax || est.CIUpper < est.EpsilonMax {
		t.Errorf("CI [%g,%g] should bracket epsilon %g for a clearly biased source",
			est.CILower, est.CIUpper, est.EpsilonMax)
	}
	if est.NBootstrap != 500 || est.Seed != 7 || est.Method != MethodBootstrap95 {
		t.Errorf("Estimate metadata wrong: %+v", est)
	}
}

func TestChi295StraddlesHalf(t *testing.T) {
	// Unbiased source: the proportion interval contains 0.5, so the lower
	// epsilon bound collapses to zero.
	fair := lcgBits(10000, 0.5, 4)
	est, err := Chi295(fair)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if est.CILower != 0 {
		t.Errorf("Fair source lower bound: got %g, want 0", est.CILower)
	}
	if est.CIUpper <= 0 {
		t.Errorf("Upper bound should be positive, got %g", est.CIUpper)
	}

	// Strongly biased source: the interval excludes 0.5 entirely.
	biased := lcgBits(10000, 0.6, 5)
	est, err = Chi295(biased)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if est.CILower <= 0 {
		t.Errorf("Biased source lower bound: got %g, want > 0", est.CILower)
	}
	if est.CILower > est.EpsilonMax || est.CIUpper < est.EpsilonMax {
		t.Errorf("CI [%g,%g] should bracket %g", est.CILower, est.CIUpper, est.EpsilonMax)
	}
}

func TestMaxDeviationBlocks(t *testing.T) {
	// Two blocks of 4: one fair, one fully biased.
	bits := []int{0, 1, 0, 1, 1, 1, 1, 1}
	est, err := MaxDeviation(bits, 4)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if est.EpsilonMax != 0.5 {
		t.Errorf("Worst block deviation: got %g, want 0.5", est.EpsilonMax)
	}
	if est.CILower != 0 || est.CIUpper != 0.5 {
		t.Errorf("Interval: got [%g,%g], want [0,0.5]", est.CILower, est.CIUpper)
	}
}

func TestCalibrateDispatch(t *testing.T) {
	bits := lcgBits(1000, 0.5, 6)

	if _, err := Calibrate(bits, "astrology", 0, 0, 0); err == nil {
		t.Error("Expected error for unknown method")
	}

	est, err := Calibrate(bits, "", 100, 1, 0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if est.Method != MethodBootstrap95 {
		t.Errorf("Default method: got %s, want bootstrap_95", est.Method)
	}
}

func TestPoolFavorsNarrowCI(t *testing.T) {
	// Two sources, different epsilon, the second far more precise: the
	// pooled value must sit much closer to the precise source.
	records := []Record{
		{SourceID: "wide", EpsilonMax: 0.004, CILower: 0.001, CIUpper: 0.007},
		{SourceID: "narrow", EpsilonMax: 0.002, CILower: 0.0019, CIUpper: 0.0021},
	}

	pooled, err := Pool(records, PoolInverseVariance)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(pooled.EpsilonMax-0.002) > 0.0002 {
		t.Errorf("Pooled epsilon %g should hug the narrow-CI source at 0.002", pooled.EpsilonMax)
	}
	if pooled.CILower < 0 {
		t.Errorf("Pooled lower bound must be clamped at zero, got %g", pooled.CILower)
	}
	if pooled.CIUpper <= pooled.CILower {
		t.Errorf("Degenerate pooled interval [%g,%g]", pooled.CILower, pooled.CIUpper)
	}
}

func TestPoolIdenticalEpsilonWeighted(t *testing.T) {
	records := []Record{
		{SourceID: "a", EpsilonMax: 0.003, CILower: 0.002, CIUpper: 0.004},
		{SourceID: "b", EpsilonMax: 0.003, CILower: 0.0025, CIUpper: 0.0035},
	}
	pooled, err := Pool(records, "")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if math.Abs(pooled.EpsilonMax-0.003) > 1e-12 {
		t.Errorf("Identical sources must pool to the common value, got %g", pooled.EpsilonMax)
	}
}

func TestPoolConservativeMax(t *testing.T) {
	records := []Record{
		{SourceID: "a", EpsilonMax: 0.001, CILower: 0.0005, CIUpper: 0.0015},
		{SourceID: "b", EpsilonMax: 0.005, CILower: 0.004, CIUpper: 0.006},
	}
	pooled, err := Pool(records, PoolConservativeMax)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pooled.EpsilonMax != 0.005 || pooled.CIUpper != 0.006 {
		t.Errorf("Conservative mode must adopt the worst source: %+v", pooled)
	}
}

func TestConfigFingerprint(t *testing.T) {
	a := ConfigFingerprint(MethodBootstrap95, 1000, 42, 1000, PoolInverseVariance)
	b := ConfigFingerprint(MethodBootstrap95, 1000, 42, 1000, PoolInverseVariance)
	if a != b {
		t.Errorf("Identical parameters must fingerprint identically: %s vs %s", a, b)
	}

	c := ConfigFingerprint(MethodBootstrap95, 2000, 42, 1000, PoolInverseVariance)
	if a == c {
		t.Error("Changed n_bootstrap must change the fingerprint")
	}
}

func verifyDocument(seed int64, configHash, anuHash string) *Document {
	return &Document{
		Reproducibility: Reproducibility{
			SeedUsed:   seed,
			ConfigHash: configHash,
			DataHashes: map[string]string{"anu_live": anuHash},
		},
	}
}

func TestVerifyMatch(t *testing.T) {
	prior := verifyDocument(42, "cfg", "aa11")
	current := verifyDocument(42, "cfg", "aa11")
	if err := Verify(prior, current); err != nil {
		t.Errorf("Matching documents must verify, got %v", err)
	}
}

func TestVerifySeedMismatch(t *testing.T) {
	prior := verifyDocument(42, "cfg", "aa11")
	current := verifyDocument(43, "cfg", "aa11")

	err := Verify(prior, current)
	if !errors.Is(err, core.ErrSeedMismatch) {
		t.Errorf("Expected seed mismatch, got %v", err)
	}
	if !core.IsDeterminismError(err) {
		t.Error("Seed mismatch must classify as a determinism error")
	}
}

func TestVerifyHashMismatch(t *testing.T) {
	prior := verifyDocument(42, "cfg", "aa11")

	// Config drift.
	err := Verify(prior, verifyDocument(42, "other", "aa11"))
	if !errors.Is(err, core.ErrHashMismatch) {
		t.Errorf("Expected hash mismatch for config drift, got %v", err)
	}

	// The documented capture no longer hashes to the same bits.
	err = Verify(prior, verifyDocument(42, "cfg", "bb22"))
	if !errors.Is(err, core.ErrHashMismatch) {
		t.Errorf("Expected hash mismatch for changed bits, got %v", err)
	}
	if !core.IsDeterminismError(err) {
		t.Error("Hash mismatch must classify as a determinism error")
	}

	// A documented source missing from the run entirely.
	current := verifyDocument(42, "cfg", "aa11")
	delete(current.Reproducibility.DataHashes, "anu_live")
	if err := Verify(prior, current); !errors.Is(err, core.ErrHashMismatch) {
		t.Errorf("Expected hash mismatch for missing source, got %v", err)
	}
}

func TestVerifyToleratesPriorWithoutConfigHash(t *testing.T) {
	// Documents generated before config fingerprinting carry an empty hash;
	// verification then rests on seed and data hashes alone.
	prior := verifyDocument(42, "", "aa11")
	if err := Verify(prior, verifyDocument(42, "anything", "aa11")); err != nil {
		t.Errorf("Empty prior config hash must not fail verification, got %v", err)
	}
}

func TestPoolValidation(t *testing.T) {
	if _, err := Pool(nil, ""); err == nil {
		t.Error("Expected error for no records")
	}
	if _, err := Pool([]Record{{EpsilonMax: 0.1}}, "median"); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
