package app

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scfscan/domain/island"
)

func sampleSummary(p50Alpha float64) *island.Summary {
	return &island.Summary{
		NViablePoints: 100,
		Coords: map[string]island.CoordStats{
			"alpha":    {Min: 1e-10, Max: 1e-6, P05: 2e-10, P50: p50Alpha, P95: 8e-7},
			"lambda_m": {Min: 1e-15, Max: 1e-12, P05: 2e-15, P50: 1e-13, P95: 9e-13},
		},
		Dominance: &island.Dominance{
			Counts:      map[string]int{"ATLAS_mu": 60, "QRNG_tilt": 40},
			Percentages: map[string]float64{"ATLAS_mu": 60, "QRNG_tilt": 40},
		},
	}
}

func TestCompareUnchanged(t *testing.T) {
	svc := NewCompareService(nil)

	base := sampleSummary(1e-8)
	cmp := svc.Compare(base, sampleSummary(1e-8))

	assert.Equal(t, CompareUnchanged, cmp.Verdict)
	assert.Equal(t, 100, cmp.NViableBase)
	assert.Equal(t, 100, cmp.NViableOther)
	// Two coordinates, five statistics each.
	assert.Len(t, cmp.Deltas, 10)
	for _, d := range cmp.Deltas {
		assert.InDelta(t, 0, d.Relative, 1e-12)
	}
	assert.InDelta(t, 0, cmp.DominanceShifts["ATLAS_mu"], 1e-12)
}

func TestCompareShifted(t *testing.T) {
	svc := NewCompareService(nil)

	// Median alpha moves by 50%, well past the 5% tolerance.
	cmp := svc.Compare(sampleSummary(1e-8), sampleSummary(1.5e-8))
	assert.Equal(t, CompareShifted, cmp.Verdict)

	found := false
	for _, d := range cmp.Deltas {
		if d.Coord == "alpha" && d.Stat == "p50" {
			assert.InDelta(t, 0.5, d.Relative, 1e-9)
			found = true
		}
	}
	assert.True(t, found)
}

func TestCompareDominanceShiftAlone(t *testing.T) {
	svc := NewCompareService(nil)

	base := sampleSummary(1e-8)
	other := sampleSummary(1e-8)
	other.Dominance = &island.Dominance{
		Counts:      map[string]int{"ATLAS_mu": 40, "QRNG_tilt": 60},
		Percentages: map[string]float64{"ATLAS_mu": 40, "QRNG_tilt": 60},
	}

	cmp := svc.Compare(base, other)
	assert.Equal(t, CompareShifted, cmp.Verdict)
	assert.InDelta(t, -20, cmp.DominanceShifts["ATLAS_mu"], 1e-12)
	assert.InDelta(t, 20, cmp.DominanceShifts["QRNG_tilt"], 1e-12)
}

func TestCompareEmptyIslands(t *testing.T) {
	svc := NewCompareService(nil)
	base := sampleSummary(1e-8)

	assert.Equal(t, CompareBothEmpty, svc.Compare(nil, nil).Verdict)
	assert.Equal(t, CompareGrewEmpty, svc.Compare(base, nil).Verdict)
	assert.Equal(t, CompareAppeared, svc.Compare(nil, base).Verdict)
}

func TestLoadSummary(t *testing.T) {
	svc := NewCompareService(nil)
	dir := t.TempDir()

	base := sampleSummary(1e-8)
	data, err := json.Marshal(base)
	require.NoError(t, err)

	path := filepath.Join(dir, "island.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded, err := svc.LoadSummary(path)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, base.NViablePoints, loaded.NViablePoints)
	assert.Equal(t, base.Coords["alpha"], loaded.Coords["alpha"])
	require.NotNil(t, loaded.Dominance)

	nullPath := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(nullPath, []byte("null"), 0o644))
	empty, err := svc.LoadSummary(nullPath)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = svc.LoadSummary(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
