package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scfscan/domain/island"
	"scfscan/internal/analysis"
	"scfscan/internal/calibration"
)

func sampleDocument() *calibration.Document {
	return &calibration.Document{
		Sources: []calibration.Record{
			{SourceID: "anu_live", NBits: 40000, EpsilonMax: 0.0021, CILower: 0.0011, CIUpper: 0.0031, Method: calibration.MethodBootstrap95},
			{SourceID: "lfdr", NBits: 20000, EpsilonMax: 0.0035, CILower: 0.0015, CIUpper: 0.0055, Method: calibration.MethodBootstrap95},
		},
		Pooled: calibration.Pooled{EpsilonMax: 0.0024, CILower: 0.0016, CIUpper: 0.0032, Method: calibration.PoolInverseVariance},
		Sensitivity: map[string]float64{
			"n_bootstrap_x2": 0.0023,
			"seed_shift":     0.0025,
		},
		Reproducibility: calibration.Reproducibility{
			SeedUsed:    42,
			Method:      calibration.MethodBootstrap95,
			NBootstrap:  500,
			ConfigHash:  "cafe01",
			GeneratedAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
			DataHashes:  map[string]string{"anu_live": "abc123", "lfdr": "def456"},
		},
	}
}

func TestCalibrationProtocol(t *testing.T) {
	md := CalibrationProtocol(sampleDocument())

	assert.Contains(t, md, "# QRNG Tilt Calibration Protocol")
	assert.Contains(t, md, "| anu_live | 40000 | 0.0021 |")
	assert.Contains(t, md, "epsilon_max = **0.0024**")
	assert.Contains(t, md, "inverse_variance pooling")
	assert.Contains(t, md, "- seed: 42")
	assert.Contains(t, md, "- config: `cafe01`")
	assert.Contains(t, md, "sha256(anu_live): `abc123`")

	// Sensitivity keys come out sorted regardless of map order.
	assert.Less(t, strings.Index(md, "n_bootstrap_x2"), strings.Index(md, "seed_shift"))
}

func TestRobustnessSection(t *testing.T) {
	rep := &analysis.RobustnessReport{
		Baseline:  analysis.Scenario{Name: "baseline", NViable: 12, TopChannel: "ATLAS_mu", Dominance: &island.Dominance{}},
		Scenarios: []analysis.Scenario{{Name: "atlas_width_up", NViable: 14, TopChannel: "ATLAS_mu"}},
		Verdict:   analysis.VerdictRobust,
		Scale:     0.10,
	}

	md := RobustnessSection(rep)
	assert.Contains(t, md, "Verdict: **robust**")
	assert.Contains(t, md, "+/-10%")
	assert.Contains(t, md, "| baseline | 12 | ATLAS_mu |")
	assert.Contains(t, md, "| atlas_width_up | 14 | ATLAS_mu |")
}

func TestRenderHTML(t *testing.T) {
	out := RenderHTML("# Title\n\nSome *emphasis* and a table:\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	s := string(out)

	assert.Contains(t, s, "<h1")
	assert.Contains(t, s, "<em>emphasis</em>")
	assert.Contains(t, s, "<table>")
}
