package app

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"scfscan/domain/island"
	"scfscan/internal"
	"scfscan/internal/errors"
)

// Comparison verdicts.
const (
	CompareUnchanged = "unchanged"
	CompareShifted   = "shifted"
	CompareGrewEmpty = "island_vanished"
	CompareAppeared  = "island_appeared"
	CompareBothEmpty = "both_empty"
)

// relativeShiftTolerance is the per-statistic relative change below which two
// islands count as unchanged.
const relativeShiftTolerance = 0.05

// CoordDelta is the per-coordinate change between two island summaries,
// relative where the base statistic is nonzero.
type CoordDelta struct {
	Coord    string  `json:"coord"`
	Stat     string  `json:"stat"`
	Base     float64 `json:"base"`
	Other    float64 `json:"other"`
	Relative float64 `json:"relative"`
}

// Comparison is the diff of two island summaries: size change, per-coordinate
// percentile movement, dominance shifts.
type Comparison struct {
	NViableBase     int                `json:"n_viable_base"`
	NViableOther    int                `json:"n_viable_other"`
	Deltas          []CoordDelta       `json:"deltas,omitempty"`
	DominanceShifts map[string]float64 `json:"dominance_shifts,omitempty"`
	Verdict         string             `json:"verdict"`
}

// CompareService diffs island summary documents across runs, typically a
// baseline scan against a reparameterized or re-bounded one.
type CompareService struct {
	logger *internal.Logger
}

// NewCompareService creates the comparison service.
func NewCompareService(logger *internal.Logger) *CompareService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &CompareService{logger: logger}
}

// LoadSummary reads an island summary JSON document from disk. A JSON null
// decodes to nil, the empty-island encoding.
func (s *CompareService) LoadSummary(path string) (*island.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.IOError(path, err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "parsing island summary %s", path)
	}
	if string(raw) == "null" {
		return nil, nil
	}

	summary := &island.Summary{}
	if err := json.Unmarshal(raw, summary); err != nil {
		return nil, errors.Wrapf(err, "parsing island summary %s", path)
	}
	return summary, nil
}

// Compare diffs two summaries. Either side may be nil for an empty island.
func (s *CompareService) Compare(base, other *island.Summary) *Comparison {
	cmp := &Comparison{}
	if base != nil {
		cmp.NViableBase = base.NViablePoints
	}
	if other != nil {
		cmp.NViableOther = other.NViablePoints
	}

	switch {
	case base == nil && other == nil:
		cmp.Verdict = CompareBothEmpty
		return cmp
	case base != nil && other == nil:
		cmp.Verdict = CompareGrewEmpty
		return cmp
	case base == nil:
		cmp.Verdict = CompareAppeared
		return cmp
	}

	maxShift := 0.0
	for _, coord := range base.CoordNames() {
		baseStats, ok := base.Coords[coord]
		otherStats, inOther := other.Coords[coord]
		if !ok || !inOther {
			continue
		}

		stats := []struct {
			name        string
			base, other float64
		}{
			{"min", baseStats.Min, otherStats.Min},
			{"max", baseStats.Max, otherStats.Max},
			{"p05", baseStats.P05, otherStats.P05},
			{"p50", baseStats.P50, otherStats.P50},
			{"p95", baseStats.P95, otherStats.P95},
		}
		for _, st := range stats {
			rel := 0.0
			if st.base != 0 {
				rel = (st.other - st.base) / math.Abs(st.base)
			} else if st.other != 0 {
				rel = math.Inf(1)
			}
			cmp.Deltas = append(cmp.Deltas, CoordDelta{
				Coord:    coord,
				Stat:     st.name,
				Base:     st.base,
				Other:    st.other,
				Relative: rel,
			})
			if math.Abs(rel) > maxShift {
				maxShift = math.Abs(rel)
			}
		}
	}

	cmp.DominanceShifts = dominanceShifts(base.Dominance, other.Dominance)
	for _, shift := range cmp.DominanceShifts {
		if math.Abs(shift)/100 > maxShift {
			maxShift = math.Abs(shift) / 100
		}
	}

	if maxShift > relativeShiftTolerance {
		cmp.Verdict = CompareShifted
	} else {
		cmp.Verdict = CompareUnchanged
	}
	return cmp
}

// dominanceShifts returns the percentage-point change per channel. Channels
// present on either side appear in the output.
func dominanceShifts(base, other *island.Dominance) map[string]float64 {
	if base == nil && other == nil {
		return nil
	}

	names := make(map[string]bool)
	if base != nil {
		for name := range base.Percentages {
			names[name] = true
		}
	}
	if other != nil {
		for name := range other.Percentages {
			names[name] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	out := make(map[string]float64, len(sorted))
	for _, name := range sorted {
		var b, o float64
		if base != nil {
			b = base.Percentages[name]
		}
		if other != nil {
			o = other.Percentages[name]
		}
		out[name] = o - b
	}
	return out
}
