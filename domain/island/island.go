package island

import (
	"encoding/json"
	"sort"

	"github.com/montanaflynn/stats"

	"scfscan/domain/core"
)

// CoordStats is the per-coordinate reduction of a viable island: bounding box
// plus percentile spread over the masked subset.
type CoordStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	P05 float64 `json:"p05"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
}

// Dominance is the per-channel breakdown of which constraint is tightest at
// viable points. Percentages are over viable points only.
type Dominance struct {
	Counts      map[string]int     `json:"counts"`
	Percentages map[string]float64 `json:"percentages"`
}

// Summary is the machine-readable reduction of a viable island. Computed
// fresh per invocation and never mutated once returned. Coordinate stats are
// marshaled as top-level keys next to n_viable_points, matching the island
// summary JSON consumed by comparison and robustness tooling.
type Summary struct {
	NViablePoints int
	Coords        map[string]CoordStats
	Dominance     *Dominance
}

// Summarize reduces a boolean viability mask over named coordinate grids to a
// Summary. A mask selecting zero points returns (nil, nil): an empty island
// is a distinct outcome, not an error. The result depends only on the
// multiset of selected values, so it is invariant to grid ordering.
func Summarize(mask [][]bool, grids map[string][][]float64) (*Summary, error) {
	if len(mask) == 0 {
		return nil, core.ErrEmptyInput
	}
	rows, cols := len(mask), len(mask[0])
	for name, g := range grids {
		if len(g) != rows {
			return nil, core.NewGridShapeError(name, len(g), -1)
		}
		for _, row := range g {
			if len(row) != cols {
				return nil, core.NewGridShapeError(name, len(g), len(row))
			}
		}
	}

	n := 0
	for _, row := range mask {
		if len(row) != cols {
			return nil, core.NewGridShapeError("mask", rows, len(row))
		}
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	if n == 0 {
		return nil, nil
	}

	summary := &Summary{
		NViablePoints: n,
		Coords:        make(map[string]CoordStats, len(grids)),
	}

	for name, g := range grids {
		values := make([]float64, 0, n)
		for i := range mask {
			for j, v := range mask[i] {
				if v {
					values = append(values, g[i][j])
				}
			}
		}
		cs, err := coordStats(values)
		if err != nil {
			return nil, err
		}
		summary.Coords[name] = cs
	}

	return summary, nil
}

func coordStats(values []float64) (CoordStats, error) {
	min, err := stats.Min(values)
	if err != nil {
		return CoordStats{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return CoordStats{}, err
	}
	p05, err := stats.Percentile(values, 5)
	if err != nil {
		return CoordStats{}, err
	}
	p50, err := stats.Median(values)
	if err != nil {
		return CoordStats{}, err
	}
	p95, err := stats.Percentile(values, 95)
	if err != nil {
		return CoordStats{}, err
	}
	return CoordStats{Min: min, Max: max, P05: p05, P50: p50, P95: p95}, nil
}

// MarshalJSON emits the island summary shape:
// {n_viable_points, <coord>: {min,max,p05,p50,p95}, constraint_dominance: {...}}.
func (s *Summary) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(s.Coords)+2)
	out["n_viable_points"] = s.NViablePoints
	for name, cs := range s.Coords {
		out[name] = cs
	}
	if s.Dominance != nil {
		out["constraint_dominance"] = s.Dominance
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the same shape back; unknown top-level objects with the
// coordinate-stats keys are treated as coordinates.
func (s *Summary) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Coords = make(map[string]CoordStats)
	for key, val := range raw {
		switch key {
		case "n_viable_points":
			if err := json.Unmarshal(val, &s.NViablePoints); err != nil {
				return err
			}
		case "constraint_dominance":
			s.Dominance = &Dominance{}
			if err := json.Unmarshal(val, s.Dominance); err != nil {
				return err
			}
		default:
			var cs CoordStats
			if err := json.Unmarshal(val, &cs); err != nil {
				return err
			}
			s.Coords[key] = cs
		}
	}
	return nil
}

// CoordNames returns the coordinate names in sorted order.
func (s *Summary) CoordNames() []string {
	names := make([]string, 0, len(s.Coords))
	for name := range s.Coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
