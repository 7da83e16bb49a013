// Package analysis holds the grid-labeling core and its robustness
// harnesses: bound perturbation and exclusion-curve jitter.
package analysis

import (
	"scfscan/domain/constraint"
	"scfscan/domain/core"
	"scfscan/domain/island"
)

// LabelGrid evaluates every channel at every grid cell and assigns each cell
// a dominance label: the index of the tightest viable channel, or
// constraint.LabelExcluded when any channel's slack is negative.
//
// With useNormalized, slacks are compared as slack/bound (raw slack when the
// bound is not positive); otherwise raw slacks are compared. A cell is viable
// when every compared slack is non-negative; the boundary itself counts as
// viable. Exact ties on the minimum resolve to the lowest channel index, an
// arbitrary but stable policy.
//
// The returned slacks grid holds the compared (normalized or raw) slack per
// cell per channel, indexed [row][col][channel].
func LabelGrid(rangeGrid, strengthGrid [][]float64, chs []constraint.Channel, useNormalized bool) (labels [][]int, slacks [][][]float64, err error) {
	if len(chs) == 0 {
		return nil, nil, core.NewValidationError("channels", "at least one channel required")
	}
	if len(rangeGrid) == 0 || len(rangeGrid[0]) == 0 {
		return nil, nil, core.ErrEmptyInput
	}
	rows, cols := len(rangeGrid), len(rangeGrid[0])
	if len(strengthGrid) != rows {
		return nil, nil, core.NewGridShapeError("strength", len(strengthGrid), -1)
	}

	labels = make([][]int, rows)
	slacks = make([][][]float64, rows)
	for i := 0; i < rows; i++ {
		if len(rangeGrid[i]) != cols || len(strengthGrid[i]) != cols {
			return nil, nil, core.NewGridShapeError("grid row", i, len(rangeGrid[i]))
		}
		labels[i] = make([]int, cols)
		slacks[i] = make([][]float64, cols)

		for j := 0; j < cols; j++ {
			point := constraint.Point{
				Strength: strengthGrid[i][j],
				RangeM:   rangeGrid[i][j],
			}

			cell := make([]float64, len(chs))
			viable := true
			best := 0
			for k, ch := range chs {
				r := ch.Evaluate(point)
				s := r.Slack
				if useNormalized {
					s = r.Normalized()
				}
				cell[k] = s
				if s < 0 {
					viable = false
				}
				if s < cell[best] {
					best = k
				}
			}

			slacks[i][j] = cell
			if viable {
				labels[i][j] = best
			} else {
				labels[i][j] = constraint.LabelExcluded
			}
		}
	}

	return labels, slacks, nil
}

// ViableMask converts a label grid to the boolean viability mask the island
// summarizer consumes.
func ViableMask(labels [][]int) [][]bool {
	mask := make([][]bool, len(labels))
	for i, row := range labels {
		mask[i] = make([]bool, len(row))
		for j, l := range row {
			mask[i][j] = l != constraint.LabelExcluded
		}
	}
	return mask
}

// DominanceBreakdown counts which channel dominates at viable points.
// Percentages are over viable points; every channel appears in the maps even
// at zero so downstream diffs are stable.
func DominanceBreakdown(labels [][]int, chs []constraint.Channel) *island.Dominance {
	d := &island.Dominance{
		Counts:      make(map[string]int, len(chs)),
		Percentages: make(map[string]float64, len(chs)),
	}
	for _, ch := range chs {
		d.Counts[ch.Name()] = 0
	}

	viable := 0
	for _, row := range labels {
		for _, l := range row {
			if l == constraint.LabelExcluded {
				continue
			}
			viable++
			d.Counts[chs[l].Name()]++
		}
	}

	for name, n := range d.Counts {
		if viable > 0 {
			d.Percentages[name] = 100 * float64(n) / float64(viable)
		} else {
			d.Percentages[name] = 0
		}
	}
	return d
}

// TopChannel returns the channel with the largest dominance share, ties
// resolving to the earlier channel in list order. Second return is false when
// no point is viable.
func TopChannel(d *island.Dominance, chs []constraint.Channel) (string, bool) {
	best := ""
	bestCount := 0
	total := 0
	for _, ch := range chs {
		n := d.Counts[ch.Name()]
		total += n
		if n > bestCount {
			bestCount = n
			best = ch.Name()
		}
	}
	if total == 0 {
		return "", false
	}
	return best, true
}
