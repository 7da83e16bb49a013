package curve

import (
	"fmt"
	"math"
)

// ValidationReport summarizes a digitized-curve check. Errors are schema
// violations that make the curve unusable; warnings are digitization
// artifacts (non-monotone steps, duplicate lambdas) worth a human look.
type ValidationReport struct {
	Rows                int      `json:"rows"`
	ExcludedRows        int      `json:"excluded_rows"`
	Errors              []string `json:"errors,omitempty"`
	Warnings            []string `json:"warnings,omitempty"`
	NonMonotoneFraction float64  `json:"non_monotone_fraction"`
	DuplicateLambdas    int      `json:"duplicate_lambdas"`
	OK                  bool     `json:"ok"`
}

// Validate checks a digitized curve. Hard failures are non-finite or
// non-positive lambda/alpha values and empty sources; digitization noise is
// reported as warnings so noisy but usable scans still pass.
func Validate(c Curve) ValidationReport {
	report := ValidationReport{Rows: len(c)}

	if len(c) == 0 {
		report.Errors = append(report.Errors, "curve has no rows")
		return report
	}

	for i, p := range c {
		if math.IsNaN(p.Lambda) || math.IsInf(p.Lambda, 0) || p.Lambda <= 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: lambda %g is not positive finite", i, p.Lambda))
		}
		if math.IsNaN(p.Alpha) || math.IsInf(p.Alpha, 0) || p.Alpha <= 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: alpha %g is not positive finite", i, p.Alpha))
		}
		if p.Source == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("row %d: empty source", i))
		}
		if p.Excluded {
			report.ExcludedRows++
		}
	}

	// Digitization diagnostics on the lambda ordering.
	seen := make(map[float64]bool, len(c))
	nonMonotone := 0
	for i, p := range c {
		if seen[p.Lambda] {
			report.DuplicateLambdas++
		}
		seen[p.Lambda] = true
		if i > 0 && p.Lambda < c[i-1].Lambda {
			nonMonotone++
		}
	}
	if len(c) > 1 {
		report.NonMonotoneFraction = float64(nonMonotone) / float64(len(c)-1)
	}
	if report.NonMonotoneFraction > 0.1 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%.0f%% of steps decrease in lambda; check digitization order", report.NonMonotoneFraction*100))
	}
	if report.DuplicateLambdas > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d duplicate lambda values", report.DuplicateLambdas))
	}

	report.OK = len(report.Errors) == 0
	return report
}
