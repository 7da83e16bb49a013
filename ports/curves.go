package ports

import (
	"context"

	"scfscan/domain/curve"
)

// CurveSource loads a digitized exclusion curve from wherever it lives
// (CSV files, spreadsheet workbooks).
type CurveSource interface {
	Name() string
	Load(ctx context.Context) (curve.Curve, error)
}
