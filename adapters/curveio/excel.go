package curveio

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"scfscan/domain/curve"
	"scfscan/internal/errors"
)

// WorkbookFile reads a digitized exclusion curve from a spreadsheet sheet
// with the same lambda,alpha,excluded,source columns. Digitization work
// often arrives as .xlsx before anyone exports a CSV. Implements
// ports.CurveSource.
type WorkbookFile struct {
	Path  string
	Sheet string
}

// NewWorkbookFile creates a workbook-backed curve source. An empty sheet
// name means Sheet1.
func NewWorkbookFile(path, sheet string) *WorkbookFile {
	if sheet == "" {
		sheet = "Sheet1"
	}
	return &WorkbookFile{Path: path, Sheet: sheet}
}

// Name returns the file name with the sheet.
func (f *WorkbookFile) Name() string {
	return fmt.Sprintf("%s[%s]", filepath.Base(f.Path), f.Sheet)
}

// Load reads and validates the curve sheet.
func (f *WorkbookFile) Load(ctx context.Context) (curve.Curve, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	wb, err := excelize.OpenFile(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening workbook %s", f.Path)
	}
	defer wb.Close()

	rows, err := wb.GetRows(f.Sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", f.Sheet)
	}
	if len(rows) == 0 {
		return nil, errors.InvalidInput("sheet is empty")
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	out := make(curve.Curve, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		// Trailing empty cells are dropped by the sheet reader; a fully
		// blank row ends the table.
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			break
		}
		p, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
