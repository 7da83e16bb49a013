// Package curveio loads and writes digitized exclusion curves: CSV files
// with the lambda,alpha,excluded,source schema and spreadsheet workbooks
// digitized by hand.
package curveio

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scfscan/domain/core"
	"scfscan/domain/curve"
	"scfscan/internal/errors"
)

var curveHeader = []string{"lambda", "alpha", "excluded", "source"}

// CSVFile reads an exclusion-curve CSV. Implements ports.CurveSource.
type CSVFile struct {
	Path string
}

// NewCSVFile creates a CSV-backed curve source.
func NewCSVFile(path string) *CSVFile {
	return &CSVFile{Path: path}
}

// Name returns the file name.
func (f *CSVFile) Name() string {
	return filepath.Base(f.Path)
}

// Load reads and validates the curve file.
func (f *CSVFile) Load(ctx context.Context) (curve.Curve, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening curve file %s", f.Path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading curve file %s", f.Path)
	}
	if len(rows) == 0 {
		return nil, errors.InvalidInput("curve file is empty")
	}

	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	out := make(curve.Curve, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		p, err := parseRow(row, line)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func checkHeader(header []string) error {
	if len(header) != len(curveHeader) {
		return errors.InvalidInput(
			fmt.Sprintf("expected columns %v, got %v", curveHeader, header))
	}
	for i, want := range curveHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return errors.InvalidInput(
				fmt.Sprintf("column %d: expected %q, got %q", i, want, header[i]))
		}
	}
	return nil
}

func parseRow(row []string, line int) (curve.Point, error) {
	if len(row) != 4 {
		return curve.Point{}, core.NewRowError(line, fmt.Sprintf("expected 4 fields, got %d", len(row)))
	}

	lambda, err := strconv.ParseFloat(strings.TrimSpace(row[0]), 64)
	if err != nil {
		return curve.Point{}, core.NewRowError(line, fmt.Sprintf("bad lambda %q", row[0]))
	}
	alpha, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
	if err != nil {
		return curve.Point{}, core.NewRowError(line, fmt.Sprintf("bad alpha %q", row[1]))
	}

	var excluded bool
	switch strings.TrimSpace(row[2]) {
	case "0":
		excluded = false
	case "1":
		excluded = true
	default:
		return curve.Point{}, core.NewRowError(line, fmt.Sprintf("excluded must be 0 or 1, got %q", row[2]))
	}

	source := strings.TrimSpace(row[3])
	if source == "" {
		return curve.Point{}, core.NewRowError(line, "empty source")
	}

	return curve.Point{Lambda: lambda, Alpha: alpha, Excluded: excluded, Source: source}, nil
}

// WriteCSV writes a curve under the same schema it is read with.
func WriteCSV(path string, c curve.Curve) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating curve file %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(curveHeader); err != nil {
		return err
	}
	for _, p := range c {
		excluded := "0"
		if p.Excluded {
			excluded = "1"
		}
		record := []string{
			strconv.FormatFloat(p.Lambda, 'e', -1, 64),
			strconv.FormatFloat(p.Alpha, 'e', -1, 64),
			excluded,
			p.Source,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
