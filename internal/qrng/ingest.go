// Package qrng ingests QRNG capture CSVs under the documented contract and
// produces provenance manifests.
package qrng

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"scfscan/domain/core"
	qrngdom "scfscan/domain/qrng"
	"scfscan/internal/errors"
)

// Capture CSV contract: exactly these columns, in this order.
var expectedHeader = []string{"timestamp", "bit", "source_id"}

// ReadCaptureFile ingests a capture CSV from disk and returns the validated
// bits with a provenance manifest covering the raw file bytes.
func ReadCaptureFile(path string) ([]qrngdom.Bit, *qrngdom.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading capture file %s", path)
	}

	bits, manifest, err := parseCapture(strings.NewReader(string(data)))
	if err != nil {
		return nil, nil, err
	}

	manifest.Filename = filepath.Base(path)
	manifest.SHA256 = core.NewHash(data).String()
	return bits, manifest, nil
}

func parseCapture(r io.Reader) ([]qrngdom.Bit, *qrngdom.Manifest, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, errors.InvalidInput("capture file is empty")
	}
	if len(header) != len(expectedHeader) {
		return nil, nil, errors.InvalidInput(
			fmt.Sprintf("expected columns %v, got %v", expectedHeader, header))
	}
	for i, want := range expectedHeader {
		if strings.TrimSpace(strings.ToLower(header[i])) != want {
			return nil, nil, errors.InvalidInput(
				fmt.Sprintf("column %d: expected %q, got %q", i, want, header[i]))
		}
	}

	manifest := &qrngdom.Manifest{
		RunID:        core.NewRunID(),
		SourceCounts: make(map[string]int),
	}

	var bits []qrngdom.Bit
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, nil, core.NewRowError(line, err.Error())
		}
		if len(record) != 3 {
			return nil, nil, core.NewRowError(line, fmt.Sprintf("expected 3 fields, got %d", len(record)))
		}

		ts, err := parseTimestamp(record[0])
		if err != nil {
			return nil, nil, core.NewRowError(line, fmt.Sprintf("bad timestamp %q", record[0]))
		}

		var bit int
		switch strings.TrimSpace(record[1]) {
		case "0":
			bit = 0
		case "1":
			bit = 1
		default:
			return nil, nil, core.NewRowError(line, fmt.Sprintf("bit must be 0 or 1, got %q", record[1]))
		}

		sourceID, err := core.ParseSourceID(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, nil, core.NewRowError(line, err.Error())
		}

		bits = append(bits, qrngdom.Bit{Timestamp: ts, Bit: bit, SourceID: sourceID})

		manifest.Rows++
		manifest.SourceCounts[sourceID.String()]++
		if manifest.TimeMin.IsZero() || ts.Before(manifest.TimeMin) {
			manifest.TimeMin = ts
		}
		if ts.After(manifest.TimeMax) {
			manifest.TimeMax = ts
		}
	}

	if manifest.Rows == 0 {
		manifest.Warnings = append(manifest.Warnings, "capture contains no data rows")
	}
	return bits, manifest, nil
}

// parseTimestamp accepts RFC3339 with either a trailing Z or a numeric
// offset; a space separator between date and time is tolerated.
func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, " ") && !strings.Contains(raw, "T") {
		raw = strings.Replace(raw, " ", "T", 1)
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err == nil {
		return ts, nil
	}
	// Second-resolution captures without an explicit zone are UTC.
	return time.Parse("2006-01-02T15:04:05", raw)
}

// FileSource adapts a capture file to the ports.BitSource interface.
type FileSource struct {
	Path string
}

// Name returns the capture file name.
func (f *FileSource) Name() string {
	return filepath.Base(f.Path)
}

// Bits reads and validates the capture file.
func (f *FileSource) Bits(ctx context.Context) ([]qrngdom.Bit, *qrngdom.Manifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return ReadCaptureFile(f.Path)
}
