package qrng

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCapture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "capture.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCaptureFile(t *testing.T) {
	path := writeCapture(t, strings.Join([]string{
		"timestamp,bit,source_id",
		"2025-11-02T10:00:00Z,1,anu_live",
		"2025-11-02T10:00:01Z,0,anu_live",
		"2025-11-02T10:00:02+00:00,1,lfdr",
		"",
	}, "\n"))

	bits, manifest, err := ReadCaptureFile(path)
	require.NoError(t, err)
	require.Len(t, bits, 3)

	assert.Equal(t, 1, bits[0].Bit)
	assert.Equal(t, "anu_live", bits[0].SourceID.String())

	assert.Equal(t, "capture.csv", manifest.Filename)
	assert.Equal(t, 3, manifest.Rows)
	assert.Len(t, manifest.SHA256, 64)
	assert.False(t, manifest.RunID.String() == "")
	assert.Equal(t, map[string]int{"anu_live": 2, "lfdr": 1}, manifest.SourceCounts)
	assert.Equal(t, "2025-11-02T10:00:00Z", manifest.TimeMin.UTC().Format("2006-01-02T15:04:05Z"))
	assert.Equal(t, "2025-11-02T10:00:02Z", manifest.TimeMax.UTC().Format("2006-01-02T15:04:05Z"))
}

func TestReadCaptureFileBadBit(t *testing.T) {
	path := writeCapture(t, strings.Join([]string{
		"timestamp,bit,source_id",
		"2025-11-02T10:00:00Z,1,anu_live",
		"2025-11-02T10:00:01Z,2,anu_live",
	}, "\n"))

	_, _, err := ReadCaptureFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid row at line 3")
	assert.Contains(t, err.Error(), "bit must be 0 or 1")
}

func TestReadCaptureFileBadTimestamp(t *testing.T) {
	path := writeCapture(t, strings.Join([]string{
		"timestamp,bit,source_id",
		"yesterday,1,anu_live",
	}, "\n"))

	_, _, err := ReadCaptureFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid row at line 2")
	assert.Contains(t, err.Error(), "bad timestamp")
}

func TestReadCaptureFileBadSourceID(t *testing.T) {
	long := strings.Repeat("s", 65)
	path := writeCapture(t, strings.Join([]string{
		"timestamp,bit,source_id",
		"2025-11-02T10:00:00Z,1," + long,
	}, "\n"))

	_, _, err := ReadCaptureFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid row at line 2")
}

func TestReadCaptureFileWrongHeader(t *testing.T) {
	path := writeCapture(t, "time,value,src\n2025-11-02T10:00:00Z,1,anu\n")

	_, _, err := ReadCaptureFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected")
}

func TestReadCaptureFileEmptyBody(t *testing.T) {
	path := writeCapture(t, "timestamp,bit,source_id\n")

	bits, manifest, err := ReadCaptureFile(path)
	require.NoError(t, err)
	assert.Empty(t, bits)
	assert.NotEmpty(t, manifest.Warnings)
}

func TestFileSourceImplementsBitSource(t *testing.T) {
	path := writeCapture(t, strings.Join([]string{
		"timestamp,bit,source_id",
		"2025-11-02T10:00:00Z,1,anu_live",
	}, "\n"))

	src := &FileSource{Path: path}
	assert.Equal(t, "capture.csv", src.Name())

	bits, manifest, err := src.Bits(context.Background())
	require.NoError(t, err)
	assert.Len(t, bits, 1)
	assert.Equal(t, 1, manifest.Rows)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = src.Bits(cancelled)
	assert.Error(t, err)
}
