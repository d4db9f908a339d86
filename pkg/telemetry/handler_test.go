package telemetry

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/recommender/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, dir string) []LogRecord {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "execution_errors_*.parquet"))
	require.NoError(t, err)

	var records []LogRecord
	for _, f := range files {
		rows, err := parquet.ReadFile[LogRecord](f)
		require.NoError(t, err)
		records = append(records, rows...)
	}
	return records
}

func TestParquetHandlerPersistsErrorsOnly(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	h, err := NewParquetHandler(slog.NewTextHandler(&out, nil), dir)
	require.NoError(t, err)

	logger := slog.New(h).With("component", "enrich")
	ctx := context.WithValue(context.Background(), types.ContextKeyRequestID, "req-42")
	ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

	logger.InfoContext(ctx, "Semantic recommendations computed")
	logger.ErrorContext(ctx, "Recommendation request failed", "error", errors.New("upstream timeout"))

	require.NoError(t, h.Close())

	assert.Contains(t, out.String(), "Semantic recommendations computed")
	assert.Contains(t, out.String(), "Recommendation request failed")

	records := readRecords(t, dir)
	require.Len(t, records, 1)
	assert.Equal(t, "ERROR", records[0].Level)
	assert.Equal(t, "Recommendation request failed", records[0].Message)
	assert.Equal(t, "req-42", records[0].RequestID)
	assert.Equal(t, "server", records[0].RequestSource)
	assert.JSONEq(t, `{"component": "enrich", "error": "upstream timeout"}`, records[0].Attributes)
}

func TestParquetHandlerDerivedHandlersShareBuffer(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), dir)
	require.NoError(t, err)

	slog.New(h).WithGroup("http").Error("first")
	slog.New(h).With("k", "v").Error("second")

	require.NoError(t, h.Flush())
	assert.Len(t, readRecords(t, dir), 2)
}

func TestParquetHandlerFlushesAtBatchSize(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), dir)
	require.NoError(t, err)
	h.sink.batchSize = 2

	logger := slog.New(h)
	logger.Error("one")
	logger.Error("two")

	assert.Len(t, readRecords(t, dir), 2)
}

func TestNewParquetHandlerBadDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	_, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), filepath.Join(file, "sub"))
	assert.Error(t, err)
}
