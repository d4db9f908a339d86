package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/recommender/pkg/types"
)

// DefaultBatchSize is the number of error records buffered before a file is written.
const DefaultBatchSize = 100

// LogRecord represents a single log entry for Parquet storage
type LogRecord struct {
	ID            string    `parquet:"id"`
	Timestamp     time.Time `parquet:"timestamp"`
	Level         string    `parquet:"level"`
	Message       string    `parquet:"message"`
	RequestID     string    `parquet:"request_id"`
	RequestSource string    `parquet:"request_source"`
	SourceFile    string    `parquet:"source_file"`
	LineNumber    int       `parquet:"line_number"`
	Attributes    string    `parquet:"attributes"` // JSON string
}

// sink is shared by a handler and every handler derived from it.
type sink struct {
	outputDir string
	batchSize int

	mu     sync.Mutex
	buffer []LogRecord
}

// ParquetHandler is a slog.Handler that forwards every record to next and
// additionally persists error records to Parquet files.
type ParquetHandler struct {
	next   slog.Handler
	attrs  []slog.Attr
	groups []string
	sink   *sink
}

// NewParquetHandler creates a new ParquetHandler
func NewParquetHandler(next slog.Handler, outputDir string) (*ParquetHandler, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &ParquetHandler{
		next: next,
		sink: &sink{
			outputDir: outputDir,
			batchSize: DefaultBatchSize,
			buffer:    make([]LogRecord, 0, DefaultBatchSize),
		},
	}, nil
}

// Enabled implements slog.Handler
func (h *ParquetHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *ParquetHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level < slog.LevelError {
		return nil
	}

	record := LogRecord{
		ID:         uuid.NewString(),
		Timestamp:  r.Time.UTC(),
		Level:      r.Level.String(),
		Message:    r.Message,
		Attributes: h.encodeAttrs(r),
	}
	if ctx != nil {
		record.RequestID, _ = ctx.Value(types.ContextKeyRequestID).(string)
		record.RequestSource, _ = ctx.Value(types.ContextKeyRequestSource).(string)
	}
	if r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		record.SourceFile = f.File
		record.LineNumber = f.Line
	}

	return h.sink.add(record)
}

func (h *ParquetHandler) encodeAttrs(r slog.Record) string {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	prefix := ""
	for _, g := range h.groups {
		prefix += g + "."
	}
	for _, a := range h.attrs {
		attrs[a.Key] = attrValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[prefix+a.Key] = attrValue(a.Value)
		return true
	})

	raw, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}

// WithAttrs implements slog.Handler
func (h *ParquetHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ParquetHandler{
		next:   h.next.WithAttrs(attrs),
		attrs:  append(append([]slog.Attr{}, h.attrs...), attrs...),
		groups: h.groups,
		sink:   h.sink,
	}
}

// WithGroup implements slog.Handler
func (h *ParquetHandler) WithGroup(name string) slog.Handler {
	return &ParquetHandler{
		next:   h.next.WithGroup(name),
		attrs:  h.attrs,
		groups: append(append([]string{}, h.groups...), name),
		sink:   h.sink,
	}
}

// Flush writes any buffered records.
func (h *ParquetHandler) Flush() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return h.sink.flush()
}

// Close flushes the buffer. Derived handlers share it, so closing any of
// them is enough.
func (h *ParquetHandler) Close() error {
	return h.Flush()
}

func (s *sink) add(record LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buffer = append(s.buffer, record)
	if len(s.buffer) >= s.batchSize {
		return s.flush()
	}
	return nil
}

// flush writes the current buffer to a new Parquet file
// Caller must hold the lock
func (s *sink) flush() error {
	if len(s.buffer) == 0 {
		return nil
	}

	now := time.Now()
	filename := fmt.Sprintf("execution_errors_%s_%d.parquet", now.Format("20060102_150405"), now.UnixNano())
	if err := parquet.WriteFile(filepath.Join(s.outputDir, filename), s.buffer); err != nil {
		return fmt.Errorf("failed to write telemetry parquet file: %w", err)
	}

	s.buffer = s.buffer[:0]
	return nil
}
