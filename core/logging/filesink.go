package logging

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// FileSink appends entries to a log file using zerolog.
type FileSink struct {
	file   *os.File
	writer *errCaptureWriter
	logger zerolog.Logger
}

// NewFileSink opens (or creates) the log file in append mode. The file is
// created owner-only since logged payloads may carry query results.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	writer := &errCaptureWriter{w: file}
	logger := zerolog.New(writer).With().Timestamp().Logger()

	return &FileSink{file: file, writer: writer, logger: logger}, nil
}

// Append writes one entry to the log file.
func (s *FileSink) Append(_ context.Context, entry Entry) error {
	s.writer.err = nil

	var evt *zerolog.Event
	switch {
	case entry.Category == CategoryError:
		evt = s.logger.Error()
	case entry.Level == LevelDebug:
		evt = s.logger.Debug()
	default:
		evt = s.logger.Info()
	}

	evt.Str("category", string(entry.Category)).Msg(entry.Payload)
	return s.writer.err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.file.Close()
}

// errCaptureWriter records the error of the most recent write. zerolog events
// do not surface write errors, so the sink reads it back after each entry.
type errCaptureWriter struct {
	w   io.Writer
	err error
}

func (w *errCaptureWriter) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}
