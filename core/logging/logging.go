package logging

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Level is the file-sink verbosity threshold. Ordering: none < info < debug.
type Level int

const (
	LevelNone Level = iota
	LevelInfo
	LevelDebug
)

// ParseLevel converts a configured log level string to a Level.
func ParseLevel(s string) Level {
	switch s {
	case "none":
		return LevelNone
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// Category classifies a log entry by pipeline stage.
type Category string

const (
	CategoryRun      Category = "run"
	CategoryQuery    Category = "query"
	CategoryRequest  Category = "request"
	CategoryResponse Category = "response"
	CategoryError    Category = "error"
)

// Entry is one discrete event record. Entries are appended to sinks and
// never mutated afterwards.
type Entry struct {
	Timestamp time.Time
	Level     Level
	Category  Category
	Payload   string
}

// Sink is a destination log entries are appended to.
type Sink interface {
	Append(ctx context.Context, entry Entry) error
	Close() error
}

// Logger fans entries out to the file sink (threshold-gated) and, when
// configured, the database sink (unconditional). Sink failures are reported
// on stderr and never abort the run.
type Logger struct {
	level Level
	file  Sink
	db    Sink
}

// New creates a dual-sink logger. db may be nil when no database sink is
// configured.
func New(level Level, file Sink, db Sink) *Logger {
	return &Logger{level: level, file: file, db: db}
}

// Log appends the entry to both sinks. The file sink receives it only when
// the entry level meets the configured threshold; the database sink receives
// every entry at debug granularity so that full detail stays recoverable.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	if l.file != nil && entry.Level <= l.level && l.level > LevelNone {
		if err := l.file.Append(ctx, entry); err != nil {
			fmt.Fprintf(os.Stderr, "db_fwd: failed to write log file: %v\n", err)
		}
	}

	if l.db != nil {
		dbEntry := entry
		dbEntry.Level = LevelDebug
		if err := l.db.Append(ctx, dbEntry); err != nil {
			fmt.Fprintf(os.Stderr, "db_fwd: failed to write database log: %v\n", err)
		}
	}
}

// Info logs an entry at info level.
func (l *Logger) Info(ctx context.Context, category Category, format string, args ...any) {
	l.Log(ctx, Entry{Level: LevelInfo, Category: category, Payload: fmt.Sprintf(format, args...)})
}

// Debug logs an entry at debug level.
func (l *Logger) Debug(ctx context.Context, category Category, format string, args ...any) {
	l.Log(ctx, Entry{Level: LevelDebug, Category: category, Payload: fmt.Sprintf(format, args...)})
}

// Error logs an error entry. Error entries pass the info threshold so they
// are visible unless logging is fully disabled.
func (l *Logger) Error(ctx context.Context, format string, args ...any) {
	l.Log(ctx, Entry{Level: LevelInfo, Category: CategoryError, Payload: fmt.Sprintf(format, args...)})
}

// Close releases both sinks.
func (l *Logger) Close() {
	if l.file != nil {
		if err := l.file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "db_fwd: failed to close log file: %v\n", err)
		}
	}
	if l.db != nil {
		if err := l.db.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "db_fwd: failed to close database log: %v\n", err)
		}
	}
}

// Console returns a zerolog logger for user-facing stderr diagnostics,
// pretty-printed when stderr is an interactive terminal.
func Console() zerolog.Logger {
	var out zerolog.Logger
	if term.IsTerminal(int(os.Stderr.Fd())) {
		out = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "2006-01-02T15:04:05.000Z"})
	} else {
		out = zerolog.New(os.Stderr)
	}
	return out.With().Timestamp().Logger()
}
