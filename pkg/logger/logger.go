package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Level represents logging levels
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logger configuration
type Config struct {
	Level        Level
	Format       string // "json" or "text"
	Output       string // "stdout", "stderr", or a file path
	EnableCaller bool
	Component    string
	Environment  string
}

// Logger wraps slog.Logger with component context and caller info on errors
type Logger struct {
	*slog.Logger
	config Config
	output io.Writer
}

// DefaultConfig returns a JSON logger on stdout at info level
func DefaultConfig() Config {
	return Config{
		Level:        LevelInfo,
		Format:       "json",
		Output:       "stdout",
		EnableCaller: true,
		Environment:  "development",
	}
}

// New creates a logger from config
func New(config Config) *Logger {
	var output io.Writer
	switch config.Output {
	case "", "stdout":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		if file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666); err == nil {
			output = file
		} else {
			output = os.Stdout
		}
	}
	return NewWithWriter(config, output)
}

// NewWithWriter creates a logger that writes to w
func NewWithWriter(config Config, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(config.Level)}

	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	if config.Component != "" {
		l = l.With("component", config.Component)
	}
	if config.Environment != "" {
		l = l.With("environment", config.Environment)
	}

	return &Logger{Logger: l, config: config, output: w}
}

// Nop returns a logger that discards everything. Used in tests.
func Nop() *Logger {
	return NewWithWriter(Config{Level: LevelError}, io.Discard)
}

func parseLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger with additional attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		config: l.config,
		output: l.output,
	}
}

// WithComponent returns a logger tagged with a component name
func (l *Logger) WithComponent(component string) *Logger {
	return l.With("component", component)
}

// Error logs at error level with caller information
func (l *Logger) Error(msg string, args ...any) {
	if l.config.EnableCaller {
		if _, file, line, ok := runtime.Caller(1); ok {
			args = append(args, "caller", fmt.Sprintf("%s:%d", filepath.Base(file), line))
		}
	}
	l.Logger.Error(msg, args...)
}

// Fatal logs at error level and exits
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	time.Sleep(100 * time.Millisecond)
	os.Exit(1)
}

// Audit records a security-relevant event such as a void or a manual reset
func (l *Logger) Audit(ctx context.Context, action string, args ...any) {
	l.Logger.LogAttrs(ctx, slog.LevelInfo, "audit", append([]slog.Attr{slog.String("action", action)}, argsToAttrs(args)...)...)
}

func argsToAttrs(args []any) []slog.Attr {
	attrs := make([]slog.Attr, 0, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		attrs = append(attrs, slog.Any(key, args[i+1]))
	}
	return attrs
}

// Close closes the underlying file, if any
func (l *Logger) Close() error {
	if closer, ok := l.output.(io.Closer); ok && l.output != os.Stdout && l.output != os.Stderr {
		return closer.Close()
	}
	return nil
}
