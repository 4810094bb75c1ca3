package logger

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/weedai/weedcoco-go/internal/errors"
)

const (
	// traceLevelValue is slog.Level for TRACE level (below Debug which is -4)
	traceLevelValue = slog.Level(-8)

	// floatPrecisionRatio rounds floats to 3 decimal places in log output
	floatPrecisionRatio = 1000.0
)

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level     string // console level: trace, debug, info, warn, error
	File      string // optional JSON log file path
	FileLevel string // level for the log file, defaults to Level
}

// CentralLogger manages module-aware logging over console and an optional file
type CentralLogger struct {
	config      LoggingConfig
	baseHandler slog.Handler
	file        *os.File
	fileBuf     *bufio.Writer
	mu          sync.Mutex
}

// NewCentralLogger creates a centralized logger writing text to console (stderr)
// and, when configured, JSON records to a file.
func NewCentralLogger(cfg LoggingConfig) (*CentralLogger, error) {
	return newCentralLogger(cfg, os.Stderr)
}

func newCentralLogger(cfg LoggingConfig, console io.Writer) (*CentralLogger, error) {
	if cfg.Level == "" {
		cfg.Level = string(LogLevelInfo)
	}
	if cfg.FileLevel == "" {
		cfg.FileLevel = cfg.Level
	}

	cl := &CentralLogger{config: cfg}
	handlers := []slog.Handler{newTextHandler(console, parseLogLevel(cfg.Level))}

	if cfg.File != "" {
		if err := ensureFileDirectory(cfg.File); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, errors.FileError(fmt.Errorf("failed to open log file: %w", err), cfg.File)
		}
		cl.file = f
		cl.fileBuf = bufio.NewWriter(f)
		handlers = append(handlers, slog.NewJSONHandler(&lockedWriter{cl: cl}, &slog.HandlerOptions{
			Level: parseLogLevel(cfg.FileLevel),
		}))
	}

	if len(handlers) == 1 {
		cl.baseHandler = handlers[0]
	} else {
		cl.baseHandler = newMultiWriterHandler(handlers...)
	}

	return cl, nil
}

// Module returns a logger scoped to a specific module
func (cl *CentralLogger) Module(name string) Logger {
	if cl == nil {
		return nil
	}

	return &moduleLogger{
		module: name,
		logger: slog.New(cl.baseHandler),
		level:  minLevel(parseLogLevel(cl.config.Level), parseLogLevel(cl.config.FileLevel), cl.file != nil),
	}
}

// Flush writes buffered file output to the OS
func (cl *CentralLogger) Flush() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.fileBuf == nil {
		return nil
	}
	return cl.fileBuf.Flush()
}

// Close flushes and closes the log file
func (cl *CentralLogger) Close() error {
	if cl == nil {
		return nil
	}
	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.file == nil {
		return nil
	}

	var errs []error
	if err := cl.fileBuf.Flush(); err != nil {
		errs = append(errs, fmt.Errorf("failed to flush log file: %w", err))
	}
	if err := cl.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close log file: %w", err))
	}
	cl.file = nil
	cl.fileBuf = nil

	return errors.Join(errs...)
}

// lockedWriter serializes writes into the central logger's file buffer
type lockedWriter struct {
	cl *CentralLogger
}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.cl.mu.Lock()
	defer w.cl.mu.Unlock()
	if w.cl.fileBuf == nil {
		return len(p), nil
	}
	return w.cl.fileBuf.Write(p)
}

// NewSlogLogger creates a Logger writing text records to w, used mainly in tests
func NewSlogLogger(w io.Writer, level LogLevel) Logger {
	lvl := parseSlogLevel(level)
	return &moduleLogger{
		logger: slog.New(newTextHandler(w, lvl)),
		level:  lvl,
	}
}

// ensureFileDirectory creates the directory for a file path if it doesn't exist
func ensureFileDirectory(filePath string) error {
	dir := filepath.Dir(filePath)
	if dir == "." || dir == filePath {
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.FileError(fmt.Errorf("failed to create directory %s: %w", dir, err), dir)
	}
	return nil
}

// parseLogLevel converts string level to slog.Level
func parseLogLevel(level string) slog.Level {
	return parseSlogLevel(LogLevel(level))
}

func parseSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelTrace:
		return traceLevelValue
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// IsValidLevel reports whether level names a supported log level
func IsValidLevel(level string) bool {
	switch LogLevel(level) {
	case LogLevelTrace, LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}

func minLevel(console, file slog.Level, hasFile bool) slog.Level {
	if hasFile && file < console {
		return file
	}
	return console
}

// moduleLogger implements Logger interface for a specific module
type moduleLogger struct {
	module string
	logger *slog.Logger
	level  slog.Level
	fields []Field
}

// Module creates a sub-module logger with its own copy of fields
func (m *moduleLogger) Module(name string) Logger {
	if m == nil {
		return nil
	}

	module := name
	if m.module != "" {
		module = m.module + "." + name
	}

	return &moduleLogger{
		module: module,
		logger: m.logger,
		level:  m.level,
		fields: slices.Clone(m.fields),
	}
}

// Trace logs a trace message (most verbose level)
func (m *moduleLogger) Trace(msg string, fields ...Field) {
	if m == nil || m.level > traceLevelValue {
		return
	}
	m.log(traceLevelValue, msg, fields...)
}

// Debug logs a debug message
func (m *moduleLogger) Debug(msg string, fields ...Field) {
	if m == nil || m.level > slog.LevelDebug {
		return
	}
	m.log(slog.LevelDebug, msg, fields...)
}

// Info logs an info message
func (m *moduleLogger) Info(msg string, fields ...Field) {
	if m == nil || m.level > slog.LevelInfo {
		return
	}
	m.log(slog.LevelInfo, msg, fields...)
}

// Warn logs a warning message
func (m *moduleLogger) Warn(msg string, fields ...Field) {
	if m == nil || m.level > slog.LevelWarn {
		return
	}
	m.log(slog.LevelWarn, msg, fields...)
}

// Error logs an error message
func (m *moduleLogger) Error(msg string, fields ...Field) {
	if m == nil {
		return
	}
	m.log(slog.LevelError, msg, fields...)
}

// Log logs a message with explicit level
func (m *moduleLogger) Log(level LogLevel, msg string, fields ...Field) {
	if m == nil {
		return
	}
	lvl := parseSlogLevel(level)
	if m.level > lvl {
		return
	}
	m.log(lvl, msg, fields...)
}

// With returns a new logger with accumulated fields
func (m *moduleLogger) With(fields ...Field) Logger {
	if m == nil {
		return nil
	}

	return &moduleLogger{
		module: m.module,
		logger: m.logger,
		level:  m.level,
		fields: slices.Concat(m.fields, fields),
	}
}

// WithContext returns a logger carrying the run ID stored in ctx, if any
func (m *moduleLogger) WithContext(ctx context.Context) Logger {
	if m == nil {
		return nil
	}

	runID := RunIDFromContext(ctx)
	if runID == "" {
		return m
	}
	return m.With(String(traceIDKey, runID))
}

// Flush is a no-op; the central logger owns file buffers
func (m *moduleLogger) Flush() error {
	return nil
}

func (m *moduleLogger) log(level slog.Level, msg string, fields ...Field) {
	attrs := make([]slog.Attr, 0, len(m.fields)+len(fields)+1)

	if m.module != "" {
		attrs = append(attrs, slog.String(moduleKey, m.module))
	}
	for i := range m.fields {
		attrs = append(attrs, fieldToAttr(m.fields[i]))
	}
	for i := range fields {
		attrs = append(attrs, fieldToAttr(fields[i]))
	}

	m.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// roundFloat rounds a float64 to 3 decimal places for cleaner output
func roundFloat(val float64) float64 {
	return math.Round(val*floatPrecisionRatio) / floatPrecisionRatio
}

// fieldToAttr converts Field to slog.Attr
func fieldToAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case float64:
		return slog.Float64(f.Key, roundFloat(v))
	case bool:
		return slog.Bool(f.Key, v)
	case time.Time:
		return slog.Time(f.Key, v)
	case time.Duration:
		// slog.Duration outputs nanoseconds in JSON which is not human-friendly
		return slog.String(f.Key, v.Round(time.Millisecond).String())
	default:
		return slog.Any(f.Key, v)
	}
}

type runIDContextKey struct{}

// WithRunID returns a new context carrying the conversion run ID
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDContextKey{}, runID)
}

// RunIDFromContext extracts the run ID set by WithRunID
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if runID, ok := ctx.Value(runIDContextKey{}).(string); ok {
		return runID
	}
	return ""
}
