package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

// Level represents the severity of a log message
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// Logger is the main logger interface
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithPrefix(prefix string) Logger
}

// Config holds logger configuration
type Config struct {
	Level    Level
	Writer   io.Writer
	NoColor  bool
	ShowTime bool

	// File receives an uncolored copy of every entry when set
	File io.Writer
}

// logger implements the Logger interface on top of zerolog
type logger struct {
	mu     sync.Mutex
	cfg    Config
	zl     zerolog.Logger
	fields map[string]interface{}
	prefix string
}

// Default logger instance
var defaultLogger = New()

// New creates a new logger with default configuration
func New() Logger {
	return NewWithConfig(Config{
		Level:    InfoLevel,
		Writer:   os.Stdout,
		NoColor:  false,
		ShowTime: true,
	})
}

// NewWithConfig creates a new logger with custom configuration
func NewWithConfig(cfg Config) Logger {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	l := &logger{
		cfg:    cfg,
		fields: make(map[string]interface{}),
	}
	l.rebuild()
	return l
}

// Default returns the process-wide logger
func Default() Logger {
	return defaultLogger
}

// rebuild recreates the zerolog pipeline from cfg, fields and prefix.
// Callers hold l.mu or own l exclusively.
func (l *logger) rebuild() {
	console := zerolog.ConsoleWriter{
		Out:        l.cfg.Writer,
		NoColor:    l.cfg.NoColor,
		TimeFormat: "15:04:05",
	}
	if !l.cfg.ShowTime {
		console.PartsExclude = []string{zerolog.TimestampFieldName}
	}

	var out io.Writer = console
	if l.cfg.File != nil {
		file := zerolog.ConsoleWriter{
			Out:        l.cfg.File,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		}
		out = zerolog.MultiLevelWriter(console, file)
	}

	ctx := zerolog.New(zerolog.SyncWriter(out)).Level(toZerolog(l.cfg.Level)).With().Timestamp()
	if len(l.fields) > 0 {
		ctx = ctx.Fields(l.fields)
	}
	l.zl = ctx.Logger()
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case InfoLevel:
		return zerolog.InfoLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	case FatalLevel:
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func (l *logger) update(f func(cfg *Config)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f(&l.cfg)
	l.rebuild()
}

// SetLevel sets the global log level
func SetLevel(level Level) {
	if l, ok := defaultLogger.(*logger); ok {
		l.update(func(cfg *Config) { cfg.Level = level })
	}
}

// SetNoColor disables color output, for log lines and for the console helpers
func SetNoColor(noColor bool) {
	color.NoColor = noColor
	if l, ok := defaultLogger.(*logger); ok {
		l.update(func(cfg *Config) { cfg.NoColor = noColor })
	}
}

// SetOutput tees every entry of the default logger to w. Passing nil stops
// the copy.
func SetOutput(w io.Writer) {
	if l, ok := defaultLogger.(*logger); ok {
		l.update(func(cfg *Config) { cfg.File = w })
	}
}

// SetLogFile opens path for appending and tees the default logger into it.
// The returned function detaches and closes the file.
func SetLogFile(path string) (func() error, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating log directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	SetOutput(f)

	return func() error {
		SetOutput(nil)
		return f.Close()
	}, nil
}

// colorEnabled reports whether the default logger writes colors
func colorEnabled() bool {
	if l, ok := defaultLogger.(*logger); ok {
		l.mu.Lock()
		defer l.mu.Unlock()
		return !l.cfg.NoColor && !color.NoColor
	}
	return !color.NoColor
}

// Helper methods for the default logger
func Debug(args ...interface{})                       { defaultLogger.Debug(args...) }
func Debugf(format string, args ...interface{})       { defaultLogger.Debugf(format, args...) }
func Info(args ...interface{})                        { defaultLogger.Info(args...) }
func Infof(format string, args ...interface{})        { defaultLogger.Infof(format, args...) }
func Warn(args ...interface{})                        { defaultLogger.Warn(args...) }
func Warnf(format string, args ...interface{})        { defaultLogger.Warnf(format, args...) }
func Error(args ...interface{})                       { defaultLogger.Error(args...) }
func Errorf(format string, args ...interface{})       { defaultLogger.Errorf(format, args...) }
func Fatal(args ...interface{})                       { defaultLogger.Fatal(args...) }
func Fatalf(format string, args ...interface{})       { defaultLogger.Fatalf(format, args...) }
func WithField(key string, value interface{}) Logger  { return defaultLogger.WithField(key, value) }
func WithFields(fields map[string]interface{}) Logger { return defaultLogger.WithFields(fields) }
func WithPrefix(prefix string) Logger                 { return defaultLogger.WithPrefix(prefix) }

// Implementation of logger methods

func (l *logger) log(level Level, message string) {
	l.mu.Lock()
	zl := l.zl
	prefix := l.prefix
	l.mu.Unlock()

	if prefix != "" {
		message = "[" + prefix + "] " + message
	}

	switch level {
	case DebugLevel:
		zl.Debug().Msg(message)
	case InfoLevel:
		zl.Info().Msg(message)
	case WarnLevel:
		zl.Warn().Msg(message)
	case ErrorLevel:
		zl.Error().Msg(message)
	case FatalLevel:
		// zerolog exits the process after writing
		zl.Fatal().Msg(message)
	}
}

// Logger interface implementation

func (l *logger) Debug(args ...interface{}) {
	l.log(DebugLevel, fmt.Sprint(args...))
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.log(DebugLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Info(args ...interface{}) {
	l.log(InfoLevel, fmt.Sprint(args...))
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.log(InfoLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Warn(args ...interface{}) {
	l.log(WarnLevel, fmt.Sprint(args...))
}

func (l *logger) Warnf(format string, args ...interface{}) {
	l.log(WarnLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Error(args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprint(args...))
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.log(ErrorLevel, fmt.Sprintf(format, args...))
}

func (l *logger) Fatal(args ...interface{}) {
	l.log(FatalLevel, fmt.Sprint(args...))
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.log(FatalLevel, fmt.Sprintf(format, args...))
}

// derive copies the logger with extra fields and an optional new prefix
func (l *logger) derive(fields map[string]interface{}, prefix *string) Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	newLogger := &logger{
		cfg:    l.cfg,
		fields: make(map[string]interface{}, len(l.fields)+len(fields)),
		prefix: l.prefix,
	}

	// Copy existing fields
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}

	if prefix != nil {
		newLogger.prefix = *prefix
	}

	newLogger.rebuild()
	return newLogger
}

func (l *logger) WithField(key string, value interface{}) Logger {
	return l.derive(map[string]interface{}{key: value}, nil)
}

func (l *logger) WithFields(fields map[string]interface{}) Logger {
	return l.derive(fields, nil)
}

func (l *logger) WithPrefix(prefix string) Logger {
	return l.derive(nil, &prefix)
}

// ParseLevel parses a string log level
func ParseLevel(level string) Level {
	switch strings.ToLower(level) {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}
