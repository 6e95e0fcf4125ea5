package server

// This file implements a logging utility for the timestamping server. The
// leveled API is a thin layer over a zap core that writes to the server log
// file and, optionally, to stdout.

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging.
type LogLevel int

// Constants for different log levels.
const (
	DEBUG LogLevel = iota // Debug level (0)
	INFO                  // Information level (1)
	WARN                  // Warning level (2)
	ERROR                 // Error level (3)
	FATAL                 // Fatal error level (4)
)

// String returns the config spelling of the level.
func (ll LogLevel) String() string {
	switch ll {
	case DEBUG:
		return "debug"
	case INFO:
		return "info"
	case WARN:
		return "warn"
	case ERROR:
		return "error"
	case FATAL:
		return "fatal"
	}
	return fmt.Sprintf("LogLevel(%d)", int(ll))
}

// ParseLogLevel converts a config string into a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// zapLevel maps a LogLevel onto the zap level that carries it. FATAL maps to
// zap's panic level because a fatal log panics rather than exiting.
func (ll LogLevel) zapLevel() zapcore.Level {
	switch ll {
	case DEBUG:
		return zapcore.DebugLevel
	case INFO:
		return zapcore.InfoLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	}
	return zapcore.PanicLevel
}

// Logger holds the configuration for a logger.
type Logger struct {
	level LogLevel           // Minimum log level to output
	file  *os.File           // File to write logs to, nil for derived loggers
	sugar *zap.SugaredLogger // Structured backend
}

// NewLogger initializes a new logger.
// logLevel: Level of log messages to display.
// logFile: File name to which logs will be written.
// stdout: Whether every line is also written to stdout.
// Returns a pointer to a Logger or an error if any.
func NewLogger(logLevel LogLevel, logFile string, stdout bool) (*Logger, error) {
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	encCfg := zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		NameKey:          "logger",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeTime:       zapcore.ISO8601TimeEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	sinks := []zapcore.WriteSyncer{zapcore.AddSync(file)}
	if stdout {
		sinks = append(sinks, zapcore.Lock(os.Stdout))
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.NewMultiWriteSyncer(sinks...),
		zap.NewAtomicLevelAt(logLevel.zapLevel()),
	)
	zl := zap.New(core)

	return &Logger{level: logLevel, file: file, sugar: zl.Sugar()}, nil
}

// With returns a logger that attaches the provided key/value pairs to every
// line. The derived logger shares the log file of its parent and must not be
// used after the parent is closed.
func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{level: l.level, sugar: l.sugar.With(keysAndValues...)}
}

// Level returns the minimum level that gets written.
func (l *Logger) Level() LogLevel {
	return l.level
}

// Close flushes the logger and closes the log file.
func (l *Logger) Close() error {
	// Sync on a file never fails in practice, but stdout can return EINVAL
	// on some platforms, so that error is dropped.
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Debug logs debug messages using string concatenation.
func (l *Logger) Debug(args ...interface{}) {
	l.sugar.Debug(args...)
}

// Debugf logs debug messages using format directives.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Debugw logs a debug message with structured fields.
func (l *Logger) Debugw(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs informational messages using string concatenation.
func (l *Logger) Info(args ...interface{}) {
	l.sugar.Info(args...)
}

// Infof logs informational messages using format directives.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Infow logs an informational message with structured fields.
func (l *Logger) Infow(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs warning messages using string concatenation.
func (l *Logger) Warn(args ...interface{}) {
	l.sugar.Warn(args...)
}

// Warnf logs warning messages using format directives.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs error messages using string concatenation.
func (l *Logger) Error(args ...interface{}) {
	l.sugar.Error(args...)
}

// Errorf logs error messages using format directives.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Errorw logs an error message with structured fields.
func (l *Logger) Errorw(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Fatal logs fatal messages using string concatenation and then panics.
func (l *Logger) Fatal(args ...interface{}) {
	l.sugar.Panic(args...)
}

// Fatalf logs fatal messages using format directives and then panics.
func (l *Logger) Fatalf(format string, args ...interface{}) {
	l.sugar.Panicf(format, args...)
}
