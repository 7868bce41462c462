package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// Options controls where log output goes.
type Options struct {
	// Output defaults to os.Stderr.
	Output io.Writer
	// File enables a rotating log file in addition to Output.
	File string
	// MaxSizeMB is the rotation threshold for File (default 5).
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept (default 3).
	MaxBackups int
}

var (
	mu           sync.RWMutex
	base         zerolog.Logger
	currentLevel LogLevel
	configured   bool
	rotating     *lumberjack.Logger
)

// parseLevel maps the DEBUG and LOG_LEVEL values onto a LogLevel.
func parseLevel(debug, levelStr string) LogLevel {
	switch strings.ToLower(debug) {
	case "1", "true", "yes", "on":
		return LevelDebug
	}

	switch strings.ToLower(levelStr) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Configure (re)initialises the logger. It is safe to call more than once;
// the last call wins.
func Configure(opts Options) error {
	out := opts.Output
	if out == nil {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339, NoColor: true}
	}

	var lj *lumberjack.Logger
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 5
		}
		backups := opts.MaxBackups
		if backups <= 0 {
			backups = 3
		}
		lj = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: backups,
		}
		out = io.MultiWriter(out, lj)
	}

	level := parseLevel(os.Getenv("DEBUG"), os.Getenv("LOG_LEVEL"))

	mu.Lock()
	defer mu.Unlock()

	if rotating != nil {
		_ = rotating.Close()
	}
	rotating = lj
	currentLevel = level
	base = zerolog.New(out).Level(toZerolog(level)).With().Timestamp().Logger()
	configured = true
	return nil
}

// Close flushes and closes the rotating file sink, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if rotating == nil {
		return nil
	}
	err := rotating.Close()
	rotating = nil
	return err
}

func logger() (zerolog.Logger, LogLevel) {
	mu.RLock()
	if configured {
		l, lvl := base, currentLevel
		mu.RUnlock()
		return l, lvl
	}
	mu.RUnlock()

	_ = Configure(Options{})
	return logger()
}

func toZerolog(l LogLevel) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	_, lvl := logger()
	return lvl
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	l, _ := logger()
	l.Debug().Msgf(format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	l, _ := logger()
	l.Info().Msgf(format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	l, _ := logger()
	l.Warn().Msgf(format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	l, _ := logger()
	l.Error().Msgf(format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	l, _ := logger()
	l.WithLevel(zerolog.FatalLevel).Msgf(format, args...)
	_ = Close()
	os.Exit(1)
}

// Printf writes a message that is always printed regardless of level.
func Printf(format string, args ...interface{}) {
	l, _ := logger()
	l.Log().Msgf(format, args...)
}

// Println is the Println-style variant of Printf.
func Println(args ...interface{}) {
	l, _ := logger()
	l.Log().Msg(strings.TrimSuffix(fmt.Sprintln(args...), "\n"))
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
