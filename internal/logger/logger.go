// Package logger provides process-wide logging for fanslysync.
// Messages go to stderr through a zerolog console writer. In verbose mode
// debug messages are shown as well; the daemon can add a rotating log file.
package logger

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

var (
	mu       sync.RWMutex
	verbose  bool
	level              = zerolog.WarnLevel
	output   io.Writer = os.Stderr
	file     *lumberjack.Logger
	instance = build()
)

// Options configures the logger.
type Options struct {
	// Level is one of debug, info, warn, error.
	Level string

	// File, when set, receives JSON log lines with size-based rotation.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Configure applies options. It may be called more than once.
func Configure(opts Options) error {
	lvl := zerolog.WarnLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
		lvl = parsed
	}

	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		_ = file.Close()
		file = nil
	}
	if opts.File != "" {
		file = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSizeMB,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAgeDays,
		}
	}
	level = lvl
	instance = build()
	return nil
}

// Close releases the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	instance = build()
	return err
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	instance = build()
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the console writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	instance = build()
}

// Debug logs a message that is only shown in verbose mode.
func Debug(format string, args ...any) {
	current().Debug().Msgf(format, args...)
}

// Section logs a section header in verbose mode.
func Section(name string) {
	current().Debug().Msgf("=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	current().Info().Msgf(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	current().Warn().Msgf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	current().Error().Msgf(format, args...)
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return &instance
}

// build creates the logger from package state (caller must hold lock).
func build() zerolog.Logger {
	console := zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: time.TimeOnly,
		NoColor:    output != os.Stderr,
	}

	var w io.Writer = console
	if file != nil {
		w = zerolog.MultiLevelWriter(console, file)
	}

	lvl := level
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
