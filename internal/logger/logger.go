// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/fairjudge/internal/env"
	"github.com/ekisa-team/fairjudge/internal/xfs"
)

type options struct {
	writer     io.Writer
	level      slog.Level
	logFile    string
	maxSizeMB  int
	maxBackups int
	logToFile  bool
}

// Option configures New.
type Option func(*options)

// WithLogToFile enables or disables file output.
func WithLogToFile(enabled bool) Option {
	return func(o *options) {
		o.logToFile = enabled
	}
}

// WithLogFile sets the rotated log file path.
func WithLogFile(path string) Option {
	return func(o *options) {
		o.logFile = path
	}
}

// WithLevel sets the minimum level.
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithWriter replaces stderr as the console writer.
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		o.writer = w
	}
}

// New creates a logger for the environment. Development uses a colored
// console handler, production emits JSON.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := &options{
		writer:     os.Stderr,
		level:      slog.LevelInfo,
		logFile:    filepath.Join("logs", "fairjudge.log"),
		maxSizeMB:  50,
		maxBackups: 5,
	}
	if !environment.IsProduction() {
		o.level = slog.LevelDebug
	}

	for _, opt := range opts {
		opt(o)
	}

	w := o.writer
	color := true
	if o.logToFile && o.logFile != "" {
		w = io.MultiWriter(o.writer, &lumberjack.Logger{
			Filename:   xfs.ExpandTilde(o.logFile),
			MaxSize:    o.maxSizeMB,
			MaxBackups: o.maxBackups,
			Compress:   true,
		})
		color = false
	}

	if environment.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: o.level}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      o.level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	}))
}
