// Package logger is a small level-gated logger shared by every package.
//
// Verbosity levels (in increasing order):
//
//	Error < Info < Debug < Trace
//
// Output always goes to stderr so that surfaces written to stdout stay
// machine readable. When a log file is configured the same lines are also
// written to a size-rotated file.
//
// Example usage:
//
//	closer := logger.Configure(logger.Options{Verbosity: 2, File: "surface.log"})
//	defer closer.Close()
//	logger.Infof("event=surface_done greek=%s", g)
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level represents a logging verbosity level.
// Higher values mean more verbose logging.
type Level int

const (
	Error Level = iota // failures that need attention
	Info               // lifecycle events
	Debug              // diagnostic detail
	Trace              // per-request / per-surface detail
)

// current holds the active verbosity level.
var current atomic.Int32

func init() {
	current.Store(int32(Info))
	log.SetOutput(os.Stderr)
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

// Options configures verbosity and the optional rotated log file.
type Options struct {
	Verbosity  int
	File       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Configure applies o and returns a closer for the log file, if any.
func Configure(o Options) io.Closer {
	SetVerbosity(o.Verbosity)

	if o.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}
	}

	rotator := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   o.Compress,
	}
	log.SetOutput(io.MultiWriter(os.Stderr, rotator))
	return rotator
}

// SetVerbosity sets the global logging verbosity.
func SetVerbosity(v int) {
	current.Store(int32(v))
}

// Enabled reports whether messages at level l are written.
func Enabled(l Level) bool {
	return Level(current.Load()) >= l
}

func logf(l Level, prefix, format string, args ...any) {
	if Enabled(l) {
		// depth 3: log.Output <- logf <- Errorf/Infof/... <- caller
		_ = log.Output(3, prefix+fmt.Sprintf(format, args...))
	}
}

// Errorf logs an error-level message.
func Errorf(format string, args ...any) {
	logf(Error, "[ERROR] ", format, args...)
}

// Infof logs an informational message.
func Infof(format string, args ...any) {
	logf(Info, "[INFO]  ", format, args...)
}

// Debugf logs debugging information.
func Debugf(format string, args ...any) {
	logf(Debug, "[DEBUG] ", format, args...)
}

// Tracef logs very detailed execution traces.
func Tracef(format string, args ...any) {
	logf(Trace, "[TRACE] ", format, args...)
}
