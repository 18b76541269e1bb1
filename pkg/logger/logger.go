// Package logger holds the process-wide zerolog logger.
//
// Call Init once from main; everything else uses Get or Component.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options configures the logger built by Init.
type Options struct {
	// Level is trace, debug, info, warn or error. Anything else means info.
	Level string
	// Pretty switches from JSON lines to zerolog's console writer.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service is added to every entry as "service" when non-empty.
	Service string
}

var (
	mu   sync.RWMutex
	root *zerolog.Logger
)

// Init builds the root logger from opts and returns it. Calls after the first
// return the existing logger unchanged.
func Init(opts Options) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if root == nil {
		l := build(opts)
		root = &l
	}
	return *root
}

func build(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	var w io.Writer = os.Stdout
	if opts.Output != nil {
		w = opts.Output
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level := parseLevel(opts.Level)
	zerolog.SetGlobalLevel(level)

	c := zerolog.New(w).Level(level).With().Timestamp().Caller()
	if opts.Service != "" {
		c = c.Str("service", opts.Service)
	}
	return c.Logger()
}

// Get returns the root logger. It panics when Init has not run.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if root == nil {
		panic("logger: Get called before Init")
	}
	return *root
}

// Component returns the root logger with a "component" field.
func Component(name string) zerolog.Logger {
	return Get().With().Str("component", name).Logger()
}

// Reset drops the root logger so Init can run again. Tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	root = nil
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch level, err := zerolog.ParseLevel(s); {
	case err != nil, level == zerolog.NoLevel:
		return zerolog.InfoLevel
	case level > zerolog.ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return level
	}
}
