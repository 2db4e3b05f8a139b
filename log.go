package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
)

// envOptions are the runtime knobs read from the environment rather than the
// config file, so they can be flipped per invocation.
type envOptions struct {
	Debug   bool   `env:"QUESTVOX_DEBUG"`
	LogFile string `env:"QUESTVOX_LOG"`
}

// setupLog configures the default logger. Logs are discarded unless
// QUESTVOX_LOG points at a file; QUESTVOX_DEBUG raises the level.
func setupLog() (func() error, error) {
	opts, err := env.ParseAs[envOptions]()
	if err != nil {
		return nil, fmt.Errorf("error parsing environment: %w", err)
	}

	log.SetOutput(io.Discard)
	log.SetLevel(log.InfoLevel)
	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if opts.LogFile == "" {
		return func() error { return nil }, nil
	}

	f, err := os.OpenFile(opts.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("error setting up log file: %w", err)
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetTimeFormat(time.Kitchen)
	return f.Close, nil
}
