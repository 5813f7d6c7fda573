// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the configuration of acquisition pipelines
// and of the instrument links feeding them.
package config // import "github.com/go-daq/acq/config"

import (
	"time"

	"github.com/go-daq/acq/log"
	"golang.org/x/xerrors"
)

// Pipeline describes how an acquisition pipeline should be configured.
type Pipeline struct {
	Name  string    // name of the pipeline, used in messages
	Level log.Level // verbosity level of the pipeline

	QueueCapacity int   // number of frames buffered between producer and consumer
	Channels      []int // ordered set of channels to cycle through
	Timestamp     bool  // tag each frame with its capture time

	RateMonitor  bool          // periodically report the consumer throughput
	RateInterval time.Duration // reporting interval of the rate monitor

	PaceFactor float64 // number of sweeps to wait between two acquisitions
}

// Default returns the default pipeline configuration.
func Default() Pipeline {
	return Pipeline{
		Name:          "acq",
		Level:         log.LvlInfo,
		QueueCapacity: 1,
		Channels:      []int{0},
		RateInterval:  1 * time.Second,
		PaceFactor:    4,
	}
}

// Validate checks the configuration is usable.
func (cfg Pipeline) Validate() error {
	if cfg.QueueCapacity < 1 {
		return xerrors.Errorf("config: invalid queue capacity %d (must be >= 1)", cfg.QueueCapacity)
	}
	if len(cfg.Channels) == 0 {
		return xerrors.Errorf("config: empty channel set")
	}
	seen := make(map[int]struct{}, len(cfg.Channels))
	for _, ch := range cfg.Channels {
		if ch < 0 {
			return xerrors.Errorf("config: invalid channel %d", ch)
		}
		if _, dup := seen[ch]; dup {
			return xerrors.Errorf("config: duplicate channel %d in channel set %v", ch, cfg.Channels)
		}
		seen[ch] = struct{}{}
	}
	if cfg.RateMonitor && cfg.RateInterval <= 0 {
		return xerrors.Errorf("config: invalid rate-monitor interval %v", cfg.RateInterval)
	}
	if cfg.PaceFactor < 0 {
		return xerrors.Errorf("config: invalid pace factor %v", cfg.PaceFactor)
	}
	return nil
}

// Link describes how to reach an instrument.
type Link struct {
	Addr       string        // [host]:port of the instrument
	Terminator string        // command terminator ("\n" or "\r\n")
	Timeout    time.Duration // bound on every request (dial, write, read)
	Retries    uint64        // number of retries of failed requests (0: fail fast)
}

// DefaultLink returns the default link configuration.
func DefaultLink() Link {
	return Link{
		Addr:       "localhost:5025",
		Terminator: "\n",
		Timeout:    5 * time.Second,
	}
}

// Validate checks the configuration is usable.
func (cfg Link) Validate() error {
	if cfg.Addr == "" {
		return xerrors.Errorf("config: missing instrument address")
	}
	switch cfg.Terminator {
	case "\n", "\r\n":
		// ok
	default:
		return xerrors.Errorf("config: invalid command terminator %q", cfg.Terminator)
	}
	if cfg.Timeout <= 0 {
		return xerrors.Errorf("config: invalid link timeout %v", cfg.Timeout)
	}
	return nil
}
