// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"context"
	"time"

	"github.com/go-daq/acq/wave"
	"golang.org/x/xerrors"
)

// Source produces frames for the producer task of a pipeline.
//
// Acquire is only called from the producer task, one call at a time.
// Acquire should return promptly, with ctx.Ctx.Err(), when ctx.Ctx is done
// while it waits on its own.
type Source interface {
	Acquire(ctx Context, ch int) (Frame, error)
}

// Handler processes one frame in the consumer task of a pipeline.
// A handler error stops the pipeline.
type Handler func(ctx Context, frame Frame) error

// Instrument is an oscilloscope from which waveforms can be retrieved.
type Instrument interface {
	// State returns the calibration of channel ch and the current timebase.
	State(ctx context.Context, ch int) (wave.Calibration, wave.Timebase, error)
	// Waveform returns the raw samples of channel ch.
	Waveform(ctx context.Context, ch int) ([]byte, error)
}

// ScopeSource acquires frames from an instrument, pacing requests
// according to the instrument timebase.
type ScopeSource struct {
	dev   Instrument
	pacer Pacer
	state PacerState
}

// NewScopeSource returns a source reading waveforms from dev.
func NewScopeSource(dev Instrument, p Pacer) *ScopeSource {
	return &ScopeSource{dev: dev, pacer: p}
}

// Acquire queries the state of channel ch, waits as told by the pacer,
// then retrieves and decodes the waveform.
//
// Instrument requests are not interrupted when ctx.Ctx is done: they are
// bounded by the link timeout. Pacer waits are.
func (src *ScopeSource) Acquire(ctx Context, ch int) (Frame, error) {
	ioctx := context.WithoutCancel(ctx.Ctx)

	cal, tb, err := src.dev.State(ioctx, ch)
	if err != nil {
		return Frame{}, xerrors.Errorf("acq: could not query state of channel %d: %w", ch, err)
	}

	var wait time.Duration
	wait, src.state = src.pacer.Next(src.state, time.Now(), tb)
	if wait > 0 {
		ctx.Msg.Debugf("channel %d: waiting %v", ch, wait)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Ctx.Done():
			timer.Stop()
			return Frame{}, ctx.Ctx.Err()
		}
	}

	raw, err := src.dev.Waveform(ioctx, ch)
	if err != nil {
		return Frame{}, xerrors.Errorf("acq: could not retrieve waveform of channel %d: %w", ch, err)
	}

	w := wave.Decode(raw, cal, wave.Interval(tb, len(raw)))
	return Frame{Channel: ch, T: w.T, V: w.V}, nil
}

var (
	_ Source = (*ScopeSource)(nil)
)
