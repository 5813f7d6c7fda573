// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"math"
	"time"

	"github.com/go-daq/acq/wave"
)

// DefaultPaceFactor is the default number of sweeps between two acquisitions.
const DefaultPaceFactor = 4

// PacerState is the state threaded through successive Pacer.Next calls.
type PacerState struct {
	Last time.Time // instant of the previous acquisition decision
}

// Pacer spaces waveform requests so the instrument has completed a fresh
// acquisition before it is read again.
type Pacer struct {
	Factor float64 // number of sweeps to wait between two acquisitions
}

// Next returns how long to wait at now before the next acquisition,
// and the state to pass to the following call.
//
// The first call (zero state) never waits. The returned state records now,
// whatever the wait.
func (p Pacer) Next(st PacerState, now time.Time, tb wave.Timebase) (time.Duration, PacerState) {
	next := PacerState{Last: now}
	if st.Last.IsZero() {
		return 0, next
	}

	gap := time.Duration(math.Round(p.Factor * tb.Sweep() * float64(time.Second)))
	elapsed := now.Sub(st.Last)
	if elapsed >= gap {
		return 0, next
	}
	return gap - elapsed, next
}
