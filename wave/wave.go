// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wave decodes raw oscilloscope sample blocks into physical units.
package wave // import "github.com/go-daq/acq/wave"

import (
	"gonum.org/v1/gonum/floats"
)

// Calibration holds the per-channel settings needed to convert
// raw samples into volts.
type Calibration struct {
	Gain   float64 // vertical gain (volts per division)
	Offset float64 // vertical offset (volts)
	Probe  float64 // probe attenuation factor
}

// Timebase describes the horizontal sweep of the instrument.
type Timebase struct {
	SecsPerDiv float64 // seconds per horizontal division
	Divisions  int     // number of horizontal divisions
}

// Sweep returns the duration, in seconds, of a complete sweep.
func (tb Timebase) Sweep() float64 {
	return tb.SecsPerDiv * float64(tb.Divisions)
}

// Waveform is a decoded capture.
type Waveform struct {
	T []float64 // sample times (s)
	V []float64 // sample values (V)
}

// Len returns the number of samples of the waveform.
func (w Waveform) Len() int { return len(w.V) }

// Range returns the minimum and maximum voltages of the waveform.
// Range returns zeros for an empty waveform.
func (w Waveform) Range() (min, max float64) {
	if len(w.V) == 0 {
		return 0, 0
	}
	return floats.Min(w.V), floats.Max(w.V)
}

// Volts converts one raw sample to volts.
//
// The instrument maps 25.6 counts (128/5) to one vertical division.
func Volts(x int8, cal Calibration) float64 {
	return (float64(x)/128*cal.Gain*5 - cal.Offset) * cal.Probe
}

// Decode converts a raw block of signed 8-bit samples into a waveform.
//
// Samples are dt seconds apart, the first one at t=0.
// The calibration is not validated: garbage in, garbage out.
func Decode(raw []byte, cal Calibration, dt float64) Waveform {
	n := len(raw)
	w := Waveform{
		T: make([]float64, n),
		V: make([]float64, n),
	}
	if n == 0 {
		return w
	}

	// span [0, n*dt] over n+1 points and drop the end point.
	t := make([]float64, n+1)
	floats.Span(t, 0, float64(n)*dt)
	copy(w.T, t[:n])

	for i, b := range raw {
		w.V[i] = Volts(int8(b), cal)
	}
	return w
}

// Interval returns the sample interval of an n-samples capture
// covering the whole sweep of tb.
func Interval(tb Timebase, n int) float64 {
	if n <= 0 {
		return 0
	}
	return tb.Sweep() / float64(n)
}
