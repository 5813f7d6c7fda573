// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xacq // import "github.com/go-daq/acq/xacq"

import (
	"math"
	"time"

	"github.com/go-daq/acq"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

// FMSine produces frequency modulated sine waves over t in [-2, 2],
// with a time axis scaled by 2π.
//
// FMSine never waits: it is as fast as its consumer lets it be.
type FMSine struct {
	Carrier    float64 // carrier frequency (Hz)
	Modulation float64 // modulation frequency (Hz)
	Deviation  float64 // frequency deviation (Hz)
	Noise      float64 // standard deviation of the gaussian noise added to samples

	t   []float64
	x   []float64
	t0  time.Time
	now func() time.Time
	rnd *rand.Rand
}

// NewFMSine returns a 1Hz carrier modulated at 3Hz with a 0.25Hz deviation,
// sampled on n points.
func NewFMSine(n int, seed uint64) *FMSine {
	const fc = 1
	src := &FMSine{
		Carrier:    fc,
		Modulation: 3,
		Deviation:  fc / 4.0,
		t:          floats.Span(make([]float64, n), -2, +2),
		now:        time.Now,
		rnd:        rand.New(rand.NewSource(seed)),
	}
	src.x = make([]float64, n)
	floats.ScaleTo(src.x, 2*math.Pi, src.t)
	return src
}

// Acquire returns the modulated wave at the current time, on channel ch.
func (src *FMSine) Acquire(ctx acq.Context, ch int) (acq.Frame, error) {
	now := src.now()
	if src.t0.IsZero() {
		src.t0 = now
	}
	elapsed := now.Sub(src.t0).Seconds()

	var (
		xm = math.Sin(2 * math.Pi * elapsed * src.Modulation)
		f  = src.Carrier + src.Deviation*xm
		v  = make([]float64, len(src.t))
	)
	for i, t := range src.t {
		v[i] = math.Sin(2 * math.Pi * f * t)
		if src.Noise > 0 {
			v[i] += src.Noise * src.rnd.NormFloat64()
		}
	}

	return acq.Frame{
		Channel: ch,
		T:       append([]float64(nil), src.x...),
		V:       v,
	}, nil
}

var (
	_ acq.Source = (*FMSine)(nil)
)
