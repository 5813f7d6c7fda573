// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acq continuously acquires waveform frames from a networked
// oscilloscope and delivers them to a single consumer, at a bounded rate
// and with bounded memory.
//
// A pipeline is made of a producer task (channel scheduler, instrument
// queries, decoding and pacing), a bounded queue, a consumer task running
// the user handler and an optional rate monitor. A Controller supervises
// these tasks and stops them together.
package acq // import "github.com/go-daq/acq"

import (
	"bytes"
	"context"
	"time"

	"github.com/go-daq/acq/log"
)

// Context carries the context of a pipeline task and its message stream.
type Context struct {
	Ctx context.Context
	Msg log.MsgStream
}

type Marshaler interface {
	MarshalACQ() ([]byte, error)
}

type Unmarshaler interface {
	UnmarshalACQ(p []byte) error
}

// Frame is one decoded waveform capture of a channel.
//
// T and V have the same length. Stamp is the zero time unless the pipeline
// tags frames with their capture time.
type Frame struct {
	Channel int
	Stamp   time.Time
	T       []float64 // sample times (s)
	V       []float64 // sample values (V)
}

// Len returns the number of samples of the frame.
func (f Frame) Len() int { return len(f.V) }

func (f Frame) MarshalACQ() ([]byte, error) {
	buf := new(bytes.Buffer)
	enc := NewEncoder(buf)
	enc.WriteI64(int64(f.Channel))
	var stamp int64
	if !f.Stamp.IsZero() {
		stamp = f.Stamp.UnixNano()
	}
	enc.WriteI64(stamp)
	enc.WriteF64s(f.T)
	enc.WriteF64s(f.V)
	return buf.Bytes(), enc.Err()
}

func (f *Frame) UnmarshalACQ(p []byte) error {
	dec := NewDecoder(bytes.NewReader(p))
	f.Channel = int(dec.ReadI64())
	f.Stamp = time.Time{}
	if stamp := dec.ReadI64(); stamp != 0 {
		f.Stamp = time.Unix(0, stamp).UTC()
	}
	f.T = dec.ReadF64s()
	f.V = dec.ReadF64s()
	return dec.Err()
}

var (
	_ Marshaler   = (*Frame)(nil)
	_ Unmarshaler = (*Frame)(nil)
)
