// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sds talks to Siglent SDS1000X-E/SDS2000X(-E) series oscilloscopes.
//
// The commands follow the "SDS1000 Series & SDS2000X & SDS2000X-E
// Programming Guide" (PG01-E02D). Channels are 0-based: channel 0 is C1.
package sds // import "github.com/go-daq/acq/sds"

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-daq/acq/link"
	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/wave"
	"golang.org/x/xerrors"
)

const (
	// Divisions is the number of horizontal divisions of the screen.
	Divisions = 14

	// ReadSize bounds the size of textual responses.
	ReadSize = 8000
)

// Channel returns the instrument name of the 0-based channel ch.
func Channel(ch int) string {
	return "C" + strconv.Itoa(ch+1)
}

// Scope is an SDS oscilloscope reached through a link.
type Scope struct {
	q   link.Querier
	msg log.MsgStream
}

// New returns a scope exchanging commands over q.
func New(q link.Querier, msg log.MsgStream) *Scope {
	if msg == nil {
		msg = log.Discard
	}
	return &Scope{q: q, msg: msg}
}

// Timebase returns the current horizontal timebase.
func (s *Scope) Timebase(ctx context.Context) (wave.Timebase, error) {
	tdiv, err := s.queryFloat(ctx, "TIME_DIV?", "S")
	if err != nil {
		return wave.Timebase{}, xerrors.Errorf("sds: could not query timebase: %w", err)
	}
	return wave.Timebase{SecsPerDiv: tdiv, Divisions: Divisions}, nil
}

// Calibration returns the vertical settings of channel ch.
func (s *Scope) Calibration(ctx context.Context, ch int) (wave.Calibration, error) {
	var (
		cal  wave.Calibration
		err  error
		name = Channel(ch)
	)

	cal.Gain, err = s.queryFloat(ctx, name+":VDIV?", "V")
	if err != nil {
		return cal, xerrors.Errorf("sds: could not query %s gain: %w", name, err)
	}

	cal.Offset, err = s.queryFloat(ctx, name+":OFFSET?", "V")
	if err != nil {
		return cal, xerrors.Errorf("sds: could not query %s offset: %w", name, err)
	}

	cal.Probe, err = s.queryFloat(ctx, name+":ATTENUATION?", "")
	if err != nil {
		return cal, xerrors.Errorf("sds: could not query %s attenuation: %w", name, err)
	}

	return cal, nil
}

// State returns the calibration of channel ch and the timebase.
// Both are read from the instrument on every call.
//
// Issuing these queries concurrently does not pay off:
// the instrument serves them one at a time anyway.
func (s *Scope) State(ctx context.Context, ch int) (wave.Calibration, wave.Timebase, error) {
	tb, err := s.Timebase(ctx)
	if err != nil {
		return wave.Calibration{}, tb, err
	}

	cal, err := s.Calibration(ctx, ch)
	if err != nil {
		return cal, tb, err
	}

	return cal, tb, nil
}

// Waveform returns the raw samples currently displayed on channel ch.
func (s *Scope) Waveform(ctx context.Context, ch int) ([]byte, error) {
	cmd := Channel(ch) + ":WF? DAT2"
	raw, err := s.q.QueryBlock(ctx, cmd)
	if err != nil {
		return nil, xerrors.Errorf("sds: could not retrieve %s waveform: %w", Channel(ch), err)
	}
	s.msg.Debugf("%s: received %d samples", Channel(ch), len(raw))
	return raw, nil
}

// SetTimebase sets the timebase to the i-th entry of Timebases.
func (s *Scope) SetTimebase(ctx context.Context, i int) error {
	if i < 0 || i >= len(Timebases) {
		return xerrors.Errorf("sds: invalid timebase index %d", i)
	}
	return s.q.Send(ctx, "TDIV "+Timebases[i].Name)
}

// SetTimebaseAtLeast sets the smallest timebase larger than secsPerDiv.
func (s *Scope) SetTimebaseAtLeast(ctx context.Context, secsPerDiv float64) error {
	i := TimebaseAbove(secsPerDiv)
	if i < 0 {
		return xerrors.Errorf("sds: no timebase larger than %v s/div", secsPerDiv)
	}
	return s.SetTimebase(ctx, i)
}

// Stop stops the acquisition of the oscilloscope.
func (s *Scope) Stop(ctx context.Context) error {
	return s.q.Send(ctx, "STOP")
}

func (s *Scope) queryFloat(ctx context.Context, cmd, unit string) (float64, error) {
	resp, err := s.q.Query(ctx, cmd, ReadSize)
	if err != nil {
		return 0, err
	}
	return ParseValue(cmd, resp, unit)
}

// ParseValue extracts the numerical value of a "<KEY> <VALUE><unit>"
// response, e.g. "C1:VDIV 2.00E-01V\n".
func ParseValue(cmd string, resp []byte, unit string) (float64, error) {
	str := strings.TrimSpace(string(resp))
	i := strings.LastIndexByte(str, ' ')
	if i < 0 {
		return 0, &link.ProtocolError{Cmd: cmd, Msg: "malformed response " + strconv.Quote(str)}
	}
	val := strings.TrimSuffix(str[i+1:], unit)
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, &link.ProtocolError{Cmd: cmd, Msg: "malformed value " + strconv.Quote(val), Err: err}
	}
	return v, nil
}
