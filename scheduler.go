// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

// Scheduler cycles through a set of channels, in declaration order,
// until a stop signal is observed.
//
// Scheduler is not safe for concurrent use: it is owned by the producer task.
type Scheduler struct {
	chans []int
	quit  <-chan struct{}
	i     int
	done  bool
}

// NewScheduler returns a scheduler over chans, stopped when quit is closed.
func NewScheduler(chans []int, quit <-chan struct{}) *Scheduler {
	return &Scheduler{
		chans: append([]int(nil), chans...),
		quit:  quit,
	}
}

// Next returns the next channel to acquire.
// Once the stop signal was observed, Next always returns false.
func (s *Scheduler) Next() (int, bool) {
	if s.done {
		return 0, false
	}
	select {
	case <-s.quit:
		s.done = true
		return 0, false
	default:
	}
	if len(s.chans) == 0 {
		s.done = true
		return 0, false
	}

	ch := s.chans[s.i]
	s.i = (s.i + 1) % len(s.chans)
	return ch, true
}
