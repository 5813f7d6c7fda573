// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"testing"
	"time"

	"github.com/go-daq/acq/wave"
)

func TestPacer(t *testing.T) {
	var (
		p  = Pacer{Factor: DefaultPaceFactor}
		tb = wave.Timebase{SecsPerDiv: 10e-3, Divisions: 14} // sweep: 140ms, gap: 560ms
		t0 = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	)

	wait, st := p.Next(PacerState{}, t0, tb)
	if wait != 0 {
		t.Fatalf("first call should not wait: %v", wait)
	}
	if !st.Last.Equal(t0) {
		t.Fatalf("invalid state: got=%v, want=%v", st.Last, t0)
	}

	t1 := t0.Add(100 * time.Millisecond)
	wait, st = p.Next(st, t1, tb)
	if got, want := wait, 460*time.Millisecond; got != want {
		t.Fatalf("invalid wait:\ngot = %v\nwant= %v\n", got, want)
	}
	if !st.Last.Equal(t1) {
		t.Fatalf("invalid state: got=%v, want=%v", st.Last, t1)
	}

	t2 := t1.Add(600 * time.Millisecond)
	wait, st = p.Next(st, t2, tb)
	if wait != 0 {
		t.Fatalf("call after the gap should not wait: %v", wait)
	}
	if !st.Last.Equal(t2) {
		t.Fatalf("invalid state: got=%v, want=%v", st.Last, t2)
	}
}

func TestPacerFactor(t *testing.T) {
	var (
		tb = wave.Timebase{SecsPerDiv: 1e-3, Divisions: 10}
		t0 = time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
		st = PacerState{Last: t0}
	)

	for _, tt := range []struct {
		factor float64
		want   time.Duration
	}{
		{0, 0},
		{1, 9 * time.Millisecond},
		{4, 39 * time.Millisecond},
	} {
		wait, _ := Pacer{Factor: tt.factor}.Next(st, t0.Add(time.Millisecond), tb)
		if wait != tt.want {
			t.Fatalf("factor=%v: invalid wait: got=%v, want=%v", tt.factor, wait, tt.want)
		}
	}
}
