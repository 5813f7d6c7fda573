// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sdssim // import "github.com/go-daq/acq/sds/sdssim"

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-daq/acq/link"
	"github.com/go-daq/acq/log"
)

func TestBlock(t *testing.T) {
	blk := Block("C3", []byte{1, 2, 3})
	if got, want := len(blk), link.HeaderLen+3+link.TrailerLen; got != want {
		t.Fatalf("invalid block size: got=%d, want=%d", got, want)
	}
	if got, want := string(blk[:link.HeaderLen]), "C3:WF DAT2,#9000000003"; got != want {
		t.Fatalf("invalid block header:\ngot = %q\nwant= %q", got, want)
	}
}

func TestSimulator(t *testing.T) {
	sim := New(log.Discard)
	sim.SetChannel(0, Channel{VDiv: 1, Ofst: -0.5, Attn: 1, Scale: 10})
	err := sim.Listen("localhost:0")
	if err != nil {
		t.Fatalf("could not start simulator: %+v", err)
	}
	defer sim.Close()

	var (
		ctx = context.Background()
		lnk = link.New(sim.Addr(), link.WithTerminator("\r\n"), link.WithTimeout(2*time.Second))
	)

	for _, tt := range []struct {
		cmd  string
		want string
	}{
		{"*IDN?", "Siglent Technologies,SDS1204X-E,SIM0000000000,8.1.6.1.37\n"},
		{"TIME_DIV?", "TDIV 1.00E-02S\n"},
		{"C1:VDIV?", "C1:VDIV 1.00E+00V\n"},
		{"C1:OFFSET?", "C1:OFST -5.00E-01V\n"},
		{"C1:ATTENUATION?", "C1:ATTN 1\n"},
		{"C2:ATTENUATION?", "C2:ATTN 10\n"},
	} {
		t.Run(tt.cmd, func(t *testing.T) {
			resp, err := lnk.Query(ctx, tt.cmd, 1024)
			if err != nil {
				t.Fatalf("could not query: %+v", err)
			}
			if got := string(resp); got != tt.want {
				t.Fatalf("invalid response:\ngot = %q\nwant= %q", got, tt.want)
			}
		})
	}

	var waveforms int32
	sim.OnWaveform(func(ch int) { atomic.AddInt32(&waveforms, 1) })
	raw, err := lnk.QueryBlock(ctx, "C1:WF? DAT2")
	if err != nil {
		t.Fatalf("could not query waveform: %+v", err)
	}
	if got, want := len(raw), DefaultSamples; got != want {
		t.Fatalf("invalid waveform size: got=%d, want=%d", got, want)
	}
	if atomic.LoadInt32(&waveforms) != 1 {
		t.Fatalf("waveform hook not called")
	}
	if got, want := sim.Requests("C1:WF?"), 1; got != want {
		t.Fatalf("invalid request count: got=%d, want=%d", got, want)
	}
}

func TestChannelIndex(t *testing.T) {
	for _, tt := range []struct {
		name string
		want int
		err  bool
	}{
		{name: "C1", want: 0},
		{name: "C4", want: 3},
		{name: "C0", err: true},
		{name: "D1", err: true},
		{name: "Cx", err: true},
	} {
		got, err := channelIndex(tt.name)
		switch {
		case tt.err && err == nil:
			t.Fatalf("%s: expected an error", tt.name)
		case !tt.err && err != nil:
			t.Fatalf("%s: unexpected error: %+v", tt.name, err)
		case got != tt.want:
			t.Fatalf("%s: got=%d, want=%d", tt.name, got, tt.want)
		}
	}
}
