// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xacq // import "github.com/go-daq/acq/xacq"

import (
	"github.com/go-daq/acq"
	"github.com/go-daq/acq/wave"
)

// Dumper reports a summary of the frames it receives.
type Dumper struct {
	N     int64 // number of frames seen
	Every int64 // report one frame out of Every (all frames if <= 1)

	ch map[int]int64
}

// Count returns the number of frames seen on channel ch.
func (dev *Dumper) Count(ch int) int64 {
	return dev.ch[ch]
}

// Dump is an acq.Handler.
func (dev *Dumper) Dump(ctx acq.Context, frame acq.Frame) error {
	if dev.ch == nil {
		dev.ch = make(map[int]int64)
	}
	dev.N++
	dev.ch[frame.Channel]++

	if dev.Every > 1 && (dev.N-1)%dev.Every != 0 {
		return nil
	}

	w := wave.Waveform{T: frame.T, V: frame.V}
	min, max := w.Range()
	switch {
	case frame.Stamp.IsZero():
		ctx.Msg.Infof("frame #%d: channel=%d samples=%d range=[%g, %g] V", dev.N, frame.Channel, w.Len(), min, max)
	default:
		ctx.Msg.Infof("frame #%d: channel=%d samples=%d range=[%g, %g] V stamp=%s",
			dev.N, frame.Channel, w.Len(), min, max,
			frame.Stamp.Format("15:04:05.000000"),
		)
	}
	return nil
}
