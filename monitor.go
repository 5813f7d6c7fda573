// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"context"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Rate is a report of the rate monitor.
type Rate struct {
	Frames int64     // frames consumed during the last interval
	FPS    float64   // frames per second during the last interval
	At     time.Time // time of the report
}

func (ctl *Controller) monitor(ctx context.Context) error {
	var (
		freq = ctl.cfg.RateInterval
		tick = time.NewTicker(freq)
		fps  []float64
	)
	defer tick.Stop()
	defer func() {
		if len(fps) == 0 {
			return
		}
		mean, std := stat.MeanStdDev(fps, nil)
		ctl.msg.Infof("%s: fps mean = %.2f, stddev = %.2f (%d reports)", ctl.cfg.Name, mean, std, len(fps))
	}()

	for {
		select {
		case <-ctl.quit:
			return nil
		case <-ctx.Done():
			return nil
		case now := <-tick.C:
			n := ctl.frames.Swap(0)
			rate := Rate{
				Frames: n,
				FPS:    float64(n) / freq.Seconds(),
				At:     now,
			}

			ctl.mu.Lock()
			ctl.rate = rate
			ctl.mu.Unlock()

			if n > 0 {
				fps = append(fps, rate.FPS)
				ctl.msg.Infof("%s: fps = %d", ctl.cfg.Name, int(rate.FPS))
			}
		}
	}
}
