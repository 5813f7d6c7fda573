// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command acq-fmsine runs an acquisition pipeline fed by a synthetic
// frequency modulated sine wave.
//
// ex:
//
//	$> acq-fmsine -fps -timestamp -every 100
package main // import "github.com/go-daq/acq/cmd/acq-fmsine"

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-daq/acq"
	"github.com/go-daq/acq/flags"
	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/xacq"
)

func main() {
	var (
		n     = flag.Int("n", 1000, "number of samples per frame")
		seed  = flag.Uint64("seed", 1234, "seed for the random number generator")
		noise = flag.Float64("noise", 0, "standard deviation of the gaussian noise")
		every = flag.Int64("every", 1, "dump one frame out of every N")
	)

	cmd := flags.New()

	src := xacq.NewFMSine(*n, *seed)
	src.Noise = *noise

	dev := xacq.Dumper{Every: *every}
	ctl, err := acq.NewController(cmd.Pipeline, src, dev.Dump, os.Stdout)
	if err != nil {
		log.Fatalf("could not create acquisition pipeline: %+v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cmd.Web != "" {
		wc := acq.NewWebCtl(ctl)
		go func() {
			err := wc.ListenAndServe(ctx, cmd.Web)
			if err != nil {
				ctl.Msg().Errorf("web control failed: %+v", err)
			}
		}()
	}

	err = ctl.Run(ctx)
	if err != nil {
		log.Fatalf("acquisition failed: %+v", err)
	}
	ctl.Msg().Infof("frames: %d", dev.N)
}
