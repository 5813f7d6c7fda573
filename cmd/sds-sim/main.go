// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command sds-sim runs a simulated SDS oscilloscope.
//
// ex:
//
//	$> sds-sim -addr :5025 &
//	$> acq-sds -addr localhost:5025 -ch 0,1 -fps
package main // import "github.com/go-daq/acq/cmd/sds-sim"

import (
	"context"
	"flag"
	"os"
	"os/signal"

	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/sds/sdssim"
)

func main() {
	var (
		addr = flag.String("addr", ":5025", "[addr]:port to listen on")
		lvl  = flag.String("lvl", "INFO", "msgstream level")
		n    = flag.Int("n", sdssim.DefaultSamples, "number of samples per waveform")
	)

	flag.Parse()

	level, err := log.ParseLevel(*lvl)
	if err != nil {
		log.Fatalf("invalid level: %+v", err)
	}
	msg := log.NewMsgStream("sds-sim", level, os.Stdout)

	sim := sdssim.New(msg)
	sim.SetSamples(*n)

	err = sim.Listen(*addr)
	if err != nil {
		log.Fatalf("could not start simulator: %+v", err)
	}
	msg.Infof("listening on %q...", sim.Addr())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	<-ctx.Done()

	err = sim.Close()
	if err != nil {
		msg.Errorf("could not close simulator: %+v", err)
	}
}
