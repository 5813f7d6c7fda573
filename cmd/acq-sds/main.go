// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command acq-sds acquires waveforms from a Siglent SDS oscilloscope
// and dumps a summary of each frame on screen.
//
// Usage: acq-sds [options]
//
// ex:
//
//	$> acq-sds -addr 192.168.1.10:5025 -ch 0,1 -fps
//	$> acq-sds -addr 192.168.1.10:5025 -web :8080 -i
//	$> acq-sds -discover 2s
package main // import "github.com/go-daq/acq/cmd/acq-sds"

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"github.com/go-daq/acq"
	"github.com/go-daq/acq/flags"
	"github.com/go-daq/acq/link"
	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/sds"
	"github.com/go-daq/acq/xacq"
)

func main() {
	var (
		discover = flag.Duration("discover", 0, "browse the network for instruments during the given duration and exit")
		every    = flag.Int64("every", 1, "dump one frame out of every N")
		push     = flag.String("push", "", "end-point where to push frames (e.g. tcp://:5555)")
		tdiv     = flag.Float64("tdiv", 0, "set the timebase to the first setting above this value (s/div) before starting")
	)

	cmd := flags.New()

	if *discover > 0 {
		runDiscover(*discover)
		return
	}

	msg := log.NewMsgStream(cmd.Pipeline.Name, cmd.Pipeline.Level, os.Stdout)

	lnk := link.New(
		cmd.Link.Addr,
		link.WithTerminator(cmd.Link.Terminator),
		link.WithTimeout(cmd.Link.Timeout),
		link.WithMsgStream(msg),
	)
	var q link.Querier = lnk
	if cmd.Link.Retries > 0 {
		q = link.NewRetry(lnk, cmd.Link.Retries, msg)
	}
	scope := sds.New(q, msg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if *tdiv > 0 {
		err := scope.SetTimebaseAtLeast(ctx, *tdiv)
		if err != nil {
			log.Fatalf("could not set timebase: %+v", err)
		}
	}

	dumper := xacq.Dumper{Every: *every}
	handler := dumper.Dump
	if *push != "" {
		pusher, err := xacq.NewPusher(*push, cmd.Link.Timeout)
		if err != nil {
			log.Fatalf("could not create pusher: %+v", err)
		}
		defer pusher.Close()
		handler = func(ctx acq.Context, frame acq.Frame) error {
			err := dumper.Dump(ctx, frame)
			if err != nil {
				return err
			}
			return pusher.Push(ctx, frame)
		}
	}

	src := acq.NewScopeSource(scope, acq.Pacer{Factor: cmd.Pipeline.PaceFactor})
	ctl, err := acq.NewController(cmd.Pipeline, src, handler, os.Stdout)
	if err != nil {
		log.Fatalf("could not create acquisition pipeline: %+v", err)
	}

	if cmd.Web != "" {
		wc := acq.NewWebCtl(ctl)
		go func() {
			err := wc.ListenAndServe(ctx, cmd.Web)
			if err != nil {
				msg.Errorf("web control failed: %+v", err)
			}
		}()
	}

	if cmd.Interactive {
		go shell(ctl)
	}

	err = ctl.Run(ctx)
	if err != nil {
		log.Fatalf("acquisition failed: %+v", err)
	}

	if cmd.Interactive {
		// leave the instrument in a known state when driven by hand.
		ctx, cancel := context.WithTimeout(context.Background(), cmd.Link.Timeout)
		defer cancel()
		err = scope.Stop(ctx)
		if err != nil {
			msg.Warnf("could not stop instrument: %+v", err)
		}
	}
	msg.Infof("frames: %d", dumper.N)
}

func runDiscover(d time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()

	hosts, err := link.Discover(ctx, link.ServiceSCPI)
	if err != nil {
		log.Fatalf("could not discover instruments: %+v", err)
	}
	if len(hosts) == 0 {
		log.Warnf("no instrument found")
		return
	}
	for _, h := range hosts {
		log.Infof("%s: %s", h.Instance, h.Addr())
	}
}
