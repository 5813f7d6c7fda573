// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config // import "github.com/go-daq/acq/config"

import (
	"testing"
	"time"
)

func TestPipelineValidate(t *testing.T) {
	for _, tt := range []struct {
		name string
		mod  func(cfg *Pipeline)
		err  bool
	}{
		{name: "default", mod: func(cfg *Pipeline) {}},
		{name: "channels", mod: func(cfg *Pipeline) { cfg.Channels = []int{2, 0, 1} }},
		{name: "queue-0", mod: func(cfg *Pipeline) { cfg.QueueCapacity = 0 }, err: true},
		{name: "no-channel", mod: func(cfg *Pipeline) { cfg.Channels = nil }, err: true},
		{name: "negative-channel", mod: func(cfg *Pipeline) { cfg.Channels = []int{-1} }, err: true},
		{name: "duplicate-channel", mod: func(cfg *Pipeline) { cfg.Channels = []int{0, 1, 0} }, err: true},
		{name: "monitor-no-interval", mod: func(cfg *Pipeline) {
			cfg.RateMonitor = true
			cfg.RateInterval = 0
		}, err: true},
		{name: "monitor-off-no-interval", mod: func(cfg *Pipeline) { cfg.RateInterval = 0 }},
		{name: "negative-pace", mod: func(cfg *Pipeline) { cfg.PaceFactor = -1 }, err: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(&cfg)
			err := cfg.Validate()
			switch {
			case tt.err && err == nil:
				t.Fatalf("expected an error")
			case !tt.err && err != nil:
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestLinkValidate(t *testing.T) {
	for _, tt := range []struct {
		name string
		mod  func(cfg *Link)
		err  bool
	}{
		{name: "default", mod: func(cfg *Link) {}},
		{name: "crlf", mod: func(cfg *Link) { cfg.Terminator = "\r\n" }},
		{name: "no-addr", mod: func(cfg *Link) { cfg.Addr = "" }, err: true},
		{name: "cr", mod: func(cfg *Link) { cfg.Terminator = "\r" }, err: true},
		{name: "no-timeout", mod: func(cfg *Link) { cfg.Timeout = 0 }, err: true},
		{name: "negative-timeout", mod: func(cfg *Link) { cfg.Timeout = -time.Second }, err: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultLink()
			tt.mod(&cfg)
			err := cfg.Validate()
			switch {
			case tt.err && err == nil:
				t.Fatalf("expected an error")
			case !tt.err && err != nil:
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}
