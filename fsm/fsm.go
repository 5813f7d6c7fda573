// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fsm describes the states of an acquisition pipeline.
package fsm // import "github.com/go-daq/acq/fsm"

import (
	"fmt"
)

// Status describes the current status of an acquisition pipeline.
//
// A pipeline goes through Idle -> Running -> Stopping -> Stopped.
// A pipeline whose tasks failed ends in Error.
type Status uint8

const (
	Idle Status = iota
	Running
	Stopping
	Stopped
	Error
)

func (st Status) String() string {
	switch st {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Error:
		return "error"
	default:
		panic(fmt.Errorf("invalid status value %d", uint8(st)))
	}
}

// Done returns whether st is a terminal status.
func (st Status) Done() bool {
	return st == Stopped || st == Error
}
