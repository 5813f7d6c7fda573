// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import "fmt"

// HandlerError reports the failure of the consumer handler on a frame.
type HandlerError struct {
	Channel int
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("acq: handler failed on channel %d: %v", e.Channel, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
