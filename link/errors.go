// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link // import "github.com/go-daq/acq/link"

import (
	"fmt"
	"net"

	"golang.org/x/xerrors"
)

// Error is a connection-level failure: refused or reset connection,
// failed write or read, or an expired deadline.
type Error struct {
	Op   string // operation that failed ("dial", "write", "read")
	Addr string // remote address of the instrument
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("link: could not %s %s: %v", e.Op, e.Addr, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Timeout reports whether the failure was caused by an expired deadline.
func (e *Error) Timeout() bool {
	var nerr net.Error
	return xerrors.As(e.Err, &nerr) && nerr.Timeout()
}

// ProtocolError reports a malformed or truncated response.
type ProtocolError struct {
	Cmd string // command whose response was malformed
	Msg string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("link: protocol error on %q: %s", e.Cmd, e.Msg)
	}
	return fmt.Sprintf("link: protocol error on %q: %s: %v", e.Cmd, e.Msg, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// RetryError reports that a request still failed after all its retries.
type RetryError struct {
	Attempts int // number of attempts made, first one included
	Err      error
}

func (e *RetryError) Error() string {
	return fmt.Sprintf("link: giving up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryError) Unwrap() error { return e.Err }
