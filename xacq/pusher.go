// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xacq // import "github.com/go-daq/acq/xacq"

import (
	"time"

	"github.com/go-daq/acq"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/push"
	"golang.org/x/xerrors"

	_ "go.nanomsg.org/mangos/v3/transport/inproc"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"
	_ "go.nanomsg.org/mangos/v3/transport/tcp"
)

// Pusher forwards frames to downstream PULL peers.
//
// Frames are encoded with acq.Frame.MarshalACQ.
type Pusher struct {
	sck mangos.Socket
	ep  string
}

// NewPusher creates a PUSH socket listening on ep (e.g. "tcp://:5555").
// Sending a frame fails after timeout if no peer takes it (never, if timeout <= 0).
func NewPusher(ep string, timeout time.Duration) (*Pusher, error) {
	sck, err := push.NewSocket()
	if err != nil {
		return nil, xerrors.Errorf("xacq: could not create push socket: %w", err)
	}

	if timeout > 0 {
		err = sck.SetOption(mangos.OptionSendDeadline, timeout)
		if err != nil {
			_ = sck.Close()
			return nil, xerrors.Errorf("xacq: could not set send deadline: %w", err)
		}
	}

	lis, err := sck.NewListener(ep, nil)
	if err != nil {
		_ = sck.Close()
		return nil, xerrors.Errorf("xacq: could not create listener %q: %w", ep, err)
	}

	err = lis.Listen()
	if err != nil {
		_ = lis.Close()
		_ = sck.Close()
		return nil, xerrors.Errorf("xacq: could not listen on %q: %w", ep, err)
	}

	return &Pusher{sck: sck, ep: ep}, nil
}

// Addr returns the end-point of the pusher.
func (p *Pusher) Addr() string {
	return p.ep
}

// Push is an acq.Handler.
func (p *Pusher) Push(ctx acq.Context, frame acq.Frame) error {
	raw, err := frame.MarshalACQ()
	if err != nil {
		return xerrors.Errorf("xacq: could not marshal frame: %w", err)
	}

	err = p.sck.Send(raw)
	if err != nil {
		return xerrors.Errorf("xacq: could not push frame of channel %d: %w", frame.Channel, err)
	}
	return nil
}

// Close closes the underlying socket.
func (p *Pusher) Close() error {
	return p.sck.Close()
}
