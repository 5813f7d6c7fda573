// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package link implements the client side of the line-oriented command
// protocol spoken by networked test instruments.
//
// Every request opens a fresh TCP connection, writes one command line,
// reads the response and closes the connection. Some instrument firmwares
// do not reliably support persistent sessions.
//
// Binary blocks (waveforms) are framed as:
//
//	[22 bytes header, last 9 bytes: ASCII payload length S][S bytes][2 bytes trailer]
package link // import "github.com/go-daq/acq/link"

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/go-daq/acq/internal/tcputil"
	"github.com/go-daq/acq/log"
)

const (
	HeaderLen  = 22 // size of a binary block header
	LenDigits  = 9  // number of trailing header bytes holding the payload length
	TrailerLen = 2  // size of a binary block trailer

	// DefaultTimeout bounds each request: dial, write and read.
	DefaultTimeout = 5 * time.Second
)

// Querier is implemented by values able to exchange commands with an instrument.
type Querier interface {
	// Query sends cmd and returns at most max bytes of the textual response.
	Query(ctx context.Context, cmd string, max int) ([]byte, error)
	// QueryBlock sends cmd and returns the payload of the binary block response.
	QueryBlock(ctx context.Context, cmd string) ([]byte, error)
	// Send sends cmd without waiting for a response.
	Send(ctx context.Context, cmd string) error
}

// Link is a connection-per-request client to an instrument.
// Link only holds the remote address and its settings: it is safe
// for concurrent use.
type Link struct {
	addr    string
	term    string
	timeout time.Duration
	msg     log.MsgStream
}

// Option configures a Link.
type Option func(*Link)

// WithTerminator sets the terminator appended to every command.
func WithTerminator(term string) Option {
	return func(lnk *Link) { lnk.term = term }
}

// WithTimeout sets the bound on every request.
func WithTimeout(d time.Duration) Option {
	return func(lnk *Link) { lnk.timeout = d }
}

// WithMsgStream sets the message stream used for diagnostics.
func WithMsgStream(msg log.MsgStream) Option {
	return func(lnk *Link) { lnk.msg = msg }
}

// New returns a link to the instrument listening on addr.
func New(addr string, opts ...Option) *Link {
	lnk := &Link{
		addr:    addr,
		term:    "\n",
		timeout: DefaultTimeout,
		msg:     log.Discard,
	}
	for _, opt := range opts {
		opt(lnk)
	}
	return lnk
}

// Addr returns the address of the instrument.
func (lnk *Link) Addr() string { return lnk.addr }

// Query sends cmd and reads the response until its end of line,
// until the instrument closes the connection, or until max bytes
// have been read.
func (lnk *Link) Query(ctx context.Context, cmd string, max int) ([]byte, error) {
	conn, err := lnk.request(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	var (
		buf = make([]byte, max)
		n   = 0
	)
	for n < max {
		nn, err := conn.Read(buf[n:])
		n += nn
		if bytes.IndexByte(buf[n-nn:n], '\n') >= 0 {
			break
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &Error{Op: "read", Addr: lnk.addr, Err: err}
		}
	}

	return buf[:n], nil
}

// QueryBlock sends cmd and reads back a length-prefixed binary block.
func (lnk *Link) QueryBlock(ctx context.Context, cmd string) ([]byte, error) {
	conn, err := lnk.request(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return lnk.readBlock(bufio.NewReader(conn), cmd)
}

func (lnk *Link) readBlock(r io.Reader, cmd string) ([]byte, error) {
	hdr := make([]byte, HeaderLen)
	_, err := io.ReadFull(r, hdr)
	if err != nil {
		return nil, lnk.blockErr(cmd, "short block header", err)
	}

	size, err := strconv.Atoi(string(bytes.TrimSpace(hdr[HeaderLen-LenDigits:])))
	if err != nil {
		return nil, &ProtocolError{Cmd: cmd, Msg: "invalid block length", Err: err}
	}
	if size < 0 {
		return nil, &ProtocolError{Cmd: cmd, Msg: "negative block length " + strconv.Itoa(size)}
	}

	raw := make([]byte, size)
	_, err = io.ReadFull(r, raw)
	if err != nil {
		return nil, lnk.blockErr(cmd, "short block payload", err)
	}

	var trailer [TrailerLen]byte
	_, err = io.ReadFull(r, trailer[:])
	if err != nil {
		return nil, lnk.blockErr(cmd, "missing block trailer", err)
	}

	return raw, nil
}

// blockErr classifies block read failures: the instrument closing the
// connection early is a protocol error, anything else a link error.
func (lnk *Link) blockErr(cmd, msg string, err error) error {
	switch err {
	case io.EOF, io.ErrUnexpectedEOF:
		return &ProtocolError{Cmd: cmd, Msg: msg, Err: err}
	}
	return &Error{Op: "read", Addr: lnk.addr, Err: err}
}

// Send writes cmd to the instrument and closes the connection.
func (lnk *Link) Send(ctx context.Context, cmd string) error {
	conn, err := lnk.request(ctx, cmd)
	if err != nil {
		return err
	}
	return conn.Close()
}

// request dials the instrument and writes cmd. The returned connection
// has its deadline set to the end of the request.
func (lnk *Link) request(ctx context.Context, cmd string) (net.Conn, error) {
	deadline := time.Now().Add(lnk.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}

	dialer := net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", lnk.addr)
	if err != nil {
		return nil, &Error{Op: "dial", Addr: lnk.addr, Err: err}
	}
	tcputil.Setup(conn, lnk.msg)

	err = conn.SetDeadline(deadline)
	if err != nil {
		conn.Close()
		return nil, &Error{Op: "dial", Addr: lnk.addr, Err: err}
	}

	lnk.msg.Debugf("-> %q", cmd)
	_, err = io.WriteString(conn, cmd+lnk.term)
	if err != nil {
		conn.Close()
		return nil, &Error{Op: "write", Addr: lnk.addr, Err: err}
	}

	return conn, nil
}

var (
	_ Querier = (*Link)(nil)
)
