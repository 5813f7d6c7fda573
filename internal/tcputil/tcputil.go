// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tcputil provides functions for tcp.
package tcputil // import "github.com/go-daq/acq/internal/tcputil"

import (
	"net"
	"strconv"

	"github.com/go-daq/acq/log"
)

// GetTCPPort returns a currently free TCP port on localhost.
func GetTCPPort() (string, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return "", err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// Setup enables keep-alive and a short linger on TCP connections.
// Other connection types are left untouched.
func Setup(conn net.Conn, msg log.MsgStream) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}

	err := tcp.SetKeepAlive(true)
	if err != nil {
		msg.Warnf("could not set keep-alive: %v", err)
	}
	err = tcp.SetLinger(1)
	if err != nil {
		msg.Warnf("could not set linger: %v", err)
	}
}
