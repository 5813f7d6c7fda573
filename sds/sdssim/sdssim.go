// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdssim simulates an SDS oscilloscope on a TCP port.
//
// The simulator serves one command per connection, like the real instrument.
package sdssim // import "github.com/go-daq/acq/sds/sdssim"

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"strings"
	"sync"

	"github.com/go-daq/acq/internal/tcputil"
	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/sds"
	"golang.org/x/xerrors"
)

// DefaultSamples is the default number of samples of a waveform.
const DefaultSamples = 1400

// Channel holds the vertical settings of a simulated channel.
type Channel struct {
	VDiv  float64 // volts per division
	Ofst  float64 // offset (volts)
	Attn  float64 // probe attenuation
	Scale float64 // amplitude of the simulated sine, in counts
}

// Simulator is a fake SDS oscilloscope.
type Simulator struct {
	msg log.MsgStream

	mu    sync.Mutex
	nsamp int
	hook  func(ch int)
	tdiv  float64
	chans map[int]Channel
	stop  bool
	nreqs map[string]int

	l    net.Listener
	wg   sync.WaitGroup
	quit chan struct{}
}

// New returns a simulator with a 10ms/div timebase.
func New(msg log.MsgStream) *Simulator {
	if msg == nil {
		msg = log.Discard
	}
	return &Simulator{
		msg:   msg,
		nsamp: DefaultSamples,
		tdiv:  10e-3,
		chans: make(map[int]Channel),
		nreqs: make(map[string]int),
		quit:  make(chan struct{}),
	}
}

// SetChannel configures channel ch.
func (sim *Simulator) SetChannel(ch int, c Channel) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.chans[ch] = c
}

func (sim *Simulator) channel(ch int) Channel {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	c, ok := sim.chans[ch]
	if !ok {
		c = Channel{VDiv: 0.2, Attn: 10, Scale: 100}
	}
	return c
}

// SetSamples sets the number of samples of each waveform.
func (sim *Simulator) SetSamples(n int) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.nsamp = n
}

// OnWaveform registers f to be called before a waveform of channel ch
// is sent. f may block to simulate a slow instrument.
func (sim *Simulator) OnWaveform(f func(ch int)) {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	sim.hook = f
}

// Timebase returns the current timebase, in seconds per division.
func (sim *Simulator) Timebase() float64 {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.tdiv
}

// Stopped returns whether a STOP command was received.
func (sim *Simulator) Stopped() bool {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.stop
}

// Requests returns the number of received commands whose header is hdr,
// e.g. "C1:WF?" or "TIME_DIV?".
func (sim *Simulator) Requests(hdr string) int {
	sim.mu.Lock()
	defer sim.mu.Unlock()
	return sim.nreqs[hdr]
}

// Listen starts serving on addr.
func (sim *Simulator) Listen(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return xerrors.Errorf("sdssim: could not listen on %q: %w", addr, err)
	}
	sim.l = l
	sim.wg.Add(1)
	go sim.serve()
	return nil
}

// Addr returns the address the simulator listens on.
func (sim *Simulator) Addr() string {
	return sim.l.Addr().String()
}

// Close stops the simulator and waits for in-flight requests.
func (sim *Simulator) Close() error {
	close(sim.quit)
	err := sim.l.Close()
	sim.wg.Wait()
	return err
}

func (sim *Simulator) serve() {
	defer sim.wg.Done()
	for {
		conn, err := sim.l.Accept()
		if err != nil {
			select {
			case <-sim.quit:
				return
			default:
				sim.msg.Errorf("could not accept connection: %+v", err)
				return
			}
		}
		tcputil.Setup(conn, sim.msg)
		sim.wg.Add(1)
		go sim.handle(conn)
	}
}

func (sim *Simulator) handle(conn net.Conn) {
	defer sim.wg.Done()
	defer conn.Close()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && err != io.EOF {
		sim.msg.Warnf("could not read command: %+v", err)
		return
	}
	cmd := strings.TrimRight(line, "\r\n")
	if cmd == "" {
		return
	}
	sim.msg.Debugf("<- %q", cmd)

	resp, err := sim.reply(cmd)
	if err != nil {
		sim.msg.Warnf("invalid command %q: %+v", cmd, err)
		return
	}
	if resp == nil {
		return
	}

	_, err = conn.Write(resp)
	if err != nil {
		sim.msg.Warnf("could not send response to %q: %+v", cmd, err)
	}
}

func (sim *Simulator) reply(cmd string) ([]byte, error) {
	hdr, arg := cmd, ""
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		hdr, arg = cmd[:i], strings.TrimSpace(cmd[i+1:])
	}
	hdr = strings.ToUpper(hdr)

	sim.mu.Lock()
	sim.nreqs[hdr]++
	sim.mu.Unlock()

	switch hdr {
	case "*IDN?":
		return []byte("Siglent Technologies,SDS1204X-E,SIM0000000000,8.1.6.1.37\n"), nil
	case "TIME_DIV?", "TDIV?":
		return []byte(fmt.Sprintf("TDIV %.2ES\n", sim.Timebase())), nil
	case "TIME_DIV", "TDIV":
		return nil, sim.setTimebase(arg)
	case "STOP":
		sim.mu.Lock()
		sim.stop = true
		sim.mu.Unlock()
		return nil, nil
	}

	name, sub, ok := splitChannel(hdr)
	if !ok {
		return nil, xerrors.Errorf("sdssim: unknown command")
	}
	ch, err := channelIndex(name)
	if err != nil {
		return nil, err
	}
	c := sim.channel(ch)

	switch sub {
	case "VDIV?", "VOLT_DIV?":
		return []byte(fmt.Sprintf("%s:VDIV %.2EV\n", name, c.VDiv)), nil
	case "OFFSET?", "OFST?":
		return []byte(fmt.Sprintf("%s:OFST %.2EV\n", name, c.Ofst)), nil
	case "ATTENUATION?", "ATTN?":
		return []byte(fmt.Sprintf("%s:ATTN %g\n", name, c.Attn)), nil
	case "WF?", "WAVEFORM?":
		sim.mu.Lock()
		hook := sim.hook
		sim.mu.Unlock()
		if hook != nil {
			hook(ch)
		}
		return Block(name, sim.samples(ch, c)), nil
	}
	return nil, xerrors.Errorf("sdssim: unknown channel command %q", sub)
}

func (sim *Simulator) setTimebase(arg string) error {
	v, ok := sds.TimebaseByName(strings.ToUpper(arg))
	secs := v.Secs
	if !ok {
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToUpper(arg), "S"), 64)
		if err != nil {
			return xerrors.Errorf("sdssim: invalid timebase %q: %w", arg, err)
		}
		secs = f
	}
	sim.mu.Lock()
	sim.tdiv = secs
	sim.mu.Unlock()
	return nil
}

// samples returns (ch+1) periods of a sine over the sweep.
func (sim *Simulator) samples(ch int, c Channel) []byte {
	sim.mu.Lock()
	n := sim.nsamp
	sim.mu.Unlock()
	raw := make([]byte, n)
	for i := range raw {
		x := 2 * math.Pi * float64(ch+1) * float64(i) / float64(n)
		raw[i] = byte(int8(math.Round(c.Scale * math.Sin(x))))
	}
	return raw
}

// Block frames payload as a DAT2 waveform response of channel name.
func Block(name string, payload []byte) []byte {
	hdr := fmt.Sprintf("%s:WF DAT2,#9%09d", name, len(payload))
	out := make([]byte, 0, len(hdr)+len(payload)+2)
	out = append(out, hdr...)
	out = append(out, payload...)
	out = append(out, "\n\n"...)
	return out
}

func splitChannel(hdr string) (name, sub string, ok bool) {
	i := strings.IndexByte(hdr, ':')
	if i < 0 {
		return "", "", false
	}
	return hdr[:i], hdr[i+1:], true
}

func channelIndex(name string) (int, error) {
	if !strings.HasPrefix(name, "C") {
		return 0, xerrors.Errorf("sdssim: invalid channel %q", name)
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil || n < 1 {
		return 0, xerrors.Errorf("sdssim: invalid channel %q", name)
	}
	return n - 1, nil
}
