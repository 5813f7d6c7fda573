// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-daq/acq/config"
	"github.com/go-daq/acq/fsm"
	"github.com/go-daq/acq/link"
	"github.com/go-daq/acq/log"
	"github.com/go-daq/acq/sds"
	"github.com/go-daq/acq/sds/sdssim"
	"github.com/go-daq/acq/wave"
	"go.uber.org/goleak"
	"golang.org/x/xerrors"
)

func newTestConfig(chans ...int) config.Pipeline {
	cfg := config.Default()
	cfg.Name = "acq-test"
	cfg.Level = log.LvlDebug
	cfg.Channels = chans
	cfg.PaceFactor = 0
	return cfg
}

// countSource produces empty frames without ever waiting.
type countSource struct {
	n atomic.Int64
}

func (src *countSource) Acquire(ctx Context, ch int) (Frame, error) {
	src.n.Add(1)
	return Frame{Channel: ch}, nil
}

// fakeScope is an in-memory instrument.
type fakeScope struct {
	raw []byte
	err error

	inflight chan struct{} // closed when a waveform request starts, if non-nil
	release  chan struct{} // waveform requests wait for it, if non-nil

	mu     sync.Mutex
	ctxErr error // context error observed at the end of the last waveform request
}

func (dev *fakeScope) State(ctx context.Context, ch int) (wave.Calibration, wave.Timebase, error) {
	return wave.Calibration{Gain: 1, Probe: 1}, wave.Timebase{SecsPerDiv: 1e-3, Divisions: 10}, nil
}

func (dev *fakeScope) Waveform(ctx context.Context, ch int) ([]byte, error) {
	if dev.err != nil {
		return nil, dev.err
	}
	if dev.inflight != nil {
		close(dev.inflight)
		dev.inflight = nil
	}
	if dev.release != nil {
		<-dev.release
	}
	dev.mu.Lock()
	dev.ctxErr = ctx.Err()
	dev.mu.Unlock()
	return dev.raw, nil
}

func waitStatus(t *testing.T, ctl *Controller, want fsm.Status) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for ctl.Status() != want {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for status %v (status=%v)", want, ctl.Status())
		}
		time.Sleep(time.Millisecond)
	}
}

func TestControllerOrdering(t *testing.T) {
	defer goleak.VerifyNone(t)

	sim := sdssim.New(log.Discard)
	sim.SetSamples(100)
	err := sim.Listen("localhost:0")
	if err != nil {
		t.Fatalf("could not start simulator: %+v", err)
	}
	defer sim.Close()

	var (
		stdout = new(bytes.Buffer)
		scope  = sds.New(link.New(sim.Addr(), link.WithTimeout(2*time.Second)), log.Discard)
		src    = NewScopeSource(scope, Pacer{})
		cfg    = newTestConfig(0, 1)
		got    []int
		ctl    *Controller
	)
	cfg.Timestamp = true

	ctl, err = NewController(cfg, src, func(ctx Context, frame Frame) error {
		got = append(got, frame.Channel)
		if frame.Len() != 100 || len(frame.T) != 100 {
			return xerrors.Errorf("invalid frame size: %d", frame.Len())
		}
		if frame.Stamp.IsZero() {
			return xerrors.Errorf("frame is not timestamped")
		}
		if len(got) == 6 {
			ctl.Stop()
		}
		return nil
	}, stdout)
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Run(context.Background())
	if err != nil {
		t.Logf("stdout:\n%v\n", stdout.String())
		t.Fatalf("could not run pipeline: %+v", err)
	}

	if want := []int{0, 1, 0, 1, 0, 1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid channel order:\ngot = %v\nwant= %v\n", got, want)
	}
	if got, want := ctl.Status(), fsm.Stopped; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}
}

func TestControllerBackpressure(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		src     = new(countSource)
		release = make(chan struct{})
		stdout  = new(bytes.Buffer)
	)

	ctl, err := NewController(newTestConfig(0), src, func(ctx Context, frame Frame) error {
		<-release
		return nil
	}, stdout)
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Start(context.Background())
	if err != nil {
		t.Fatalf("could not start pipeline: %+v", err)
	}

	// one frame in the handler, one in the queue, one blocked in Put.
	const want = 3
	deadline := time.Now().Add(5 * time.Second)
	for src.n.Load() < want {
		if time.Now().After(deadline) {
			t.Fatalf("producer did not fill the pipeline (n=%d)", src.n.Load())
		}
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if got := src.n.Load(); got != want {
		t.Fatalf("producer was not throttled: got=%d acquisitions, want=%d", got, want)
	}
	if got, want := ctl.queue.Len(), 1; got != want {
		t.Fatalf("invalid queue length: got=%d, want=%d", got, want)
	}

	ctl.Stop()
	close(release)

	err = ctl.Wait()
	if err != nil {
		t.Fatalf("could not stop pipeline: %+v", err)
	}
}

func TestControllerStopWaitsForRead(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		dev = &fakeScope{
			raw:      []byte{1, 2, 3, 4},
			inflight: make(chan struct{}),
			release:  make(chan struct{}),
		}
		inflight = dev.inflight
		stdout   = new(bytes.Buffer)
	)

	ctl, err := NewController(newTestConfig(0), NewScopeSource(dev, Pacer{}), func(ctx Context, frame Frame) error {
		return nil
	}, stdout)
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	errc := make(chan error, 1)
	go func() {
		errc <- ctl.Run(context.Background())
	}()

	select {
	case <-inflight:
	case <-time.After(5 * time.Second):
		t.Fatalf("waveform request did not start")
	}

	ctl.Stop()
	ctl.Stop()

	select {
	case err := <-errc:
		t.Fatalf("pipeline stopped during an in-flight read (err=%v)", err)
	case <-time.After(50 * time.Millisecond):
	}
	if got, want := ctl.Status(), fsm.Stopping; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}

	close(dev.release)

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("could not stop pipeline: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("pipeline did not stop")
	}

	if got, want := ctl.Status(), fsm.Stopped; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()
	if dev.ctxErr != nil {
		t.Fatalf("in-flight read was cancelled: %+v", dev.ctxErr)
	}
}

func TestControllerHandlerError(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		stdout = new(bytes.Buffer)
		boom   = xerrors.New("boom")
	)

	ctl, err := NewController(newTestConfig(2), new(countSource), func(ctx Context, frame Frame) error {
		return boom
	}, stdout)
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Run(context.Background())
	if err == nil {
		t.Fatalf("expected an error")
	}

	var herr *HandlerError
	if !xerrors.As(err, &herr) {
		t.Fatalf("invalid error type: %T (%+v)", err, err)
	}
	if herr.Channel != 2 {
		t.Fatalf("invalid channel: got=%d, want=2", herr.Channel)
	}
	if !xerrors.Is(err, boom) {
		t.Fatalf("handler error is not wrapped: %+v", err)
	}
	if got, want := ctl.Status(), fsm.Error; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}
	if !strings.Contains(stdout.String(), "pipeline failed") {
		t.Fatalf("failure not reported:\n%s", stdout.String())
	}
}

func TestControllerLinkError(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		lerr = &link.Error{Op: "read", Addr: "scope:5025", Err: xerrors.New("connection reset")}
		dev  = &fakeScope{err: lerr}
	)

	ctl, err := NewController(newTestConfig(0), NewScopeSource(dev, Pacer{}), func(ctx Context, frame Frame) error {
		return nil
	}, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Run(context.Background())
	var got *link.Error
	if !xerrors.As(err, &got) {
		t.Fatalf("invalid error: %+v", err)
	}
	if got != lerr {
		t.Fatalf("invalid link error: got=%v, want=%v", got, lerr)
	}
}

func TestControllerContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var n atomic.Int64
	ctl, err := NewController(newTestConfig(0, 1), new(countSource), func(ctx Context, frame Frame) error {
		if n.Add(1) == 10 {
			cancel()
		}
		return nil
	}, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Run(ctx)
	if err != nil {
		t.Fatalf("cancelling the parent context should stop the pipeline cleanly: %+v", err)
	}
	if got, want := ctl.Status(), fsm.Stopped; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}
}

func TestControllerPacerInterrupted(t *testing.T) {
	defer goleak.VerifyNone(t)

	dev := &fakeScope{raw: []byte{1}}
	cfg := newTestConfig(0)

	var n atomic.Int64
	// 1000 sweeps of 10ms: the second acquisition waits for ~10s.
	ctl, err := NewController(cfg, NewScopeSource(dev, Pacer{Factor: 1000}), func(ctx Context, frame Frame) error {
		n.Add(1)
		return nil
	}, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Start(context.Background())
	if err != nil {
		t.Fatalf("could not start pipeline: %+v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for n.Load() < 1 {
		if time.Now().After(deadline) {
			t.Fatalf("first frame not delivered")
		}
		time.Sleep(time.Millisecond)
	}

	start := time.Now()
	ctl.Stop()
	err = ctl.Wait()
	if err != nil {
		t.Fatalf("could not stop pipeline: %+v", err)
	}
	if d := time.Since(start); d > 2*time.Second {
		t.Fatalf("pacer wait was not interrupted by stop (took %v)", d)
	}
}

func TestControllerRateMonitor(t *testing.T) {
	defer goleak.VerifyNone(t)

	var (
		stdout = new(bytes.Buffer)
		cfg    = newTestConfig(0)
	)
	cfg.RateMonitor = true
	cfg.RateInterval = 20 * time.Millisecond

	ctl, err := NewController(cfg, new(countSource), func(ctx Context, frame Frame) error {
		time.Sleep(time.Millisecond)
		return nil
	}, stdout)
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}

	err = ctl.Start(context.Background())
	if err != nil {
		t.Fatalf("could not start pipeline: %+v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for ctl.Rate().Frames == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no rate report")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rate := ctl.Rate()
	if got, want := rate.FPS, float64(rate.Frames)/cfg.RateInterval.Seconds(); got != want {
		t.Fatalf("invalid fps: got=%v, want=%v", got, want)
	}

	ctl.Stop()
	err = ctl.Wait()
	if err != nil {
		t.Fatalf("could not stop pipeline: %+v", err)
	}

	out := stdout.String()
	for _, want := range []string{
		"acq-test: fps = ",
		"acq-test: fps mean = ",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestControllerLifecycle(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := func(ctx Context, frame Frame) error { return nil }

	_, err := NewController(config.Pipeline{}, new(countSource), h, nil)
	if err == nil {
		t.Fatalf("expected an error for an invalid configuration")
	}
	_, err = NewController(newTestConfig(0), nil, h, nil)
	if err == nil {
		t.Fatalf("expected an error for a nil source")
	}
	_, err = NewController(newTestConfig(0), new(countSource), nil, nil)
	if err == nil {
		t.Fatalf("expected an error for a nil handler")
	}

	ctl, err := NewController(newTestConfig(0), new(countSource), h, new(bytes.Buffer))
	if err != nil {
		t.Fatalf("could not create controller: %+v", err)
	}
	if got, want := ctl.Status(), fsm.Idle; got != want {
		t.Fatalf("invalid status: got=%v, want=%v", got, want)
	}
	if err := ctl.Wait(); err == nil {
		t.Fatalf("expected an error waiting for an idle pipeline")
	}

	err = ctl.Start(context.Background())
	if err != nil {
		t.Fatalf("could not start pipeline: %+v", err)
	}
	if err := ctl.Start(context.Background()); err == nil {
		t.Fatalf("expected an error starting a pipeline twice")
	}

	ctl.Stop()
	err = ctl.Wait()
	if err != nil {
		t.Fatalf("could not stop pipeline: %+v", err)
	}
	waitStatus(t, ctl, fsm.Stopped)
}
