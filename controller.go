// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"context"
	"io"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-daq/acq/config"
	"github.com/go-daq/acq/fsm"
	"github.com/go-daq/acq/internal/iomux"
	"github.com/go-daq/acq/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

// Controller runs the tasks of one acquisition pipeline: a producer,
// a consumer and, optionally, a rate monitor.
//
// A Controller is started once. The first task failure stops the
// whole pipeline and is reported by Wait.
type Controller struct {
	cfg config.Pipeline
	msg log.MsgStream

	src   Source
	h     Handler
	queue *Queue

	frames atomic.Int64 // frames consumed since the last monitor report

	quit chan struct{}
	once sync.Once
	done chan struct{}

	mu     sync.RWMutex
	status fsm.Status
	rate   Rate
	err    error
}

// NewController creates a pipeline controller feeding frames of src to h.
// Messages are written to stdout (os.Stdout if nil).
func NewController(cfg config.Pipeline, src Source, h Handler, stdout io.Writer) (*Controller, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, xerrors.Errorf("acq: invalid pipeline configuration: %w", err)
	}
	if src == nil {
		return nil, xerrors.Errorf("acq: nil source")
	}
	if h == nil {
		return nil, xerrors.Errorf("acq: nil handler")
	}
	if stdout == nil {
		stdout = os.Stdout
	}

	queue, err := NewQueue(cfg.QueueCapacity)
	if err != nil {
		return nil, err
	}

	cfg.Channels = append([]int(nil), cfg.Channels...)
	ctl := &Controller{
		cfg:    cfg,
		msg:    log.NewMsgStream(cfg.Name, cfg.Level, iomux.NewWriter(stdout)),
		src:    src,
		h:      h,
		queue:  queue,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		status: fsm.Idle,
	}
	return ctl, nil
}

// Name returns the name of the pipeline.
func (ctl *Controller) Name() string { return ctl.cfg.Name }

// Msg returns the message stream of the pipeline.
func (ctl *Controller) Msg() log.MsgStream { return ctl.msg }

// Run starts the pipeline and waits for it to stop.
func (ctl *Controller) Run(ctx context.Context) error {
	err := ctl.Start(ctx)
	if err != nil {
		return err
	}
	return ctl.Wait()
}

// Start launches the tasks of the pipeline.
// Cancelling ctx stops the pipeline, as Stop does.
func (ctl *Controller) Start(ctx context.Context) error {
	ctl.mu.Lock()
	defer ctl.mu.Unlock()
	if ctl.status != fsm.Idle {
		return xerrors.Errorf("acq: pipeline %q already started (status=%v)", ctl.cfg.Name, ctl.status)
	}
	ctl.status = fsm.Running

	// task contexts are only cancelled after the stop signal is sent.
	grp, gctx := errgroup.WithContext(ctx)
	tctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	grp.Go(func() error {
		select {
		case <-ctl.quit:
		case <-gctx.Done():
			ctl.Stop()
		}
		cancel()
		return nil
	})
	grp.Go(func() error { return ctl.produce(tctx) })
	grp.Go(func() error { return ctl.consume(tctx) })
	if ctl.cfg.RateMonitor {
		grp.Go(func() error { return ctl.monitor(tctx) })
	}

	ctl.msg.Infof("pipeline started (channels=%v, queue=%d)", ctl.cfg.Channels, ctl.queue.Cap())

	go func() {
		defer close(ctl.done)
		err := grp.Wait()
		cancel()

		ctl.mu.Lock()
		defer ctl.mu.Unlock()
		ctl.err = err
		switch err {
		case nil:
			ctl.status = fsm.Stopped
			ctl.msg.Infof("pipeline stopped")
		default:
			ctl.status = fsm.Error
			ctl.msg.Errorf("pipeline failed: %+v", err)
		}
	}()

	return nil
}

// Wait waits for all the tasks of a started pipeline to return.
// Wait returns the first task failure, if any.
func (ctl *Controller) Wait() error {
	ctl.mu.RLock()
	idle := ctl.status == fsm.Idle
	ctl.mu.RUnlock()
	if idle {
		return xerrors.Errorf("acq: pipeline %q not started", ctl.cfg.Name)
	}

	<-ctl.done

	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	return ctl.err
}

// Stop signals all tasks to stop. Stop does not wait for them.
// Stop may be called multiple times, from any goroutine.
func (ctl *Controller) Stop() {
	ctl.once.Do(func() {
		ctl.mu.Lock()
		if ctl.status == fsm.Running {
			ctl.status = fsm.Stopping
		}
		ctl.mu.Unlock()
		close(ctl.quit)
	})
}

// Status returns the current status of the pipeline.
func (ctl *Controller) Status() fsm.Status {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	return ctl.status
}

// Rate returns the latest report of the rate monitor.
func (ctl *Controller) Rate() Rate {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()
	return ctl.rate
}

func (ctl *Controller) stopping() bool {
	select {
	case <-ctl.quit:
		return true
	default:
		return false
	}
}

// interrupted returns whether err is the result of a stop request.
func (ctl *Controller) interrupted(err error) bool {
	return ctl.stopping() && xerrors.Is(err, context.Canceled)
}

func (ctl *Controller) produce(ctx context.Context) error {
	var (
		sched = NewScheduler(ctl.cfg.Channels, ctl.quit)
		tctx  = Context{Ctx: ctx, Msg: ctl.msg}
	)
	for {
		ch, ok := sched.Next()
		if !ok {
			ctl.msg.Debugf("producer: scheduler exhausted")
			return nil
		}

		frame, err := ctl.src.Acquire(tctx, ch)
		if err != nil {
			if ctl.interrupted(err) {
				return nil
			}
			return xerrors.Errorf("acq: producer failed on channel %d: %w", ch, err)
		}
		if ctl.cfg.Timestamp {
			frame.Stamp = time.Now().UTC()
		}

		// sources that never wait on their own must not starve the consumer.
		runtime.Gosched()

		err = ctl.queue.Put(ctx, frame)
		if err != nil {
			if ctl.interrupted(err) {
				return nil
			}
			return xerrors.Errorf("acq: producer could not queue frame: %w", err)
		}
	}
}

func (ctl *Controller) consume(ctx context.Context) error {
	tctx := Context{Ctx: ctx, Msg: ctl.msg}
	for {
		if ctl.stopping() {
			return nil
		}

		frame, err := ctl.queue.Get(ctx)
		if err != nil {
			if ctl.interrupted(err) {
				return nil
			}
			return xerrors.Errorf("acq: consumer could not dequeue frame: %w", err)
		}

		err = ctl.h(tctx, frame)
		if err != nil {
			return &HandlerError{Channel: frame.Channel, Err: err}
		}
		ctl.frames.Add(1)
	}
}
