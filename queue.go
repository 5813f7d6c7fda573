// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"context"

	"golang.org/x/xerrors"
)

// Queue is a bounded FIFO of frames between one producer and one consumer.
//
// Put suspends while the queue is full, Get while it is empty:
// a slow consumer throttles the producer instead of growing the queue.
type Queue struct {
	ch chan Frame
}

// NewQueue returns a queue holding at most n frames.
func NewQueue(n int) (*Queue, error) {
	if n < 1 {
		return nil, xerrors.Errorf("acq: invalid queue capacity %d", n)
	}
	return &Queue{ch: make(chan Frame, n)}, nil
}

// Put appends f to the queue, waiting for room if needed.
// Put returns ctx.Err() if ctx is done before f could be queued.
func (q *Queue) Put(ctx context.Context, f Frame) error {
	select {
	case q.ch <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get removes the oldest frame of the queue, waiting for one if needed.
// Get returns ctx.Err() if ctx is done before a frame is available.
func (q *Queue) Get(ctx context.Context) (Frame, error) {
	select {
	case f := <-q.ch:
		return f, nil
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Len returns the number of queued frames.
func (q *Queue) Len() int { return len(q.ch) }

// Cap returns the capacity of the queue.
func (q *Queue) Cap() int { return cap(q.ch) }
