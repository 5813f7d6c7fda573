// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link // import "github.com/go-daq/acq/link"

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/go-daq/acq/log"
	"golang.org/x/xerrors"
)

// Retry is a Querier retrying requests that failed with a link Error.
//
// Protocol errors are never retried: a corrupted response is reported
// as soon as it is seen.
type Retry struct {
	q   Querier
	max uint64
	msg log.MsgStream

	// Initial is the delay before the first retry.
	// Delays then grow exponentially, up to MaxDelay.
	Initial  time.Duration
	MaxDelay time.Duration
}

// NewRetry wraps q so that each request is retried at most max times.
func NewRetry(q Querier, max uint64, msg log.MsgStream) *Retry {
	if msg == nil {
		msg = log.Discard
	}
	return &Retry{
		q:        q,
		max:      max,
		msg:      msg,
		Initial:  100 * time.Millisecond,
		MaxDelay: 2 * time.Second,
	}
}

func (r *Retry) Query(ctx context.Context, cmd string, max int) ([]byte, error) {
	var out []byte
	err := r.do(ctx, cmd, func() error {
		var err error
		out, err = r.q.Query(ctx, cmd, max)
		return err
	})
	return out, err
}

func (r *Retry) QueryBlock(ctx context.Context, cmd string) ([]byte, error) {
	var out []byte
	err := r.do(ctx, cmd, func() error {
		var err error
		out, err = r.q.QueryBlock(ctx, cmd)
		return err
	})
	return out, err
}

func (r *Retry) Send(ctx context.Context, cmd string) error {
	return r.do(ctx, cmd, func() error {
		return r.q.Send(ctx, cmd)
	})
}

func (r *Retry) do(ctx context.Context, cmd string, f func() error) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.Initial
	exp.MaxInterval = r.MaxDelay
	exp.MaxElapsedTime = 0

	var (
		bkf      = backoff.WithContext(backoff.WithMaxRetries(exp, r.max), ctx)
		attempts = 0
		last     error
	)

	op := func() error {
		attempts++
		err := f()
		if err == nil {
			return nil
		}
		last = err
		var lerr *Error
		if !xerrors.As(err, &lerr) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, d time.Duration) {
		r.msg.Warnf("%q failed (attempt %d/%d), retrying in %v: %v", cmd, attempts, r.max+1, d, err)
	}

	err := backoff.RetryNotify(op, bkf, notify)
	if err == nil {
		return nil
	}

	var lerr *Error
	if !xerrors.As(last, &lerr) {
		return last
	}
	r.msg.Errorf("%q failed after %d attempts: %v", cmd, attempts, last)
	return &RetryError{Attempts: attempts, Err: last}
}

var (
	_ Querier = (*Retry)(nil)
)
