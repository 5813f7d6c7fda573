// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/xerrors"
)

// maxElems bounds the number of elements of a decoded slice.
const maxElems = 1 << 26

// Decoder reads little-endian binary values from an underlying reader.
// The first error is sticky: subsequent reads return zero values.
type Decoder struct {
	r   io.Reader
	err error
	buf []byte
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, buf: make([]byte, 8)}
}

// Err returns the first error encountered while decoding.
func (dec *Decoder) Err() error { return dec.err }

func (dec *Decoder) load(n int) {
	if dec.err != nil {
		copy(dec.buf, []byte{0, 0, 0, 0, 0, 0, 0, 0})
		return
	}
	_, dec.err = io.ReadFull(dec.r, dec.buf[:n])
}

func (dec *Decoder) ReadI64() int64 {
	return int64(dec.ReadU64())
}

func (dec *Decoder) ReadU64() uint64 {
	dec.load(8)
	return binary.LittleEndian.Uint64(dec.buf[:8])
}

func (dec *Decoder) ReadF64() float64 {
	return math.Float64frombits(dec.ReadU64())
}

// ReadF64s reads a slice written by Encoder.WriteF64s.
func (dec *Decoder) ReadF64s() []float64 {
	n := dec.ReadU64()
	if n == 0 || dec.err != nil {
		return nil
	}
	if n > maxElems {
		dec.err = xerrors.Errorf("acq: invalid slice length %d", n)
		return nil
	}
	raw := make([]byte, 8*n)
	_, dec.err = io.ReadFull(dec.r, raw)
	if dec.err != nil {
		return nil
	}
	vs := make([]float64, n)
	for i := range vs {
		vs[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*i:]))
	}
	return vs
}
