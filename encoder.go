// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acq // import "github.com/go-daq/acq"

import (
	"encoding/binary"
	"io"
	"math"
)

// Encoder writes little-endian binary values to an underlying writer.
// The first error is sticky: subsequent writes are no-ops.
type Encoder struct {
	w   io.Writer
	err error

	buf []byte
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w, buf: make([]byte, 8)}
}

// Err returns the first error encountered while encoding.
func (enc *Encoder) Err() error { return enc.err }

func (enc *Encoder) write(p []byte) {
	if enc.err != nil {
		return
	}
	_, enc.err = enc.w.Write(p)
}

func (enc *Encoder) WriteI64(v int64) {
	enc.WriteU64(uint64(v))
}

func (enc *Encoder) WriteU64(v uint64) {
	binary.LittleEndian.PutUint64(enc.buf[:8], v)
	enc.write(enc.buf[:8])
}

func (enc *Encoder) WriteF64(v float64) {
	enc.WriteU64(math.Float64bits(v))
}

// WriteF64s writes the length of vs followed by its elements.
func (enc *Encoder) WriteF64s(vs []float64) {
	enc.WriteU64(uint64(len(vs)))
	if enc.err != nil || len(vs) == 0 {
		return
	}
	raw := make([]byte, 8*len(vs))
	for i, v := range vs {
		binary.LittleEndian.PutUint64(raw[8*i:], math.Float64bits(v))
	}
	enc.write(raw)
}
