// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sds // import "github.com/go-daq/acq/sds"

// Timebase is one setting of the horizontal timebase.
type Timebase struct {
	Secs float64 // seconds per division
	Name string  // name of the setting in the TDIV command
}

// Timebases lists the available timebases, in increasing order.
var Timebases = []Timebase{
	{200e-12, "200PS"},
	{500e-12, "500PS"},
	{1e-9, "1NS"},
	{2e-9, "2NS"},
	{5e-9, "5NS"},
	{10e-9, "10NS"},
	{20e-9, "20NS"},
	{50e-9, "50NS"},
	{100e-9, "100NS"},
	{200e-9, "200NS"},
	{500e-9, "500NS"},
	{1e-6, "1US"},
	{2e-6, "2US"},
	{5e-6, "5US"},
	{10e-6, "10US"},
	{20e-6, "20US"},
	{50e-6, "50US"},
	{100e-6, "100US"},
	{200e-6, "200US"},
	{500e-6, "500US"},
	{1e-3, "1MS"},
	{2e-3, "2MS"},
	{5e-3, "5MS"},
	{10e-3, "10MS"},
	{20e-3, "20MS"},
	{50e-3, "50MS"},
	{100e-3, "100MS"},
	{200e-3, "200MS"},
	{500e-3, "500MS"},
	{1, "1S"},
	{2, "2S"},
	{5, "5S"},
	{10, "10S"},
	{20, "20S"},
	{50, "50S"},
	{100, "100S"},
}

// TimebaseAbove returns the index of the first timebase strictly larger
// than secs, or -1.
func TimebaseAbove(secs float64) int {
	for i, tb := range Timebases {
		if tb.Secs > secs {
			return i
		}
	}
	return -1
}

// TimebaseByName returns the timebase setting named name.
func TimebaseByName(name string) (Timebase, bool) {
	for _, tb := range Timebases {
		if tb.Name == name {
			return tb, true
		}
	}
	return Timebase{}, false
}
