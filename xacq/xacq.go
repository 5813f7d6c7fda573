// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xacq provides ready-made sources and handlers for acquisition pipelines.
package xacq // import "github.com/go-daq/acq/xacq"
