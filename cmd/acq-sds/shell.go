// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main // import "github.com/go-daq/acq/cmd/acq-sds"

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-daq/acq"
	"github.com/peterh/liner"
)

var shellCmds = []string{"/help", "/rate", "/status", "/stop"}

// shell runs an interactive prompt driving ctl until the pipeline stops.
func shell(ctl *acq.Controller) {
	term := liner.NewLiner()
	defer term.Close()

	term.SetCtrlCAborts(true)
	term.SetCompleter(func(line string) []string {
		var cmds []string
		for _, cmd := range shellCmds {
			if strings.HasPrefix(cmd, line) {
				cmds = append(cmds, cmd)
			}
		}
		return cmds
	})

	for {
		line, err := term.Prompt(ctl.Name() + "> ")
		if err != nil {
			if err != io.EOF && err != liner.ErrPromptAborted {
				ctl.Msg().Errorf("could not read command: %+v", err)
			}
			ctl.Stop()
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		if !run(os.Stdout, ctl, line) {
			return
		}
	}
}

// run executes one shell command. run returns false once the pipeline
// was asked to stop.
func run(w io.Writer, ctl *acq.Controller, cmd string) bool {
	switch strings.TrimPrefix(cmd, "/") {
	case "help":
		fmt.Fprintf(w, "commands: %s\n", strings.Join(shellCmds, ", "))
	case "status":
		fmt.Fprintf(w, "status: %v\n", ctl.Status())
	case "rate":
		rate := ctl.Rate()
		fmt.Fprintf(w, "frames: %d, fps: %.1f\n", rate.Frames, rate.FPS)
	case "stop", "quit":
		ctl.Stop()
		return false
	default:
		fmt.Fprintf(w, "unknown command %q (try /help)\n", cmd)
	}
	return !ctl.Status().Done()
}
