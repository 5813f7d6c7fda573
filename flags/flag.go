// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package flags provides an easy creation of standard acq flag parameters
// for acquisition commands.
package flags // import "github.com/go-daq/acq/flags"

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-daq/acq/config"
	"github.com/go-daq/acq/log"
	"golang.org/x/xerrors"
)

// Config is the configuration of an acquisition command.
type Config struct {
	Pipeline config.Pipeline
	Link     config.Link

	Web         string // [addr]:port of the web control server (disabled if empty)
	Interactive bool   // run the interactive shell
	Args        []string
}

// New parses the command-line flags into a configuration.
// New exits on invalid flags.
func New() Config {
	cfg, err := Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		flag.Usage()
		os.Exit(1)
	}
	return cfg
}

// Parse registers the standard flags on fset and parses args.
func Parse(fset *flag.FlagSet, args []string) (Config, error) {
	var (
		cfg = Config{
			Pipeline: config.Default(),
			Link:     config.DefaultLink(),
		}
		lvl   string
		chans string
		term  string
	)

	fset.StringVar(&cfg.Pipeline.Name, "id", cfg.Pipeline.Name, "name of the acquisition pipeline")
	fset.StringVar(&lvl, "lvl", "INFO", "msgstream level")
	fset.StringVar(&chans, "ch", "0", "comma-separated list of channels to acquire (0-based)")
	fset.IntVar(&cfg.Pipeline.QueueCapacity, "queue", cfg.Pipeline.QueueCapacity, "capacity of the frame queue")
	fset.BoolVar(&cfg.Pipeline.RateMonitor, "fps", false, "enable the rate monitor")
	fset.DurationVar(&cfg.Pipeline.RateInterval, "fps-freq", cfg.Pipeline.RateInterval, "reporting interval of the rate monitor")
	fset.BoolVar(&cfg.Pipeline.Timestamp, "timestamp", false, "tag frames with their capture time")
	fset.Float64Var(&cfg.Pipeline.PaceFactor, "pace", cfg.Pipeline.PaceFactor, "number of sweeps between two acquisitions")

	fset.StringVar(&cfg.Link.Addr, "addr", cfg.Link.Addr, "[addr]:port of the instrument")
	fset.StringVar(&term, "term", "lf", "command terminator (lf, crlf)")
	fset.DurationVar(&cfg.Link.Timeout, "timeout", cfg.Link.Timeout, "timeout of instrument requests")
	fset.Uint64Var(&cfg.Link.Retries, "retries", 0, "number of retries of failed instrument requests")

	fset.StringVar(&cfg.Web, "web", "", "[addr]:port of the web control server")
	fset.BoolVar(&cfg.Interactive, "i", false, "run the interactive shell")

	err := fset.Parse(args)
	if err != nil {
		return cfg, err
	}
	cfg.Args = fset.Args()

	cfg.Pipeline.Level, err = log.ParseLevel(lvl)
	if err != nil {
		return cfg, err
	}

	cfg.Pipeline.Channels, err = parseChannels(chans)
	if err != nil {
		return cfg, err
	}

	switch strings.ToLower(term) {
	case "lf", "\n":
		cfg.Link.Terminator = "\n"
	case "crlf", "\r\n":
		cfg.Link.Terminator = "\r\n"
	default:
		return cfg, xerrors.Errorf("flags: invalid terminator %q", term)
	}

	err = cfg.Pipeline.Validate()
	if err != nil {
		return cfg, err
	}

	err = cfg.Link.Validate()
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func parseChannels(s string) ([]int, error) {
	var chans []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		ch, err := strconv.Atoi(tok)
		if err != nil {
			return nil, xerrors.Errorf("flags: invalid channel %q: %w", tok, err)
		}
		chans = append(chans, ch)
	}
	return chans, nil
}
