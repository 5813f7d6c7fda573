// Copyright 2026 The go-daq Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package link // import "github.com/go-daq/acq/link"

import (
	"context"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
	"golang.org/x/xerrors"
)

// ServiceSCPI is the mDNS service advertised by LXI instruments
// accepting SCPI commands on a raw socket.
const ServiceSCPI = "_scpi-raw._tcp"

// Host is an instrument found on the local network.
type Host struct {
	Instance string // advertised instance name
	Hostname string // DNS hostname
	IPs      []net.IP
	Port     int
}

// Addr returns the [ip]:port address to dial the instrument.
// The hostname is used when no IP address was advertised.
func (h Host) Addr() string {
	host := strings.TrimSuffix(h.Hostname, ".")
	if len(h.IPs) > 0 {
		host = h.IPs[0].String()
	}
	return net.JoinHostPort(host, strconv.Itoa(h.Port))
}

// Discover browses the local network for instruments advertising service
// until ctx is done. Results are sorted by instance name.
func Discover(ctx context.Context, service string) ([]Host, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, xerrors.Errorf("link: could not create mDNS resolver: %w", err)
	}

	var (
		entries = make(chan *zeroconf.ServiceEntry)
		found   = make(map[string]Host)
		done    = make(chan struct{})
	)

	go func() {
		defer close(done)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				if e == nil {
					continue
				}
				h := hostFrom(e)
				found[h.Addr()] = h
			case <-ctx.Done():
				return
			}
		}
	}()

	err = resolver.Browse(ctx, service, "local.", entries)
	if err != nil {
		return nil, xerrors.Errorf("link: could not browse %q: %w", service, err)
	}

	<-done

	hosts := make([]Host, 0, len(found))
	for _, h := range found {
		hosts = append(hosts, h)
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Instance < hosts[j].Instance
	})
	return hosts, nil
}

func hostFrom(e *zeroconf.ServiceEntry) Host {
	ips := make([]net.IP, 0, len(e.AddrIPv4)+len(e.AddrIPv6))
	ips = append(ips, e.AddrIPv4...)
	ips = append(ips, e.AddrIPv6...)
	return Host{
		Instance: strings.ReplaceAll(e.Instance, `\ `, " "),
		Hostname: e.HostName,
		IPs:      ips,
		Port:     e.Port,
	}
}
