// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package diagnosis exposes every probe operation and assembles them into a
// full diagnosis.
package diagnosis

import (
	"context"
	"net"

	"github.com/DataDog/datadog-netdiag/bandwidth"
	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/connectivity"
	"github.com/DataDog/datadog-netdiag/dnsprobe"
	"github.com/DataDog/datadog-netdiag/ifstat"
	"github.com/DataDog/datadog-netdiag/localaddr"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/pinger"
	"github.com/DataDog/datadog-netdiag/publicip"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/DataDog/datadog-netdiag/throughput"
	"github.com/DataDog/datadog-netdiag/traceroute"
)

type (
	Pinger interface {
		Ping(ctx context.Context, host string, count int) result.PingResult
	}

	ConnectivityChecker interface {
		Check(ctx context.Context) []result.ConnectivityResult
	}

	Resolver interface {
		Resolve(ctx context.Context, domain string) result.DnsResult
	}

	Tracer interface {
		RunTraceroute(ctx context.Context, params traceroute.TracerouteParams) result.TracerouteResult
	}

	ThroughputMeasurer interface {
		Measure(ctx context.Context) result.ThroughputResult
	}

	BandwidthMonitor interface {
		Validate(duration, interval int) error
		Monitor(ctx context.Context, duration, interval int) ([]result.BandwidthSample, error)
	}

	// LocalAddrFunc returns the source side of the route toward a destination
	LocalAddrFunc func(dest net.IP) (localaddr.Outbound, error)

	// Probes are the collaborators of Diagnostics. PublicIP and LocalAddr
	// are only used when the source is collected.
	Probes struct {
		Interfaces   ifstat.Snapshotter
		Pinger       Pinger
		Connectivity ConnectivityChecker
		DNS          Resolver
		Traceroute   Tracer
		Throughput   ThroughputMeasurer
		Bandwidth    BandwidthMonitor
		PublicIP     publicip.Fetcher
		LocalAddr    LocalAddrFunc
	}
)

// Diagnostics runs probe operations. It holds no mutable state and is safe
// for concurrent use.
type Diagnostics struct {
	cfg    config.Config
	probes Probes
	clock  clock.Clock
}

// New wires the real probes from cfg
func New(cfg config.Config) *Diagnostics {
	clk := clock.Real()
	snapshot := ifstat.New(cfg.Interfaces.Namespace)
	return NewWithProbes(cfg, Probes{
		Interfaces:   snapshot,
		Pinger:       pinger.New(cfg.Ping),
		Connectivity: connectivity.New(cfg.Connectivity),
		DNS:          dnsprobe.New(cfg.DNS.Timeout),
		Traceroute:   traceroute.NewTraceroute(),
		Throughput:   throughput.New(cfg.Throughput),
		Bandwidth:    bandwidth.New(snapshot, clk, cfg.Bandwidth.MaxDuration),
		PublicIP:     publicip.NewPublicIPFetcher(),
		LocalAddr:    localaddr.ForDestination,
	}, clk)
}

func NewWithProbes(cfg config.Config, probes Probes, clk clock.Clock) *Diagnostics {
	return &Diagnostics{cfg: cfg, probes: probes, clock: clk}
}

// Config returns the configuration the probes were built from
func (d *Diagnostics) Config() config.Config {
	return d.cfg
}

func (d *Diagnostics) Interfaces(ctx context.Context) result.InterfacesResult {
	interfaces, err := d.probes.Interfaces.Interfaces(ctx)
	if err != nil {
		log.Debugf("reading interfaces: %s", err)
		return result.InterfacesResult{Error: common.ClassifyError(err)}
	}
	return result.InterfacesResult{Interfaces: interfaces}
}

func (d *Diagnostics) Stats(ctx context.Context) result.CountersResult {
	counters, err := d.probes.Interfaces.Counters(ctx)
	if err != nil {
		log.Debugf("reading counters: %s", err)
		return result.CountersResult{Error: common.ClassifyError(err)}
	}
	return result.CountersResult{IOCounters: &counters}
}

// Ping sends count echo requests to host. A zero count uses the configured
// default.
func (d *Diagnostics) Ping(ctx context.Context, host string, count int) (result.PingResult, error) {
	if err := validateHost("host", host); err != nil {
		return result.PingResult{}, err
	}
	if count == 0 {
		count = d.cfg.Ping.Count
	}
	if count < 1 || count > d.cfg.Ping.MaxCount {
		return result.PingResult{}, invalid("count", "must be between 1 and %d, got %d", d.cfg.Ping.MaxCount, count)
	}
	return d.probes.Pinger.Ping(ctx, host, count), nil
}

func (d *Diagnostics) Traceroute(ctx context.Context, host string) (result.TracerouteResult, error) {
	if err := validateHost("host", host); err != nil {
		return result.TracerouteResult{}, err
	}
	return d.probes.Traceroute.RunTraceroute(ctx, traceroute.ParamsFromConfig(d.cfg.Traceroute, host)), nil
}

func (d *Diagnostics) DNS(ctx context.Context, domain string) (result.DnsResult, error) {
	if err := validateHost("domain", domain); err != nil {
		return result.DnsResult{}, err
	}
	return d.probes.DNS.Resolve(ctx, domain), nil
}

func (d *Diagnostics) Speedtest(ctx context.Context) result.ThroughputResult {
	return d.probes.Throughput.Measure(ctx)
}

// BandwidthMonitor takes duration samples spaced by interval seconds. Only
// invalid parameters are returned as an error: a session that stops early is
// reported in the result with the samples taken so far.
func (d *Diagnostics) BandwidthMonitor(ctx context.Context, duration, interval int) (result.BandwidthSession, error) {
	if err := d.probes.Bandwidth.Validate(duration, interval); err != nil {
		return result.BandwidthSession{}, &InvalidRequestError{Param: "bandwidth monitor parameters", Err: err}
	}
	samples, err := d.probes.Bandwidth.Monitor(ctx, duration, interval)
	if samples == nil {
		samples = []result.BandwidthSample{}
	}
	if err != nil {
		probeErr := common.ClassifyError(err)
		log.Warnf("bandwidth monitor stopped after %d of %d samples: %s", len(samples), duration, probeErr)
		return result.BandwidthSession{Samples: samples, Status: result.StatusError, Error: probeErr}, nil
	}
	return result.BandwidthSession{Samples: samples, Status: result.StatusSuccess}, nil
}

func (d *Diagnostics) Connectivity(ctx context.Context) []result.ConnectivityResult {
	return d.probes.Connectivity.Check(ctx)
}
