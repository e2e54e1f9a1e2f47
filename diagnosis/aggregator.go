// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package diagnosis

import (
	"context"
	"net"

	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/DataDog/datadog-netdiag/reversedns"
	"golang.org/x/sync/errgroup"
)

// FullDiagnosis runs every probe and merges the results. Each probe writes
// only its own field and carries its own failure, so the report is always
// complete. Probes run concurrently unless diagnosis.parallel is off.
func (d *Diagnostics) FullDiagnosis(ctx context.Context) result.FullDiagnosis {
	start := d.clock.Now()
	report := result.FullDiagnosis{
		ID:        result.NewID(),
		Timestamp: start,
		Pings:     make([]result.PingResult, len(d.cfg.Ping.Hosts)),
	}
	log.Debugf("full diagnosis %s started", report.ID)

	var g errgroup.Group
	if !d.cfg.Diagnosis.Parallel {
		g.SetLimit(1)
	}
	g.Go(func() error {
		report.Interfaces = d.Interfaces(ctx)
		warnOnError("interfaces", report.Interfaces.Error)
		return nil
	})
	g.Go(func() error {
		report.Stats = d.Stats(ctx)
		warnOnError("stats", report.Stats.Error)
		return nil
	})
	for i, host := range d.cfg.Ping.Hosts {
		g.Go(func() error {
			report.Pings[i] = d.probes.Pinger.Ping(ctx, host, d.cfg.Ping.Count)
			if report.Pings[i].SuccessCount == 0 {
				log.Warnf("full diagnosis: no ping reply from %s", host)
			}
			return nil
		})
	}
	g.Go(func() error {
		report.DNS = d.probes.DNS.Resolve(ctx, d.cfg.DNS.Domain)
		for rtype, records := range report.DNS.Records {
			warnOnError("dns "+string(rtype), records.Error)
		}
		return nil
	})
	g.Go(func() error {
		report.Connectivity = d.Connectivity(ctx)
		for _, res := range report.Connectivity {
			warnOnError("connectivity "+res.Name, res.Error)
		}
		return nil
	})
	g.Go(func() error {
		report.Throughput = d.Speedtest(ctx)
		warnOnError("speed test", report.Throughput.Error)
		return nil
	})
	if d.cfg.Diagnosis.PublicIP && d.probes.PublicIP != nil {
		g.Go(func() error {
			report.Source = d.source(ctx)
			warnOnError("source", report.Source.Error)
			return nil
		})
	}
	_ = g.Wait()

	report.DurationMillis = result.Round2(common.ConvertDurationToMs(clock.Since(d.clock, start)))
	log.Debugf("full diagnosis %s done in %.2fms", report.ID, report.DurationMillis)
	return report
}

// source looks up the outbound address, the public IP and its reverse DNS.
// A local address or reverse DNS failure is not an error, what was found is
// still reported.
func (d *Diagnostics) source(ctx context.Context) *result.Source {
	source := &result.Source{}
	if d.probes.LocalAddr != nil {
		dest := d.referenceIP()
		if out, err := d.probes.LocalAddr(dest); err != nil {
			log.Debugf("local address toward %s: %s", dest, err)
		} else {
			source.LocalIP = out.IP.String()
			source.Interface = out.Interface
		}
	}

	ip, err := d.probes.PublicIP.GetIP(ctx)
	if err != nil {
		source.Error = common.ClassifyError(err)
		return source
	}
	source.PublicIP = ip.String()
	names, err := reversedns.GetReverseDnsForIP(ctx, ip)
	if err != nil {
		log.Debugf("reverse dns of %s: %s", ip, err)
		return source
	}
	source.ReverseDns = names
	return source
}

// referenceIP is the destination used to pick the outbound route: the
// traceroute host when it is a literal IP, the default one otherwise
func (d *Diagnostics) referenceIP() net.IP {
	if ip := net.ParseIP(d.cfg.Traceroute.Host); ip != nil {
		return ip
	}
	return net.ParseIP(common.DefaultTracerouteHost)
}

func warnOnError(probe string, probeErr *result.ProbeError) {
	if probeErr != nil {
		log.Warnf("full diagnosis: %s: %s", probe, probeErr)
	}
}
