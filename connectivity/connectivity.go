// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package connectivity checks TCP reachability of a fixed roster of targets
package connectivity

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
	"golang.org/x/sync/errgroup"
)

// Dialer opens a connection. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Probe connects to every roster target once per Check
type Probe struct {
	dialer   Dialer
	clock    clock.Clock
	targets  []result.Target
	timeout  time.Duration
	parallel bool
}

// New returns a Probe dialing real TCP connections
func New(cfg config.ConnectivityConfig) *Probe {
	return NewWithDialer(&net.Dialer{}, clock.Real(), cfg)
}

// NewWithDialer returns a Probe using the given dialer and clock
func NewWithDialer(dialer Dialer, clk clock.Clock, cfg config.ConnectivityConfig) *Probe {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = common.DefaultConnectTimeout
	}
	targets := cfg.Targets
	if len(targets) == 0 {
		targets = common.DefaultRoster()
	}
	return &Probe{
		dialer:   dialer,
		clock:    clk,
		targets:  append([]result.Target(nil), targets...),
		timeout:  timeout,
		parallel: cfg.Parallel,
	}
}

// Targets returns a copy of the roster
func (p *Probe) Targets() []result.Target {
	return append([]result.Target(nil), p.targets...)
}

// Check probes every target and returns one result per target, in roster
// order, however many of them fail.
func (p *Probe) Check(ctx context.Context) []result.ConnectivityResult {
	results := make([]result.ConnectivityResult, len(p.targets))
	if !p.parallel {
		for i, target := range p.targets {
			results[i] = p.checkTarget(ctx, target)
		}
		return results
	}

	var g errgroup.Group
	for i, target := range p.targets {
		g.Go(func() error {
			results[i] = p.checkTarget(ctx, target)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (p *Probe) checkTarget(ctx context.Context, target result.Target) result.ConnectivityResult {
	res := result.ConnectivityResult{
		Name: target.Name,
		Host: target.Host,
		Port: target.Port,
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := p.clock.Now()
	conn, err := p.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(target.Host, strconv.Itoa(target.Port)))
	elapsed := clock.Since(p.clock, start)
	if err != nil {
		res.Error = common.ClassifyError(err)
		res.Status = statusFor(res.Error.Code)
		log.Debugf("connectivity %s (%s:%d): %s", target.Name, target.Host, target.Port, res.Error)
		return res
	}
	if cerr := conn.Close(); cerr != nil {
		log.Tracef("connectivity %s: close: %s", target.Name, cerr)
	}

	res.Status = result.StatusConnected
	res.ResponseTimeMillis = result.Float64Ptr(result.Round2(common.ConvertDurationToMs(elapsed)))
	log.Debugf("connectivity %s (%s:%d): connected in %.2fms", target.Name, target.Host, target.Port, *res.ResponseTimeMillis)
	return res
}

// statusFor separates transport-level refusals, which reached the network
// and were answered (or not) by it, from local failures such as resolution.
func statusFor(code result.ErrorCode) result.Status {
	switch code {
	case result.ErrCodeConnRefused, result.ErrCodeHostUnreach, result.ErrCodeNetUnreach, result.ErrCodeTimeout:
		return result.StatusFailed
	default:
		return result.StatusError
	}
}
