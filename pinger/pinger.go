// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package pinger implements the ICMP ping probe
package pinger

import (
	"context"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
)

type (
	// Echoer sends a single echo request and waits at most timeout for the
	// reply. It returns common.ErrNoReply when nothing came back in time.
	Echoer interface {
		Echo(ctx context.Context, host string, timeout time.Duration) (time.Duration, error)
	}

	// Probe pings a host one sequence at a time
	Probe struct {
		echoer  Echoer
		timeout time.Duration
	}
)

// New returns a Probe sending real ICMP echo requests
func New(cfg config.PingConfig) *Probe {
	privileged := defaultPrivileged()
	if cfg.Privileged != nil {
		privileged = *cfg.Privileged
	}
	return NewWithEchoer(&icmpEchoer{privileged: privileged}, cfg.Timeout)
}

// NewWithEchoer returns a Probe using the given echo transport
func NewWithEchoer(echoer Echoer, timeout time.Duration) *Probe {
	if timeout <= 0 {
		timeout = common.DefaultPingTimeout
	}
	return &Probe{echoer: echoer, timeout: timeout}
}

// Ping sends count echo requests to host, sequentially. A failed attempt
// never stops the following ones, so the result always holds count attempts
// numbered from 1.
func (p *Probe) Ping(ctx context.Context, host string, count int) result.PingResult {
	res := result.PingResult{
		Host:     host,
		Attempts: make([]result.PingAttempt, 0, max(count, 0)),
	}
	for seq := 1; seq <= count; seq++ {
		res.Attempts = append(res.Attempts, p.attempt(ctx, host, seq))
	}
	res.Normalize()
	log.Debugf("ping %s: %d/%d replies, avg %.2fms", host, res.SuccessCount, res.TotalCount, res.AverageMillis)
	return res
}

func (p *Probe) attempt(ctx context.Context, host string, seq int) result.PingAttempt {
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	rtt, err := p.echoer.Echo(attemptCtx, host, p.timeout)
	if err != nil {
		probeErr := common.ClassifyError(err)
		log.Tracef("ping %s seq=%d failed: %s", host, seq, probeErr)
		status := result.StatusError
		if probeErr.Code == result.ErrCodeTimeout {
			status = result.StatusTimeout
		}
		return result.PingAttempt{Sequence: seq, Status: status, Error: probeErr}
	}
	log.Tracef("ping %s seq=%d rtt=%s", host, seq, rtt)
	return result.PingAttempt{
		Sequence:  seq,
		RTTMillis: result.Float64Ptr(result.Round2(common.ConvertDurationToMs(rtt))),
		Status:    result.StatusSuccess,
	}
}
