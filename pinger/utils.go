// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package pinger

import (
	"context"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
	probing "github.com/prometheus-community/pro-bing"
)

// icmpEchoer sends one ICMP echo request per call through pro-bing
type icmpEchoer struct {
	privileged bool
}

func (e *icmpEchoer) Echo(ctx context.Context, host string, timeout time.Duration) (time.Duration, error) {
	pinger, err := probing.NewPinger(host)
	if err != nil {
		return 0, err
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(e.privileged)

	if err := pinger.RunWithContext(ctx); err != nil { // Blocks until finished.
		return 0, err
	}
	stats := pinger.Statistics()
	log.Tracef("ping stats: %+v", stats)

	if stats.PacketsRecv == 0 || len(stats.Rtts) == 0 {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, common.ErrNoReply
	}
	return firstRtt(stats.Rtts), nil
}

func firstRtt(rtts []time.Duration) time.Duration {
	if len(rtts) == 0 {
		return 0
	}
	return rtts[0]
}
