// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package traceroute runs the platform path tracer and parses its hop lines
package traceroute

import (
	"bufio"
	"bytes"
	"context"
	"strings"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
)

type Traceroute struct {
	runner Runner
}

func NewTraceroute() *Traceroute {
	return NewTracerouteWithRunner(execRunner{})
}

// NewTracerouteWithRunner returns a Traceroute using the given command runner
func NewTracerouteWithRunner(runner Runner) *Traceroute {
	return &Traceroute{runner: runner}
}

// RunTraceroute never returns later than params.Timeout. Hop lines printed
// before a failure or a timeout are kept in the result.
func (t Traceroute) RunTraceroute(ctx context.Context, params TracerouteParams) result.TracerouteResult {
	params = params.withDefaults()
	res := result.TracerouteResult{
		Host: params.Hostname,
		Hops: []string{},
	}

	name, args, err := params.commandLine(currentOS)
	if err != nil {
		res.Status = result.StatusError
		res.Error = &result.ProbeError{Code: result.ErrCodeInvalidRequest, Message: err.Error()}
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, params.Timeout)
	defer cancel()

	out, err := t.runner.Run(ctx, name, args...)
	res.Hops = parseHops(out)
	if err != nil {
		res.Status = result.StatusError
		res.Error = common.ClassifyError(err)
		log.Debugf("traceroute %s: %s (%d hops collected)", params.Hostname, res.Error, len(res.Hops))
		return res
	}
	res.Status = result.StatusSuccess
	log.Debugf("traceroute %s: %d hops", params.Hostname, len(res.Hops))
	return res
}

// parseHops splits the tracer output into trimmed hop lines, dropping blank
// lines and the banners printed by traceroute and tracert
func parseHops(out []byte) []string {
	hops := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isBanner(line) {
			continue
		}
		hops = append(hops, line)
	}
	return hops
}

func isBanner(line string) bool {
	for _, prefix := range []string{"traceroute", "Tracing route", "over a maximum of", "Trace complete"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
