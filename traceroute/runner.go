// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package traceroute

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
)

// bounds of the time allowed for a killed path tracer to release its output pipes
const (
	minKillGrace = 10 * time.Millisecond
	maxKillGrace = 2 * time.Second
)

// Runner runs an external command and returns its standard output. Output
// collected before a failure is returned along with the error.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	grace := killGrace(ctx)
	runCtx := ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(ctx, deadline.Add(-grace))
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, name, args...)
	cmd.WaitDelay = grace
	log.Tracef("running %s", cmd.String())

	out, err := cmd.Output()
	if runCtx.Err() != nil {
		return out, fmt.Errorf("%s did not complete: %w", name, runCtx.Err())
	}
	if err != nil {
		return out, &common.ToolError{Tool: name, Err: err}
	}
	return out, nil
}

// killGrace keeps the kill grace period within a tenth of the remaining time
// so the whole run ends by the caller's deadline
func killGrace(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return maxKillGrace
	}
	return max(minKillGrace, min(maxKillGrace, time.Until(deadline)/10))
}
