// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package testutils contains fakes shared by probe tests
package testutils

import (
	"context"
	"sync"
	"time"
)

// FakeClock is a manually driven clock. Sleep advances the clock instantly
// and records the requested durations.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	Sleeps []time.Duration
	// OnSleep, when set, runs after every Sleep with the new time
	OnSleep func(now time.Time)
}

// NewFakeClock returns a FakeClock starting at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.Sleeps = append(c.Sleeps, d)
	now := c.now
	onSleep := c.OnSleep
	c.mu.Unlock()
	if onSleep != nil {
		onSleep(now)
	}
	return nil
}

// Advance moves the clock forward without recording a sleep
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
