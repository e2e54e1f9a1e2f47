// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package bandwidth estimates transfer rates from repeated interface counter
// readings.
//
// Every sample is the average rate since the start of the session, computed
// over the whole elapsed time, and not the rate since the previous sample.
package bandwidth

import (
	"context"
	"fmt"
	"time"

	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
)

// CounterSource reads the cumulative interface counters
type CounterSource interface {
	Counters(ctx context.Context) (result.IOCounters, error)
}

type Sampler struct {
	source      CounterSource
	clock       clock.Clock
	maxDuration int
}

func New(source CounterSource, clk clock.Clock, maxDuration int) *Sampler {
	if maxDuration <= 0 {
		maxDuration = common.DefaultMaxMonitorLength
	}
	return &Sampler{source: source, clock: clk, maxDuration: maxDuration}
}

// Validate checks monitor parameters. duration is a number of samples and
// interval the number of seconds between them; both are bounded by the
// configured maximum.
func (s *Sampler) Validate(duration, interval int) error {
	if duration < 0 || duration > s.maxDuration {
		return fmt.Errorf("duration must be between 0 and %d, got %d", s.maxDuration, duration)
	}
	if interval < 1 || interval > s.maxDuration {
		return fmt.Errorf("interval must be between 1 and %d seconds, got %d", s.maxDuration, interval)
	}
	return nil
}

// Monitor takes one initial reading then duration more, one every interval
// seconds, and returns exactly duration samples. When ctx ends or a reading
// fails, the samples taken so far are returned with the error.
func (s *Sampler) Monitor(ctx context.Context, duration, interval int) ([]result.BandwidthSample, error) {
	if err := s.Validate(duration, interval); err != nil {
		return nil, err
	}
	samples := make([]result.BandwidthSample, 0, duration)
	if duration == 0 {
		return samples, nil
	}

	initial, err := s.source.Counters(ctx)
	if err != nil {
		return samples, fmt.Errorf("initial counters: %w", err)
	}

	step := time.Duration(interval) * time.Second
	for i := 1; i <= duration; i++ {
		if err := s.clock.Sleep(ctx, step); err != nil {
			return samples, err
		}
		current, err := s.source.Counters(ctx)
		if err != nil {
			return samples, fmt.Errorf("counters at sample %d: %w", i, err)
		}
		elapsed := i * interval
		sample := result.BandwidthSample{
			Sequence:         i,
			Timestamp:        s.clock.Now(),
			ElapsedSeconds:   elapsed,
			DownloadRateMbps: rateMbps(initial.BytesRecv, current.BytesRecv, elapsed),
			UploadRateMbps:   rateMbps(initial.BytesSent, current.BytesSent, elapsed),
		}
		log.Tracef("bandwidth sample %d: down %.2f Mbps, up %.2f Mbps", i, sample.DownloadRateMbps, sample.UploadRateMbps)
		samples = append(samples, sample)
	}
	return samples, nil
}

// rateMbps is 0 when the counter went backwards, which happens when an
// interface disappears during the session
func rateMbps(initial, current uint64, elapsedSeconds int) float64 {
	if current < initial || elapsedSeconds <= 0 {
		return 0
	}
	return result.Round2(float64(current-initial) * 8 / float64(elapsedSeconds) / 1_000_000)
}
