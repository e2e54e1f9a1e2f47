// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package throughput measures download and upload throughput against the
// best available remote test server
package throughput

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/DataDog/datadog-netdiag/cache"
	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/cenkalti/backoff/v5"
)

const (
	serviceName        = "speedtest"
	serverListCacheKey = "throughput_server_list"
	serverListMaxTries = 3
)

var (
	// ErrDisabled is reported when throughput tests are turned off by configuration
	ErrDisabled = errors.New("throughput test disabled")

	errNoServers     = errors.New("no test server available")
	errNoMeasurement = errors.New("test produced no measurement")

	// measureMu serializes measurements. Cached sessions are shared by every
	// Probe and the underlying client keeps per-server rate state.
	measureMu sync.Mutex
)

//go:generate mockgen -destination=mock_throughput.go -package=throughput . Tester,Session

// Tester lists the remote test servers
type Tester interface {
	Servers(ctx context.Context) ([]Session, error)
}

// Session runs measurements against one remote server
type Session interface {
	Server() result.ThroughputServer
	// Ping returns the latency to the server
	Ping(ctx context.Context) (time.Duration, error)
	// Download returns the download rate in bytes per second
	Download(ctx context.Context) (float64, error)
	// Upload returns the upload rate in bytes per second
	Upload(ctx context.Context) (float64, error)
}

type Probe struct {
	tester     Tester
	clock      clock.Clock
	enabled    bool
	candidates int
	cacheTTL   time.Duration
}

// New returns a Probe backed by speedtest.net servers
func New(cfg config.ThroughputConfig) *Probe {
	return NewWithTester(NewSpeedtestTester(), clock.Real(), cfg)
}

func NewWithTester(tester Tester, clk clock.Clock, cfg config.ThroughputConfig) *Probe {
	candidates := cfg.Candidates
	if candidates <= 0 {
		candidates = common.DefaultServerCandidates
	}
	return &Probe{
		tester:     tester,
		clock:      clk,
		enabled:    cfg.Enabled,
		candidates: candidates,
		cacheTTL:   cfg.ServerCacheTTL,
	}
}

// Measure selects the lowest-latency server among the closest candidates,
// then measures download and upload in sequence. Any failure yields the
// error variant, never partial figures.
func (p *Probe) Measure(ctx context.Context) result.ThroughputResult {
	if !p.enabled {
		return result.NewThroughputError(&result.ProbeError{
			Code:    result.ErrCodeServiceUnavailable,
			Message: ErrDisabled.Error(),
		}, p.clock.Now())
	}

	measureMu.Lock()
	measurement, err := p.measure(ctx)
	measureMu.Unlock()
	if err != nil {
		probeErr := common.ClassifyError(&common.ServiceError{Service: serviceName, Err: err})
		log.Debugf("throughput test failed: %s", probeErr)
		return result.NewThroughputError(probeErr, p.clock.Now())
	}
	log.Debugf("throughput test against %s: down %.2f Mbps, up %.2f Mbps", measurement.Server.Host, measurement.DownloadMbps, measurement.UploadMbps)
	return result.NewThroughputSuccess(measurement, p.clock.Now())
}

func (p *Probe) measure(ctx context.Context) (result.ThroughputMeasurement, error) {
	servers, err := p.servers(ctx)
	if err != nil {
		return result.ThroughputMeasurement{}, err
	}
	session, latency, err := p.selectBest(ctx, servers)
	if err != nil {
		return result.ThroughputMeasurement{}, err
	}

	download, err := session.Download(ctx)
	if err != nil {
		return result.ThroughputMeasurement{}, fmt.Errorf("download test: %w", err)
	}
	if download <= 0 {
		return result.ThroughputMeasurement{}, fmt.Errorf("download test: %w", errNoMeasurement)
	}
	upload, err := session.Upload(ctx)
	if err != nil {
		return result.ThroughputMeasurement{}, fmt.Errorf("upload test: %w", err)
	}
	if upload <= 0 {
		return result.ThroughputMeasurement{}, fmt.Errorf("upload test: %w", errNoMeasurement)
	}

	return result.ThroughputMeasurement{
		DownloadMbps: toMbps(download),
		UploadMbps:   toMbps(upload),
		PingMillis:   result.Round2(common.ConvertDurationToMs(latency)),
		Server:       session.Server(),
	}, nil
}

// servers returns the server list sorted by distance. The list is cached
// for cacheTTL; a zero TTL fetches it on every call.
func (p *Probe) servers(ctx context.Context) ([]Session, error) {
	fetch := func() ([]Session, error) {
		return p.fetchServers(ctx)
	}
	if p.cacheTTL <= 0 {
		return fetch()
	}
	return cache.GetWithExpiration(serverListCacheKey, fetch, p.cacheTTL)
}

func (p *Probe) fetchServers(ctx context.Context) ([]Session, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 500 * time.Millisecond
	expBackoff.MaxInterval = 3 * time.Second

	operation := func() ([]Session, error) {
		servers, err := p.tester.Servers(ctx)
		if err != nil {
			log.Debugf("fetching test servers: %s", err)
			return nil, err
		}
		if len(servers) == 0 {
			return nil, backoff.Permanent(errNoServers)
		}
		return servers, nil
	}
	servers, err := backoff.Retry(ctx, operation, backoff.WithBackOff(expBackoff), backoff.WithMaxTries(serverListMaxTries))
	if err != nil {
		return nil, fmt.Errorf("server list: %w", err)
	}

	sorted := append([]Session(nil), servers...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Server().DistanceKm < sorted[j].Server().DistanceKm
	})
	return sorted, nil
}

// selectBest pings the closest candidates and keeps the lowest latency.
// Unreachable candidates are skipped.
func (p *Probe) selectBest(ctx context.Context, servers []Session) (Session, time.Duration, error) {
	var best Session
	var bestLatency time.Duration
	var lastErr error
	for _, session := range servers[:min(p.candidates, len(servers))] {
		latency, err := session.Ping(ctx)
		if err != nil {
			log.Tracef("server %s: %s", session.Server().Host, err)
			lastErr = err
			continue
		}
		if best == nil || latency < bestLatency {
			best, bestLatency = session, latency
		}
	}
	if best == nil {
		return nil, 0, fmt.Errorf("%w: %w", errNoServers, lastErr)
	}
	return best, bestLatency, nil
}

// toMbps converts bytes per second to megabits per second
func toMbps(bytesPerSecond float64) float64 {
	return result.Round2(bytesPerSecond * 8 / 1_000_000)
}
