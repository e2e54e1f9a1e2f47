// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

// Package common contains defaults and error classification shared by all
// probes
package common

import (
	"time"

	"github.com/DataDog/datadog-netdiag/result"
)

const (
	DefaultPingCount         = 4
	DefaultMaxPingCount      = 100
	DefaultPingTimeout       = 5 * time.Second
	DefaultConnectTimeout    = 5 * time.Second
	DefaultDNSTimeout        = 5 * time.Second
	DefaultDNSDomain         = "google.com"
	DefaultTracerouteHost    = "8.8.8.8"
	DefaultMaxHops           = 30
	DefaultTracerouteTimeout = 60 * time.Second
	DefaultMonitorDuration   = 10 // iterations
	DefaultMonitorInterval   = 1  // seconds
	DefaultMaxMonitorLength  = 3600
	DefaultServerCandidates  = 5
	DefaultServerCacheTTL    = 10 * time.Minute
	DefaultServerAddr        = ":5000"
	DefaultParallel          = true
	DefaultCollectPublicIP   = false
	DefaultThroughputEnable  = true
)

// DefaultPingHosts are the reference hosts pinged by a full diagnosis
func DefaultPingHosts() []string {
	return []string{"8.8.8.8", "1.1.1.1"}
}

// DefaultRoster is the connectivity roster used when none is configured
func DefaultRoster() []result.Target {
	return []result.Target{
		{Name: "Google DNS", Host: "8.8.8.8", Port: 53},
		{Name: "Cloudflare DNS", Host: "1.1.1.1", Port: 53},
		{Name: "Google HTTP", Host: "google.com", Port: 80},
		{Name: "Google HTTPS", Host: "google.com", Port: 443},
		{Name: "Facebook", Host: "facebook.com", Port: 443},
		{Name: "Twitter", Host: "twitter.com", Port: 443},
	}
}
