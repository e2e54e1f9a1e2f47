// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package config holds the process-wide probe configuration. A Config is
// built once at startup and passed by value to the probes.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/result"
	"gopkg.in/yaml.v3"
)

type (
	// Config is the root of the YAML configuration file
	Config struct {
		Ping         PingConfig         `yaml:"ping"`
		Connectivity ConnectivityConfig `yaml:"connectivity"`
		DNS          DNSConfig          `yaml:"dns"`
		Traceroute   TracerouteConfig   `yaml:"traceroute"`
		Throughput   ThroughputConfig   `yaml:"throughput"`
		Bandwidth    BandwidthConfig    `yaml:"bandwidth"`
		Interfaces   InterfacesConfig   `yaml:"interfaces"`
		Diagnosis    DiagnosisConfig    `yaml:"diagnosis"`
		Server       ServerConfig       `yaml:"server"`
	}

	PingConfig struct {
		// Hosts are the reference hosts pinged by a full diagnosis
		Hosts   []string      `yaml:"hosts"`
		Count   int           `yaml:"count"`
		Timeout time.Duration `yaml:"timeout"`
		// Privileged forces raw ICMP sockets on or off. Unset means detect
		// from the effective user.
		Privileged *bool `yaml:"privileged"`
		MaxCount   int   `yaml:"max_count"`
	}

	ConnectivityConfig struct {
		Targets  []result.Target `yaml:"targets"`
		Timeout  time.Duration   `yaml:"timeout"`
		Parallel bool            `yaml:"parallel"`
	}

	DNSConfig struct {
		Domain  string        `yaml:"domain"`
		Timeout time.Duration `yaml:"timeout"`
	}

	TracerouteConfig struct {
		Host    string        `yaml:"host"`
		MaxHops int           `yaml:"max_hops"`
		Timeout time.Duration `yaml:"timeout"`
		// Command overrides the platform tracing utility (traceroute or tracert)
		Command string `yaml:"command"`
	}

	ThroughputConfig struct {
		Enabled        bool          `yaml:"enabled"`
		ServerCacheTTL time.Duration `yaml:"server_cache_ttl"`
		Candidates     int           `yaml:"candidates"`
	}

	BandwidthConfig struct {
		MaxDuration int `yaml:"max_duration"`
	}

	InterfacesConfig struct {
		// Namespace is a named Linux network namespace to read interfaces from
		Namespace string `yaml:"namespace"`
	}

	DiagnosisConfig struct {
		Parallel bool `yaml:"parallel"`
		PublicIP bool `yaml:"public_ip"`
	}

	ServerConfig struct {
		Addr string `yaml:"addr"`
	}
)

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Ping: PingConfig{
			Hosts:    common.DefaultPingHosts(),
			Count:    common.DefaultPingCount,
			Timeout:  common.DefaultPingTimeout,
			MaxCount: common.DefaultMaxPingCount,
		},
		Connectivity: ConnectivityConfig{
			Targets:  common.DefaultRoster(),
			Timeout:  common.DefaultConnectTimeout,
			Parallel: common.DefaultParallel,
		},
		DNS: DNSConfig{
			Domain:  common.DefaultDNSDomain,
			Timeout: common.DefaultDNSTimeout,
		},
		Traceroute: TracerouteConfig{
			Host:    common.DefaultTracerouteHost,
			MaxHops: common.DefaultMaxHops,
			Timeout: common.DefaultTracerouteTimeout,
		},
		Throughput: ThroughputConfig{
			Enabled:        common.DefaultThroughputEnable,
			ServerCacheTTL: common.DefaultServerCacheTTL,
			Candidates:     common.DefaultServerCandidates,
		},
		Bandwidth: BandwidthConfig{
			MaxDuration: common.DefaultMaxMonitorLength,
		},
		Diagnosis: DiagnosisConfig{
			Parallel: common.DefaultParallel,
			PublicIP: common.DefaultCollectPublicIP,
		},
		Server: ServerConfig{
			Addr: common.DefaultServerAddr,
		},
	}
}

// Load reads the YAML file at path on top of the defaults and validates the
// result. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML content on top of the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	if len(c.Ping.Hosts) == 0 {
		return fmt.Errorf("ping.hosts must not be empty")
	}
	for i, host := range c.Ping.Hosts {
		if host == "" {
			return fmt.Errorf("ping.hosts[%d] must not be empty", i)
		}
	}
	if c.Ping.MaxCount < 1 {
		return fmt.Errorf("ping.max_count must be positive, got %d", c.Ping.MaxCount)
	}
	if c.Ping.Count < 1 || c.Ping.Count > c.Ping.MaxCount {
		return fmt.Errorf("ping.count must be between 1 and %d, got %d", c.Ping.MaxCount, c.Ping.Count)
	}
	if c.Ping.Timeout <= 0 {
		return fmt.Errorf("ping.timeout must be positive")
	}

	if len(c.Connectivity.Targets) == 0 {
		return fmt.Errorf("connectivity.targets must not be empty")
	}
	for i, target := range c.Connectivity.Targets {
		if target.Name == "" {
			return fmt.Errorf("connectivity.targets[%d]: name is required", i)
		}
		if target.Host == "" {
			return fmt.Errorf("connectivity target %s: host is required", target.Name)
		}
		if target.Port < 1 || target.Port > 65535 {
			return fmt.Errorf("connectivity target %s: invalid port %d", target.Name, target.Port)
		}
	}
	if c.Connectivity.Timeout <= 0 {
		return fmt.Errorf("connectivity.timeout must be positive")
	}

	if c.DNS.Domain == "" {
		return fmt.Errorf("dns.domain is required")
	}
	if c.DNS.Timeout <= 0 {
		return fmt.Errorf("dns.timeout must be positive")
	}

	if c.Traceroute.Host == "" {
		return fmt.Errorf("traceroute.host is required")
	}
	if c.Traceroute.MaxHops < 1 || c.Traceroute.MaxHops > 255 {
		return fmt.Errorf("traceroute.max_hops must be between 1 and 255, got %d", c.Traceroute.MaxHops)
	}
	if c.Traceroute.Timeout <= 0 {
		return fmt.Errorf("traceroute.timeout must be positive")
	}

	if c.Throughput.Candidates < 1 {
		return fmt.Errorf("throughput.candidates must be positive, got %d", c.Throughput.Candidates)
	}
	if c.Throughput.ServerCacheTTL < 0 {
		return fmt.Errorf("throughput.server_cache_ttl must not be negative")
	}

	if c.Bandwidth.MaxDuration < 1 {
		return fmt.Errorf("bandwidth.max_duration must be positive, got %d", c.Bandwidth.MaxDuration)
	}

	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return fmt.Errorf("server.addr %q: %w", c.Server.Addr, err)
	}
	return nil
}
