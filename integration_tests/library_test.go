// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

//go:build integration

package integration_tests

import (
	"context"
	"encoding/json"
	"net"
	"os/exec"
	"runtime"
	"testing"
	"time"

	"github.com/DataDog/datadog-netdiag/bandwidth"
	"github.com/DataDog/datadog-netdiag/clock"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/connectivity"
	"github.com/DataDog/datadog-netdiag/diagnosis"
	"github.com/DataDog/datadog-netdiag/dnsprobe"
	"github.com/DataDog/datadog-netdiag/ifstat"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/DataDog/datadog-netdiag/traceroute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const localhost = "127.0.0.1"

func localConfig(t *testing.T) config.Config {
	l, err := net.Listen("tcp", localhost+":0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	cfg := config.Default()
	cfg.Ping.Hosts = []string{localhost}
	cfg.Ping.Count = 2
	cfg.DNS.Domain = "localhost"
	cfg.Connectivity.Targets = []result.Target{{Name: "local", Host: localhost, Port: l.Addr().(*net.TCPAddr).Port}}
	cfg.Throughput.Enabled = false
	return cfg
}

func TestInterfacesSnapshot(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("interface counters are read through netlink")
	}
	snapshot := ifstat.New("")

	interfaces, err := snapshot.Interfaces(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, interfaces)

	var loopback bool
	for _, iface := range interfaces {
		for _, addr := range iface.Addresses {
			if addr.Address == localhost {
				loopback = true
				assert.Equal(t, result.FamilyIPv4, addr.Family)
				assert.Equal(t, "255.0.0.0", addr.Netmask)
			}
		}
	}
	assert.True(t, loopback, "no interface carries %s", localhost)

	counters, err := snapshot.Counters(context.Background())
	require.NoError(t, err)
	assert.NotZero(t, counters.PacketsRecv+counters.PacketsSent)
}

func TestBandwidthMonitorRealCounters(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("interface counters are read through netlink")
	}
	sampler := bandwidth.New(ifstat.New(""), clock.Real(), 0)

	samples, err := sampler.Monitor(context.Background(), 2, 1)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.True(t, samples[1].Timestamp.After(samples[0].Timestamp))
}

func TestResolveLocalhost(t *testing.T) {
	res := dnsprobe.New(5*time.Second).Resolve(context.Background(), "localhost")

	require.Len(t, res.Records, 3)
	if a := res.Records[result.RecordA]; a.Error == nil {
		assert.Contains(t, a.Records, localhost)
	}
}

func TestConnectivityToLocalListener(t *testing.T) {
	cfg := localConfig(t)

	res := connectivity.New(cfg.Connectivity).Check(context.Background())

	require.Len(t, res, 1)
	assert.Equal(t, result.StatusConnected, res[0].Status)
	require.NotNil(t, res[0].ResponseTimeMillis)
	assert.Less(t, *res[0].ResponseTimeMillis, 1000.0)
}

func TestTracerouteLocalhost(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tracert output differs too much between Windows versions")
	}
	if _, err := exec.LookPath("traceroute"); err != nil {
		t.Skip("traceroute is not installed")
	}

	params := traceroute.TracerouteParams{Hostname: localhost, MaxHops: 3, Timeout: 30 * time.Second}
	res := traceroute.NewTraceroute().RunTraceroute(context.Background(), params)

	require.Equal(t, result.StatusSuccess, res.Status, "error: %v", res.Error)
	require.NotEmpty(t, res.Hops)
	assert.Contains(t, res.Hops[0], localhost)
}

func TestFullDiagnosisLocal(t *testing.T) {
	d := diagnosis.New(localConfig(t))

	report := d.FullDiagnosis(context.Background())

	assert.NotEmpty(t, report.ID)
	assert.Nil(t, report.Interfaces.Error)
	require.Len(t, report.Pings, 1)
	assert.Equal(t, localhost, report.Pings[0].Host)
	assert.Len(t, report.Pings[0].Attempts, 2)
	assert.Equal(t, "localhost", report.DNS.Domain)
	require.Len(t, report.Connectivity, 1)
	assert.Equal(t, result.StatusConnected, report.Connectivity[0].Status)
	assert.Equal(t, result.StatusError, report.Throughput.Status)

	// the report must stay serializable whatever the probes returned
	_, err := json.Marshal(report)
	require.NoError(t, err)
}
