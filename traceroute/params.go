package traceroute

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/DataDog/datadog-netdiag/common"
	"github.com/DataDog/datadog-netdiag/config"
)

type TracerouteParams struct {
	Hostname string
	MaxHops  int
	Timeout  time.Duration
	// Command overrides the platform path tracer binary
	Command string
}

// ParamsFromConfig builds the params for host from the traceroute config
func ParamsFromConfig(cfg config.TracerouteConfig, host string) TracerouteParams {
	return TracerouteParams{
		Hostname: host,
		MaxHops:  cfg.MaxHops,
		Timeout:  cfg.Timeout,
		Command:  cfg.Command,
	}
}

func (p TracerouteParams) withDefaults() TracerouteParams {
	if p.MaxHops <= 0 {
		p.MaxHops = common.DefaultMaxHops
	}
	if p.Timeout <= 0 {
		p.Timeout = common.DefaultTracerouteTimeout
	}
	return p
}

// commandLine returns the path tracer invocation: tracert on Windows,
// traceroute elsewhere.
func (p TracerouteParams) commandLine(goos string) (string, []string, error) {
	if p.Hostname == "" {
		return "", nil, fmt.Errorf("empty hostname")
	}
	maxHops := strconv.Itoa(p.MaxHops)
	if goos == "windows" {
		return orDefault(p.Command, "tracert"), []string{"-h", maxHops, p.Hostname}, nil
	}
	return orDefault(p.Command, "traceroute"), []string{"-m", maxHops, p.Hostname}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

var currentOS = runtime.GOOS
