// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package server

import (
	"net/url"
	"strconv"

	"github.com/DataDog/datadog-netdiag/common"
)

// Helper functions for parsing query parameters. Malformed values fall back
// to the default, the range is checked by the diagnostics engine.

func getIntParam(query map[string][]string, key string, defaultValue int) int {
	if values, ok := query[key]; ok && len(values) > 0 {
		if val, err := strconv.Atoi(values[0]); err == nil {
			return val
		}
	}
	return defaultValue
}

// parsePingCount returns the requested count, 0 meaning the configured default
func parsePingCount(u *url.URL) int {
	return getIntParam(u.Query(), "count", 0)
}

func parseMonitorParams(u *url.URL) (duration, interval int) {
	query := u.Query()
	duration = getIntParam(query, "duration", common.DefaultMonitorDuration)
	interval = getIntParam(query, "interval", common.DefaultMonitorInterval)
	return duration, interval
}
