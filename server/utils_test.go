// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package server

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelperFunctions(t *testing.T) {
	query := map[string][]string{
		"int":     {"42"},
		"invalid": {"abc"},
		"empty":   {},
	}

	assert.Equal(t, 42, getIntParam(query, "int", 0))
	assert.Equal(t, 7, getIntParam(query, "invalid", 7))
	assert.Equal(t, 7, getIntParam(query, "empty", 7))
	assert.Equal(t, 7, getIntParam(query, "missing", 7))
}

func TestParsePingCount(t *testing.T) {
	tests := []struct {
		rawQuery string
		expected int
	}{
		{rawQuery: "", expected: 0},
		{rawQuery: "count=10", expected: 10},
		{rawQuery: "count=-3", expected: -3},
		{rawQuery: "count=ten", expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.rawQuery, func(t *testing.T) {
			assert.Equal(t, tt.expected, parsePingCount(&url.URL{RawQuery: tt.rawQuery}))
		})
	}
}

func TestParseMonitorParams(t *testing.T) {
	duration, interval := parseMonitorParams(&url.URL{RawQuery: "duration=30&interval=5"})
	assert.Equal(t, 30, duration)
	assert.Equal(t, 5, interval)

	duration, interval = parseMonitorParams(&url.URL{})
	assert.Equal(t, 10, duration)
	assert.Equal(t, 1, interval)
}
