// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package cache

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverEntry struct {
	Host       string
	DistanceKm float64
}

func TestGetWithExpiration(t *testing.T) {
	servers := []serverEntry{{Host: "a.example:8080", DistanceKm: 3}}
	tests := []struct {
		name          string
		seed          any
		callback      func() ([]serverEntry, error)
		want          []serverEntry
		wantErr       bool
		wantCached    bool
		callbackCalls int
	}{
		{
			name:          "miss stores the fetched list",
			callback:      func() ([]serverEntry, error) { return servers, nil },
			want:          servers,
			wantCached:    true,
			callbackCalls: 1,
		},
		{
			name:          "miss with a fetch error is not stored",
			callback:      func() ([]serverEntry, error) { return nil, errors.New("503 service unavailable") },
			wantErr:       true,
			callbackCalls: 1,
		},
		{
			name:          "hit skips the fetch",
			seed:          servers,
			callback:      func() ([]serverEntry, error) { return nil, errors.New("must not be called") },
			want:          servers,
			wantCached:    true,
			callbackCalls: 0,
		},
		{
			name:          "stale value of another type is refreshed",
			seed:          "not a server list",
			callback:      func() ([]serverEntry, error) { return servers, nil },
			want:          servers,
			wantCached:    true,
			callbackCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Cache.Flush()
			const key = "throughput_server_list"
			if tt.seed != nil {
				Cache.Set(key, tt.seed, cache.NoExpiration)
			}

			calls := 0
			got, err := GetWithExpiration(key, func() ([]serverEntry, error) {
				calls++
				return tt.callback()
			}, time.Minute)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.callbackCalls, calls)

			cached, found := Cache.Get(key)
			assert.Equal(t, tt.wantCached, found)
			if tt.wantCached {
				assert.Equal(t, tt.want, cached)
			}
		})
	}
}

func TestGetWithExpirationExpires(t *testing.T) {
	Cache.Flush()
	calls := 0
	fetch := func() (net.IP, error) {
		calls++
		return net.ParseIP("203.0.113.7"), nil
	}

	_, err := GetWithExpiration("source_public_ip", fetch, 20*time.Millisecond)
	require.NoError(t, err)
	_, err = GetWithExpiration("source_public_ip", fetch, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	time.Sleep(40 * time.Millisecond)
	ip, err := GetWithExpiration("source_public_ip", fetch, 20*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, net.ParseIP("203.0.113.7"), ip)
	assert.Equal(t, 2, calls)
}

func TestGetNeverExpires(t *testing.T) {
	Cache.Flush()
	_, err := Get("roster_size", func() (int, error) { return 6, nil })
	require.NoError(t, err)

	_, expiration, found := Cache.GetWithExpiration("roster_size")
	require.True(t, found)
	assert.True(t, expiration.IsZero())
}

func TestForget(t *testing.T) {
	Cache.Flush()
	calls := 0
	fetch := func() (string, error) {
		calls++
		return "dns.google", nil
	}

	_, _ = Get("reverse", fetch)
	Forget("reverse")
	Forget("never-set")
	_, _ = Get("reverse", fetch)

	assert.Equal(t, 2, calls)
}
