// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package publicip

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/DataDog/datadog-netdiag/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRoundTripper implements http.RoundTripper for testing
type mockRoundTripper struct {
	statusCode int
	body       string
	calls      int
}

func (m *mockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.calls++
	return &http.Response{
		StatusCode: m.statusCode,
		Status:     http.StatusText(m.statusCode),
		Body:       io.NopCloser(strings.NewReader(m.body)),
	}, nil
}

func TestGetPublicIPUsingIPChecker(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		body          string
		wantIP        string
		wantErr       bool
		expectedCalls int
	}{
		{
			name:          "valid IPv4",
			statusCode:    200,
			body:          "1.2.3.4\n",
			wantIP:        "1.2.3.4",
			expectedCalls: 1,
		},
		{
			name:          "valid IPv6",
			statusCode:    200,
			body:          "2001:0db8:85a3::8a2e:0370:7334",
			wantIP:        "2001:db8:85a3::8a2e:370:7334",
			expectedCalls: 1,
		},
		{
			name:          "IP with whitespace",
			statusCode:    200,
			body:          "  8.8.8.8  \n",
			wantIP:        "8.8.8.8",
			expectedCalls: 1,
		},
		{
			name:          "bad request",
			statusCode:    400,
			body:          "bad request",
			wantErr:       true,
			expectedCalls: 1,
		},
		{
			name:          "garbage body",
			statusCode:    200,
			body:          "<html>rate limited</html>",
			wantErr:       true,
			expectedCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			transport := &mockRoundTripper{
				statusCode: tt.statusCode,
				body:       tt.body,
			}
			client := &http.Client{Transport: transport}

			// Execute
			got, err := getPublicIPUsingIPChecker(context.Background(), client, "http://test.example.com")

			// Assert
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, net.ParseIP(tt.wantIP), got)
			}
			assert.Equal(t, tt.expectedCalls, transport.calls)
		})
	}
}

func TestGetPublicIPUsingIPCheckerRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("5.6.7.8\n"))
	}))
	defer server.Close()

	got, err := getPublicIPUsingIPChecker(context.Background(), server.Client(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, net.ParseIP("5.6.7.8"), got)
	assert.Equal(t, int32(2), calls.Load())
}

func TestPublicIPFetcherFallsBackToConsensus(t *testing.T) {
	cache.Forget(publicIPCacheKey)
	t.Cleanup(func() { cache.Forget(publicIPCacheKey) })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()
	previous := ipCheckers
	ipCheckers = []string{server.URL}
	defer func() { ipCheckers = previous }()

	consensusCalls := 0
	fetcher := &PublicIPFetcher{
		client: server.Client(),
		consensus: func() (net.IP, error) {
			consensusCalls++
			return net.ParseIP("9.9.9.9"), nil
		},
	}

	ip, err := fetcher.GetIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, net.ParseIP("9.9.9.9"), ip)

	// second lookup is served from the cache
	ip, err = fetcher.GetIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, net.ParseIP("9.9.9.9"), ip)
	assert.Equal(t, 1, consensusCalls)
}

func TestPublicIPFetcherErrorsAreNotCached(t *testing.T) {
	cache.Forget(publicIPCacheKey)
	t.Cleanup(func() { cache.Forget(publicIPCacheKey) })

	previous := ipCheckers
	ipCheckers = nil
	defer func() { ipCheckers = previous }()

	consensusCalls := 0
	fetcher := &PublicIPFetcher{
		client: http.DefaultClient,
		consensus: func() (net.IP, error) {
			consensusCalls++
			return nil, errors.New("no consensus")
		},
	}

	_, err := fetcher.GetIP(context.Background())
	require.Error(t, err)
	_, err = fetcher.GetIP(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, consensusCalls)
}
