package throughput

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DataDog/datadog-netdiag/cache"
	"github.com/DataDog/datadog-netdiag/config"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/DataDog/datadog-netdiag/testutils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newSession(ctrl *gomock.Controller, host string, distance float64) *MockSession {
	session := NewMockSession(ctrl)
	session.EXPECT().Server().Return(result.ThroughputServer{
		Name:       "Server " + host,
		Country:    "France",
		Sponsor:    "Sponsor " + host,
		Host:       host,
		DistanceKm: distance,
	}).AnyTimes()
	return session
}

func newProbe(tester Tester, cfg config.ThroughputConfig) *Probe {
	return NewWithTester(tester, testutils.NewFakeClock(testNow), cfg)
}

func TestMeasureSelectsLowestLatencyAmongClosest(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	far := newSession(ctrl, "far.example:8080", 300)
	near := newSession(ctrl, "near.example:8080", 10)
	mid := newSession(ctrl, "mid.example:8080", 20)

	near.EXPECT().Ping(gomock.Any()).Return(40*time.Millisecond, nil)
	mid.EXPECT().Ping(gomock.Any()).Return(15678*time.Microsecond, nil)
	mid.EXPECT().Download(gomock.Any()).Return(12_500_000.0, nil)
	mid.EXPECT().Upload(gomock.Any()).Return(2_500_000.0, nil)

	tester := NewMockTester(ctrl)
	tester.EXPECT().Servers(gomock.Any()).Return([]Session{far, near, mid}, nil)

	res := newProbe(tester, config.ThroughputConfig{Enabled: true, Candidates: 2}).Measure(context.Background())

	assert.Equal(t, result.StatusSuccess, res.Status)
	assert.Nil(t, res.Error)
	assert.Equal(t, testNow, res.Timestamp)
	require.NotNil(t, res.ThroughputMeasurement)
	assert.Equal(t, 100.0, res.DownloadMbps)
	assert.Equal(t, 20.0, res.UploadMbps)
	assert.Equal(t, 15.68, res.PingMillis)
	assert.Equal(t, "mid.example:8080", res.Server.Host)
	assert.Equal(t, 20.0, res.Server.DistanceKm)
}

func TestMeasureFailuresYieldErrorVariant(t *testing.T) {
	tests := []struct {
		name         string
		setup        func(ctrl *gomock.Controller, tester *MockTester)
		expectedCode result.ErrorCode
		expectedMsg  string
	}{
		{
			name: "download fails",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				session := newSession(ctrl, "a.example:8080", 1)
				session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil)
				session.EXPECT().Download(gomock.Any()).Return(0.0, errors.New("connection reset"))
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "download test: connection reset",
		},
		{
			name: "upload fails",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				session := newSession(ctrl, "a.example:8080", 1)
				session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil)
				session.EXPECT().Download(gomock.Any()).Return(1_000_000.0, nil)
				session.EXPECT().Upload(gomock.Any()).Return(0.0, errors.New("broken pipe"))
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "upload test: broken pipe",
		},
		{
			name: "download reports a failed run without error",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				session := newSession(ctrl, "a.example:8080", 1)
				session.EXPECT().Ping(gomock.Any()).Return(5*time.Millisecond, nil)
				session.EXPECT().Download(gomock.Any()).Return(-1.0, nil)
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "download test: test produced no measurement",
		},
		{
			name: "upload reports a zero rate without error",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				session := newSession(ctrl, "a.example:8080", 1)
				session.EXPECT().Ping(gomock.Any()).Return(5*time.Millisecond, nil)
				session.EXPECT().Download(gomock.Any()).Return(1_000_000.0, nil)
				session.EXPECT().Upload(gomock.Any()).Return(0.0, nil)
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "upload test: test produced no measurement",
		},
		{
			name: "every candidate unreachable",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				first := newSession(ctrl, "a.example:8080", 1)
				second := newSession(ctrl, "b.example:8080", 2)
				first.EXPECT().Ping(gomock.Any()).Return(time.Duration(0), errors.New("refused"))
				second.EXPECT().Ping(gomock.Any()).Return(time.Duration(0), errors.New("refused"))
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{first, second}, nil)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "no test server available",
		},
		{
			name: "empty server list is not retried",
			setup: func(_ *gomock.Controller, tester *MockTester) {
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{}, nil).Times(1)
			},
			expectedCode: result.ErrCodeServiceUnavailable,
			expectedMsg:  "no test server available",
		},
		{
			name: "measurement timeout",
			setup: func(ctrl *gomock.Controller, tester *MockTester) {
				session := newSession(ctrl, "a.example:8080", 1)
				session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil)
				session.EXPECT().Download(gomock.Any()).Return(0.0, context.DeadlineExceeded)
				tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil)
			},
			expectedCode: result.ErrCodeTimeout,
			expectedMsg:  "deadline exceeded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			tester := NewMockTester(ctrl)
			tt.setup(ctrl, tester)

			res := newProbe(tester, config.ThroughputConfig{Enabled: true, Candidates: 5}).Measure(context.Background())

			assert.Equal(t, result.StatusError, res.Status)
			assert.Nil(t, res.ThroughputMeasurement)
			assert.Equal(t, testNow, res.Timestamp)
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.expectedCode, res.Error.Code)
			assert.Contains(t, res.Error.Message, tt.expectedMsg)
		})
	}
}

func TestMeasureRetriesServerList(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	session := newSession(ctrl, "a.example:8080", 1)
	session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil)
	session.EXPECT().Download(gomock.Any()).Return(1_000_000.0, nil)
	session.EXPECT().Upload(gomock.Any()).Return(1_000_000.0, nil)

	tester := NewMockTester(ctrl)
	gomock.InOrder(
		tester.EXPECT().Servers(gomock.Any()).Return(nil, errors.New("503 service unavailable")),
		tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil),
	)

	res := newProbe(tester, config.ThroughputConfig{Enabled: true, Candidates: 1}).Measure(context.Background())

	assert.Equal(t, result.StatusSuccess, res.Status)
	assert.Equal(t, 8.0, res.DownloadMbps)
}

func TestMeasureCachesServerList(t *testing.T) {
	cache.Forget(serverListCacheKey)
	t.Cleanup(func() { cache.Forget(serverListCacheKey) })

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	session := newSession(ctrl, "a.example:8080", 1)
	session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil).Times(2)
	session.EXPECT().Download(gomock.Any()).Return(1_000_000.0, nil).Times(2)
	session.EXPECT().Upload(gomock.Any()).Return(1_000_000.0, nil).Times(2)

	tester := NewMockTester(ctrl)
	tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil).Times(1)

	probe := newProbe(tester, config.ThroughputConfig{Enabled: true, Candidates: 1, ServerCacheTTL: time.Minute})
	first := probe.Measure(context.Background())
	second := probe.Measure(context.Background())

	assert.Equal(t, result.StatusSuccess, first.Status)
	assert.Equal(t, result.StatusSuccess, second.Status)
}

func TestMeasureConcurrentCallsAreSerialized(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var inFlight, maxInFlight atomic.Int32
	track := func(context.Context) (float64, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			prev := maxInFlight.Load()
			if n <= prev || maxInFlight.CompareAndSwap(prev, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return 1_000_000.0, nil
	}

	const calls = 4
	session := newSession(ctrl, "a.example:8080", 1)
	session.EXPECT().Ping(gomock.Any()).Return(10*time.Millisecond, nil).Times(calls)
	session.EXPECT().Download(gomock.Any()).DoAndReturn(track).Times(calls)
	session.EXPECT().Upload(gomock.Any()).DoAndReturn(track).Times(calls)

	tester := NewMockTester(ctrl)
	tester.EXPECT().Servers(gomock.Any()).Return([]Session{session}, nil).Times(calls)

	probe := newProbe(tester, config.ThroughputConfig{Enabled: true, Candidates: 1})
	results := make([]result.ThroughputResult, calls)
	var wg sync.WaitGroup
	for i := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = probe.Measure(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInFlight.Load())
	for _, res := range results {
		assert.Equal(t, result.StatusSuccess, res.Status)
		assert.Equal(t, 8.0, res.DownloadMbps)
	}
}

func TestCheckRate(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name        string
		ctx         context.Context
		rate        float64
		expected    float64
		expectedErr error
	}{
		{name: "measured", ctx: context.Background(), rate: 1_250_000, expected: 1_250_000},
		{name: "failed run", ctx: context.Background(), rate: -1, expectedErr: errNoMeasurement},
		{name: "no data", ctx: context.Background(), rate: 0, expectedErr: errNoMeasurement},
		{name: "interrupted", ctx: canceled, rate: 0, expectedErr: context.Canceled},
		{name: "interrupted after partial data", ctx: canceled, rate: 500_000, expectedErr: context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rate, err := checkRate(tt.ctx, tt.rate, "download", "a.example:8080")
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Contains(t, err.Error(), "download test against a.example:8080")
				assert.Zero(t, rate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rate)
		})
	}
}

func TestMeasureDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	res := newProbe(NewMockTester(ctrl), config.ThroughputConfig{Enabled: false}).Measure(context.Background())

	assert.Equal(t, result.StatusError, res.Status)
	require.NotNil(t, res.Error)
	assert.Equal(t, result.ErrCodeServiceUnavailable, res.Error.Code)
	assert.Equal(t, "throughput test disabled", res.Error.Message)
	assert.Equal(t, testNow, res.Timestamp)
}

func TestToMbps(t *testing.T) {
	assert.Equal(t, 0.0, toMbps(0))
	assert.Equal(t, 100.0, toMbps(12_500_000))
	assert.Equal(t, 1.23, toMbps(153_750))
}
