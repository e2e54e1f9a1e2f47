package throughput

import (
	"context"
	"time"

	"github.com/DataDog/datadog-netdiag/result"
	"github.com/pkg/errors"
	"github.com/showwin/speedtest-go/speedtest"
)

type speedtestTester struct {
	client *speedtest.Speedtest
}

// NewSpeedtestTester returns a Tester over the speedtest.net server list
func NewSpeedtestTester() Tester {
	return &speedtestTester{client: speedtest.New()}
}

func (t *speedtestTester) Servers(ctx context.Context) ([]Session, error) {
	servers, err := t.client.FetchServerListContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch speedtest server list")
	}
	sessions := make([]Session, 0, len(servers))
	for _, server := range servers {
		sessions = append(sessions, &speedtestSession{server: server})
	}
	return sessions, nil
}

type speedtestSession struct {
	server *speedtest.Server
}

func (s *speedtestSession) Server() result.ThroughputServer {
	return result.ThroughputServer{
		Name:       s.server.Name,
		Country:    s.server.Country,
		Sponsor:    s.server.Sponsor,
		Host:       s.server.Host,
		DistanceKm: result.Round2(s.server.Distance),
	}
}

func (s *speedtestSession) Ping(ctx context.Context) (time.Duration, error) {
	if err := s.server.PingTestContext(ctx, nil); err != nil {
		return 0, errors.Wrapf(err, "ping test against %s", s.server.Host)
	}
	return s.server.Latency, nil
}

func (s *speedtestSession) Download(ctx context.Context) (float64, error) {
	if err := s.server.DownloadTestContext(ctx); err != nil {
		return 0, errors.Wrapf(err, "download test against %s", s.server.Host)
	}
	return checkRate(ctx, float64(s.server.DLSpeed), "download", s.server.Host)
}

func (s *speedtestSession) Upload(ctx context.Context) (float64, error) {
	if err := s.server.UploadTestContext(ctx); err != nil {
		return 0, errors.Wrapf(err, "upload test against %s", s.server.Host)
	}
	return checkRate(ctx, float64(s.server.ULSpeed), "upload", s.server.Host)
}

// checkRate turns the library's silent failures into errors: a failed run
// leaves the rate at -1 and an interrupted one leaves it at 0, both with a
// nil error.
func checkRate(ctx context.Context, rate float64, test, host string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, errors.Wrapf(err, "%s test against %s", test, host)
	}
	if rate <= 0 {
		return 0, errors.Wrapf(errNoMeasurement, "%s test against %s", test, host)
	}
	return rate, nil
}
