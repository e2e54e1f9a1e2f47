package publicip

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/DataDog/datadog-netdiag/log"
	"github.com/cenkalti/backoff/v5"
)

// ipCheckers list of reliable public IP checkers
var ipCheckers = []string{
	"https://icanhazip.com/",         // owned by cloudflare
	"https://ipinfo.io/ip",           // same as our GeoIP info provider
	"https://checkip.amazonaws.com/", // Amazon
	"https://api.ipify.org/",         // Dedicated Public IP info and GeoIP info provider
	"https://whatismyip.akamai.com/", // Akamai is a CDN Provider
}

// GetPublicIP asks each checker in turn and returns the first valid answer
func GetPublicIP(ctx context.Context, client *http.Client) (net.IP, error) {
	for _, ipChecker := range ipCheckers {
		ip, err := getPublicIPUsingIPChecker(ctx, client, ipChecker)
		if err != nil {
			log.Debugf("error fetching: %s, %s", ipChecker, err.Error())
			continue
		}
		return ip, nil
	}
	return nil, errors.New("no IP found")
}

func getPublicIPUsingIPChecker(ctx context.Context, client *http.Client, dest string) (net.IP, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 500 * time.Millisecond
	expBackoff.MaxInterval = 3 * time.Second

	operation := func() (net.IP, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, dest, nil)
		if err != nil {
			return nil, backoff.Permanent(errors.New("failed to create new request: " + err.Error()))
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, errors.New("failed to fetch req: " + err.Error())
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, errors.New("failed to read content: " + err.Error())
		}

		// Client errors won't improve on retry
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, backoff.Permanent(errors.New("unexpected status: " + resp.Status))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, errors.New("unexpected status: " + resp.Status)
		}

		tb := strings.TrimSpace(string(body))
		ip := net.ParseIP(tb)
		if ip == nil {
			return nil, backoff.Permanent(errors.New("IP address not valid: " + tb))
		}
		return ip, nil
	}
	result, err := backoff.Retry(ctx, operation, backoff.WithBackOff(expBackoff), backoff.WithMaxTries(MaxTries))
	if err != nil {
		return nil, errors.New("backoff retry error: " + err.Error())
	}

	return result, nil
}
