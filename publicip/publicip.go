// Package publicip discovers the public IP address of the probing host
package publicip

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/DataDog/datadog-netdiag/cache"
	"github.com/DataDog/datadog-netdiag/log"
	externalip "github.com/glendc/go-external-ip"
	"github.com/pkg/errors"
)

const (
	defaultPublicIPCacheExpiration = 2 * time.Hour
	publicIPCacheKey               = "source_public_ip"
)

//go:generate mockgen -destination=mock_fetcher.go -package=publicip . Fetcher

// Fetcher returns the public IP of the host
type Fetcher interface {
	GetIP(ctx context.Context) (net.IP, error)
}

type PublicIPFetcher struct {
	client *http.Client
	// consensus is asked when every IP checker failed
	consensus func() (net.IP, error)
}

func NewPublicIPFetcher() *PublicIPFetcher {
	return &PublicIPFetcher{
		client:    &http.Client{Timeout: Timeout},
		consensus: consensusIP,
	}
}

// GetIP returns the cached public IP, looking it up on a miss
func (p *PublicIPFetcher) GetIP(ctx context.Context) (net.IP, error) {
	myIP, err := cache.GetWithExpiration(publicIPCacheKey, func() (net.IP, error) {
		ip, err := GetPublicIP(ctx, p.client)
		if err != nil {
			log.Debugf("IP checkers failed, falling back to consensus: %s", err)
			ip, err = p.consensus()
		}
		if err != nil {
			return nil, err
		}
		log.Debugf("Public IP fetched: %s", ip.String())
		return ip, nil
	}, defaultPublicIPCacheExpiration)

	if err != nil {
		return nil, err
	}

	return myIP, nil
}

// consensusIP asks every service of APIURIs and returns the IPv4 address
// most of them agree on
func consensusIP() (net.IP, error) {
	consensus := externalip.NewConsensus(&externalip.ConsensusConfig{Timeout: Timeout}, nil)
	for _, uri := range APIURIs {
		if err := consensus.AddVoter(externalip.NewHTTPSource(uri), 1); err != nil {
			return nil, errors.Wrapf(err, "failed to add voter %s", uri)
		}
	}
	consensus.UseIPProtocol(4)
	ip, err := consensus.ExternalIP()
	if err != nil {
		return nil, errors.Wrap(err, "no consensus on public IP")
	}
	return ip, nil
}
