// Package reversedns resolves PTR names of IP addresses
package reversedns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// lookupTimeout bounds a PTR lookup when the caller's context has a later
// deadline
const lookupTimeout = 5 * time.Second

// LookupAddrFn is defined as variable to ease testing
var LookupAddrFn = net.DefaultResolver.LookupAddr

// GetReverseDnsForIP returns the PTR names of ip
func GetReverseDnsForIP(ctx context.Context, ip net.IP) ([]string, error) {
	if ip == nil {
		return nil, errors.New("invalid nil IP address")
	}
	return GetReverseDns(ctx, ip.String())
}

// GetReverseDns returns the PTR names of ipAddr without their trailing dot,
// deduplicated, in resolver order.
func GetReverseDns(ctx context.Context, ipAddr string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()
	rawNames, err := LookupAddrFn(ctx, ipAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to get reverse dns: %w", err)
	}

	names := make([]string, 0, len(rawNames))
	seen := make(map[string]struct{}, len(rawNames))
	for _, raw := range rawNames {
		name := strings.TrimRight(raw, ".")
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names, nil
}
