//go:build !linux

package localaddr

import (
	"errors"
	"net"
)

func lookupOutboundRoute(net.IP) (net.IP, int, error) {
	return nil, 0, errors.New("netlink route lookup unsupported on this platform")
}
