//go:build linux

package localaddr

import (
	"fmt"
	"net"

	"github.com/vishvananda/netlink"
)

type routeGetFunc func(dst net.IP) ([]netlink.Route, error)

var routeGet routeGetFunc = netlink.RouteGet

// lookupOutboundRoute asks the kernel which route a packet to destIP would
// take and returns its preferred source and link index
func lookupOutboundRoute(destIP net.IP) (net.IP, int, error) {
	routes, err := routeGet(destIP)
	if err != nil {
		return nil, 0, fmt.Errorf("netlink route lookup failed: %w", err)
	}
	for _, r := range routes {
		if len(r.Src) == 0 {
			continue
		}
		if r.LinkIndex < 0 {
			return nil, 0, fmt.Errorf("invalid link index %d", r.LinkIndex)
		}
		return r.Src, r.LinkIndex, nil
	}
	return nil, 0, fmt.Errorf("no valid route found for %s", destIP)
}
