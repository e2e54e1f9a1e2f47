//go:build linux

package localaddr

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func withRouteGet(t *testing.T, fn routeGetFunc) {
	originalRouteGet := routeGet
	t.Cleanup(func() { routeGet = originalRouteGet })
	routeGet = fn
}

func TestLookupOutboundRouteSkipsRoutesWithoutSource(t *testing.T) {
	prefSrc := net.ParseIP("192.0.2.10")
	withRouteGet(t, func(net.IP) ([]netlink.Route, error) {
		return []netlink.Route{
			{LinkIndex: 1},
			{LinkIndex: 3, Src: prefSrc},
		}, nil
	})

	src, ifIndex, err := lookupOutboundRoute(net.ParseIP("203.0.113.1"))
	require.NoError(t, err)
	assert.Equal(t, prefSrc, src)
	assert.Equal(t, 3, ifIndex)
}

func TestLookupOutboundRouteRejectsNegativeIndex(t *testing.T) {
	withRouteGet(t, func(net.IP) ([]netlink.Route, error) {
		return []netlink.Route{{LinkIndex: -1, Src: net.ParseIP("192.0.2.10")}}, nil
	})

	_, _, err := lookupOutboundRoute(net.ParseIP("203.0.113.1"))
	require.Error(t, err)
}

func TestForDestinationFallsBackWhenRouteFails(t *testing.T) {
	withRouteGet(t, func(net.IP) ([]netlink.Route, error) {
		return nil, errors.New("boom")
	})

	out, err := ForDestination(net.ParseIP("127.0.0.1"))
	require.NoError(t, err)
	assert.True(t, out.IP.IsLoopback())
	assert.NotEmpty(t, out.Interface)
}

func TestForDestinationUsesRouteSource(t *testing.T) {
	src := net.ParseIP("192.0.2.10")
	withRouteGet(t, func(net.IP) ([]netlink.Route, error) {
		return []netlink.Route{{LinkIndex: 7, Src: src}}, nil
	})
	originalByIndex := interfaceByIndex
	t.Cleanup(func() { interfaceByIndex = originalByIndex })
	interfaceByIndex = func(index int) (*net.Interface, error) {
		return &net.Interface{Index: index, Name: "wlan0"}, nil
	}

	out, err := ForDestination(net.ParseIP("203.0.113.1"))
	require.NoError(t, err)
	assert.Equal(t, src, out.IP)
	assert.Equal(t, "wlan0", out.Interface)
}
