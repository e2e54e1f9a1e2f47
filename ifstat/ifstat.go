// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package ifstat reads network interface addresses, link status and
// cumulative I/O counters from the operating system
package ifstat

import (
	"context"
	"net"

	"github.com/DataDog/datadog-netdiag/result"
)

// Snapshotter takes point-in-time snapshots of the local interfaces
type Snapshotter interface {
	Interfaces(ctx context.Context) (result.Interfaces, error)
	Counters(ctx context.Context) (result.IOCounters, error)
}

// Snapshot reads interface state from the host, or from the named network
// namespace when one is set (Linux only).
type Snapshot struct {
	namespace string
}

// New returns a Snapshot. An empty namespace reads the current namespace.
func New(namespace string) *Snapshot {
	return &Snapshot{namespace: namespace}
}

// Interfaces returns every interface keyed by name
func (s *Snapshot) Interfaces(ctx context.Context) (result.Interfaces, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readInterfaces(s.namespace)
}

// Counters returns the I/O counters summed over every interface
func (s *Snapshot) Counters(ctx context.Context) (result.IOCounters, error) {
	if err := ctx.Err(); err != nil {
		return result.IOCounters{}, err
	}
	return readCounters(s.namespace)
}

// toAddress converts an interface address. Broadcast is only derived for IPv4.
func toAddress(ipNet *net.IPNet, broadcast net.IP) result.Address {
	if ip4 := ipNet.IP.To4(); ip4 != nil {
		addr := result.Address{
			Family:  result.FamilyIPv4,
			Address: ip4.String(),
			Netmask: net.IP(maskTo4(ipNet.Mask)).String(),
		}
		if broadcast == nil {
			broadcast = broadcastFor(ip4, maskTo4(ipNet.Mask))
		}
		if broadcast != nil {
			addr.Broadcast = broadcast.String()
		}
		return addr
	}
	return result.Address{
		Family:  result.FamilyIPv6,
		Address: ipNet.IP.String(),
		Netmask: net.IP(ipNet.Mask).String(),
	}
}

func maskTo4(mask net.IPMask) net.IPMask {
	if len(mask) == net.IPv6len {
		return mask[12:]
	}
	return mask
}

// broadcastFor returns nil for /31 and /32 networks, which have no broadcast address
func broadcastFor(ip4 net.IP, mask net.IPMask) net.IP {
	if len(mask) != net.IPv4len {
		return nil
	}
	if ones, _ := mask.Size(); ones >= 31 {
		return nil
	}
	bcast := make(net.IP, net.IPv4len)
	for i := range bcast {
		bcast[i] = ip4[i] | ^mask[i]
	}
	return bcast
}

func linkStatus(flags net.Flags) result.LinkStatus {
	if flags&net.FlagUp != 0 {
		return result.LinkUp
	}
	return result.LinkDown
}
