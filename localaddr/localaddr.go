// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

// Package localaddr finds the local address and interface the host uses to
// reach a destination
package localaddr

import (
	"errors"
	"fmt"
	"net"

	"github.com/DataDog/datadog-netdiag/log"
)

// discardPort is only used to connect a UDP socket, nothing is sent to it
const discardPort = 9

// Outbound is the source side of the route toward a destination
type Outbound struct {
	IP        net.IP
	Interface string
}

// ForDestination returns the source address and interface of the route to
// destIP. The kernel routing table is asked first; if that fails a UDP
// socket is connected to destIP and its local address is used.
func ForDestination(destIP net.IP) (Outbound, error) {
	if destIP == nil {
		return Outbound{}, errors.New("destination IP is required")
	}

	src, ifIndex, err := lookupOutboundRoute(destIP)
	if err != nil {
		log.Debugf("route lookup for %s failed, falling back to UDP dial: %s", destIP, err)
		src, err = dialSource(destIP)
		if err != nil {
			return Outbound{}, fmt.Errorf("finding source address for %s: %w", destIP, err)
		}
		ifIndex = 0
	}
	src = normalizeLoopbackSource(destIP, src)

	name, err := interfaceName(ifIndex, src)
	if err != nil {
		log.Debugf("no interface found for %s: %s", src, err)
	}
	return Outbound{IP: src, Interface: name}, nil
}

func dialSource(destIP net.IP) (net.IP, error) {
	conn, err := dial("udp", net.JoinHostPort(destIP.String(), fmt.Sprint(discardPort)))
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return udpIPFromConn(conn)
}
