// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-present Datadog, Inc.

package localaddr

import (
	"fmt"
	"net"
)

var (
	dial             = net.Dial
	interfaceByIndex = net.InterfaceByIndex
	interfaces       = net.Interfaces
)

func udpIPFromConn(conn net.Conn) (net.IP, error) {
	localAddr := conn.LocalAddr()

	localUDPAddr, ok := localAddr.(*net.UDPAddr)
	if !ok {
		return nil, fmt.Errorf("invalid address type for %s: want %T, got %T", localAddr, &net.UDPAddr{}, localAddr)
	}

	return localUDPAddr.IP, nil
}

// normalizeLoopbackSource forces a loopback source for a loopback
// destination. On macOS a dial to loopback may report a non-loopback address.
func normalizeLoopbackSource(destIP, src net.IP) net.IP {
	if destIP.IsLoopback() && src != nil && !src.IsLoopback() {
		if destIP.To4() != nil {
			return net.IPv4(127, 0, 0, 1)
		}
		return net.IPv6loopback
	}
	return src
}

// interfaceName resolves ifIndex when known, otherwise looks for the
// interface that carries src
func interfaceName(ifIndex int, src net.IP) (string, error) {
	if ifIndex > 0 {
		iface, err := interfaceByIndex(ifIndex)
		if err == nil {
			return iface.Name, nil
		}
	}

	ifaces, err := interfaces()
	if err != nil {
		return "", err
	}
	for _, iface := range ifaces {
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipNet, ok := addr.(*net.IPNet); ok && ipNet.IP.Equal(src) {
				return iface.Name, nil
			}
		}
	}
	return "", fmt.Errorf("no interface carries %s", src)
}
