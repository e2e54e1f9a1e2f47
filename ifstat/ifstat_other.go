//go:build !linux

package ifstat

import (
	"net"

	"github.com/DataDog/datadog-netdiag/result"
	"github.com/pkg/errors"
)

// ErrCountersUnsupported is returned where no counter source is implemented
var ErrCountersUnsupported = errors.New("interface counters are not supported on this platform")

func readInterfaces(namespace string) (result.Interfaces, error) {
	if namespace != "" {
		return nil, errors.New("network namespaces are only supported on linux")
	}
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list interfaces")
	}
	interfaces := make(result.Interfaces, len(ifaces))
	for _, iface := range ifaces {
		info := result.InterfaceInfo{
			Name:      iface.Name,
			Addresses: []result.Address{},
			Status:    linkStatus(iface.Flags),
		}
		addrs, err := iface.Addrs()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list addresses of %s", iface.Name)
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			info.Addresses = append(info.Addresses, toAddress(ipNet, nil))
		}
		interfaces[iface.Name] = info
	}
	return interfaces, nil
}

func readCounters(string) (result.IOCounters, error) {
	return result.IOCounters{}, ErrCountersUnsupported
}
