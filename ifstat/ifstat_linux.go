//go:build linux

package ifstat

import (
	"github.com/DataDog/datadog-netdiag/log"
	"github.com/DataDog/datadog-netdiag/result"
	"github.com/pkg/errors"
	"github.com/vishvananda/netlink"
	"github.com/vishvananda/netns"
)

type linkSource interface {
	LinkList() ([]netlink.Link, error)
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

type openHandleFunc func(namespace string) (linkSource, func(), error)

// openHandle is declared as a variable to be replaced by a fake during tests
var openHandle openHandleFunc = openNetlinkHandle

func openNetlinkHandle(namespace string) (linkSource, func(), error) {
	if namespace == "" {
		h, err := netlink.NewHandle()
		if err != nil {
			return nil, nil, errors.Wrap(err, "failed to open netlink handle")
		}
		return h, h.Close, nil
	}

	ns, err := netns.GetFromName(namespace)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to open network namespace %q", namespace)
	}
	h, err := netlink.NewHandleAt(ns)
	if err != nil {
		ns.Close()
		return nil, nil, errors.Wrapf(err, "failed to open netlink handle in namespace %q", namespace)
	}
	return h, func() {
		h.Close()
		ns.Close()
	}, nil
}

func readInterfaces(namespace string) (result.Interfaces, error) {
	h, closeFn, err := openHandle(namespace)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	links, err := listLinks(h)
	if err != nil {
		return nil, err
	}

	interfaces := make(result.Interfaces, len(links))
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil {
			continue
		}
		info := result.InterfaceInfo{
			Name:      attrs.Name,
			Addresses: []result.Address{},
			Status:    linkStatus(attrs.Flags),
		}
		addrs, err := h.AddrList(link, netlink.FAMILY_ALL)
		if err != nil {
			log.Debugf("failed to list addresses of %s: %s", attrs.Name, err)
		}
		for _, addr := range addrs {
			if addr.IPNet == nil {
				continue
			}
			info.Addresses = append(info.Addresses, toAddress(addr.IPNet, addr.Broadcast))
		}
		interfaces[attrs.Name] = info
	}
	return interfaces, nil
}

func readCounters(namespace string) (result.IOCounters, error) {
	h, closeFn, err := openHandle(namespace)
	if err != nil {
		return result.IOCounters{}, err
	}
	defer closeFn()

	links, err := listLinks(h)
	if err != nil {
		return result.IOCounters{}, err
	}

	var counters result.IOCounters
	for _, link := range links {
		attrs := link.Attrs()
		if attrs == nil || attrs.Statistics == nil {
			continue
		}
		stats := attrs.Statistics
		counters.BytesSent += stats.TxBytes
		counters.BytesRecv += stats.RxBytes
		counters.PacketsSent += stats.TxPackets
		counters.PacketsRecv += stats.RxPackets
		counters.ErrorsIn += stats.RxErrors
		counters.ErrorsOut += stats.TxErrors
		counters.DropsIn += stats.RxDropped
		counters.DropsOut += stats.TxDropped
	}
	return counters, nil
}

// listLinks tolerates interrupted dumps, which still carry a usable link list
func listLinks(h linkSource) ([]netlink.Link, error) {
	links, err := h.LinkList()
	if errors.Is(err, netlink.ErrDumpInterrupted) {
		log.Debugf("link dump interrupted, using partial list of %d links", len(links))
		return links, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to list links")
	}
	return links, nil
}
