//go:build !windows

package pinger

import "golang.org/x/sys/unix"

// defaultPrivileged uses raw ICMP sockets when running as root and
// unprivileged datagram sockets otherwise.
func defaultPrivileged() bool {
	return unix.Geteuid() == 0
}
