//go:build windows

package pinger

// defaultPrivileged is always true on Windows, where pro-bing only supports
// privileged mode.
func defaultPrivileged() bool {
	return true
}
