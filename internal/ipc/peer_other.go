//go:build !linux

package ipc

import "net"

func describePeer(c *net.UnixConn) string {
	return c.RemoteAddr().String()
}
