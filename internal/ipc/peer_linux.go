package ipc

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// describePeer names the connecting process from its socket credentials.
func describePeer(c *net.UnixConn) string {
	raw, err := c.SyscallConn()
	if err != nil {
		return "unix"
	}
	var (
		cred    *unix.Ucred
		credErr error
	)
	err = raw.Control(func(fd uintptr) {
		cred, credErr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil || credErr != nil {
		return "unix"
	}
	return fmt.Sprintf("pid=%d uid=%d", cred.Pid, cred.Uid)
}
