package ipc

import (
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
)

// Listener accepts client connections on a unix socket.
type Listener struct {
	socketPath   string
	listener     *net.UnixListener
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// Listen creates the socket at socketPath, replacing a stale one, and
// restricts it to the current user.
func Listen(socketPath string) (*Listener, error) {
	// Remove existing socket if present
	os.Remove(socketPath)

	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: socketPath, Net: "unix"})
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	log.Printf("listening on %s", socketPath)
	return &Listener{socketPath: socketPath, listener: l}, nil
}

// Path returns the socket path.
func (l *Listener) Path() string { return l.socketPath }

// Serve accepts connections until Close, handing each to accept.
func (l *Listener) Serve(accept func(Conn)) error {
	for {
		c, err := l.listener.AcceptUnix()
		if err != nil {
			l.shutdownMu.Lock()
			closing := l.shuttingDown
			l.shutdownMu.Unlock()
			if closing || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("accept error: %v", err)
			continue
		}

		sc := &streamConn{conn: c, peer: describePeer(c)}
		accept(sc)
	}
}

// Close stops accepting and removes the socket file.
func (l *Listener) Close() error {
	l.shutdownMu.Lock()
	l.shuttingDown = true
	l.shutdownMu.Unlock()
	err := l.listener.Close()
	os.Remove(l.socketPath)
	return err
}
