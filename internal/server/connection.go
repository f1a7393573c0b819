package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/liveness"
	"github.com/1broseidon/winserv/internal/wm"
)

// DefaultEventQueueSize bounds the per-connection outbound event queue.
const DefaultEventQueueSize = 256

// ClientConnection is one attached application process and the resources it
// owns. Everything but the outbound queue is owned by the dispatch loop.
type ClientConnection struct {
	id          int
	server      *Server
	conn        ipc.Conn
	logger      *slog.Logger
	connectedAt time.Time

	registry    *wm.Registry
	monitor     *liveness.Monitor
	displayLink bool
	greeted     bool
	closed      bool

	outbound  chan []byte
	closing   chan struct{}
	closeOnce sync.Once
}

func newClientConnection(s *Server, conn ipc.Conn) *ClientConnection {
	return &ClientConnection{
		server:      s,
		conn:        conn,
		logger:      s.logger,
		connectedAt: time.Now(),
		registry:    wm.NewRegistry(),
		outbound:    make(chan []byte, s.eventQueueSize),
		closing:     make(chan struct{}),
	}
}

func (c *ClientConnection) ID() int { return c.id }

// Registry returns the connection's resources. Loop only.
func (c *ClientConnection) Registry() *wm.Registry { return c.registry }

// IsResponsive reports the monitor state. Loop only.
func (c *ClientConnection) IsResponsive() bool { return c.monitor.IsResponsive() }

// send queues an event for the writer goroutine. Events are dropped when the
// queue is full so a stalled client cannot block the loop.
func (c *ClientConnection) send(msg ipc.Message) {
	if c.closed {
		return
	}
	ev, err := ipc.NewEvent(msg)
	if err != nil {
		c.logger.Error("failed to build event", "op", msg.Op(), "error", err)
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error("failed to marshal event", "op", msg.Op(), "error", err)
		return
	}
	select {
	case c.outbound <- data:
		c.server.metrics.EventSent(string(msg.Op()))
	default:
		c.server.metrics.EventDropped(string(msg.Op()))
		c.logger.Debug("event queue full, dropping event", "op", msg.Op())
	}
}

// RequestPaint implements compositor.PaintSink for the connection's windows.
func (c *ClientConnection) RequestPaint(windowID int32, ignoreOcclusion bool) {
	w, ok := c.registry.Windows.Lookup(windowID)
	if !ok {
		// Destroyed since the paint was scheduled.
		return
	}
	if !ignoreOcclusion && c.server.bridge.IsOccluded(windowID) {
		return
	}
	r := w.TakePendingPaint()
	if r.IsEmpty() {
		r = gfx.Rect{}.WithSize(w.Rect().Size())
	}
	if r.IsEmpty() {
		return
	}
	c.send(ipc.PaintEvent{
		WindowID:   windowID,
		WindowSize: w.Rect().Size(),
		Rects:      []gfx.Rect{r},
	})
}

// shutdown stops the writer and closes the transport. Safe from any
// goroutine.
func (c *ClientConnection) shutdown() {
	c.closeOnce.Do(func() {
		close(c.closing)
		c.conn.Close()
	})
}

func (c *ClientConnection) writeLoop() {
	defer c.server.wg.Done()
	for {
		select {
		case <-c.closing:
			return
		case data := <-c.outbound:
			if err := c.conn.WriteFrame(data); err != nil {
				c.logger.Debug("event write failed", "error", err)
				c.shutdown()
				return
			}
		}
	}
}

// readLoop reads requests in order and runs each to completion on the
// dispatch loop before reading the next one.
func (c *ClientConnection) readLoop() {
	defer c.server.wg.Done()
	for {
		data, err := c.conn.ReadFrame()
		if err != nil {
			c.disconnect(readErrorReason(err))
			return
		}

		var (
			resp  *ipc.Response
			fatal error
		)
		err = c.server.loop.Call(context.Background(), func() {
			resp, fatal = c.server.handleFrame(c, data)
		})
		if err != nil {
			// The loop is gone; nothing can be torn down anymore.
			c.shutdown()
			return
		}
		if fatal != nil {
			return
		}
		if resp == nil {
			continue
		}
		out, err := resp.Marshal()
		if err != nil {
			c.logger.Error("failed to marshal response", "op", resp.Op, "error", err)
			continue
		}
		if err := c.conn.WriteFrame(out); err != nil {
			c.disconnect("write_error")
			return
		}
	}
}

// disconnect tears the connection down on the loop.
func (c *ClientConnection) disconnect(reason string) {
	err := c.server.loop.Call(context.Background(), func() {
		c.server.teardown(c, reason)
	})
	if err != nil {
		c.shutdown()
	}
}

func readErrorReason(err error) string {
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		return "eof"
	case errors.Is(err, ipc.ErrFrameTooLarge):
		return "protocol_violation"
	default:
		return "read_error"
	}
}

// resolve classifies id against one of the connection's tables: live ids
// resolve, retired ids are NotFound, anything else is a ProtocolViolation.
func resolve[T any](t *wm.Table[T], op ipc.Op, id int32) (T, error) {
	var zero T
	switch t.Ownership(id) {
	case wm.Live:
		v, _ := t.Lookup(id)
		return v, nil
	case wm.Retired:
		return zero, notFoundf(op, "%s %d no longer exists", t.Kind(), id)
	}
	return zero, violationf(op, "%s %d is not owned by this client", t.Kind(), id)
}

func (c *ClientConnection) window(op ipc.Op, id int32) (*wm.Window, error) {
	return resolve(c.registry.Windows, op, id)
}

func (c *ClientConnection) menu(op ipc.Op, id int32) (*wm.Menu, error) {
	return resolve(c.registry.Menus, op, id)
}

func (c *ClientConnection) menubar(op ipc.Op, id int32) (*wm.Menubar, error) {
	return resolve(c.registry.Menubars, op, id)
}
