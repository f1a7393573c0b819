// Package server is the per-client connection core: it owns every client's
// windows, menus and menubars, dispatches protocol messages with ownership
// validation and keeps the compositor in sync. All state is mutated on the
// dispatch loop.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/daemon"
	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ids"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/liveness"
	"github.com/1broseidon/winserv/internal/metrics"
	"github.com/1broseidon/winserv/internal/wm"
)

// Config holds the collaborators of a Server.
type Config struct {
	Loop    *daemon.Loop
	Bridge  compositor.Bridge
	Desktop *desktop.Desktop

	// Router receives live resize and drag requests. Default: NopRouter.
	Router InputRouter
	// Observer is told when clients stop or resume answering pings.
	Observer liveness.Observer
	// IDs allocates resource ids. Default: ids.Process().
	IDs     *ids.Allocator
	Metrics *metrics.Metrics
	Logger  *slog.Logger

	EventQueueSize int
}

type popupRef struct {
	clientID int
	menuID   int32
}

// Server owns the connection directory and routes messages to handlers.
type Server struct {
	loop     *daemon.Loop
	bridge   compositor.Bridge
	desktop  *desktop.Desktop
	router   InputRouter
	observer liveness.Observer
	ids      *ids.Allocator
	metrics  *metrics.Metrics
	logger   *slog.Logger

	eventQueueSize int

	directory    *Directory
	nextClientID int
	activePopup  *popupRef
	dragOwner    int
	cascade      int

	wg sync.WaitGroup
}

// New creates a server. Loop, Bridge and Desktop are required.
func New(cfg Config) (*Server, error) {
	if cfg.Loop == nil || cfg.Bridge == nil || cfg.Desktop == nil {
		return nil, errors.New("server requires a loop, a compositor bridge and a desktop")
	}
	s := &Server{
		loop:           cfg.Loop,
		bridge:         cfg.Bridge,
		desktop:        cfg.Desktop,
		router:         cfg.Router,
		observer:       cfg.Observer,
		ids:            cfg.IDs,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger,
		eventQueueSize: cfg.EventQueueSize,
		nextClientID:   1,
	}
	if s.router == nil {
		s.router = NopRouter{}
	}
	if s.observer == nil {
		s.observer = liveness.NopObserver{}
	}
	if s.ids == nil {
		s.ids = ids.Process()
	}
	if s.metrics == nil {
		s.metrics = metrics.New(metrics.WithRegistry(prometheus.NewRegistry()))
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.eventQueueSize <= 0 {
		s.eventQueueSize = DefaultEventQueueSize
	}
	s.logger = s.logger.With("component", "server")
	s.directory = newDirectory(s.destroyAll)

	s.loop.OnProbe(s.ProbeClients)
	s.loop.OnFrame(s.Frame)
	return s, nil
}

// Accept starts serving conn. It returns once the connection is registered.
func (s *Server) Accept(conn ipc.Conn) {
	c := newClientConnection(s, conn)
	if err := s.loop.Call(context.Background(), func() { s.register(c) }); err != nil {
		conn.Close()
		return
	}
	s.wg.Add(2)
	go c.writeLoop()
	go c.readLoop()
}

func (s *Server) register(c *ClientConnection) {
	c.id = s.nextClientID
	s.nextClientID++
	c.logger = s.logger.With("client_id", c.id)
	c.monitor = liveness.New(c.id, func() { c.send(ipc.PingEvent{}) }, s, c.logger)
	s.directory.Register(c)
	s.metrics.ClientConnected()
	log.Printf("client %d connected (%s)", c.id, c.conn.Describe())
}

// teardown cascades destruction of c's resources, removes it from the
// directory and closes its transport. Repeated calls are no-ops.
func (s *Server) teardown(c *ClientConnection, reason string) {
	if c.closed {
		return
	}
	c.closed = true
	s.directory.Unregister(c.id)
	if !c.monitor.IsResponsive() {
		s.metrics.ClientResponsive()
	}
	s.metrics.ClientDisconnected(reason)
	c.shutdown()
	log.Printf("client %d disconnected (%s)", c.id, reason)
}

// destroyAll runs before a connection leaves the directory.
func (s *Server) destroyAll(c *ClientConnection) {
	if s.activePopup != nil && s.activePopup.clientID == c.id {
		s.activePopup = nil
	}
	if s.dragOwner == c.id {
		s.dragOwner = 0
	}
	s.router.CancelInteractions(c.id)

	c.registry.Windows.ForEach(func(w *wm.Window) wm.IterationDecision {
		s.destroyWindow(c, w)
		return wm.Continue
	})
	c.registry.Menus.ForEach(func(m *wm.Menu) wm.IterationDecision {
		s.destroyMenu(c, m)
		return wm.Continue
	})
	c.registry.Menubars.ForEach(func(mb *wm.Menubar) wm.IterationDecision {
		s.destroyMenubar(c, mb)
		return wm.Continue
	})
}

// handleFrame decodes and dispatches one request. A non-nil error means the
// connection has been torn down.
func (s *Server) handleFrame(c *ClientConnection, data []byte) (*ipc.Response, error) {
	if c.closed {
		return nil, ErrProtocolViolation
	}
	req, err := ipc.ParseRequest(data)
	if err != nil {
		return nil, s.violation(c, violationf("", "%v", err))
	}
	msg, err := req.Decode()
	if err != nil {
		return nil, s.violation(c, violationf(req.Op, "%v", err))
	}

	_, span := s.metrics.StartRequest(context.Background(), c.id, string(req.Op))
	result, err := s.dispatchSafely(c, msg)
	st, label := status(err)
	span.End(label, err)

	if errors.Is(err, ErrProtocolViolation) {
		return nil, s.violation(c, err)
	}
	if !ipc.ExpectsResponse(req.Op) {
		if err != nil {
			c.logger.Debug("notification failed", "op", req.Op, "error", err)
		}
		return nil, nil
	}
	if err != nil {
		c.logger.Debug("request failed", "op", req.Op, "error", err)
		return ipc.NewErrorResponse(req.Op, st, err.Error()), nil
	}
	resp, err := ipc.NewOKResponse(req.Op, result)
	if err != nil {
		c.logger.Error("failed to build response", "op", req.Op, "error", err)
		return ipc.NewErrorResponse(req.Op, ipc.StatusInvalidArgument, err.Error()), nil
	}
	return resp, nil
}

func (s *Server) violation(c *ClientConnection, err error) error {
	c.logger.Warn("protocol violation, closing connection", "error", err)
	s.teardown(c, metrics.StatusProtocolViolation)
	return err
}

func (s *Server) dispatchSafely(c *ClientConnection, msg ipc.Message) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("handler panic recovered", "op", msg.Op(), "error", r)
			result, err = nil, violationf(msg.Op(), "handler panic: %v", r)
		}
	}()
	return s.dispatch(c, msg)
}

// ClientBecameUnresponsive implements liveness.Observer.
func (s *Server) ClientBecameUnresponsive(clientID int) {
	s.metrics.ClientUnresponsive()
	s.observer.ClientBecameUnresponsive(clientID)
}

// ClientBecameResponsive implements liveness.Observer.
func (s *Server) ClientBecameResponsive(clientID int) {
	s.metrics.ClientResponsive()
	s.observer.ClientBecameResponsive(clientID)
}

// ProbeClients advances every connection's responsiveness monitor. It runs
// on the loop's probe tick.
func (s *Server) ProbeClients() {
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		c.monitor.Tick()
		return wm.Continue
	})
}

// Frame produces one compositor frame and fans out display link ticks. It
// runs on the loop's frame tick.
func (s *Server) Frame(now time.Time) {
	frame := s.bridge.Compose(now)
	s.NotifyDisplayLink(frame)
}

// NotifyDisplayLink sends a frame notification to every connection that
// enabled its display link.
func (s *Server) NotifyDisplayLink(frame compositor.FrameInfo) {
	s.metrics.FrameProduced()
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		if c.displayLink {
			c.send(ipc.DisplayLinkNotificationEvent{Sequence: frame.Sequence, Time: frame.Time})
		}
		return wm.Continue
	})
}

// NotifyScreenRectChanged refits fullscreen windows to r and tells every
// connection about the new screen rect.
func (s *Server) NotifyScreenRectChanged(r gfx.Rect) {
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		c.registry.Windows.ForEach(func(w *wm.Window) wm.IterationDecision {
			if w.RefitFullscreen(r) {
				s.syncWindow(w)
				c.send(ipc.WindowResizedEvent{WindowID: w.ID(), Rect: w.Rect()})
			}
			return wm.Continue
		})
		c.send(ipc.ScreenRectChangedEvent{Rect: r})
		return wm.Continue
	})
}

func (s *Server) broadcastTheme() {
	theme := s.desktop.Theme()
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		c.send(ipc.UpdateSystemThemeEvent{Name: theme.Name, Path: theme.Path})
		return wm.Continue
	})
}

// Shutdown tears down every connection and waits for their goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.loop.Call(ctx, func() {
		s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
			s.teardown(c, "shutdown")
			return wm.Continue
		})
	})
	if errors.Is(err, daemon.ErrStopped) {
		// Nothing else touches the directory once the loop has exited.
		for _, c := range s.directory.conns {
			c.shutdown()
		}
	} else if err != nil {
		return fmt.Errorf("failed to close connections: %w", err)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
