package server

import (
	"context"
	"fmt"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/wm"
)

// ClientInfo is a point-in-time view of one connection.
type ClientInfo struct {
	ID          int       `json:"id"`
	Peer        string    `json:"peer"`
	ConnectedAt time.Time `json:"connected_at"`
	Greeted     bool      `json:"greeted"`
	Responsive  bool      `json:"responsive"`
	DisplayLink bool      `json:"display_link"`
	Windows     int       `json:"windows"`
	Menus       int       `json:"menus"`
	Menubars    int       `json:"menubars"`
}

// WindowInfo is a point-in-time view of one window.
type WindowInfo struct {
	ID         int32        `json:"id"`
	ClientID   int          `json:"client_id"`
	Type       string       `json:"type"`
	Title      string       `json:"title"`
	Rect       gfx.Rect     `json:"rect"`
	MinSize    gfx.Size     `json:"minimum_size"`
	Opacity    float64      `json:"opacity"`
	Fullscreen bool         `json:"fullscreen"`
	Maximized  bool         `json:"maximized"`
	Frameless  bool         `json:"frameless"`
	Modal      bool         `json:"modal"`
	ParentID   int32        `json:"parent_id,omitempty"`
	MenubarID  int32        `json:"menubar_id,omitempty"`
	Progress   *wm.Progress `json:"progress,omitempty"`
}

func (c *ClientConnection) info() ClientInfo {
	return ClientInfo{
		ID:          c.id,
		Peer:        c.conn.Describe(),
		ConnectedAt: c.connectedAt,
		Greeted:     c.greeted,
		Responsive:  c.monitor.IsResponsive(),
		DisplayLink: c.displayLink,
		Windows:     c.registry.Windows.Len(),
		Menus:       c.registry.Menus.Len(),
		Menubars:    c.registry.Menubars.Len(),
	}
}

func windowInfo(c *ClientConnection, w *wm.Window) WindowInfo {
	info := WindowInfo{
		ID:         w.ID(),
		ClientID:   w.ClientID(),
		Type:       string(w.Type()),
		Title:      w.Title(),
		Rect:       w.Rect(),
		MinSize:    w.MinimumSize(),
		Opacity:    w.Opacity(),
		Fullscreen: w.IsFullscreen(),
		Maximized:  w.IsMaximized(),
		Frameless:  w.IsFrameless(),
		Modal:      w.IsModal(),
		ParentID:   w.ParentID(),
		Progress:   w.Progress(),
	}
	if mb, ok := c.registry.WindowMenubar(w); ok {
		info.MenubarID = mb.ID()
	}
	return info
}

// Clients lists every connection in client id order.
func (s *Server) Clients(ctx context.Context) ([]ClientInfo, error) {
	var out []ClientInfo
	err := s.loop.Call(ctx, func() {
		out = make([]ClientInfo, 0, s.directory.Len())
		s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
			out = append(out, c.info())
			return wm.Continue
		})
	})
	return out, err
}

// Windows lists the windows of one client, or of every client when
// clientID is zero.
func (s *Server) Windows(ctx context.Context, clientID int) ([]WindowInfo, error) {
	var (
		out   []WindowInfo
		found = clientID == 0
	)
	err := s.loop.Call(ctx, func() {
		s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
			if clientID != 0 && c.id != clientID {
				return wm.Continue
			}
			found = true
			c.registry.Windows.ForEach(func(w *wm.Window) wm.IterationDecision {
				out = append(out, windowInfo(c, w))
				return wm.Continue
			})
			return wm.Continue
		})
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("client %d: %w", clientID, ErrNotFound)
	}
	return out, nil
}

// Window returns one window by id, whichever client owns it.
func (s *Server) Window(ctx context.Context, id int32) (WindowInfo, error) {
	var (
		info WindowInfo
		ok   bool
	)
	err := s.loop.Call(ctx, func() {
		var c *ClientConnection
		var w *wm.Window
		if c, w, ok = s.ownerOfWindow(id); ok {
			info = windowInfo(c, w)
		}
	})
	if err != nil {
		return WindowInfo{}, err
	}
	if !ok {
		return WindowInfo{}, fmt.Errorf("window %d: %w", id, ErrNotFound)
	}
	return info, nil
}
