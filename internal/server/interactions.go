package server

import (
	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/wm"
)

// DragRequest is the payload of a drag started by a client.
type DragRequest struct {
	Text     string
	MimeData map[string][]byte
	Bitmap   *gfx.Bitmap
}

// InputRouter owns live interaction with the pointer. Its methods are called
// on the dispatch loop and must not block.
type InputRouter interface {
	BeginResize(windowID int32)
	// BeginDrag reports whether the drag was started.
	BeginDrag(clientID int, req DragRequest) bool
	// CancelInteractions abandons any resize or drag driven by clientID.
	CancelInteractions(clientID int)
}

// NopRouter has no pointer; it never starts a drag.
type NopRouter struct{}

func (NopRouter) BeginResize(int32)               {}
func (NopRouter) BeginDrag(int, DragRequest) bool { return false }
func (NopRouter) CancelInteractions(int)          {}

// Interactions is the narrow surface through which the input router reports
// back. Every call is queued onto the dispatch loop, so it is safe from any
// goroutine.
type Interactions interface {
	ResizeProgress(windowID int32, rect gfx.Rect)
	SetMaximized(windowID int32, maximized bool)
	CursorMoved(p gfx.Point)
	ActivateMenuItem(menuID int32, identifier int)
	DismissPopup()
	DragFinished(clientID int, accepted bool)
}

// Interactions returns the callback surface for the input router.
func (s *Server) Interactions() Interactions { return interactions{s} }

type interactions struct{ s *Server }

func (i interactions) ResizeProgress(windowID int32, rect gfx.Rect) {
	i.s.loop.Post(func() { i.s.resizeProgress(windowID, rect) })
}

func (i interactions) SetMaximized(windowID int32, maximized bool) {
	i.s.loop.Post(func() { i.s.setMaximized(windowID, maximized) })
}

func (i interactions) CursorMoved(p gfx.Point) {
	i.s.loop.Post(func() { i.s.desktop.SetCursorPosition(p) })
}

func (i interactions) ActivateMenuItem(menuID int32, identifier int) {
	i.s.loop.Post(func() { i.s.activateMenuItem(menuID, identifier) })
}

func (i interactions) DismissPopup() {
	i.s.loop.Post(func() { i.s.dismissActivePopup() })
}

func (i interactions) DragFinished(clientID int, accepted bool) {
	i.s.loop.Post(func() { i.s.dragFinished(clientID, accepted) })
}

// ownerOfWindow finds the connection owning a window id.
func (s *Server) ownerOfWindow(id int32) (*ClientConnection, *wm.Window, bool) {
	var (
		owner *ClientConnection
		win   *wm.Window
	)
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		if w, ok := c.registry.Windows.Lookup(id); ok {
			owner, win = c, w
			return wm.Break
		}
		return wm.Continue
	})
	return owner, win, owner != nil
}

func (s *Server) ownerOfMenu(id int32) (*ClientConnection, *wm.Menu, bool) {
	var (
		owner *ClientConnection
		menu  *wm.Menu
	)
	s.directory.ForEach(func(c *ClientConnection) wm.IterationDecision {
		if m, ok := c.registry.Menus.Lookup(id); ok {
			owner, menu = c, m
			return wm.Break
		}
		return wm.Continue
	})
	return owner, menu, owner != nil
}

func (s *Server) resizeProgress(windowID int32, rect gfx.Rect) {
	c, w, ok := s.ownerOfWindow(windowID)
	if !ok {
		return
	}
	old := w.Rect()
	applied, err := w.SetRect(rect)
	if err != nil || applied == old {
		return
	}
	s.syncWindow(w)
	if w.Type() == wm.WindowTypeApplet {
		s.desktop.Applets().Add(w.ID(), applied.Size())
	}
	c.send(ipc.WindowResizedEvent{WindowID: windowID, Rect: applied})
}

func (s *Server) setMaximized(windowID int32, maximized bool) {
	c, w, ok := s.ownerOfWindow(windowID)
	if !ok || w.IsMaximized() == maximized {
		return
	}
	w.SetMaximized(maximized)
	c.send(ipc.WindowStateChangedEvent{WindowID: windowID, Maximized: maximized})
}

func (s *Server) activateMenuItem(menuID int32, identifier int) {
	c, m, ok := s.ownerOfMenu(menuID)
	if !ok {
		return
	}
	item, ok := m.Item(identifier)
	if !ok || !item.Enabled {
		return
	}
	if item.Checkable {
		if err := m.ToggleChecked(identifier); err != nil {
			s.logger.Warn("failed to toggle menu item", "client_id", c.id, "menu_id", menuID, "identifier", identifier, "error", err)
		}
	}
	c.send(ipc.MenuItemActivatedEvent{MenuID: menuID, Identifier: identifier})
	if s.activePopup != nil && s.activePopup.menuID == menuID {
		s.dismissActivePopup()
	}
}

// dismissActivePopup hides the process-wide popup, if any, and tells its
// owner.
func (s *Server) dismissActivePopup() {
	ref := s.activePopup
	if ref == nil {
		return
	}
	s.activePopup = nil
	c, ok := s.directory.Lookup(ref.clientID)
	if !ok {
		return
	}
	m, ok := c.registry.Menus.Lookup(ref.menuID)
	if !ok || !m.Dismiss() {
		return
	}
	c.send(ipc.MenuDismissedEvent{MenuID: ref.menuID})
}

func (s *Server) dragFinished(clientID int, accepted bool) {
	if s.dragOwner != clientID {
		return
	}
	s.dragOwner = 0
	c, ok := s.directory.Lookup(clientID)
	if !ok {
		return
	}
	if accepted {
		c.send(ipc.DragAcceptedEvent{})
	} else {
		c.send(ipc.DragCancelledEvent{})
	}
}
