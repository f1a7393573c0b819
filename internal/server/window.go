package server

import (
	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ids"
	"github.com/1broseidon/winserv/internal/ipc"
	"github.com/1broseidon/winserv/internal/wm"
)

const (
	cascadeStep    = 22
	cascadeOriginX = 20
	cascadeOriginY = desktop.AppletStripHeight + 20
)

func attrsOf(w *wm.Window) compositor.WindowAttributes {
	return compositor.WindowAttributes{
		ClientID:   w.ClientID(),
		Type:       string(w.Type()),
		Title:      w.Title(),
		Rect:       w.Rect(),
		Opacity:    w.Opacity(),
		HasAlpha:   w.HasAlphaChannel(),
		Frameless:  w.IsFrameless(),
		Fullscreen: w.IsFullscreen(),
		Modal:      w.IsModal(),
	}
}

func aspectRatio(r *ipc.AspectRatio) *wm.AspectRatio {
	if r == nil {
		return nil
	}
	return &wm.AspectRatio{Numerator: r.Numerator, Denominator: r.Denominator}
}

func (s *Server) syncWindow(w *wm.Window) {
	s.bridge.UpdateWindow(w.ID(), attrsOf(w))
}

// redecorated pushes a change to what is drawn for w and damages its area.
func (s *Server) redecorated(w *wm.Window) {
	s.syncWindow(w)
	s.bridge.InvalidateRegion(w.Rect())
}

// moved pushes a geometry change to the compositor and damages both the old
// and the new screen area.
func (s *Server) moved(w *wm.Window, old gfx.Rect) {
	s.syncWindow(w)
	s.bridge.InvalidateRegion(old)
	s.bridge.InvalidateRegion(w.Rect())
	if w.Type() == wm.WindowTypeApplet {
		s.desktop.Applets().Add(w.ID(), w.Rect().Size())
	}
}

// nextCascadePosition places an auto-positioned window diagonally below the
// previous one, starting over when it would leave the screen.
func (s *Server) nextCascadePosition(size gfx.Size) gfx.Point {
	screen := s.desktop.ScreenRect()
	for attempt := 0; attempt < 2; attempt++ {
		p := gfx.Point{
			X: screen.X + cascadeOriginX + s.cascade*cascadeStep,
			Y: screen.Y + cascadeOriginY + s.cascade*cascadeStep,
		}
		if p.X+size.Width <= screen.Right() && p.Y+size.Height <= screen.Bottom() {
			s.cascade++
			return p
		}
		s.cascade = 0
	}
	s.cascade = 1
	return gfx.Point{X: screen.X + cascadeOriginX, Y: screen.Y + cascadeOriginY}
}

func (s *Server) handleCreateWindow(c *ClientConnection, m *ipc.CreateWindow) (any, error) {
	op := m.Op()
	if m.ParentWindowID != 0 {
		if _, err := c.window(op, m.ParentWindowID); err != nil {
			return nil, err
		}
	}
	opacity := 1.0
	if m.Opacity != nil {
		opacity = *m.Opacity
	}
	attrs := wm.Attributes{
		Type:              wm.WindowType(m.Type),
		Title:             m.Title,
		Rect:              m.Rect,
		AutoPosition:      m.AutoPosition,
		MinimumSize:       m.MinimumSize,
		BaseSize:          m.BaseSize,
		SizeIncrement:     m.SizeIncrement,
		ResizeAspectRatio: aspectRatio(m.ResizeAspectRatio),
		Opacity:           opacity,
		HasAlphaChannel:   m.HasAlphaChannel,
		AlphaHitThreshold: m.AlphaHitThreshold,
		Resizable:         m.Resizable,
		Fullscreen:        m.Fullscreen,
		Frameless:         m.Frameless,
		Modal:             m.Modal,
		Accessory:         m.Accessory,
		ParentID:          m.ParentWindowID,
	}

	// Validate before spending an id.
	if _, err := wm.NewWindow(ids.Base(ids.Window), c.id, attrs); err != nil {
		return nil, classify(op, err)
	}
	if attrs.AutoPosition {
		p := s.nextCascadePosition(attrs.Rect.Size().ExpandedTo(attrs.MinimumSize))
		attrs.Rect.X, attrs.Rect.Y = p.X, p.Y
	}

	id, err := s.ids.Next(ids.Window)
	if err != nil {
		return nil, invalidf(op, "%v", err)
	}
	w, err := wm.NewWindow(id, c.id, attrs)
	if err != nil {
		return nil, classify(op, err)
	}
	if attrs.Fullscreen {
		w.SetFullscreen(true, s.desktop.ScreenRect())
	}
	if err := c.registry.Windows.Insert(id, w); err != nil {
		return nil, invalidf(op, "%v", err)
	}
	if err := s.bridge.RegisterWindow(id, attrsOf(w), c); err != nil {
		c.registry.Windows.Remove(id)
		return nil, invalidf(op, "%v", err)
	}
	if w.Type() == wm.WindowTypeApplet {
		s.desktop.Applets().Add(id, w.Rect().Size())
	}
	s.bridge.InvalidateRegion(w.Rect())
	s.metrics.ResourceCreated(ids.Window.String())
	c.logger.Debug("window created", "window_id", id, "type", w.Type(), "rect", w.Rect())
	return ipc.CreateWindowResponse{WindowID: id}, nil
}

func (s *Server) handleDestroyWindow(c *ClientConnection, m *ipc.DestroyWindow) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	var destroyed []int32
	s.destroyWindowTree(c, w, &destroyed)
	return ipc.DestroyWindowResponse{DestroyedWindowIDs: destroyed}, nil
}

// destroyWindowTree destroys w after every window parented to it, appending
// each destroyed id.
func (s *Server) destroyWindowTree(c *ClientConnection, w *wm.Window, destroyed *[]int32) {
	var children []*wm.Window
	c.registry.Windows.ForEach(func(child *wm.Window) wm.IterationDecision {
		if child.ParentID() == w.ID() {
			children = append(children, child)
		}
		return wm.Continue
	})
	for _, child := range children {
		if _, ok := c.registry.Windows.Lookup(child.ID()); ok {
			s.destroyWindowTree(c, child, destroyed)
		}
	}
	s.destroyWindow(c, w)
	*destroyed = append(*destroyed, w.ID())
}

// destroyWindow removes w from its registry and from the compositor.
func (s *Server) destroyWindow(c *ClientConnection, w *wm.Window) {
	if _, ok := c.registry.Windows.Remove(w.ID()); !ok {
		return
	}
	c.registry.SetWindowMenubar(w, nil)
	s.desktop.Applets().Remove(w.ID())
	s.bridge.UnregisterWindow(w.ID())
	s.bridge.InvalidateRegion(w.Rect())
	s.metrics.ResourceDestroyed(ids.Window.String())
	c.logger.Debug("window destroyed", "window_id", w.ID())
}

func (s *Server) handleSetWindowTitle(c *ClientConnection, m *ipc.SetWindowTitle) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	w.SetTitle(m.Title)
	s.redecorated(w)
	return nil
}

func (s *Server) handleGetWindowTitle(c *ClientConnection, m *ipc.GetWindowTitle) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	return ipc.GetWindowTitleResponse{Title: w.Title()}, nil
}

func (s *Server) handleIsMaximized(c *ClientConnection, m *ipc.IsMaximized) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	return ipc.IsMaximizedResponse{Maximized: w.IsMaximized()}, nil
}

func (s *Server) handleSetWindowRect(c *ClientConnection, m *ipc.SetWindowRect) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	old := w.Rect()
	applied, err := w.SetRect(m.Rect)
	if err != nil {
		return nil, classify(m.Op(), err)
	}
	if applied != old {
		s.moved(w, old)
	}
	return ipc.SetWindowRectResponse{Rect: applied}, nil
}

func (s *Server) handleGetWindowRect(c *ClientConnection, m *ipc.GetWindowRect) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	return ipc.GetWindowRectResponse{Rect: w.Rect()}, nil
}

func (s *Server) handleSetWindowMinimumSize(c *ClientConnection, m *ipc.SetWindowMinimumSize) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	old := w.Rect()
	grew, err := w.SetMinimumSize(m.Size)
	if err != nil {
		return classify(m.Op(), err)
	}
	if grew {
		s.moved(w, old)
		c.send(ipc.WindowResizedEvent{WindowID: w.ID(), Rect: w.Rect()})
	}
	return nil
}

func (s *Server) handleGetWindowMinimumSize(c *ClientConnection, m *ipc.GetWindowMinimumSize) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	return ipc.GetWindowMinimumSizeResponse{Size: w.MinimumSize()}, nil
}

func (s *Server) handleGetAppletRectOnScreen(c *ClientConnection, m *ipc.GetAppletRectOnScreen) (any, error) {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return nil, err
	}
	if w.Type() != wm.WindowTypeApplet {
		return nil, invalidf(m.Op(), "window %d is not an applet", w.ID())
	}
	r, ok := s.desktop.Applets().Rect(w.ID(), s.desktop.ScreenRect())
	if !ok {
		return nil, notFoundf(m.Op(), "applet %d is not on screen", w.ID())
	}
	return ipc.GetAppletRectOnScreenResponse{Rect: r}, nil
}

func (s *Server) handleStartWindowResize(c *ClientConnection, m *ipc.StartWindowResize) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	if !w.IsResizable() || w.IsFullscreen() {
		return invalidf(m.Op(), "window %d cannot be resized", w.ID())
	}
	s.router.BeginResize(w.ID())
	return nil
}

func (s *Server) handleSetGlobalCursorTracking(c *ClientConnection, m *ipc.SetGlobalCursorTracking) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	w.SetGlobalCursorTracking(m.Enabled)
	return nil
}

func (s *Server) handleSetWindowOpacity(c *ClientConnection, m *ipc.SetWindowOpacity) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	if err := w.SetOpacity(m.Opacity); err != nil {
		return classify(m.Op(), err)
	}
	s.syncWindow(w)
	s.bridge.InvalidateRegion(w.Rect())
	return nil
}

func (s *Server) handleSetWindowHasAlphaChannel(c *ClientConnection, m *ipc.SetWindowHasAlphaChannel) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	w.SetHasAlphaChannel(m.HasAlphaChannel)
	s.syncWindow(w)
	s.bridge.InvalidateRegion(w.Rect())
	return nil
}

func (s *Server) handleSetWindowAlphaHitThreshold(c *ClientConnection, m *ipc.SetWindowAlphaHitThreshold) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	return classify(m.Op(), w.SetAlphaHitThreshold(m.Threshold))
}

func (s *Server) handleSetWindowBackingStore(c *ClientConnection, m *ipc.SetWindowBackingStore) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	bs := &wm.BackingStore{BufferID: m.BufferID, HasAlpha: m.HasAlphaChannel, Bitmap: m.Bitmap}
	if err := w.SetBackingStore(bs); err != nil {
		return classify(m.Op(), err)
	}
	if w.HasAlphaChannel() != m.HasAlphaChannel {
		w.SetHasAlphaChannel(m.HasAlphaChannel)
		s.syncWindow(w)
	}
	if m.FlushImmediately && m.Bitmap != nil {
		full := gfx.Rect{}.WithSize(w.Rect().Size())
		s.bridge.PaintCompleted(w.ID(), m.Bitmap, []gfx.Rect{full})
	}
	return nil
}

func (s *Server) handleMoveWindowToFront(c *ClientConnection, m *ipc.MoveWindowToFront) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	s.bridge.RaiseWindow(w.ID())
	s.bridge.InvalidateRegion(w.Rect())
	return nil
}

func (s *Server) handleSetFullscreen(c *ClientConnection, m *ipc.SetFullscreen) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	old := w.Rect()
	if !w.SetFullscreen(m.Fullscreen, s.desktop.ScreenRect()) {
		return nil
	}
	s.moved(w, old)
	if w.Rect() != old {
		c.send(ipc.WindowResizedEvent{WindowID: w.ID(), Rect: w.Rect()})
	}
	return nil
}

func (s *Server) handleSetFrameless(c *ClientConnection, m *ipc.SetFrameless) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	w.SetFrameless(m.Frameless)
	s.syncWindow(w)
	s.bridge.InvalidateRegion(w.Rect())
	return nil
}

func (s *Server) handleSetWindowIconBitmap(c *ClientConnection, m *ipc.SetWindowIconBitmap) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	if err := w.SetIcon(m.Icon); err != nil {
		return classify(m.Op(), err)
	}
	s.redecorated(w)
	return nil
}

func (s *Server) handleSetWindowCursor(c *ClientConnection, m *ipc.SetWindowCursor) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	if err := w.SetStandardCursor(wm.StandardCursor(m.Cursor)); err != nil {
		return classify(m.Op(), err)
	}
	s.redecorated(w)
	return nil
}

func (s *Server) handleSetWindowCustomCursor(c *ClientConnection, m *ipc.SetWindowCustomCursor) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	if err := w.SetCustomCursor(m.Cursor); err != nil {
		return classify(m.Op(), err)
	}
	s.redecorated(w)
	return nil
}

func (s *Server) handleSetWindowBaseSizeAndSizeIncrement(c *ClientConnection, m *ipc.SetWindowBaseSizeAndSizeIncrement) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	return classify(m.Op(), w.SetBaseSizeAndSizeIncrement(m.BaseSize, m.SizeIncrement))
}

func (s *Server) handleSetWindowResizeAspectRatio(c *ClientConnection, m *ipc.SetWindowResizeAspectRatio) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	return classify(m.Op(), w.SetResizeAspectRatio(aspectRatio(m.AspectRatio)))
}

func (s *Server) handleSetWindowProgress(c *ClientConnection, m *ipc.SetWindowProgress) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	var p *wm.Progress
	switch {
	case m.Progress != nil:
		p = &wm.Progress{Value: *m.Progress, Indeterminate: m.Indeterminate}
	case m.Indeterminate:
		p = &wm.Progress{Indeterminate: true}
	}
	if err := w.SetProgress(p); err != nil {
		return classify(m.Op(), err)
	}
	s.redecorated(w)
	return nil
}

func (s *Server) handleStartDrag(c *ClientConnection, m *ipc.StartDrag) (any, error) {
	if m.DragBitmap != nil {
		if err := m.DragBitmap.Validate(); err != nil {
			return nil, invalidf(m.Op(), "drag bitmap: %v", err)
		}
	}
	if s.dragOwner != 0 {
		return ipc.StartDragResponse{Started: false}, nil
	}
	started := s.router.BeginDrag(c.id, DragRequest{
		Text:     m.Text,
		MimeData: m.MimeData,
		Bitmap:   m.DragBitmap,
	})
	if started {
		s.dragOwner = c.id
	}
	return ipc.StartDragResponse{Started: started}, nil
}

func (s *Server) handleInvalidateRect(c *ClientConnection, m *ipc.InvalidateRect) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	dirty := false
	for _, r := range m.Rects {
		if !r.Size().IsValid() {
			return invalidf(m.Op(), "rect %s has a negative size", r)
		}
	}
	for _, r := range m.Rects {
		if w.RequestUpdate(r) {
			dirty = true
		}
	}
	if !dirty {
		return nil
	}
	if m.IgnoreOcclusion {
		c.RequestPaint(w.ID(), true)
		return nil
	}
	origin := w.Rect().Location()
	for _, r := range m.Rects {
		s.bridge.InvalidateRegion(r.Translated(origin))
	}
	return nil
}

func (s *Server) handleDidFinishPainting(c *ClientConnection, m *ipc.DidFinishPainting) error {
	w, err := c.window(m.Op(), m.WindowID)
	if err != nil {
		return err
	}
	var contents *gfx.Bitmap
	if bs := w.BackingStore(); bs != nil {
		contents = bs.Bitmap
	}
	s.bridge.PaintCompleted(w.ID(), contents, m.Rects)
	return nil
}
