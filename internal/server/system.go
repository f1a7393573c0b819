package server

import (
	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/gfx"
	"github.com/1broseidon/winserv/internal/ipc"
)

func (s *Server) handleGreet(c *ClientConnection) (any, error) {
	if c.greeted {
		return nil, violationf(ipc.OpGreet, "client %d already greeted", c.id)
	}
	c.greeted = true
	return ipc.GreetResponse{
		ClientID:    c.id,
		ScreenRect:  s.desktop.ScreenRect(),
		SystemTheme: s.desktop.Theme().Name,
	}, nil
}

// handleAsyncSetWallpaper decodes the image off the loop and installs it
// back on the loop. The requester is told the outcome if it is still
// connected by then.
func (s *Server) handleAsyncSetWallpaper(c *ClientConnection, m *ipc.AsyncSetWallpaper) {
	path := m.Path
	if path == "" {
		s.desktop.SetWallpaper("", nil)
		c.send(ipc.AsyncSetWallpaperFinishedEvent{Success: true})
		return
	}
	clientID := c.id
	go func() {
		img, err := desktop.LoadWallpaper(path)
		s.loop.Post(func() {
			if err == nil {
				s.desktop.SetWallpaper(path, img)
			} else {
				s.logger.Warn("failed to load wallpaper", "path", path, "error", err)
			}
			conn, ok := s.directory.Lookup(clientID)
			if !ok {
				return
			}
			ev := ipc.AsyncSetWallpaperFinishedEvent{Success: err == nil, Path: path}
			if err != nil {
				ev.Error = err.Error()
			}
			conn.send(ev)
		})
	}()
}

func (s *Server) handleSetBackgroundColor(m *ipc.SetBackgroundColor) error {
	color, err := gfx.ParseColor(m.Color)
	if err != nil {
		return invalidf(m.Op(), "%v", err)
	}
	s.desktop.SetBackgroundColor(color)
	return nil
}

func (s *Server) handleSetWallpaperMode(m *ipc.SetWallpaperMode) error {
	return classify(m.Op(), s.desktop.SetWallpaperMode(compositor.WallpaperMode(m.Mode)))
}

func (s *Server) handleSetResolution(m *ipc.SetResolution) (any, error) {
	changed, err := s.desktop.SetResolution(m.Resolution)
	if err != nil {
		return nil, classify(m.Op(), err)
	}
	if changed {
		s.NotifyScreenRectChanged(s.desktop.ScreenRect())
	}
	return ipc.SetResolutionResponse{Resolution: s.desktop.ScreenRect().Size()}, nil
}

func (s *Server) handleSetSystemTheme(m *ipc.SetSystemTheme) error {
	if err := s.desktop.SetTheme(m.Name, m.Path); err != nil {
		return classify(m.Op(), err)
	}
	s.broadcastTheme()
	return nil
}
