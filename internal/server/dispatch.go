package server

import (
	"github.com/1broseidon/winserv/internal/ipc"
)

// dispatch routes one decoded message to its handler. The returned value is
// the response payload; it is ignored for notifications.
func (s *Server) dispatch(c *ClientConnection, msg ipc.Message) (any, error) {
	switch m := msg.(type) {
	case *ipc.Greet:
		return s.handleGreet(c)

	// Menus
	case *ipc.CreateMenubar:
		return s.handleCreateMenubar(c)
	case *ipc.DestroyMenubar:
		return nil, s.handleDestroyMenubar(c, m)
	case *ipc.CreateMenu:
		return s.handleCreateMenu(c, m)
	case *ipc.DestroyMenu:
		return nil, s.handleDestroyMenu(c, m)
	case *ipc.AddMenuToMenubar:
		return nil, s.handleAddMenuToMenubar(c, m)
	case *ipc.SetWindowMenubar:
		return nil, s.handleSetWindowMenubar(c, m)
	case *ipc.AddMenuItem:
		return nil, s.handleAddMenuItem(c, m)
	case *ipc.AddMenuSeparator:
		return nil, s.handleAddMenuSeparator(c, m)
	case *ipc.UpdateMenuItem:
		return nil, s.handleUpdateMenuItem(c, m)
	case *ipc.PopupMenu:
		return nil, s.handlePopupMenu(c, m)
	case *ipc.DismissMenu:
		return nil, s.handleDismissMenu(c, m)

	// Windows
	case *ipc.CreateWindow:
		return s.handleCreateWindow(c, m)
	case *ipc.DestroyWindow:
		return s.handleDestroyWindow(c, m)
	case *ipc.SetWindowTitle:
		return nil, s.handleSetWindowTitle(c, m)
	case *ipc.GetWindowTitle:
		return s.handleGetWindowTitle(c, m)
	case *ipc.IsMaximized:
		return s.handleIsMaximized(c, m)
	case *ipc.SetWindowRect:
		return s.handleSetWindowRect(c, m)
	case *ipc.GetWindowRect:
		return s.handleGetWindowRect(c, m)
	case *ipc.SetWindowMinimumSize:
		return nil, s.handleSetWindowMinimumSize(c, m)
	case *ipc.GetWindowMinimumSize:
		return s.handleGetWindowMinimumSize(c, m)
	case *ipc.GetAppletRectOnScreen:
		return s.handleGetAppletRectOnScreen(c, m)
	case *ipc.StartWindowResize:
		return nil, s.handleStartWindowResize(c, m)
	case *ipc.SetGlobalCursorTracking:
		return nil, s.handleSetGlobalCursorTracking(c, m)
	case *ipc.SetWindowOpacity:
		return nil, s.handleSetWindowOpacity(c, m)
	case *ipc.SetWindowHasAlphaChannel:
		return nil, s.handleSetWindowHasAlphaChannel(c, m)
	case *ipc.SetWindowAlphaHitThreshold:
		return nil, s.handleSetWindowAlphaHitThreshold(c, m)
	case *ipc.SetWindowBackingStore:
		return nil, s.handleSetWindowBackingStore(c, m)
	case *ipc.MoveWindowToFront:
		return nil, s.handleMoveWindowToFront(c, m)
	case *ipc.SetFullscreen:
		return nil, s.handleSetFullscreen(c, m)
	case *ipc.SetFrameless:
		return nil, s.handleSetFrameless(c, m)
	case *ipc.SetWindowIconBitmap:
		return nil, s.handleSetWindowIconBitmap(c, m)
	case *ipc.SetWindowCursor:
		return nil, s.handleSetWindowCursor(c, m)
	case *ipc.SetWindowCustomCursor:
		return nil, s.handleSetWindowCustomCursor(c, m)
	case *ipc.SetWindowBaseSizeAndSizeIncrement:
		return nil, s.handleSetWindowBaseSizeAndSizeIncrement(c, m)
	case *ipc.SetWindowResizeAspectRatio:
		return nil, s.handleSetWindowResizeAspectRatio(c, m)
	case *ipc.SetWindowProgress:
		return nil, s.handleSetWindowProgress(c, m)
	case *ipc.StartDrag:
		return s.handleStartDrag(c, m)

	// Painting
	case *ipc.InvalidateRect:
		return nil, s.handleInvalidateRect(c, m)
	case *ipc.DidFinishPainting:
		return nil, s.handleDidFinishPainting(c, m)
	case *ipc.EnableDisplayLink:
		c.displayLink = true
		return nil, nil
	case *ipc.DisableDisplayLink:
		c.displayLink = false
		return nil, nil

	// System
	case *ipc.GetGlobalCursorPosition:
		return ipc.GetGlobalCursorPositionResponse{Position: s.desktop.CursorPosition()}, nil
	case *ipc.SetMouseAcceleration:
		return nil, classify(m.Op(), s.desktop.SetMouseAcceleration(m.Factor))
	case *ipc.GetMouseAcceleration:
		return ipc.GetMouseAccelerationResponse{Factor: s.desktop.MouseAcceleration()}, nil
	case *ipc.SetScrollStepSize:
		return nil, classify(m.Op(), s.desktop.SetScrollStep(m.StepSize))
	case *ipc.GetScrollStepSize:
		return ipc.GetScrollStepSizeResponse{StepSize: s.desktop.ScrollStep()}, nil
	case *ipc.SetDoubleClickSpeed:
		return nil, classify(m.Op(), s.desktop.SetDoubleClickMillis(m.SpeedMillis))
	case *ipc.GetDoubleClickSpeed:
		return ipc.GetDoubleClickSpeedResponse{SpeedMillis: s.desktop.DoubleClickMillis()}, nil
	case *ipc.GetScreenBitmap:
		return ipc.GetScreenBitmapResponse{Bitmap: s.bridge.Snapshot()}, nil
	case *ipc.AsyncSetWallpaper:
		s.handleAsyncSetWallpaper(c, m)
		return nil, nil
	case *ipc.SetBackgroundColor:
		return nil, s.handleSetBackgroundColor(m)
	case *ipc.SetWallpaperMode:
		return nil, s.handleSetWallpaperMode(m)
	case *ipc.GetWallpaper:
		return ipc.GetWallpaperResponse{Path: s.desktop.WallpaperPath()}, nil
	case *ipc.SetResolution:
		return s.handleSetResolution(m)
	case *ipc.SetSystemTheme:
		return nil, s.handleSetSystemTheme(m)
	case *ipc.GetSystemTheme:
		theme := s.desktop.Theme()
		return ipc.GetSystemThemeResponse{Name: theme.Name, Path: theme.Path}, nil
	case *ipc.RefreshSystemTheme:
		s.broadcastTheme()
		return nil, nil
	case *ipc.Pong:
		c.monitor.Ack()
		return nil, nil
	}
	return nil, violationf(msg.Op(), "unhandled message %T", msg)
}
