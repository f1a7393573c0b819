package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/gfx"
)

const stateFullscreen = "_NET_WM_STATE_FULLSCREEN"

// netWindowType maps a server window type to its EWMH window type atom.
func netWindowType(t string) string {
	switch t {
	case "tooltip":
		return "_NET_WM_WINDOW_TYPE_TOOLTIP"
	case "notification":
		return "_NET_WM_WINDOW_TYPE_NOTIFICATION"
	case "applet":
		return "_NET_WM_WINDOW_TYPE_DOCK"
	case "desktop":
		return "_NET_WM_WINDOW_TYPE_DESKTOP"
	case "menu":
		return "_NET_WM_WINDOW_TYPE_POPUP_MENU"
	default:
		return "_NET_WM_WINDOW_TYPE_NORMAL"
	}
}

// clampedSize keeps X geometry valid: X windows cannot be zero-sized.
func clampedSize(r gfx.Rect) (uint16, uint16) {
	w, h := max(r.Width, 1), max(r.Height, 1)
	return uint16(min(w, 0xffff)), uint16(min(h, 0xffff))
}

// CreateWindow creates and maps a top-level window mirroring attrs.
func (c *Connection) CreateWindow(attrs compositor.WindowAttributes) (xproto.Window, error) {
	conn := c.XUtil.Conn()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	w, h := clampedSize(attrs.Rect)
	err = xproto.CreateWindowChecked(
		conn,
		0, // depth (CopyFromParent)
		wid,
		c.Root,
		int16(attrs.Rect.X), int16(attrs.Rect.Y),
		w, h,
		0, // border_width
		xproto.WindowClassInputOutput,
		xproto.Visualid(0), // CopyFromParent
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{0, uint32(xproto.EventMaskExposure)},
	).Check()
	if err != nil {
		return 0, err
	}

	c.applyAttributes(wid, compositor.WindowAttributes{Opacity: 1}, attrs)
	if attrs.Fullscreen {
		// Before mapping the WM reads the property directly.
		ewmh.WmStateSet(c.XUtil, wid, []string{stateFullscreen})
	}
	xproto.MapWindow(conn, wid)
	return wid, nil
}

// UpdateWindow pushes the attributes that differ between prev and next.
func (c *Connection) UpdateWindow(wid xproto.Window, prev, next compositor.WindowAttributes) {
	c.applyAttributes(wid, prev, next)
	if prev.Fullscreen != next.Fullscreen {
		action := ewmh.StateRemove
		if next.Fullscreen {
			action = ewmh.StateAdd
		}
		ewmh.WmStateReq(c.XUtil, wid, action, stateFullscreen)
	}
	if prev.Rect != next.Rect && !next.Fullscreen {
		c.MoveResizeWindow(wid, next.Rect)
	}
}

func (c *Connection) applyAttributes(wid xproto.Window, prev, next compositor.WindowAttributes) {
	if prev.Title != next.Title || prev.Type == "" {
		ewmh.WmNameSet(c.XUtil, wid, next.Title)
	}
	if prev.Type != next.Type {
		ewmh.WmWindowTypeSet(c.XUtil, wid, []string{netWindowType(next.Type)})
	}
	if prev.Opacity != next.Opacity {
		ewmh.WmWindowOpacitySet(c.XUtil, wid, next.Opacity)
	}
	if prev.Frameless != next.Frameless || prev.Type == "" {
		hints := &motif.Hints{Flags: motif.HintDecorations, Decoration: motif.DecorationAll}
		if next.Frameless {
			hints.Decoration = motif.DecorationNone
		}
		motif.WmHintsSet(c.XUtil, wid, hints)
	}
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(wid xproto.Window, r gfx.Rect) {
	w, h := clampedSize(r)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, wid, r.X, r.Y, int(w), int(h))
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, wid).MoveResize(r.X, r.Y, int(w), int(h))
	}
}

// RaiseWindow restacks the window above its siblings.
func (c *Connection) RaiseWindow(wid xproto.Window) {
	xwindow.New(c.XUtil, wid).Stack(xproto.StackModeAbove)
}

// DestroyWindow detaches event handlers and destroys the window.
func (c *Connection) DestroyWindow(wid xproto.Window) {
	xwindow.New(c.XUtil, wid).Destroy()
}
