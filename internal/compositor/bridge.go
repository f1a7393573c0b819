// Package compositor defines the boundary between the connection core and the
// pixel compositor, and provides Scene, an in-memory compositor that keeps
// z-order, damage and window contents for headless operation and snapshots.
package compositor

import (
	"image"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
)

// WallpaperMode selects how the wallpaper image is laid out on screen.
type WallpaperMode string

const (
	WallpaperSimple  WallpaperMode = "simple"
	WallpaperTile    WallpaperMode = "tile"
	WallpaperCenter  WallpaperMode = "center"
	WallpaperStretch WallpaperMode = "stretch"
	WallpaperScaled  WallpaperMode = "scaled"
)

func (m WallpaperMode) Valid() bool {
	switch m {
	case WallpaperSimple, WallpaperTile, WallpaperCenter, WallpaperStretch, WallpaperScaled:
		return true
	}
	return false
}

// Background is what the compositor paints beneath all windows.
type Background struct {
	Color     gfx.Color
	Wallpaper image.Image
	Mode      WallpaperMode
}

// WindowAttributes is the compositor's view of a window.
type WindowAttributes struct {
	ClientID   int
	Type       string
	Title      string
	Rect       gfx.Rect
	Opacity    float64
	HasAlpha   bool
	Frameless  bool
	Fullscreen bool
	Modal      bool
}

// Opaque reports whether the window fully hides what lies beneath it.
func (a WindowAttributes) Opaque() bool {
	return a.Opacity >= 1 && !a.HasAlpha
}

// FrameInfo describes one produced frame.
type FrameInfo struct {
	Sequence uint64    `json:"sequence"`
	Time     time.Time `json:"time"`
}

// PaintSink receives paint requests for a window. It is implemented by the
// connection that owns the window.
type PaintSink interface {
	RequestPaint(windowID int32, ignoreOcclusion bool)
}

// Bridge is the compositor surface consumed by the connection core. All
// methods are called from the dispatch loop.
type Bridge interface {
	RegisterWindow(id int32, attrs WindowAttributes, sink PaintSink) error
	UpdateWindow(id int32, attrs WindowAttributes)
	UnregisterWindow(id int32)
	RaiseWindow(id int32)
	InvalidateRegion(r gfx.Rect)
	// PaintCompleted hands over new contents for a window. Unknown ids are
	// ignored.
	PaintCompleted(id int32, contents *gfx.Bitmap, rects []gfx.Rect)
	IsOccluded(id int32) bool
	Snapshot() *gfx.Bitmap
	ScreenRect() gfx.Rect
	SetScreenRect(r gfx.Rect)
	SetBackground(bg Background)
	// Compose produces a frame, turning accumulated damage into paint
	// requests for the affected windows.
	Compose(now time.Time) FrameInfo
}
