package compositor

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"golang.org/x/image/draw"

	"github.com/1broseidon/winserv/internal/gfx"
)

type surface struct {
	id       int32
	attrs    WindowAttributes
	sink     PaintSink
	contents *image.RGBA
}

// Scene is an in-memory compositor. It is not safe for concurrent use; the
// dispatch loop owns it.
type Scene struct {
	logger   *slog.Logger
	screen   gfx.Rect
	bg       Background
	surfaces map[int32]*surface
	// order is bottom to top.
	order  []int32
	damage []gfx.Rect
	seq    uint64
}

var _ Bridge = (*Scene)(nil)

// NewScene returns an empty scene covering screen.
func NewScene(screen gfx.Rect, logger *slog.Logger) *Scene {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scene{
		logger:   logger.With("component", "compositor"),
		screen:   screen,
		bg:       Background{Color: gfx.Color{R: 0x50, G: 0x50, B: 0x50, A: 0xff}, Mode: WallpaperSimple},
		surfaces: make(map[int32]*surface),
	}
}

func (s *Scene) RegisterWindow(id int32, attrs WindowAttributes, sink PaintSink) error {
	if _, exists := s.surfaces[id]; exists {
		return fmt.Errorf("window %d already registered", id)
	}
	s.surfaces[id] = &surface{id: id, attrs: attrs, sink: sink}
	s.order = append(s.order, id)
	s.InvalidateRegion(attrs.Rect)
	s.logger.Debug("window registered", "window_id", id, "client_id", attrs.ClientID, "rect", attrs.Rect.String())
	return nil
}

func (s *Scene) UpdateWindow(id int32, attrs WindowAttributes) {
	sf, ok := s.surfaces[id]
	if !ok {
		return
	}
	if sf.attrs.Rect != attrs.Rect || sf.attrs.Opacity != attrs.Opacity || sf.attrs.HasAlpha != attrs.HasAlpha {
		s.InvalidateRegion(sf.attrs.Rect)
		s.InvalidateRegion(attrs.Rect)
	}
	sf.attrs = attrs
}

func (s *Scene) UnregisterWindow(id int32) {
	sf, ok := s.surfaces[id]
	if !ok {
		return
	}
	delete(s.surfaces, id)
	s.removeFromOrder(id)
	s.InvalidateRegion(sf.attrs.Rect)
	s.logger.Debug("window unregistered", "window_id", id)
}

func (s *Scene) RaiseWindow(id int32) {
	sf, ok := s.surfaces[id]
	if !ok {
		return
	}
	s.removeFromOrder(id)
	s.order = append(s.order, id)
	s.InvalidateRegion(sf.attrs.Rect)
}

func (s *Scene) removeFromOrder(id int32) {
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Scene) InvalidateRegion(r gfx.Rect) {
	r = r.Intersect(s.screen)
	if r.IsEmpty() {
		return
	}
	s.damage = append(s.damage, r)
}

// PaintCompleted stores the new contents of a window. Composition reads
// contents on demand, so completed paints never feed back into damage.
func (s *Scene) PaintCompleted(id int32, contents *gfx.Bitmap, rects []gfx.Rect) {
	sf, ok := s.surfaces[id]
	if !ok || contents == nil {
		return
	}
	if err := contents.Validate(); err != nil {
		s.logger.Warn("discarding window contents", "window_id", id, "error", err)
		return
	}
	sf.contents = contents.RGBA()
	s.logger.Debug("window contents updated", "window_id", id, "rects", len(rects))
}

// IsOccluded reports whether the window is off screen or entirely covered
// by a single opaque window stacked above it. Unknown ids are not occluded.
func (s *Scene) IsOccluded(id int32) bool {
	sf, ok := s.surfaces[id]
	if !ok {
		return false
	}
	visible := sf.attrs.Rect.Intersect(s.screen)
	if visible.IsEmpty() {
		return true
	}
	above := false
	for _, other := range s.order {
		if other == id {
			above = true
			continue
		}
		if !above {
			continue
		}
		o := s.surfaces[other]
		if o.attrs.Opaque() && o.attrs.Rect.ContainsRect(visible) {
			return true
		}
	}
	return false
}

func (s *Scene) ScreenRect() gfx.Rect { return s.screen }

func (s *Scene) SetScreenRect(r gfx.Rect) {
	if r == s.screen {
		return
	}
	s.screen = r
	s.damage = append(s.damage[:0], r)
	s.logger.Info("screen rect changed", "rect", r.String())
}

func (s *Scene) SetBackground(bg Background) {
	if !bg.Mode.Valid() {
		bg.Mode = WallpaperSimple
	}
	s.bg = bg
	s.damage = append(s.damage, s.screen)
}

// Stack returns window ids from bottom to top.
func (s *Scene) Stack() []int32 {
	return append([]int32(nil), s.order...)
}

// Compose asks every visible window touched by damage since the previous
// frame to repaint.
func (s *Scene) Compose(now time.Time) FrameInfo {
	s.seq++
	if len(s.damage) > 0 {
		var targets []*surface
		for _, id := range s.order {
			sf := s.surfaces[id]
			if sf.sink == nil || !s.touched(sf.attrs.Rect) || s.IsOccluded(id) {
				continue
			}
			targets = append(targets, sf)
		}
		s.damage = s.damage[:0]
		for _, sf := range targets {
			sf.sink.RequestPaint(sf.id, false)
		}
	}
	return FrameInfo{Sequence: s.seq, Time: now}
}

func (s *Scene) touched(r gfx.Rect) bool {
	for _, d := range s.damage {
		if !d.Intersect(r).IsEmpty() {
			return true
		}
	}
	return false
}

// Snapshot renders the current screen contents.
func (s *Scene) Snapshot() *gfx.Bitmap {
	origin := s.screen.Location()
	dst := image.NewRGBA(image.Rect(0, 0, s.screen.Width, s.screen.Height))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(s.bg.Color), image.Point{}, draw.Src)
	if s.bg.Wallpaper != nil {
		drawWallpaper(dst, s.bg.Wallpaper, s.bg.Mode)
	}
	for _, id := range s.order {
		sf := s.surfaces[id]
		if sf.contents == nil {
			continue
		}
		r := sf.attrs.Rect.Translated(gfx.Point{X: -origin.X, Y: -origin.Y}).Image()
		alpha := uint8(clampUnit(sf.attrs.Opacity) * 0xff)
		draw.DrawMask(dst, r, sf.contents, image.Point{}, image.NewUniform(color.Alpha{A: alpha}), image.Point{}, draw.Over)
	}
	return gfx.BitmapFromImage(dst)
}

func drawWallpaper(dst *image.RGBA, wp image.Image, mode WallpaperMode) {
	db, wb := dst.Bounds(), wp.Bounds()
	if wb.Empty() {
		return
	}
	switch mode {
	case WallpaperTile:
		for y := 0; y < db.Dy(); y += wb.Dy() {
			for x := 0; x < db.Dx(); x += wb.Dx() {
				r := image.Rect(x, y, x+wb.Dx(), y+wb.Dy())
				draw.Draw(dst, r, wp, wb.Min, draw.Src)
			}
		}
	case WallpaperCenter:
		off := image.Pt((db.Dx()-wb.Dx())/2, (db.Dy()-wb.Dy())/2)
		draw.Draw(dst, wb.Sub(wb.Min).Add(off), wp, wb.Min, draw.Src)
	case WallpaperStretch:
		draw.ApproxBiLinear.Scale(dst, db, wp, wb, draw.Src, nil)
	case WallpaperScaled:
		scale := max(float64(db.Dx())/float64(wb.Dx()), float64(db.Dy())/float64(wb.Dy()))
		w, h := int(float64(wb.Dx())*scale), int(float64(wb.Dy())*scale)
		off := image.Pt((db.Dx()-w)/2, (db.Dy()-h)/2)
		draw.CatmullRom.Scale(dst, image.Rect(0, 0, w, h).Add(off), wp, wb, draw.Src, nil)
	default:
		draw.Draw(dst, wb.Sub(wb.Min), wp, wb.Min, draw.Src)
	}
}

func clampUnit(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
