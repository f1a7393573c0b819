package compositor

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/1broseidon/winserv/internal/gfx"
)

type paintLog struct {
	requests []int32
}

func (p *paintLog) RequestPaint(windowID int32, ignoreOcclusion bool) {
	p.requests = append(p.requests, windowID)
}

func newTestScene() *Scene {
	return NewScene(gfx.R(0, 0, 100, 100), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func opaque(r gfx.Rect) WindowAttributes {
	return WindowAttributes{Rect: r, Opacity: 1}
}

func TestScene_RegisterRejectsDuplicates(t *testing.T) {
	s := newTestScene()
	if err := s.RegisterWindow(1982, opaque(gfx.R(0, 0, 10, 10)), nil); err != nil {
		t.Fatalf("RegisterWindow: %v", err)
	}
	if err := s.RegisterWindow(1982, opaque(gfx.R(0, 0, 10, 10)), nil); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestScene_RaiseChangesOnlyOrder(t *testing.T) {
	s := newTestScene()
	_ = s.RegisterWindow(1, opaque(gfx.R(0, 0, 10, 10)), nil)
	_ = s.RegisterWindow(2, opaque(gfx.R(0, 0, 10, 10)), nil)
	_ = s.RegisterWindow(3, opaque(gfx.R(0, 0, 10, 10)), nil)

	s.RaiseWindow(1)
	got := s.Stack()
	want := []int32{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stack = %v, want %v", got, want)
		}
	}
	s.RaiseWindow(99)
	if len(s.Stack()) != 3 {
		t.Fatal("raising an unknown id must be a no-op")
	}
}

func TestScene_Occlusion(t *testing.T) {
	s := newTestScene()
	_ = s.RegisterWindow(1, opaque(gfx.R(10, 10, 20, 20)), nil)
	_ = s.RegisterWindow(2, opaque(gfx.R(0, 0, 50, 50)), nil)
	_ = s.RegisterWindow(3, opaque(gfx.R(500, 500, 20, 20)), nil)

	if !s.IsOccluded(1) {
		t.Fatal("window 1 should be hidden by window 2")
	}
	if s.IsOccluded(2) {
		t.Fatal("top window cannot be occluded")
	}
	if !s.IsOccluded(3) {
		t.Fatal("off-screen window should be occluded")
	}

	s.UpdateWindow(2, WindowAttributes{Rect: gfx.R(0, 0, 50, 50), Opacity: 0.5})
	if s.IsOccluded(1) {
		t.Fatal("translucent window must not occlude")
	}
	s.RaiseWindow(1)
	if s.IsOccluded(1) {
		t.Fatal("raised window must be visible")
	}
}

func TestScene_ComposeRequestsPaintForDamagedVisibleWindows(t *testing.T) {
	s := newTestScene()
	a, b, c := &paintLog{}, &paintLog{}, &paintLog{}
	_ = s.RegisterWindow(1, opaque(gfx.R(0, 0, 10, 10)), a)
	_ = s.RegisterWindow(2, opaque(gfx.R(50, 50, 10, 10)), b)
	_ = s.RegisterWindow(3, opaque(gfx.R(0, 0, 20, 20)), c)

	f1 := s.Compose(time.Unix(0, 0))
	if len(a.requests) != 0 {
		t.Fatal("occluded window must not be asked to paint")
	}
	if len(b.requests) != 1 || len(c.requests) != 1 {
		t.Fatalf("initial frame requests: b=%v c=%v", b.requests, c.requests)
	}

	f2 := s.Compose(time.Unix(1, 0))
	if f2.Sequence != f1.Sequence+1 {
		t.Fatalf("sequence %d -> %d", f1.Sequence, f2.Sequence)
	}
	if len(b.requests) != 1 {
		t.Fatal("undamaged frame must not request paints")
	}

	s.InvalidateRegion(gfx.R(55, 55, 1, 1))
	s.Compose(time.Unix(2, 0))
	if len(b.requests) != 2 || len(c.requests) != 1 {
		t.Fatalf("after damage: b=%v c=%v", b.requests, c.requests)
	}
}

func TestScene_UnregisterDamagesFormerArea(t *testing.T) {
	s := newTestScene()
	under := &paintLog{}
	_ = s.RegisterWindow(1, opaque(gfx.R(0, 0, 30, 30)), under)
	_ = s.RegisterWindow(2, opaque(gfx.R(0, 0, 40, 40)), nil)
	s.Compose(time.Now())
	if len(under.requests) != 0 {
		t.Fatal("covered window painted")
	}

	s.UnregisterWindow(2)
	s.Compose(time.Now())
	if len(under.requests) != 1 {
		t.Fatalf("uncovered window requests = %v", under.requests)
	}
	s.UnregisterWindow(2)
}

func TestScene_PaintCompletedUnknownWindowIsNoop(t *testing.T) {
	s := newTestScene()
	s.PaintCompleted(4242, gfx.NewBitmap(gfx.Size{Width: 1, Height: 1}), []gfx.Rect{gfx.R(0, 0, 1, 1)})
	if len(s.damage) != 0 {
		t.Fatal("unknown window must not add damage")
	}
}

func TestScene_PaintCompletedDoesNotRequestRepaint(t *testing.T) {
	s := newTestScene()
	sink := &paintLog{}
	_ = s.RegisterWindow(1, opaque(gfx.R(0, 0, 10, 10)), sink)
	s.Compose(time.Now())
	if len(sink.requests) != 1 {
		t.Fatalf("requests after register = %v", sink.requests)
	}

	s.PaintCompleted(1, gfx.NewBitmap(gfx.Size{Width: 10, Height: 10}), []gfx.Rect{gfx.R(0, 0, 10, 10)})
	s.Compose(time.Now())
	if len(sink.requests) != 1 {
		t.Fatalf("paint completion triggered another paint: %v", sink.requests)
	}
}

func TestScene_SnapshotComposesContents(t *testing.T) {
	s := NewScene(gfx.R(0, 0, 4, 4), slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.SetBackground(Background{Color: gfx.Color{A: 0xff}})

	red := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < 4; i++ {
		red.Set(i%2, i/2, color.RGBA{R: 0xff, A: 0xff})
	}
	_ = s.RegisterWindow(1, opaque(gfx.R(2, 2, 2, 2)), nil)
	s.PaintCompleted(1, gfx.BitmapFromImage(red), nil)

	snap := s.Snapshot()
	img := snap.RGBA()
	if got := img.RGBAAt(3, 3); got.R != 0xff || got.A != 0xff {
		t.Fatalf("window pixel = %+v", got)
	}
	if got := img.RGBAAt(0, 0); got.R != 0 || got.A != 0xff {
		t.Fatalf("background pixel = %+v", got)
	}
}

func TestScene_SnapshotStretchesWallpaper(t *testing.T) {
	s := NewScene(gfx.R(0, 0, 8, 8), slog.New(slog.NewTextHandler(io.Discard, nil)))
	wp := image.NewRGBA(image.Rect(0, 0, 1, 1))
	wp.Set(0, 0, color.RGBA{G: 0xff, A: 0xff})
	s.SetBackground(Background{Color: gfx.Color{A: 0xff}, Wallpaper: wp, Mode: WallpaperStretch})

	img := s.Snapshot().RGBA()
	if got := img.RGBAAt(7, 7); got.G != 0xff {
		t.Fatalf("stretched wallpaper pixel = %+v", got)
	}
}

func TestWallpaperModeValid(t *testing.T) {
	for _, m := range []WallpaperMode{WallpaperSimple, WallpaperTile, WallpaperCenter, WallpaperStretch, WallpaperScaled} {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if WallpaperMode("zoom").Valid() {
		t.Error("unknown mode accepted")
	}
}
