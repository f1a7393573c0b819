package desktop

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/gfx"
)

func newTestDesktop(t *testing.T, saved *[]Settings) (*Desktop, *compositor.Scene) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scene := compositor.NewScene(gfx.R(0, 0, 640, 480), logger)
	opts := []Option{WithLogger(logger)}
	if saved != nil {
		opts = append(opts, WithPersist(func(s Settings) error {
			*saved = append(*saved, s)
			return nil
		}))
	}
	d, err := New(DefaultSettings(), scene, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d, scene
}

func TestNew_AppliesScreenSize(t *testing.T) {
	_, scene := newTestDesktop(t, nil)
	if got := scene.ScreenRect(); got != gfx.R(0, 0, 1024, 768) {
		t.Fatalf("screen = %v", got)
	}
}

func TestSetters_RejectOutOfRange(t *testing.T) {
	var saved []Settings
	d, _ := newTestDesktop(t, &saved)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"acceleration low", func() error { return d.SetMouseAcceleration(0.1) }},
		{"acceleration high", func() error { return d.SetMouseAcceleration(4) }},
		{"scroll step", func() error { return d.SetScrollStep(0) }},
		{"double click fast", func() error { return d.SetDoubleClickMillis(50) }},
		{"double click slow", func() error { return d.SetDoubleClickMillis(5000) }},
		{"wallpaper mode", func() error { return d.SetWallpaperMode("zoom") }},
		{"theme name", func() error { return d.SetTheme("", "") }},
		{"theme path", func() error { return d.SetTheme("Dark", filepath.Join(t.TempDir(), "missing.ini")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidSetting) {
				t.Fatalf("err = %v, want ErrInvalidSetting", err)
			}
		})
	}
	if len(saved) != 0 {
		t.Fatalf("rejected settings were persisted: %+v", saved)
	}
	if d.MouseAcceleration() != 1.0 || d.ScrollStep() != 4 || d.DoubleClickMillis() != 250 {
		t.Fatalf("settings mutated: %+v", d.Settings())
	}
}

func TestSetters_PersistAcceptedValues(t *testing.T) {
	var saved []Settings
	d, _ := newTestDesktop(t, &saved)

	if err := d.SetMouseAcceleration(2.5); err != nil {
		t.Fatalf("SetMouseAcceleration: %v", err)
	}
	if err := d.SetScrollStep(7); err != nil {
		t.Fatalf("SetScrollStep: %v", err)
	}
	themePath := filepath.Join(t.TempDir(), "Dark.ini")
	if err := os.WriteFile(themePath, []byte("[Colors]\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := d.SetTheme("Dark", themePath); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if len(saved) != 3 {
		t.Fatalf("persisted %d times, want 3", len(saved))
	}
	last := saved[len(saved)-1]
	if last.MouseAcceleration != 2.5 || last.ScrollStep != 7 || last.Theme.Name != "Dark" {
		t.Fatalf("last saved = %+v", last)
	}
}

func TestSetResolution(t *testing.T) {
	d, scene := newTestDesktop(t, nil)

	changed, err := d.SetResolution(gfx.Size{Width: 800, Height: 600})
	if err != nil || !changed {
		t.Fatalf("SetResolution changed=%v err=%v", changed, err)
	}
	if scene.ScreenRect() != gfx.R(0, 0, 800, 600) {
		t.Fatalf("scene screen = %v", scene.ScreenRect())
	}
	changed, err = d.SetResolution(gfx.Size{Width: 800, Height: 600})
	if err != nil || changed {
		t.Fatalf("same resolution changed=%v err=%v", changed, err)
	}
	if _, err := d.SetResolution(gfx.Size{Width: 0, Height: 600}); !errors.Is(err, ErrInvalidSetting) {
		t.Fatalf("zero width err = %v", err)
	}
}

func TestLoadWallpaper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wall.png")
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.Set(1, 1, color.RGBA{B: 0xff, A: 0xff})
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	f.Close()

	got, err := LoadWallpaper(path)
	if err != nil {
		t.Fatalf("LoadWallpaper: %v", err)
	}
	if got.Bounds().Dx() != 3 || got.Bounds().Dy() != 2 {
		t.Fatalf("bounds = %v", got.Bounds())
	}

	if img, err := LoadWallpaper(""); err != nil || img != nil {
		t.Fatalf("empty path = %v, %v", img, err)
	}

	garbage := filepath.Join(dir, "garbage.png")
	_ = os.WriteFile(garbage, []byte("not an image"), 0o644)
	if _, err := LoadWallpaper(garbage); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAppletStripLayout(t *testing.T) {
	a := NewAppletStrip()
	screen := gfx.R(0, 0, 1000, 700)
	a.Add(10, gfx.Size{Width: 16, Height: 16})
	a.Add(11, gfx.Size{Width: 40, Height: 20})

	r, ok := a.Rect(10, screen)
	if !ok || r != gfx.R(980, 2, 16, 16) {
		t.Fatalf("first applet = %v %v", r, ok)
	}
	r, ok = a.Rect(11, screen)
	if !ok || r != gfx.R(936, 0, 40, 20) {
		t.Fatalf("second applet = %v %v", r, ok)
	}

	a.Remove(10)
	r, _ = a.Rect(11, screen)
	if r.X != 956 {
		t.Fatalf("after removal x = %d, want 956", r.X)
	}
	if _, ok := a.Rect(10, screen); ok {
		t.Fatal("removed applet still has a rect")
	}
}
