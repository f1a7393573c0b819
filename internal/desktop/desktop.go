// Package desktop holds the process-wide settings every client shares:
// screen geometry, pointer behavior, theme and wallpaper.
package desktop

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/gfx"
)

// ErrInvalidSetting is returned for out-of-range values.
var ErrInvalidSetting = errors.New("invalid setting")

const (
	MinMouseAcceleration = 0.5
	MaxMouseAcceleration = 3.5
	MinScrollStep        = 1
	MinDoubleClickMillis = 100
	MaxDoubleClickMillis = 1000
)

// Theme names the active system theme.
type Theme struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Settings is the persisted part of the desktop state.
type Settings struct {
	Screen            gfx.Size
	MouseAcceleration float64
	ScrollStep        int
	DoubleClickMillis int
	Theme             Theme
	WallpaperPath     string
	WallpaperMode     compositor.WallpaperMode
	Background        gfx.Color
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		Screen:            gfx.Size{Width: 1024, Height: 768},
		MouseAcceleration: 1.0,
		ScrollStep:        4,
		DoubleClickMillis: 250,
		Theme:             Theme{Name: "Default"},
		WallpaperMode:     compositor.WallpaperSimple,
		Background:        gfx.Color{R: 0x50, G: 0x50, B: 0x50, A: 0xff},
	}
}

// Validate checks every range.
func (s Settings) Validate() error {
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 ||
		s.Screen.Width > gfx.MaxBitmapDimension || s.Screen.Height > gfx.MaxBitmapDimension {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalidSetting, s.Screen.Width, s.Screen.Height)
	}
	if s.MouseAcceleration < MinMouseAcceleration || s.MouseAcceleration > MaxMouseAcceleration {
		return fmt.Errorf("%w: mouse acceleration %v outside [%v, %v]",
			ErrInvalidSetting, s.MouseAcceleration, MinMouseAcceleration, MaxMouseAcceleration)
	}
	if s.ScrollStep < MinScrollStep {
		return fmt.Errorf("%w: scroll step %d below %d", ErrInvalidSetting, s.ScrollStep, MinScrollStep)
	}
	if s.DoubleClickMillis < MinDoubleClickMillis || s.DoubleClickMillis > MaxDoubleClickMillis {
		return fmt.Errorf("%w: double-click speed %dms outside [%d, %d]",
			ErrInvalidSetting, s.DoubleClickMillis, MinDoubleClickMillis, MaxDoubleClickMillis)
	}
	if !s.WallpaperMode.Valid() {
		return fmt.Errorf("%w: wallpaper mode %q", ErrInvalidSetting, s.WallpaperMode)
	}
	return nil
}

// Desktop is the live settings state. It is owned by the dispatch loop.
type Desktop struct {
	settings  Settings
	wallpaper image.Image
	cursor    gfx.Point
	applets   *AppletStrip
	bridge    compositor.Bridge
	persist   func(Settings) error
	logger    *slog.Logger
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithPersist sets the function used to store settings after a change.
func WithPersist(fn func(Settings) error) Option {
	return func(d *Desktop) { d.persist = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Desktop) { d.logger = l }
}

// New applies settings to bridge and returns the desktop.
func New(settings Settings, bridge compositor.Bridge, opts ...Option) (*Desktop, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	d := &Desktop{
		settings: settings,
		applets:  NewAppletStrip(),
		bridge:   bridge,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With("component", "desktop")
	if bridge.ScreenRect().Size() != settings.Screen {
		bridge.SetScreenRect(gfx.Rect{}.WithSize(settings.Screen))
	}
	d.applyBackground()
	return d, nil
}

func (d *Desktop) Settings() Settings         { return d.settings }
func (d *Desktop) ScreenRect() gfx.Rect       { return d.bridge.ScreenRect() }
func (d *Desktop) MouseAcceleration() float64 { return d.settings.MouseAcceleration }
func (d *Desktop) ScrollStep() int            { return d.settings.ScrollStep }
func (d *Desktop) DoubleClickMillis() int     { return d.settings.DoubleClickMillis }
func (d *Desktop) Theme() Theme               { return d.settings.Theme }
func (d *Desktop) WallpaperPath() string      { return d.settings.WallpaperPath }
func (d *Desktop) CursorPosition() gfx.Point  { return d.cursor }
func (d *Desktop) Applets() *AppletStrip      { return d.applets }
func (d *Desktop) Wallpaper() image.Image     { return d.wallpaper }

// SetCursorPosition records the pointer location reported by input routing.
func (d *Desktop) SetCursorPosition(p gfx.Point) { d.cursor = p }

// update validates next, swaps it in and persists it. The previous settings
// stay in place when validation fails.
func (d *Desktop) update(mutate func(*Settings)) error {
	next := d.settings
	mutate(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	d.settings = next
	d.save()
	return nil
}

func (d *Desktop) save() {
	if d.persist == nil {
		return
	}
	if err := d.persist(d.settings); err != nil {
		d.logger.Warn("failed to persist desktop settings", "error", err)
	}
}

func (d *Desktop) SetMouseAcceleration(v float64) error {
	return d.update(func(s *Settings) { s.MouseAcceleration = v })
}

func (d *Desktop) SetScrollStep(v int) error {
	return d.update(func(s *Settings) { s.ScrollStep = v })
}

func (d *Desktop) SetDoubleClickMillis(v int) error {
	return d.update(func(s *Settings) { s.DoubleClickMillis = v })
}

// SetResolution resizes the screen. It reports whether the rect changed.
func (d *Desktop) SetResolution(size gfx.Size) (bool, error) {
	if size == d.settings.Screen && d.bridge.ScreenRect().Size() == size {
		return false, nil
	}
	if err := d.update(func(s *Settings) { s.Screen = size }); err != nil {
		return false, err
	}
	d.bridge.SetScreenRect(d.bridge.ScreenRect().WithSize(size))
	d.logger.Info("resolution changed", "width", size.Width, "height", size.Height)
	return true, nil
}

// SetTheme switches the system theme. A non-empty path must name a readable
// regular file.
func (d *Desktop) SetTheme(name, path string) error {
	if name == "" {
		return fmt.Errorf("%w: empty theme name", ErrInvalidSetting)
	}
	if path != "" {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: theme %q: %v", ErrInvalidSetting, path, err)
		}
		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: theme %q is not a regular file", ErrInvalidSetting, path)
		}
	}
	return d.update(func(s *Settings) { s.Theme = Theme{Name: name, Path: path} })
}

// SetBackgroundColor changes the color painted beneath the wallpaper.
func (d *Desktop) SetBackgroundColor(c gfx.Color) {
	d.settings.Background = c
	d.save()
	d.applyBackground()
}

// SetWallpaperMode changes how the wallpaper is laid out.
func (d *Desktop) SetWallpaperMode(mode compositor.WallpaperMode) error {
	if err := d.update(func(s *Settings) { s.WallpaperMode = mode }); err != nil {
		return err
	}
	d.applyBackground()
	return nil
}

// SetWallpaper installs an image produced by LoadWallpaper. A nil image with
// an empty path clears the wallpaper.
func (d *Desktop) SetWallpaper(path string, img image.Image) {
	d.settings.WallpaperPath = path
	d.wallpaper = img
	d.save()
	d.applyBackground()
}

func (d *Desktop) applyBackground() {
	d.bridge.SetBackground(compositor.Background{
		Color:     d.settings.Background,
		Wallpaper: d.wallpaper,
		Mode:      d.settings.WallpaperMode,
	})
}
