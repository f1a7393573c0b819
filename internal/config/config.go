package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/winserv/internal/compositor"
	"github.com/1broseidon/winserv/internal/desktop"
	"github.com/1broseidon/winserv/internal/gfx"
)

const (
	BackendHeadless = "headless"
	BackendX11      = "x11"

	DefaultHTTPListen = "127.0.0.1:7341"

	TracingNone   = "none"
	TracingStdout = "stdout"
)

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Config is the winserv configuration file.
type Config struct {
	SocketPath   string        `yaml:"socket_path"`
	Backend      string        `yaml:"backend"`
	Display      string        `yaml:"display"`
	PingInterval time.Duration `yaml:"ping_interval"`
	FrameRate    int           `yaml:"frame_rate"`
	LogLevel     string        `yaml:"log_level"`

	Screen    ScreenConfig    `yaml:"screen"`
	HTTP      HTTPConfig      `yaml:"http"`
	Mouse     MouseConfig     `yaml:"mouse"`
	Theme     ThemeConfig     `yaml:"theme"`
	Wallpaper WallpaperConfig `yaml:"wallpaper"`
	Tracing   TracingConfig   `yaml:"tracing"`

	// path is the file the config was loaded from; Save writes back to it.
	path string
}

type ScreenConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// HTTPConfig controls the auxiliary HTTP listener. An empty Listen disables
// it.
type HTTPConfig struct {
	Listen    string `yaml:"listen"`
	WebSocket bool   `yaml:"websocket"`
	MCP       bool   `yaml:"mcp"`
	Metrics   bool   `yaml:"metrics"`
}

type MouseConfig struct {
	Acceleration  float64 `yaml:"acceleration"`
	ScrollStep    int     `yaml:"scroll_step"`
	DoubleClickMs int     `yaml:"double_click_ms"`
}

type ThemeConfig struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

type WallpaperConfig struct {
	Path            string `yaml:"path"`
	Mode            string `yaml:"mode"`
	BackgroundColor string `yaml:"background_color"`
}

// TracingConfig selects where dispatch spans are exported. The stdout
// exporter writes JSON spans to Path, or to stderr when Path is empty.
type TracingConfig struct {
	Exporter string `yaml:"exporter"`
	Path     string `yaml:"path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	d := desktop.DefaultSettings()
	return &Config{
		Backend:      BackendHeadless,
		PingInterval: 15 * time.Second,
		FrameRate:    60,
		LogLevel:     "info",
		Screen:       ScreenConfig{Width: d.Screen.Width, Height: d.Screen.Height},
		HTTP: HTTPConfig{
			Listen:    DefaultHTTPListen,
			WebSocket: true,
			MCP:       true,
			Metrics:   true,
		},
		Mouse: MouseConfig{
			Acceleration:  d.MouseAcceleration,
			ScrollStep:    d.ScrollStep,
			DoubleClickMs: d.DoubleClickMillis,
		},
		Theme: ThemeConfig{Name: d.Theme.Name, Path: d.Theme.Path},
		Wallpaper: WallpaperConfig{
			Mode:            string(d.WallpaperMode),
			BackgroundColor: d.Background.String(),
		},
		Tracing: TracingConfig{Exporter: TracingNone},
	}
}

// Path returns the file the config was loaded from, if any.
func (c *Config) Path() string { return c.path }

// FrameInterval converts FrameRate to a tick interval.
func (c *Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.FrameRate)
}

// Desktop converts the settings part of the config. It assumes Validate
// passed.
func (c *Config) Desktop() desktop.Settings {
	color, err := gfx.ParseColor(c.Wallpaper.BackgroundColor)
	if err != nil {
		color = desktop.DefaultSettings().Background
	}
	return desktop.Settings{
		Screen:            gfx.Size{Width: c.Screen.Width, Height: c.Screen.Height},
		MouseAcceleration: c.Mouse.Acceleration,
		ScrollStep:        c.Mouse.ScrollStep,
		DoubleClickMillis: c.Mouse.DoubleClickMs,
		Theme:             desktop.Theme{Name: c.Theme.Name, Path: c.Theme.Path},
		WallpaperPath:     c.Wallpaper.Path,
		WallpaperMode:     compositor.WallpaperMode(c.Wallpaper.Mode),
		Background:        color,
	}
}

// ApplyDesktop copies live desktop settings back into the config.
func (c *Config) ApplyDesktop(s desktop.Settings) {
	c.Screen = ScreenConfig{Width: s.Screen.Width, Height: s.Screen.Height}
	c.Mouse = MouseConfig{
		Acceleration:  s.MouseAcceleration,
		ScrollStep:    s.ScrollStep,
		DoubleClickMs: s.DoubleClickMillis,
	}
	c.Theme = ThemeConfig{Name: s.Theme.Name, Path: s.Theme.Path}
	c.Wallpaper = WallpaperConfig{
		Path:            s.WallpaperPath,
		Mode:            string(s.WallpaperMode),
		BackgroundColor: s.Background.String(),
	}
}

// Save writes the configuration back to the file it was loaded from, or to
// the standard location when it was not loaded from a file.
//
// Note: this marshals the effective config and will not preserve comments
// from the original YAML.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	return c.SaveTo(path)
}

// SaveTo validates and writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config file: %w", err)
	}
	c.path = path
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendHeadless, BackendX11:
	default:
		return &ValidationError{Path: "backend", Err: fmt.Errorf("backend must be one of: headless, x11")}
	}
	if c.PingInterval <= 0 {
		return &ValidationError{Path: "ping_interval", Err: fmt.Errorf("ping_interval must be > 0")}
	}
	if c.FrameRate < 1 || c.FrameRate > 240 {
		return &ValidationError{Path: "frame_rate", Err: fmt.Errorf("frame_rate must be between 1 and 240")}
	}
	if c.LogLevel != "debug" && c.LogLevel != "info" && c.LogLevel != "warning" && c.LogLevel != "error" {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	if c.HTTP.Listen != "" {
		if _, _, err := net.SplitHostPort(c.HTTP.Listen); err != nil {
			return &ValidationError{Path: "http.listen", Err: fmt.Errorf("listen must be host:port: %w", err)}
		}
	}
	switch c.Tracing.Exporter {
	case TracingNone, TracingStdout:
	default:
		return &ValidationError{Path: "tracing.exporter", Err: fmt.Errorf("exporter must be one of: none, stdout")}
	}
	if _, err := gfx.ParseColor(c.Wallpaper.BackgroundColor); err != nil {
		return &ValidationError{Path: "wallpaper.background_color", Err: err}
	}

	s := c.Desktop()
	if s.Screen.Width <= 0 || s.Screen.Height <= 0 || s.Screen.Width > gfx.MaxBitmapDimension || s.Screen.Height > gfx.MaxBitmapDimension {
		return &ValidationError{Path: "screen", Err: fmt.Errorf("screen size %dx%d out of range", s.Screen.Width, s.Screen.Height)}
	}
	if s.MouseAcceleration < desktop.MinMouseAcceleration || s.MouseAcceleration > desktop.MaxMouseAcceleration {
		return &ValidationError{Path: "mouse.acceleration", Err: fmt.Errorf("acceleration must be between %v and %v", desktop.MinMouseAcceleration, desktop.MaxMouseAcceleration)}
	}
	if s.ScrollStep < desktop.MinScrollStep {
		return &ValidationError{Path: "mouse.scroll_step", Err: fmt.Errorf("scroll_step must be >= %d", desktop.MinScrollStep)}
	}
	if s.DoubleClickMillis < desktop.MinDoubleClickMillis || s.DoubleClickMillis > desktop.MaxDoubleClickMillis {
		return &ValidationError{Path: "mouse.double_click_ms", Err: fmt.Errorf("double_click_ms must be between %d and %d", desktop.MinDoubleClickMillis, desktop.MaxDoubleClickMillis)}
	}
	if s.Theme.Name == "" {
		return &ValidationError{Path: "theme.name", Err: fmt.Errorf("theme name is required")}
	}
	if !s.WallpaperMode.Valid() {
		return &ValidationError{Path: "wallpaper.mode", Err: fmt.Errorf("mode must be one of: simple, tile, center, stretch, scaled")}
	}
	return nil
}
