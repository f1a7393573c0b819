package gfx

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"
)

// Point is a position in screen coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a width/height pair.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsValid reports whether neither dimension is negative.
func (s Size) IsValid() bool {
	return s.Width >= 0 && s.Height >= 0
}

// ExpandedTo returns s grown component-wise so that it is at least min.
func (s Size) ExpandedTo(min Size) Size {
	if s.Width < min.Width {
		s.Width = min.Width
	}
	if s.Height < min.Height {
		s.Height = min.Height
	}
	return s
}

// Contains reports whether s is at least other in both dimensions.
func (s Size) Contains(other Size) bool {
	return s.Width >= other.Width && s.Height >= other.Height
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// R is shorthand for building a Rect.
func R(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, Width: w, Height: h}
}

func (r Rect) Location() Point { return Point{X: r.X, Y: r.Y} }
func (r Rect) Size() Size      { return Size{Width: r.Width, Height: r.Height} }
func (r Rect) Right() int      { return r.X + r.Width }
func (r Rect) Bottom() int     { return r.Y + r.Height }

// IsEmpty reports whether the rect covers no pixels.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// WithSize returns r with its size replaced.
func (r Rect) WithSize(s Size) Rect {
	r.Width, r.Height = s.Width, s.Height
	return r
}

// Translated returns r moved by p.
func (r Rect) Translated(p Point) Rect {
	r.X += p.X
	r.Y += p.Y
	return r
}

// Intersect returns the overlap of r and o, or an empty Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest rect containing both r and o.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// Color is an RGBA color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

func (c Color) String() string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses "#rrggbb" or "#rrggbbaa".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
