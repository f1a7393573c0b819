package gfx

import (
	"errors"
	"fmt"
	"image"
)

// MaxBitmapDimension bounds either side of a client-supplied bitmap.
const MaxBitmapDimension = 16384

// Bitmap is a 32-bit RGBA pixel buffer as carried on the wire.
// Pixels are row-major with a pitch of Width*4.
type Bitmap struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"pixels"`
}

// NewBitmap allocates a zeroed bitmap.
func NewBitmap(s Size) *Bitmap {
	return &Bitmap{Width: s.Width, Height: s.Height, Pixels: make([]byte, s.Width*s.Height*4)}
}

// Size returns the bitmap dimensions.
func (b *Bitmap) Size() Size {
	return Size{Width: b.Width, Height: b.Height}
}

// Validate checks dimensions against the pixel payload.
func (b *Bitmap) Validate() error {
	if b == nil {
		return errors.New("bitmap is nil")
	}
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("bitmap size %dx%d must be positive", b.Width, b.Height)
	}
	if b.Width > MaxBitmapDimension || b.Height > MaxBitmapDimension {
		return fmt.Errorf("bitmap size %dx%d exceeds %d", b.Width, b.Height, MaxBitmapDimension)
	}
	if want := b.Width * b.Height * 4; len(b.Pixels) != want {
		return fmt.Errorf("bitmap has %d bytes of pixels, want %d", len(b.Pixels), want)
	}
	return nil
}

// RGBA wraps the pixel buffer as an image without copying.
func (b *Bitmap) RGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pixels,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// BitmapFromImage copies img into a new Bitmap.
func BitmapFromImage(img *image.RGBA) *Bitmap {
	r := img.Bounds()
	b := NewBitmap(Size{Width: r.Dx(), Height: r.Dy()})
	for y := 0; y < r.Dy(); y++ {
		src := img.Pix[img.PixOffset(r.Min.X, r.Min.Y+y):]
		copy(b.Pixels[y*b.Width*4:(y+1)*b.Width*4], src[:r.Dx()*4])
	}
	return b
}
