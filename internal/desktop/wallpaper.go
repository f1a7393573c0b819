package desktop

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/1broseidon/winserv/internal/gfx"
)

// LoadWallpaper decodes the image at path. It does file I/O and must not run
// on the dispatch loop. An empty path yields a nil image.
func LoadWallpaper(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wallpaper: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("decode wallpaper %s: %w", path, err)
	}
	if cfg.Width > gfx.MaxBitmapDimension || cfg.Height > gfx.MaxBitmapDimension {
		return nil, fmt.Errorf("wallpaper %s is %dx%d, larger than %d", path, cfg.Width, cfg.Height, gfx.MaxBitmapDimension)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return nil, fmt.Errorf("rewind wallpaper: %w", err)
	}
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s wallpaper %s: %w", format, path, err)
	}
	return img, nil
}
