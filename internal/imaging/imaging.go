// Package imaging decodes image files into the tightly packed RGBA pixel
// buffers the indexing pipeline consumes.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// supportedExtensions lists the file extensions the indexer will pick up
// when walking directories.
var supportedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// IsImageFile checks if a file has a supported image extension.
func IsImageFile(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}

// DecodeRGBA decodes image bytes into an RGBA buffer with bounds at the
// origin and a stride of exactly four bytes per pixel, as the pipeline
// expects.
func DecodeRGBA(data []byte) (*image.RGBA, geometry.Dimensions, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, geometry.Dimensions{}, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	dims := geometry.Dimensions{Width: bounds.Dx(), Height: bounds.Dy()}
	if dims.Width == 0 || dims.Height == 0 {
		return nil, geometry.Dimensions{}, fmt.Errorf("image has empty dimensions %dx%d", dims.Width, dims.Height)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, dims.Width, dims.Height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba, dims, nil
}

// LoadRGBA reads and decodes an image file.
func LoadRGBA(path string) (*image.RGBA, geometry.Dimensions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, geometry.Dimensions{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return DecodeRGBA(data)
}
