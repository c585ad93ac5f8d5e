package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name     string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"photo.png", true},
		{"photo.webp", true},
		{"photo.bmp", true},
		{"photo.gif", true},
		{"notes.txt", false},
		{"archive.tar.gz", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.expected {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.expected)
		}
	}
}

func TestDecodeRGBA(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	src.SetNRGBA(2, 1, color.NRGBA{B: 255, A: 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}

	rgba, dims, err := DecodeRGBA(buf.Bytes())
	if err != nil {
		t.Fatalf("DecodeRGBA failed: %v", err)
	}
	if dims.Width != 3 || dims.Height != 2 {
		t.Errorf("dimensions = %+v, want 3x2", dims)
	}
	if rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		t.Errorf("bounds not at origin: %v", rgba.Rect)
	}
	if rgba.Stride != 4*dims.Width {
		t.Errorf("stride = %d, want %d", rgba.Stride, 4*dims.Width)
	}

	r, _, _, _ := rgba.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Errorf("pixel (0,0) red = %d, want 255", r>>8)
	}
	_, _, b, _ := rgba.At(2, 1).RGBA()
	if b>>8 != 255 {
		t.Errorf("pixel (2,1) blue = %d, want 255", b>>8)
	}
}

func TestDecodeRGBAInvalid(t *testing.T) {
	if _, _, err := DecodeRGBA([]byte("not an image")); err == nil {
		t.Error("DecodeRGBA accepted junk bytes")
	}
}
