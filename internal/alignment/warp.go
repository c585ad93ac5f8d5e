package alignment

import (
	"fmt"
	"image"
	"math"
)

// Aligned crops are handed to the embedder as RGB floats normalized to
// [-1, 1], the range MobileFaceNet was trained with.
const (
	channelOffset = 127.5
	channelScale  = 127.5
)

// CropFloats is the number of floats in one aligned face crop
// (CropSize x CropSize, RGB channel-last).
const CropFloats = CropSize * CropSize * 3

// NormalizePixel converts one 8-bit channel value to the embedder's
// normalized range.
func NormalizePixel(v uint8) float32 {
	return float32((float64(v) - channelOffset) / channelScale)
}

// DenormalizePixel converts a normalized channel value back to the 0-255
// range. Used by the blur detector to recover grayscale intensities.
func DenormalizePixel(v float32) float64 {
	return float64(v)*channelScale + channelOffset
}

// WarpCrop warps the aligned face region of src into dst, which must hold
// at least CropFloats values. Each output pixel (u, v) is sampled from the
// source at the inverse affine image of the pixel center, with bilinear
// interpolation and edge clamping. Channels are written RGB channel-last,
// row-major, normalized for the embedder.
func (a FaceAlignment) WarpCrop(src *image.RGBA, dst []float32) error {
	if len(dst) < CropFloats {
		return fmt.Errorf("crop buffer too small: %d floats, want %d", len(dst), CropFloats)
	}

	// Invert the 2x2 rotation-scale block; the affine is [p -q; q p] so the
	// determinant is p^2 + q^2 and singularity was already rejected by Align.
	p, q := a.Affine[0][0], a.Affine[1][0]
	det := p*p + q*q
	i00, i01 := p/det, q/det
	i10, i11 := -q/det, p/det
	itx := -(i00*a.Affine[0][2] + i01*a.Affine[1][2])
	ity := -(i10*a.Affine[0][2] + i11*a.Affine[1][2])

	width := src.Rect.Dx()
	height := src.Rect.Dy()

	for v := 0; v < CropSize; v++ {
		// The affine targets the unit crop square, so pixel centers are
		// scaled down by CropSize before applying the inverse.
		uy := (float64(v) + 0.5) / CropSize
		for u := 0; u < CropSize; u++ {
			ux := (float64(u) + 0.5) / CropSize
			sx := i00*ux + i01*uy + itx
			sy := i10*ux + i11*uy + ity

			r, g, b := sampleBilinear(src, sx, sy, width, height)

			base := (v*CropSize + u) * 3
			dst[base] = float32((r - channelOffset) / channelScale)
			dst[base+1] = float32((g - channelOffset) / channelScale)
			dst[base+2] = float32((b - channelOffset) / channelScale)
		}
	}

	return nil
}

// sampleBilinear reads the source at a fractional pixel coordinate with
// bilinear interpolation. Samples outside the image clamp to the edge.
func sampleBilinear(src *image.RGBA, x, y float64, width, height int) (r, g, b float64) {
	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	x1 := clampIndex(x0+1, width)
	y1 := clampIndex(y0+1, height)
	x0 = clampIndex(x0, width)
	y0 = clampIndex(y0, height)

	r00, g00, b00 := pixelAt(src, x0, y0)
	r10, g10, b10 := pixelAt(src, x1, y0)
	r01, g01, b01 := pixelAt(src, x0, y1)
	r11, g11, b11 := pixelAt(src, x1, y1)

	w00 := (1 - fx) * (1 - fy)
	w10 := fx * (1 - fy)
	w01 := (1 - fx) * fy
	w11 := fx * fy

	r = r00*w00 + r10*w10 + r01*w01 + r11*w11
	g = g00*w00 + g10*w10 + g01*w01 + g11*w11
	b = b00*w00 + b10*w10 + b01*w01 + b11*w11
	return r, g, b
}

func pixelAt(src *image.RGBA, x, y int) (r, g, b float64) {
	base := y*src.Stride + x*4
	return float64(src.Pix[base]), float64(src.Pix[base+1]), float64(src.Pix[base+2])
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
