// Package alignment fits the similarity transform that maps detected face
// landmarks onto the embedding model's ideal landmark template, and warps
// the source image into fixed-size aligned face crops.
package alignment

import (
	"errors"
	"math"

	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// CropSize is the side length of an aligned face crop in pixels.
const CropSize = 112

// idealLandmarks is the canonical MobileFaceNet landmark layout for a
// CropSize x CropSize crop: left eye, right eye, nose, left mouth corner,
// right mouth corner.
var idealLandmarks = [5]geometry.Point{
	{X: 38.2946, Y: 51.6963},
	{X: 73.5318, Y: 51.5014},
	{X: 56.0252, Y: 71.7366},
	{X: 41.5493, Y: 92.3655},
	{X: 70.7299, Y: 92.2041},
}

// ErrDegenerate is returned when the landmark configuration admits no
// similarity transform (coincident points or a zero-scale fit). Such faces
// are dropped; indexing of the remaining faces proceeds.
var ErrDegenerate = errors.New("degenerate landmark configuration")

// FaceAlignment describes how to warp one detected face into the aligned
// crop. Affine maps source-image pixel coordinates to the unit crop square
// (the template divided by CropSize); BoundingBox is the square in source
// coordinates that the crop covers.
type FaceAlignment struct {
	Affine      [3][3]float64
	BoundingBox geometry.Box
}

// Align fits a 2D similarity transform (rotation, isotropic scale,
// translation) from the detected landmarks to the unit-square template in
// the least-squares sense, and derives the affine matrix and the source
// bounding box of the crop. All arithmetic is float64 so that the resulting
// face IDs are reproducible across devices.
func Align(detection faceindex.FaceDetection) (FaceAlignment, error) {
	src := detection.Landmarks

	// Centroids of the detected and template landmarks.
	var fromMean, toMean geometry.Point
	for i := 0; i < 5; i++ {
		fromMean.X += src[i].X
		fromMean.Y += src[i].Y
		toMean.X += idealLandmarks[i].X / CropSize
		toMean.Y += idealLandmarks[i].Y / CropSize
	}
	fromMean.X /= 5
	fromMean.Y /= 5
	toMean.X /= 5
	toMean.Y /= 5

	// Least-squares fit over transforms of the form [p -q; q p] + t.
	// With centered coordinates the normal equations decouple:
	//   p = sum(sx*dx + sy*dy) / sum(|s|^2)
	//   q = sum(sx*dy - sy*dx) / sum(|s|^2)
	var dot, cross, norm float64
	for i := 0; i < 5; i++ {
		sx := src[i].X - fromMean.X
		sy := src[i].Y - fromMean.Y
		dx := idealLandmarks[i].X/CropSize - toMean.X
		dy := idealLandmarks[i].Y/CropSize - toMean.Y
		dot += sx*dx + sy*dy
		cross += sx*dy - sy*dx
		norm += sx*sx + sy*sy
	}
	if norm == 0 {
		return FaceAlignment{}, ErrDegenerate
	}

	p := dot / norm
	q := cross / norm
	scale := math.Hypot(p, q)
	if scale == 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return FaceAlignment{}, ErrDegenerate
	}

	tx := toMean.X - (p*fromMean.X - q*fromMean.Y)
	ty := toMean.Y - (q*fromMean.X + p*fromMean.Y)

	// The crop covers a square of side 1/scale in source pixels, centered so
	// that the landmark centroid lands where the template centroid sits
	// relative to the crop center.
	size := 1 / scale
	center := geometry.Point{
		X: fromMean.X - (toMean.X-0.5)*size,
		Y: fromMean.Y - (toMean.Y-0.5)*size,
	}

	return FaceAlignment{
		Affine: [3][3]float64{
			{p, -q, tx},
			{q, p, ty},
			{0, 0, 1},
		},
		BoundingBox: geometry.Box{
			X:      center.X - size/2,
			Y:      center.Y - size/2,
			Width:  size,
			Height: size,
		},
	}, nil
}

// Apply maps a source-pixel point through the alignment's affine matrix
// into the unit crop square.
func (a FaceAlignment) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: a.Affine[0][0]*p.X + a.Affine[0][1]*p.Y + a.Affine[0][2],
		Y: a.Affine[1][0]*p.X + a.Affine[1][1]*p.Y + a.Affine[1][2],
	}
}
