// Package blur scores the sharpness of aligned face crops. The score is the
// variance of a 4-connected Laplacian over a grayscale crop whose column
// window depends on which way the face points, so that profile faces are
// judged on the visible half only.
package blur

import (
	"math"

	"github.com/kozaktomas/face-indexer/internal/alignment"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// Direction is the horizontal facing of a face as judged from its
// landmarks.
type Direction string

const (
	DirectionLeft     Direction = "left"
	DirectionRight    Direction = "right"
	DirectionStraight Direction = "straight"
)

// stripWidth is the total number of columns removed from the crop before
// the Laplacian is evaluated.
const stripWidth = 56

// FaceDirection classifies which way the face points. The tests are
// relative to eye and mouth spacing, so they work in any coordinate frame.
func FaceDirection(landmarks [5]geometry.Point) Direction {
	leftEye := landmarks[faceindex.LandmarkLeftEye]
	rightEye := landmarks[faceindex.LandmarkRightEye]
	nose := landmarks[faceindex.LandmarkNose]
	leftMouth := landmarks[faceindex.LandmarkLeftMouth]
	rightMouth := landmarks[faceindex.LandmarkRightMouth]

	eyeDistanceX := math.Abs(rightEye.X - leftEye.X)
	eyeDistanceY := math.Abs(rightEye.Y - leftEye.Y)
	mouthDistanceY := math.Abs(rightMouth.Y - leftMouth.Y)

	faceIsUpright := math.Max(leftEye.Y, rightEye.Y)+0.5*eyeDistanceY < nose.Y &&
		nose.Y+0.5*mouthDistanceY < math.Min(leftMouth.Y, rightMouth.Y)

	noseStickingOutLeft := nose.X < math.Min(leftEye.X, rightEye.X) &&
		nose.X < math.Min(leftMouth.X, rightMouth.X)
	noseStickingOutRight := nose.X > math.Max(leftEye.X, rightEye.X) &&
		nose.X > math.Max(leftMouth.X, rightMouth.X)

	noseCloseToLeftEye := math.Abs(nose.X-leftEye.X) < 0.2*eyeDistanceX
	noseCloseToRightEye := math.Abs(nose.X-rightEye.X) < 0.2*eyeDistanceX

	if noseStickingOutLeft || (faceIsUpright && noseCloseToLeftEye) {
		return DirectionLeft
	}
	if noseStickingOutRight || (faceIsUpright && noseCloseToRightEye) {
		return DirectionRight
	}
	return DirectionStraight
}

// CropGrayscale converts one aligned face crop (normalized RGB floats, as
// produced by the warper) to an integer grayscale matrix indexed
// [row][col], using the ITU-R BT.601 luma formula on the recovered 0-255
// channel values.
func CropGrayscale(crop []float32) [][]int {
	gray := make([][]int, alignment.CropSize)
	for y := 0; y < alignment.CropSize; y++ {
		gray[y] = make([]int, alignment.CropSize)
		for x := 0; x < alignment.CropSize; x++ {
			base := (y*alignment.CropSize + x) * 3
			r := alignment.DenormalizePixel(crop[base])
			g := alignment.DenormalizePixel(crop[base+1])
			b := alignment.DenormalizePixel(crop[base+2])
			gray[y][x] = int(math.Round(0.299*r + 0.587*g + 0.114*b))
		}
	}
	return gray
}

// Score computes the blur score of a grayscale face crop: the population
// variance of the Laplacian over the direction-dependent column window.
// Larger values mean sharper faces; a constant crop scores zero.
func Score(gray [][]int, direction Direction) float64 {
	laplacian := applyLaplacian(gray, direction)
	return matrixVariance(laplacian)
}

// ScoreCrop is a convenience wrapper: grayscale conversion, direction
// classification and scoring in one call.
func ScoreCrop(crop []float32, landmarks [5]geometry.Point) float64 {
	return Score(CropGrayscale(crop), FaceDirection(landmarks))
}

// cropWindow returns the first and last kept column (inclusive start,
// exclusive end) for a direction. Straight faces keep the middle, profile
// faces keep the visible half.
func cropWindow(numCols int, direction Direction) (int, int) {
	switch direction {
	case DirectionLeft:
		// The face points left, so the left side of the crop is background.
		return stripWidth, numCols
	case DirectionRight:
		return 0, numCols - stripWidth
	default:
		return stripWidth / 2, numCols - stripWidth/2
	}
}

// applyLaplacian crops the image by direction, pads it with a one-step
// reflected border and convolves with the 4-connected Laplacian kernel
//
//	[ 0  1  0 ]
//	[ 1 -4  1 ]
//	[ 0  1  0 ]
//
// The reflection copies the second inner row/column (pad[0] = pad[2],
// pad[n+1] = pad[n-1]); keep it that way so blur scores stay comparable
// across clients.
func applyLaplacian(gray [][]int, direction Direction) [][]int {
	numRows := len(gray)
	numCols := len(gray[0])
	start, end := cropWindow(numCols, direction)

	paddedNumRows := numRows + 2
	paddedNumCols := numCols + 2 - stripWidth
	padded := make([][]int, paddedNumRows)
	for i := range padded {
		padded[i] = make([]int, paddedNumCols)
	}

	for i := 0; i < numRows; i++ {
		for j := start; j < end; j++ {
			padded[i+1][j-start+1] = gray[i][j]
		}
	}

	// One-step reflection: the border repeats the second inner line, not
	// the first.
	for j := 0; j < paddedNumCols; j++ {
		padded[0][j] = padded[2][j]
		padded[paddedNumRows-1][j] = padded[paddedNumRows-3][j]
	}
	for i := 0; i < paddedNumRows; i++ {
		padded[i][0] = padded[i][2]
		padded[i][paddedNumCols-1] = padded[i][paddedNumCols-3]
	}

	out := make([][]int, numRows)
	for i := range out {
		out[i] = make([]int, end-start)
		for j := range out[i] {
			pi, pj := i+1, j+1
			out[i][j] = padded[pi-1][pj] + padded[pi+1][pj] +
				padded[pi][pj-1] + padded[pi][pj+1] -
				4*padded[pi][pj]
		}
	}
	return out
}

// matrixVariance computes the population variance of a matrix. The two
// summation passes run in fixed row-major order; do not reorder them, the
// exact floating-point result is part of the cross-device contract.
func matrixVariance(m [][]int) float64 {
	var sum float64
	var count int
	for _, row := range m {
		for _, v := range row {
			sum += float64(v)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	mean := sum / float64(count)

	var variance float64
	for _, row := range m {
		for _, v := range row {
			d := float64(v) - mean
			variance += d * d
		}
	}
	return variance / float64(count)
}
