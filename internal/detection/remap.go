package detection

import (
	"math"

	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// ScaledSize returns the dimensions of an image scaled to fit inside the
// square model canvas while preserving its aspect ratio.
func ScaledSize(dims geometry.Dimensions) (int, int) {
	scale := math.Min(
		float64(CanvasSize)/float64(dims.Width),
		float64(CanvasSize)/float64(dims.Height),
	)
	w := clampInt(int(math.Round(float64(dims.Width)*scale)), 0, CanvasSize)
	h := clampInt(int(math.Round(float64(dims.Height)*scale)), 0, CanvasSize)
	return w, h
}

// LetterboxBox returns the rectangle inside the model canvas that the
// letterboxed image occupies: centered, aspect-preserving.
func LetterboxBox(dims geometry.Dimensions) geometry.Box {
	w, h := ScaledSize(dims)
	return geometry.Box{
		X:      float64(CanvasSize-w) / 2,
		Y:      float64(CanvasSize-h) / 2,
		Width:  float64(w),
		Height: float64(h),
	}
}

// RemapBox transforms a box from the inBox frame to the toBox frame by
// translating and then scaling. Width and height scale by the per-axis
// factors.
func RemapBox(b geometry.Box, inBox, toBox geometry.Box) geometry.Box {
	sx := toBox.Width / inBox.Width
	sy := toBox.Height / inBox.Height
	return b.Translate(toBox.X-inBox.X, toBox.Y-inBox.Y).Scale(sx, sy)
}

// InverseRemapBox undoes RemapBox for the same frame pair: scale back
// first, then translate back.
func InverseRemapBox(b geometry.Box, inBox, toBox geometry.Box) geometry.Box {
	sx := toBox.Width / inBox.Width
	sy := toBox.Height / inBox.Height
	return b.Scale(1/sx, 1/sy).Translate(inBox.X-toBox.X, inBox.Y-toBox.Y)
}

// RemapDetection transforms a detection's box and landmarks from the inBox
// frame to the toBox frame.
func RemapDetection(d faceindex.FaceDetection, inBox, toBox geometry.Box) faceindex.FaceDetection {
	sx := toBox.Width / inBox.Width
	sy := toBox.Height / inBox.Height
	return d.Translate(toBox.X-inBox.X, toBox.Y-inBox.Y).Scale(sx, sy)
}

// ToSourceFrame remaps canvas-frame detections to source image pixel
// coordinates, undoing the letterbox placement.
func ToSourceFrame(detections []ScoredDetection, dims geometry.Dimensions) []ScoredDetection {
	inBox := LetterboxBox(dims)
	toBox := geometry.Box{Width: float64(dims.Width), Height: float64(dims.Height)}

	out := make([]ScoredDetection, len(detections))
	for i, d := range detections {
		out[i] = ScoredDetection{
			Detection: RemapDetection(d.Detection, inBox, toBox),
			Score:     d.Score,
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
