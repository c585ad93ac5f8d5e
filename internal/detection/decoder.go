// Package detection decodes the raw face detector output tensor and remaps
// detections between the model canvas and source image coordinate frames.
package detection

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// Detector output tensor geometry. The detector emits a row-major
// [RowCount, RowStride] float buffer over a CanvasSize x CanvasSize
// letterboxed canvas.
const (
	RowCount   = 25200
	RowStride  = 16
	CanvasSize = 640

	// ScoreThreshold is the minimum detection score for a row to be kept.
	ScoreThreshold = 0.7
)

// Row layout offsets.
const (
	offXCenter = 0
	offYCenter = 1
	offWidth   = 2
	offHeight  = 3
	offScore   = 4
	offKps     = 5 // five (x, y) pairs follow
)

// ErrMalformedOutput is returned when the detector buffer does not have the
// expected tensor shape. It indicates a model mismatch, not bad input data.
var ErrMalformedOutput = errors.New("malformed detector output")

// ScoredDetection is a decoded candidate detection with its detector score.
type ScoredDetection struct {
	Detection faceindex.FaceDetection
	Score     float64
}

// Decode parses the detector output tensor into candidate detections in
// model canvas coordinates. Rows scoring below ScoreThreshold are dropped;
// row order is preserved among the accepted rows. Box centers are converted
// to top-left corners.
func Decode(output []float32) ([]ScoredDetection, error) {
	if len(output) != RowCount*RowStride {
		return nil, fmt.Errorf("%w: got %d floats, want %d", ErrMalformedOutput, len(output), RowCount*RowStride)
	}

	var detections []ScoredDetection
	for i := 0; i < RowCount; i++ {
		row := output[i*RowStride : (i+1)*RowStride]
		// Compare at the tensor's float32 precision so a score of exactly
		// ScoreThreshold is kept.
		if row[offScore] < ScoreThreshold {
			continue
		}
		score := float64(row[offScore])

		w := float64(row[offWidth])
		h := float64(row[offHeight])
		det := faceindex.FaceDetection{
			Box: geometry.Box{
				X:      float64(row[offXCenter]) - w/2,
				Y:      float64(row[offYCenter]) - h/2,
				Width:  w,
				Height: h,
			},
		}
		for l := 0; l < 5; l++ {
			det.Landmarks[l] = geometry.Point{
				X: float64(row[offKps+2*l]),
				Y: float64(row[offKps+2*l+1]),
			}
		}

		detections = append(detections, ScoredDetection{Detection: det, Score: score})
	}

	return detections, nil
}
