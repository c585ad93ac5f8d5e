package detection

import (
	"errors"
	"math"
	"testing"

	"github.com/kozaktomas/face-indexer/internal/faceindex"
)

// makeOutput builds an all-zero detector tensor; zero scores mean every row
// is filtered out unless explicitly set.
func makeOutput() []float32 {
	return make([]float32, RowCount*RowStride)
}

// setRow fills one tensor row with a centered box, score and landmarks.
func setRow(output []float32, row int, xc, yc, w, h, score float32, kps [10]float32) {
	base := row * RowStride
	output[base+offXCenter] = xc
	output[base+offYCenter] = yc
	output[base+offWidth] = w
	output[base+offHeight] = h
	output[base+offScore] = score
	copy(output[base+offKps:base+offKps+10], kps[:])
}

func TestDecodeFiltersByScore(t *testing.T) {
	output := makeOutput()
	setRow(output, 0, 100, 100, 40, 40, 0.95, [10]float32{})
	setRow(output, 1, 200, 200, 40, 40, 0.69, [10]float32{}) // below threshold
	setRow(output, 2, 300, 300, 40, 40, 0.7, [10]float32{})  // exactly at threshold

	detections, err := Decode(output)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(detections) != 2 {
		t.Fatalf("got %d detections, want 2", len(detections))
	}
	if detections[0].Score != float64(float32(0.95)) {
		t.Errorf("first score = %v, want 0.95 (order must be preserved)", detections[0].Score)
	}
	if math.Abs(detections[1].Score-0.7) > 1e-6 {
		t.Errorf("second score = %v, want 0.7", detections[1].Score)
	}
}

func TestDecodeConvertsCenterToTopLeft(t *testing.T) {
	output := makeOutput()
	setRow(output, 10, 320, 240, 64, 48, 0.9, [10]float32{
		300, 220, 340, 220, 320, 240, 305, 260, 335, 260,
	})

	detections, err := Decode(output)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(detections) != 1 {
		t.Fatalf("got %d detections, want 1", len(detections))
	}

	box := detections[0].Detection.Box
	if box.X != 288 || box.Y != 216 || box.Width != 64 || box.Height != 48 {
		t.Errorf("box = %+v, want (288, 216, 64, 48)", box)
	}

	lms := detections[0].Detection.Landmarks
	if lms[faceindex.LandmarkLeftEye].X != 300 || lms[faceindex.LandmarkLeftEye].Y != 220 {
		t.Errorf("left eye = %+v, want (300, 220)", lms[faceindex.LandmarkLeftEye])
	}
	if lms[faceindex.LandmarkNose].X != 320 || lms[faceindex.LandmarkNose].Y != 240 {
		t.Errorf("nose = %+v, want (320, 240)", lms[faceindex.LandmarkNose])
	}
	if lms[faceindex.LandmarkRightMouth].X != 335 || lms[faceindex.LandmarkRightMouth].Y != 260 {
		t.Errorf("right mouth = %+v, want (335, 260)", lms[faceindex.LandmarkRightMouth])
	}
}

func TestDecodeEmptyTensor(t *testing.T) {
	detections, err := Decode(makeOutput())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(detections) != 0 {
		t.Errorf("got %d detections from zero tensor, want 0", len(detections))
	}
}

func TestDecodeMalformedLength(t *testing.T) {
	for _, n := range []int{0, 15, RowStride, RowCount*RowStride - 1, RowCount*RowStride + 16} {
		_, err := Decode(make([]float32, n))
		if !errors.Is(err, ErrMalformedOutput) {
			t.Errorf("Decode(len=%d) error = %v, want ErrMalformedOutput", n, err)
		}
	}
}
