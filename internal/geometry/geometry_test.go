package geometry

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestBoxScaleTranslate(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 30, Height: 40}

	scaled := b.Scale(2, 0.5)
	if !almostEqual(scaled.X, 20) || !almostEqual(scaled.Y, 10) ||
		!almostEqual(scaled.Width, 60) || !almostEqual(scaled.Height, 20) {
		t.Errorf("Scale(2, 0.5) = %+v", scaled)
	}

	moved := b.Translate(-10, 5)
	if !almostEqual(moved.X, 0) || !almostEqual(moved.Y, 25) ||
		!almostEqual(moved.Width, 30) || !almostEqual(moved.Height, 40) {
		t.Errorf("Translate(-10, 5) = %+v", moved)
	}
}

func TestBoxEdges(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 30, Height: 40}
	if !almostEqual(b.MaxX(), 40) {
		t.Errorf("MaxX() = %v, want 40", b.MaxX())
	}
	if !almostEqual(b.MaxY(), 60) {
		t.Errorf("MaxY() = %v, want 60", b.MaxY())
	}
	c := b.Center()
	if !almostEqual(c.X, 25) || !almostEqual(c.Y, 40) {
		t.Errorf("Center() = %+v, want (25, 40)", c)
	}
}

func TestNormalizeBox(t *testing.T) {
	tests := []struct {
		name     string
		box      Box
		dims     Dimensions
		expected Box
	}{
		{
			name:     "simple",
			box:      Box{X: 10, Y: 20, Width: 30, Height: 40},
			dims:     Dimensions{Width: 100, Height: 100},
			expected: Box{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4},
		},
		{
			name:     "non-square image",
			box:      Box{X: 400, Y: 0, Width: 80, Height: 80},
			dims:     Dimensions{Width: 800, Height: 400},
			expected: Box{X: 0.5, Y: 0, Width: 0.1, Height: 0.2},
		},
		{
			name:     "out of range is not clamped",
			box:      Box{X: 99, Y: 0, Width: 10, Height: 50},
			dims:     Dimensions{Width: 100, Height: 100},
			expected: Box{X: 0.99, Y: 0, Width: 0.1, Height: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBox(tt.box, tt.dims)
			if !almostEqual(got.X, tt.expected.X) || !almostEqual(got.Y, tt.expected.Y) ||
				!almostEqual(got.Width, tt.expected.Width) || !almostEqual(got.Height, tt.expected.Height) {
				t.Errorf("NormalizeBox() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestNormalizeLandmarks(t *testing.T) {
	landmarks := [5]Point{
		{X: 30, Y: 30}, {X: 70, Y: 30}, {X: 50, Y: 55}, {X: 35, Y: 80}, {X: 65, Y: 80},
	}
	got := NormalizeLandmarks(landmarks, Dimensions{Width: 100, Height: 200})
	if !almostEqual(got[0].X, 0.3) || !almostEqual(got[0].Y, 0.15) {
		t.Errorf("landmark 0 = %+v, want (0.3, 0.15)", got[0])
	}
	if !almostEqual(got[4].X, 0.65) || !almostEqual(got[4].Y, 0.4) {
		t.Errorf("landmark 4 = %+v, want (0.65, 0.4)", got[4])
	}
}
