package faceindex

import (
	"regexp"
	"testing"

	"github.com/kozaktomas/face-indexer/internal/geometry"
)

func TestMakeFaceID(t *testing.T) {
	tests := []struct {
		name     string
		fileID   int64
		box      geometry.Box
		dims     geometry.Dimensions
		expected string
	}{
		{
			name:     "simple box",
			fileID:   42,
			box:      geometry.Box{X: 10, Y: 20, Width: 30, Height: 40},
			dims:     geometry.Dimensions{Width: 100, Height: 100},
			expected: "42_10000_20000_40000_60000",
		},
		{
			name:     "box past the right edge clamps",
			fileID:   7,
			box:      geometry.Box{X: 99, Y: 0, Width: 10, Height: 50},
			dims:     geometry.Dimensions{Width: 100, Height: 100},
			expected: "7_99000_00000_99999_50000",
		},
		{
			name:     "negative coordinate clamps to zero",
			fileID:   3,
			box:      geometry.Box{X: -5, Y: 10, Width: 20, Height: 20},
			dims:     geometry.Dimensions{Width: 100, Height: 100},
			expected: "3_00000_10000_15000_30000",
		},
		{
			name:     "non-square image",
			fileID:   1,
			box:      geometry.Box{X: 400, Y: 0, Width: 80, Height: 80},
			dims:     geometry.Dimensions{Width: 800, Height: 400},
			expected: "1_50000_00000_60000_20000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MakeFaceID(tt.fileID, tt.box, tt.dims)
			if got != tt.expected {
				t.Errorf("MakeFaceID() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestMakeFaceIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d+(_\d{5}){4}$`)

	boxes := []geometry.Box{
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: 10, Y: 20, Width: 30, Height: 40},
		{X: 99.5, Y: 99.5, Width: 50, Height: 50},
		{X: -10, Y: -10, Width: 5, Height: 5},
		{X: 33.33, Y: 66.66, Width: 12.5, Height: 12.5},
	}
	for _, box := range boxes {
		id := MakeFaceID(12345, box, geometry.Dimensions{Width: 100, Height: 100})
		if !pattern.MatchString(id) {
			t.Errorf("MakeFaceID(%+v) = %q does not match %s", box, id, pattern)
		}
	}
}

func TestFileIDFromFaceID(t *testing.T) {
	tests := []struct {
		name   string
		faceID string
		fileID int64
		ok     bool
	}{
		{"valid", "42_10000_20000_40000_60000", 42, true},
		{"zero file ID", "0_00000_00000_99999_99999", 0, true},
		{"large file ID", "9223372036854775807_00000_00000_00001_00001", 9223372036854775807, true},
		{"no separator", "42", 0, false},
		{"non-numeric prefix", "abc_10000_20000_40000_60000", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID, ok := FileIDFromFaceID(tt.faceID)
			if fileID != tt.fileID || ok != tt.ok {
				t.Errorf("FileIDFromFaceID(%q) = (%d, %v), want (%d, %v)",
					tt.faceID, fileID, ok, tt.fileID, tt.ok)
			}
		})
	}
}

func TestFaceIDRoundTrip(t *testing.T) {
	dims := geometry.Dimensions{Width: 640, Height: 480}
	for _, fileID := range []int64{0, 1, 42, 1000000, 9007199254740991} {
		id := MakeFaceID(fileID, geometry.Box{X: 100, Y: 50, Width: 80, Height: 90}, dims)
		got, ok := FileIDFromFaceID(id)
		if !ok || got != fileID {
			t.Errorf("round trip of fileID %d through %q = (%d, %v)", fileID, id, got, ok)
		}
	}
}
