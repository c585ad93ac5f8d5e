package faceindex

import (
	"encoding/json"
	"testing"

	"github.com/kozaktomas/face-indexer/internal/geometry"
)

func sampleIndex() FaceIndex {
	return FaceIndex{
		Width:  800,
		Height: 600,
		Faces: []Face{
			{
				FaceID: "42_10000_20000_40000_60000",
				Detection: FaceDetection{
					Box: geometry.Box{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4},
					Landmarks: [5]geometry.Point{
						{X: 0.15, Y: 0.3}, {X: 0.35, Y: 0.3}, {X: 0.25, Y: 0.4},
						{X: 0.18, Y: 0.5}, {X: 0.32, Y: 0.5},
					},
				},
				Score:     0.92,
				Blur:      153.4,
				Embedding: make([]float32, EmbeddingDim),
			},
		},
	}
}

func TestDetectionNormalize(t *testing.T) {
	d := FaceDetection{
		Box: geometry.Box{X: 80, Y: 60, Width: 160, Height: 120},
		Landmarks: [5]geometry.Point{
			{X: 100, Y: 90}, {X: 200, Y: 90}, {X: 150, Y: 120}, {X: 110, Y: 150}, {X: 190, Y: 150},
		},
	}
	got := d.Normalize(geometry.Dimensions{Width: 800, Height: 600})
	if got.Box.X != 0.1 || got.Box.Y != 0.1 || got.Box.Width != 0.2 || got.Box.Height != 0.2 {
		t.Errorf("normalized box = %+v", got.Box)
	}
	if got.Landmarks[LandmarkNose].X != 0.1875 || got.Landmarks[LandmarkNose].Y != 0.2 {
		t.Errorf("normalized nose = %+v", got.Landmarks[LandmarkNose])
	}
}

func TestRemoteEnvelopeRoundTrip(t *testing.T) {
	remote := RemoteFaceIndex{
		FaceIndex: sampleIndex(),
		Version:   1,
		Client:    "face-indexer/1.0",
	}

	data, err := json.Marshal(remote)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded RemoteFaceIndex
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded.Version != 1 || decoded.Client != "face-indexer/1.0" {
		t.Errorf("envelope fields = version %d, client %q", decoded.Version, decoded.Client)
	}
	if decoded.Width != 800 || decoded.Height != 600 || len(decoded.Faces) != 1 {
		t.Errorf("index fields = %dx%d, %d faces", decoded.Width, decoded.Height, len(decoded.Faces))
	}
	if decoded.Faces[0].FaceID != remote.Faces[0].FaceID {
		t.Errorf("face ID = %q, want %q", decoded.Faces[0].FaceID, remote.Faces[0].FaceID)
	}
	if len(decoded.Faces[0].Embedding) != EmbeddingDim {
		t.Errorf("embedding length = %d, want %d", len(decoded.Faces[0].Embedding), EmbeddingDim)
	}
}

func TestRemoteOutdated(t *testing.T) {
	tests := []struct {
		name      string
		version   int
		supported int
		outdated  bool
	}{
		{"same version", 1, 1, false},
		{"older than supported", 1, 2, true},
		{"newer than supported", 2, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := RemoteFaceIndex{Version: tt.version}
			if got := r.Outdated(tt.supported); got != tt.outdated {
				t.Errorf("Outdated(%d) with version %d = %v, want %v",
					tt.supported, tt.version, got, tt.outdated)
			}
		})
	}
}
