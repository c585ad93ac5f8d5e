// Package faceindex defines the data model produced by the face indexing
// pipeline: per-face detections, the per-image FaceIndex, the storage and
// transport envelopes, and the stable face identifier format.
package faceindex

import (
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// Landmark indices within FaceDetection.Landmarks. The order is fixed and
// part of the contract.
const (
	LandmarkLeftEye = iota
	LandmarkRightEye
	LandmarkNose
	LandmarkLeftMouth
	LandmarkRightMouth
)

// EmbeddingDim is the fixed length of a face embedding vector.
const EmbeddingDim = 192

// FaceDetection is a detected face: bounding box plus five landmarks in the
// same coordinate frame as the box.
type FaceDetection struct {
	Box       geometry.Box      `json:"box"`
	Landmarks [5]geometry.Point `json:"landmarks"`
}

// Scale multiplies box and landmarks by per-axis factors.
func (d FaceDetection) Scale(sx, sy float64) FaceDetection {
	out := FaceDetection{Box: d.Box.Scale(sx, sy)}
	for i, p := range d.Landmarks {
		out.Landmarks[i] = p.Scale(sx, sy)
	}
	return out
}

// Translate shifts box and landmarks.
func (d FaceDetection) Translate(dx, dy float64) FaceDetection {
	out := FaceDetection{Box: d.Box.Translate(dx, dy)}
	for i, p := range d.Landmarks {
		out.Landmarks[i] = p.Translate(dx, dy)
	}
	return out
}

// Normalize converts the detection from pixel to relative (0-1) coordinates.
func (d FaceDetection) Normalize(dims geometry.Dimensions) FaceDetection {
	return FaceDetection{
		Box:       geometry.NormalizeBox(d.Box, dims),
		Landmarks: geometry.NormalizeLandmarks(d.Landmarks, dims),
	}
}

// Face is one indexed face. Detection coordinates are relative (0-1) to the
// source image dimensions.
type Face struct {
	FaceID    string        `json:"faceID"`
	Detection FaceDetection `json:"detection"`
	Score     float64       `json:"score"`
	Blur      float64       `json:"blur"`
	Embedding []float32     `json:"embedding"`
}

// FaceIndex is the per-image result of the pipeline. Width and Height are
// the source image dimensions in pixels. Faces keep the order in which the
// detector emitted them.
type FaceIndex struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Faces  []Face `json:"faces"`
}

// LocalFaceIndex is the envelope stored in the local database.
type LocalFaceIndex struct {
	FileID int64 `json:"fileID"`
	FaceIndex
}

// RemoteFaceIndex is the envelope serialized for remote storage. Version is
// the pipeline version that produced the index; Client identifies the
// producing implementation.
type RemoteFaceIndex struct {
	FaceIndex
	Version int    `json:"version"`
	Client  string `json:"client"`
}

// Outdated reports whether the index was produced by a pipeline strictly
// older than the supported version. Outdated indices must be ignored by
// consumers, forcing a local reindex.
func (r RemoteFaceIndex) Outdated(supported int) bool {
	return r.Version < supported
}
