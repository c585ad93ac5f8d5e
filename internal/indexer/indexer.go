// Package indexer orchestrates the per-image face indexing pipeline:
// detector decode, coordinate remap, alignment, batched warping, embedding
// and blur scoring, assembled into an immutable FaceIndex.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/kozaktomas/face-indexer/internal/alignment"
	"github.com/kozaktomas/face-indexer/internal/blur"
	"github.com/kozaktomas/face-indexer/internal/detection"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// PipelineVersion couples the model weights, constants and algorithms of
// this pipeline. Indices are comparable only within one version; remote
// indices with an older version are reindexed locally.
const PipelineVersion = 1

// BatchSize is the number of faces warped and embedded per inference call.
// Bounded batches keep peak memory and per-call latency predictable.
const BatchSize = 50

// InferenceWorker is the external inference boundary. Implementations run
// the neural models; the pipeline itself stays pure and deterministic.
// Both calls may block and honor context cancellation; the worker is
// expected to serialize access internally.
type InferenceWorker interface {
	// DetectFaces runs the face detector over a raw RGBA pixel buffer of
	// the given dimensions. Letterboxing to the model canvas and input
	// normalization happen inside the worker. The result is the flat
	// [25200, 16] detector tensor.
	DetectFaces(ctx context.Context, pixels []byte, dims geometry.Dimensions) ([]float32, error)

	// ComputeFaceEmbeddings embeds count aligned face crops, passed as a
	// contiguous [count, 112, 112, 3] float buffer, and returns a flat
	// [count, 192] result.
	ComputeFaceEmbeddings(ctx context.Context, crops []float32, count int) ([]float32, error)
}

// Indexer runs the indexing pipeline against one inference worker.
type Indexer struct {
	worker InferenceWorker
}

// New creates an Indexer using the given inference worker.
func New(worker InferenceWorker) *Indexer {
	return &Indexer{worker: worker}
}

// IndexFaces indexes all faces of one image. The image must be a tightly
// packed RGBA buffer with bounds starting at the origin. The result is
// deterministic for fixed pixels, model weights and pipeline version: face
// order follows the detector, coordinates are normalized to [0, 1], and
// face IDs are stable across reindexing. Either a complete index or an
// error is returned, never a partial result.
func (ix *Indexer) IndexFaces(ctx context.Context, fileID int64, img *image.RGBA) (*faceindex.FaceIndex, error) {
	dims := geometry.Dimensions{Width: img.Rect.Dx(), Height: img.Rect.Dy()}

	output, err := ix.worker.DetectFaces(ctx, img.Pix, dims)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	decoded, err := detection.Decode(output)
	if err != nil {
		return nil, err
	}
	detections := detection.ToSourceFrame(decoded, dims)

	// Fit an alignment per detection. Degenerate landmark configurations
	// drop the face; the rest of the image still gets indexed.
	type pendingFace struct {
		faceID    string
		detection faceindex.FaceDetection
		score     float64
		align     alignment.FaceAlignment
	}
	pending := make([]pendingFace, 0, len(detections))
	for _, d := range detections {
		align, err := alignment.Align(d.Detection)
		if errors.Is(err, alignment.ErrDegenerate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		pending = append(pending, pendingFace{
			faceID:    faceindex.MakeFaceID(fileID, d.Detection.Box, dims),
			detection: d.Detection,
			score:     d.Score,
			align:     align,
		})
	}

	faces := make([]faceindex.Face, 0, len(pending))
	for start := 0; start < len(pending); start += BatchSize {
		end := min(start+BatchSize, len(pending))
		batch := pending[start:end]

		crops := make([]float32, len(batch)*alignment.CropFloats)
		for i, f := range batch {
			if err := f.align.WarpCrop(img, crops[i*alignment.CropFloats:]); err != nil {
				return nil, err
			}
		}

		embeddings, err := ix.worker.ComputeFaceEmbeddings(ctx, crops, len(batch))
		if err != nil {
			return nil, fmt.Errorf("face embedding failed: %w", err)
		}
		if len(embeddings) != len(batch)*faceindex.EmbeddingDim {
			return nil, fmt.Errorf("embedder returned %d floats for %d faces, want %d",
				len(embeddings), len(batch), len(batch)*faceindex.EmbeddingDim)
		}

		for i, f := range batch {
			crop := crops[i*alignment.CropFloats : (i+1)*alignment.CropFloats]
			embedding := make([]float32, faceindex.EmbeddingDim)
			copy(embedding, embeddings[i*faceindex.EmbeddingDim:(i+1)*faceindex.EmbeddingDim])

			faces = append(faces, faceindex.Face{
				FaceID:    f.faceID,
				Detection: f.detection.Normalize(dims),
				Score:     f.score,
				Blur:      blur.ScoreCrop(crop, f.detection.Landmarks),
				Embedding: embedding,
			})
		}
	}

	return &faceindex.FaceIndex{
		Width:  dims.Width,
		Height: dims.Height,
		Faces:  faces,
	}, nil
}
