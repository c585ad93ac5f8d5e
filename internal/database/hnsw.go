package database

import (
	"fmt"
	"os"
	"sync"

	"github.com/coder/hnsw"
)

// HNSWIndex wraps an HNSW graph over face embeddings for fast similar-face
// search, keyed by face ID.
type HNSWIndex struct {
	graph    *hnsw.Graph[string]
	idToFace map[string]*StoredFace
	mu       sync.RWMutex
	path     string // optional persistence path
}

// NewHNSWIndex creates a new empty index. When path is non-empty, Save
// persists the graph there.
func NewHNSWIndex(path string) *HNSWIndex {
	return &HNSWIndex{
		idToFace: make(map[string]*StoredFace),
		path:     path,
	}
}

func newGraph() *hnsw.Graph[string] {
	g := hnsw.NewGraph[string]()
	g.M = HNSWMaxNeighbors
	g.Ml = 1.0 / float64(HNSWMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.CosineDistance
	return g
}

// Build replaces the index contents with the given faces.
func (h *HNSWIndex) Build(faces []StoredFace) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.idToFace = make(map[string]*StoredFace, len(faces))
	if len(faces) == 0 {
		h.graph = nil
		return nil
	}

	g := newGraph()
	for i := range faces {
		face := &faces[i]
		if len(face.Embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(face.FaceID, face.Embedding))
		h.idToFace[face.FaceID] = face
	}

	h.graph = g
	return nil
}

// Add inserts a single face into the index, replacing any previous entry
// with the same face ID.
func (h *HNSWIndex) Add(face *StoredFace) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(face.Embedding) == 0 {
		return
	}
	if h.graph == nil {
		h.graph = newGraph()
	}
	h.graph.Add(hnsw.MakeNode(face.FaceID, face.Embedding))
	h.idToFace[face.FaceID] = face
}

// Search returns the k stored faces nearest to the query embedding with
// their cosine distances, nearest first.
func (h *HNSWIndex) Search(query []float32, k int) ([]SimilarFace, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.graph == nil {
		return nil, nil
	}

	neighbors := h.graph.Search(query, k)
	hits := make([]SimilarFace, 0, len(neighbors))
	for _, n := range neighbors {
		face, ok := h.idToFace[n.Key]
		if !ok {
			continue
		}
		hits = append(hits, SimilarFace{
			StoredFace: *face,
			Distance:   float64(hnsw.CosineDistance(query, n.Value)),
		})
	}
	return hits, nil
}

// Count returns the number of indexed faces.
func (h *HNSWIndex) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.idToFace)
}

// Save persists the graph to the configured path. A missing path or an
// empty index is a no-op (an existing file is removed for the latter).
func (h *HNSWIndex) Save() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.path == "" {
		return nil
	}
	if h.graph == nil {
		_ = os.Remove(h.path)
		return nil
	}

	f, err := os.Create(h.path)
	if err != nil {
		return fmt.Errorf("failed to create HNSW index file: %w", err)
	}
	defer f.Close()

	if err := h.graph.Export(f); err != nil {
		return fmt.Errorf("failed to export HNSW graph: %w", err)
	}
	return nil
}
