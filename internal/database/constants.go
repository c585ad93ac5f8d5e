package database

// HNSW index parameters for 192-dim face embeddings
const (
	// HNSWMaxNeighbors (M) is the maximum number of neighbors per node.
	// Higher values improve recall but increase memory and build time.
	HNSWMaxNeighbors = 16

	// DefaultSearchLimit caps similar-face queries when the caller does not
	// ask for a specific number of results.
	DefaultSearchLimit = 50
)
