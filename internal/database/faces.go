package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/kozaktomas/face-indexer/internal/faceindex"
	"github.com/kozaktomas/face-indexer/internal/geometry"
)

// ErrNotFound is returned when no face index exists for a file.
var ErrNotFound = errors.New("face index not found")

// StoredFace is one face row. Box and Landmarks hold the normalized (0-1)
// detection: box as [x, y, w, h], landmarks as [x0, y0, ..., x4, y4] in
// contract order.
type StoredFace struct {
	ID        int64
	FileID    int64
	FaceIndex int
	FaceID    string
	Box       []float64
	Landmarks []float64
	Score     float64
	Blur      float64
	Embedding []float32
	CreatedAt time.Time
}

// SimilarFace is a search hit with its cosine distance to the query.
type SimilarFace struct {
	StoredFace
	Distance float64
}

// FaceRepository handles database operations for face indices.
type FaceRepository struct {
	pool *pgxpool.Pool
	hnsw *HNSWIndex
}

// NewFaceRepository creates a new face repository.
func NewFaceRepository(pool *pgxpool.Pool) *FaceRepository {
	return &FaceRepository{pool: pool}
}

// storedFromFace flattens a pipeline Face into a row.
func storedFromFace(fileID int64, position int, f faceindex.Face) StoredFace {
	landmarks := make([]float64, 0, 10)
	for _, p := range f.Detection.Landmarks {
		landmarks = append(landmarks, p.X, p.Y)
	}
	return StoredFace{
		FileID:    fileID,
		FaceIndex: position,
		FaceID:    f.FaceID,
		Box:       []float64{f.Detection.Box.X, f.Detection.Box.Y, f.Detection.Box.Width, f.Detection.Box.Height},
		Landmarks: landmarks,
		Score:     f.Score,
		Blur:      f.Blur,
		Embedding: f.Embedding,
	}
}

// faceFromStored rebuilds a pipeline Face from a row.
func faceFromStored(s StoredFace) faceindex.Face {
	var det faceindex.FaceDetection
	if len(s.Box) == 4 {
		det.Box = geometry.Box{X: s.Box[0], Y: s.Box[1], Width: s.Box[2], Height: s.Box[3]}
	}
	if len(s.Landmarks) == 10 {
		for i := range det.Landmarks {
			det.Landmarks[i] = geometry.Point{X: s.Landmarks[2*i], Y: s.Landmarks[2*i+1]}
		}
	}
	return faceindex.Face{
		FaceID:    s.FaceID,
		Detection: det,
		Score:     s.Score,
		Blur:      s.Blur,
		Embedding: s.Embedding,
	}
}

// SaveFaceIndex stores a file's face index, replacing any previous rows for
// that file. The run ID tags which indexing run produced the rows.
func (r *FaceRepository) SaveFaceIndex(ctx context.Context, index faceindex.LocalFaceIndex, runID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, "DELETE FROM face_files WHERE file_id = $1", index.FileID)
	if err != nil {
		return fmt.Errorf("failed to delete previous index: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO face_files (file_id, width, height, face_count, run_id, indexed_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, index.FileID, index.Width, index.Height, len(index.Faces), runID)
	if err != nil {
		return fmt.Errorf("failed to insert file record: %w", err)
	}

	for i, face := range index.Faces {
		s := storedFromFace(index.FileID, i, face)
		_, err = tx.Exec(ctx, `
			INSERT INTO faces (file_id, face_index, face_id, box, landmarks, score, blur, embedding, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		`, s.FileID, s.FaceIndex, s.FaceID, s.Box, s.Landmarks, s.Score, s.Blur, pgvector.NewVector(s.Embedding))
		if err != nil {
			return fmt.Errorf("failed to insert face %s: %w", s.FaceID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	// Keep the in-memory search index in sync when enabled.
	if r.hnsw != nil {
		for i, face := range index.Faces {
			s := storedFromFace(index.FileID, i, face)
			r.hnsw.Add(&s)
		}
	}

	return nil
}

// GetFaceIndex reconstructs the stored face index for a file. Returns
// ErrNotFound if the file was never indexed.
func (r *FaceRepository) GetFaceIndex(ctx context.Context, fileID int64) (*faceindex.LocalFaceIndex, error) {
	var index faceindex.LocalFaceIndex
	index.FileID = fileID

	err := r.pool.QueryRow(ctx,
		"SELECT width, height FROM face_files WHERE file_id = $1", fileID,
	).Scan(&index.Width, &index.Height)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file record: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, face_index, face_id, box, landmarks, score, blur, embedding, created_at
		FROM faces
		WHERE file_id = $1
		ORDER BY face_index
	`, fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to query faces: %w", err)
	}
	defer rows.Close()

	index.Faces = []faceindex.Face{}
	for rows.Next() {
		s, err := scanFace(rows)
		if err != nil {
			return nil, err
		}
		index.Faces = append(index.Faces, faceFromStored(s))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate faces: %w", err)
	}

	return &index, nil
}

// HasFaceIndex checks if a file has already been indexed.
func (r *FaceRepository) HasFaceIndex(ctx context.Context, fileID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM face_files WHERE file_id = $1)", fileID,
	).Scan(&exists)
	return exists, err
}

// Count returns the total number of stored faces.
func (r *FaceRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM faces").Scan(&count)
	return count, err
}

// CountFiles returns the number of indexed files.
func (r *FaceRepository) CountFiles(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM face_files").Scan(&count)
	return count, err
}

// GetFace fetches one face row by face ID.
func (r *FaceRepository) GetFace(ctx context.Context, faceID string) (*StoredFace, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, face_index, face_id, box, landmarks, score, blur, embedding, created_at
		FROM faces
		WHERE face_id = $1
	`, faceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query face: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	s, err := scanFace(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSimilar returns the stored faces closest to the query embedding by
// cosine distance. Uses the HNSW index when enabled, otherwise pgvector.
func (r *FaceRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]SimilarFace, error) {
	if r.hnsw != nil && r.hnsw.Count() > 0 {
		return r.hnsw.Search(embedding, limit)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, face_index, face_id, box, landmarks, score, blur, embedding, created_at,
		       embedding <=> $1 AS distance
		FROM faces
		ORDER BY distance
		LIMIT $2
	`, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar faces: %w", err)
	}
	defer rows.Close()

	var hits []SimilarFace
	for rows.Next() {
		var s StoredFace
		var vec pgvector.Vector
		var distance float64
		if err := rows.Scan(&s.ID, &s.FileID, &s.FaceIndex, &s.FaceID, &s.Box, &s.Landmarks,
			&s.Score, &s.Blur, &vec, &s.CreatedAt, &distance); err != nil {
			return nil, fmt.Errorf("failed to scan similar face: %w", err)
		}
		s.Embedding = vec.Slice()
		hits = append(hits, SimilarFace{StoredFace: s, Distance: distance})
	}
	return hits, rows.Err()
}

// AllFaces loads every stored face, used to build the HNSW index.
func (r *FaceRepository) AllFaces(ctx context.Context) ([]StoredFace, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_id, face_index, face_id, box, landmarks, score, blur, embedding, created_at
		FROM faces
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query faces: %w", err)
	}
	defer rows.Close()

	var faces []StoredFace
	for rows.Next() {
		s, err := scanFace(rows)
		if err != nil {
			return nil, err
		}
		faces = append(faces, s)
	}
	return faces, rows.Err()
}

// EnableHNSW builds the in-memory search index from the stored faces. When
// path is non-empty the built graph is also written there; the file is never
// read back, so every call rebuilds the index from the database.
func (r *FaceRepository) EnableHNSW(ctx context.Context, path string) error {
	faces, err := r.AllFaces(ctx)
	if err != nil {
		return err
	}

	idx := NewHNSWIndex(path)
	if err := idx.Build(faces); err != nil {
		return fmt.Errorf("failed to build HNSW index: %w", err)
	}
	if err := idx.Save(); err != nil {
		return fmt.Errorf("failed to persist HNSW index: %w", err)
	}

	r.hnsw = idx
	return nil
}

// HNSWCount returns the number of faces in the in-memory index.
func (r *FaceRepository) HNSWCount() int {
	if r.hnsw == nil {
		return 0
	}
	return r.hnsw.Count()
}

// scanFace reads one face row.
func scanFace(rows pgx.Rows) (StoredFace, error) {
	var s StoredFace
	var vec pgvector.Vector
	if err := rows.Scan(&s.ID, &s.FileID, &s.FaceIndex, &s.FaceID, &s.Box, &s.Landmarks,
		&s.Score, &s.Blur, &vec, &s.CreatedAt); err != nil {
		return s, fmt.Errorf("failed to scan face: %w", err)
	}
	s.Embedding = vec.Slice()
	return s, nil
}
