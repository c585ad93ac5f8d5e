// Package database persists face indices in PostgreSQL with pgvector
// embeddings and serves similar-face queries, optionally through an
// in-memory HNSW index.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kozaktomas/face-indexer/internal/config"
	"github.com/kozaktomas/face-indexer/internal/faceindex"
)

// Connect creates a connection pool to PostgreSQL.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection.
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the schema: the pgvector extension, the per-file index
// table and the per-face table with a fixed-dimension embedding column.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS face_files (
			file_id     BIGINT PRIMARY KEY,
			width       INTEGER NOT NULL,
			height      INTEGER NOT NULL,
			face_count  INTEGER NOT NULL,
			run_id      TEXT NOT NULL DEFAULT '',
			indexed_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create face_files table: %w", err)
	}

	createFaces := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS faces (
			id          BIGSERIAL PRIMARY KEY,
			file_id     BIGINT NOT NULL REFERENCES face_files(file_id) ON DELETE CASCADE,
			face_index  INTEGER NOT NULL,
			face_id     TEXT NOT NULL UNIQUE,
			box         DOUBLE PRECISION[] NOT NULL,
			landmarks   DOUBLE PRECISION[] NOT NULL,
			score       DOUBLE PRECISION NOT NULL,
			blur        DOUBLE PRECISION NOT NULL,
			embedding   vector(%d) NOT NULL,
			created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`, faceindex.EmbeddingDim)
	if _, err := pool.Exec(ctx, createFaces); err != nil {
		return fmt.Errorf("failed to create faces table: %w", err)
	}

	_, err = pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS faces_file_id_idx ON faces (file_id)")
	if err != nil {
		return fmt.Errorf("failed to create faces index: %w", err)
	}

	return nil
}
