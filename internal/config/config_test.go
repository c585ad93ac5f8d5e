package config

import (
	"testing"
)

func TestLoadPipelineMetadata(t *testing.T) {
	cfg := Load()

	if cfg.Pipeline.Version != 1 {
		t.Errorf("pipeline version = %d, want 1", cfg.Pipeline.Version)
	}
	if cfg.Pipeline.Client == "" {
		t.Error("pipeline client tag is empty")
	}
	if cfg.Pipeline.Models.Detector.Canvas != 640 {
		t.Errorf("detector canvas = %d, want 640", cfg.Pipeline.Models.Detector.Canvas)
	}
	if cfg.Pipeline.Models.Detector.ScoreThreshold != 0.7 {
		t.Errorf("score threshold = %v, want 0.7", cfg.Pipeline.Models.Detector.ScoreThreshold)
	}
	if cfg.Pipeline.Models.Embedder.Crop != 112 || cfg.Pipeline.Models.Embedder.Dim != 192 {
		t.Errorf("embedder = %+v, want crop 112 dim 192", cfg.Pipeline.Models.Embedder)
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("WORKER_URL", "http://worker:9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/faces")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "10")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "bogus")

	cfg := Load()
	if cfg.Worker.URL != "http://worker:9000" {
		t.Errorf("worker URL = %q", cfg.Worker.URL)
	}
	if cfg.Database.URL != "postgres://localhost/faces" {
		t.Errorf("database URL = %q", cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns != 10 {
		t.Errorf("max open conns = %d, want 10", cfg.Database.MaxOpenConns)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("max idle conns = %d, want default 5 on invalid value", cfg.Database.MaxIdleConns)
	}
}
