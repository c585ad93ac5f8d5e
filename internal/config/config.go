// Package config loads runtime configuration from the environment and the
// embedded pipeline metadata.
package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed pipeline.yaml
var pipelineYAML []byte

type Config struct {
	Worker   WorkerConfig
	Database DatabaseConfig
	Pipeline PipelineConfig
}

type WorkerConfig struct {
	URL string // inference worker base URL, defaults to http://localhost:8500
}

type DatabaseConfig struct {
	URL           string // PostgreSQL connection URL
	MaxOpenConns  int    // Maximum open connections (default 25)
	MaxIdleConns  int    // Connections the pool keeps open while idle, used as the pool minimum (default 5)
	HNSWIndexPath string // Path to write the face HNSW index to (optional; the index is rebuilt on every startup)
}

// PipelineConfig is the embedded pipeline metadata. The version couples
// model weights and constants; it travels in the remote envelope.
type PipelineConfig struct {
	Version int          `yaml:"version"`
	Client  string       `yaml:"client"`
	Models  ModelsConfig `yaml:"models"`
}

type ModelsConfig struct {
	Detector DetectorModel `yaml:"detector"`
	Embedder EmbedderModel `yaml:"embedder"`
}

type DetectorModel struct {
	Name           string  `yaml:"name"`
	Canvas         int     `yaml:"canvas"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

type EmbedderModel struct {
	Name string `yaml:"name"`
	Crop int    `yaml:"crop"`
	Dim  int    `yaml:"dim"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func Load() *Config {
	var pipeline PipelineConfig
	if err := yaml.Unmarshal(pipelineYAML, &pipeline); err != nil {
		// The file is embedded, so this can only fail on a broken build.
		panic("failed to unmarshal embedded pipeline.yaml: " + err.Error())
	}

	return &Config{
		Worker: WorkerConfig{
			URL: os.Getenv("WORKER_URL"),
		},
		Database: DatabaseConfig{
			URL:           os.Getenv("DATABASE_URL"),
			MaxOpenConns:  envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:  envInt("DATABASE_MAX_IDLE_CONNS", 5),
			HNSWIndexPath: os.Getenv("HNSW_INDEX_PATH"),
		},
		Pipeline: pipeline,
	}
}
