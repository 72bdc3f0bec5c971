// Package embed turns heading text into vectors for near-duplicate detection.
//
// Two backends are available: a deterministic local hashing embedder that
// needs no network, and a client for any OpenAI-compatible /v1/embeddings
// server. Vectors are per-call values; nothing is cached across documents.
package embed

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks github.com/dgallion1/docoutline/internal/embed Embedder

import (
	"context"
	"log/slog"
	"time"
)

// DefaultDimension matches the small sentence-embedding models this service
// was tuned against.
const DefaultDimension = 384

// Embedder converts texts to vectors.
type Embedder interface {
	// EmbedBatch returns one vector per input text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the vector dimension, or 0 if not yet known.
	Dimension() int

	// Model returns the model name.
	Model() string
}

// Config configures an Embedder.
type Config struct {
	// BaseURL of an OpenAI-compatible embedding server. Empty selects the
	// local hashing embedder.
	BaseURL   string
	APIKey    string
	Model     string
	Dimension int
	BatchSize int
	Timeout   time.Duration
	Logger    *slog.Logger
}

func (c *Config) defaults() {
	if c.Dimension <= 0 && c.BaseURL == "" {
		c.Dimension = DefaultDimension
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 32
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// New creates an Embedder from config.
func New(cfg Config) Embedder {
	cfg.defaults()
	if cfg.BaseURL == "" {
		return NewHashing(cfg.Dimension)
	}
	return NewClient(cfg)
}
