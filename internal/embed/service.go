package embed

import (
	"context"
	"sync"
)

// Service defers building its Embedder until first use and shares it
// afterwards. It is safe for concurrent use by many reconcilers.
type Service struct {
	cfg  Config
	once sync.Once
	emb  Embedder
}

// NewService returns a lazily initialized embedding service.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

func (s *Service) get() Embedder {
	s.once.Do(func() {
		s.emb = New(s.cfg)
	})
	return s.emb
}

func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return s.get().EmbedBatch(ctx, texts)
}

func (s *Service) Dimension() int { return s.get().Dimension() }
func (s *Service) Model() string  { return s.get().Model() }
