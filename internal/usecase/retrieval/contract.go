package retrieval

import (
	"context"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
)

// Embedder vectorizes queries.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Available() bool
	Info() domain.ModelInfo
}

// Index answers similarity queries over knowledge-base chunks.
type Index interface {
	Query(ctx context.Context, vec []float32, topK int, filter domvec.Filter) ([]domvec.Match, error)
	Stats(ctx context.Context) (domvec.Stats, error)
	Available() bool
}
