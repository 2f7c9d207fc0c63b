package ingest

import (
	"context"

	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
)

// Embedder vectorizes chunk texts at the index dimension.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Available() bool
}

// Index stores chunk vectors.
type Index interface {
	Upsert(ctx context.Context, records []domvec.Record) error
	ChunkCount(ctx context.Context, docID string) (int, error)
	Delete(ctx context.Context, ids []string) error
	Available() bool
}
