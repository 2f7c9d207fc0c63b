// Package embedding turns text into fixed-dimension vectors for the knowledge base.
package embedding

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one provider request.
const DefaultMaxAPIBatchSize = 256

// Config configures the adapter.
type Config struct {
	ModelName string
	Dimension int           // target length of every returned vector
	Timeout   time.Duration // per provider call; zero disables
	BatchSize int           // defaults to DefaultMaxAPIBatchSize
}

// Adapter normalizes provider output to the target dimension and tracks availability.
// A nil backend yields a permanently unavailable adapter.
type Adapter struct {
	backend   Backend
	cfg       Config
	available atomic.Bool
	logger    *zap.Logger
}

// NewAdapter creates an adapter. It starts available when a backend is set;
// call Probe to verify the provider before serving traffic.
func NewAdapter(backend Backend, cfg Config, logger *zap.Logger) *Adapter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultMaxAPIBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Adapter{backend: backend, cfg: cfg, logger: logger}
	a.available.Store(backend != nil && cfg.Dimension > 0)
	return a
}

// Probe checks the provider and records the outcome as the adapter's availability.
func (a *Adapter) Probe(ctx context.Context) bool {
	if a.backend == nil || a.cfg.Dimension <= 0 {
		a.available.Store(false)
		return false
	}
	p, ok := a.backend.(prober)
	if !ok {
		a.available.Store(true)
		return true
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := p.HealthCheck(ctx); err != nil {
		a.logger.Warn("Embedding provider probe failed",
			zap.String("model", a.cfg.ModelName),
			zap.Error(err),
		)
		a.available.Store(false)
		return false
	}
	a.available.Store(true)
	return true
}

// Available reports whether embed calls can be served.
func (a *Adapter) Available() bool { return a.available.Load() }

// Dimension is the target vector length.
func (a *Adapter) Dimension() int { return a.cfg.Dimension }

// Info describes the model behind the adapter.
func (a *Adapter) Info() domain.ModelInfo {
	return domain.ModelInfo{
		ModelName: a.cfg.ModelName,
		Dimension: a.cfg.Dimension,
		Available: a.Available(),
	}
}

// Embed returns the vector for text, resized to the target dimension.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, error) {
	if !a.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := a.backend.Embed(ctx, text)
	if err != nil {
		a.logger.Error("Embedding request failed",
			zap.String("model", a.cfg.ModelName),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed: %w", err)
	}

	a.logger.Debug("Embedding request completed",
		zap.String("model", a.cfg.ModelName),
		zap.Duration("duration", time.Since(start)),
		zap.Int("native_dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return Resize(res.Embedding, a.cfg.Dimension), nil
}

// EmbedBatch returns one resized vector per text, in input order.
func (a *Adapter) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if !a.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}

	start := time.Now()
	out := make([][]float32, 0, len(texts))
	var totalTokens int

	for offset := 0; offset < len(texts); offset += a.cfg.BatchSize {
		end := min(offset+a.cfg.BatchSize, len(texts))
		chunk := texts[offset:end]

		res, err := a.embedInner(ctx, chunk)
		if err != nil {
			a.logger.Error("Batch embedding request failed",
				zap.String("model", a.cfg.ModelName),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return nil, fmt.Errorf("batch embed: %w", err)
		}
		if len(res.Embeddings) != len(chunk) {
			return nil, fmt.Errorf("batch embed: got %d vectors for %d texts: %w",
				len(res.Embeddings), len(chunk), domain.ErrEmbeddingProviderError)
		}

		for _, v := range res.Embeddings {
			out = append(out, Resize(v, a.cfg.Dimension))
		}
		totalTokens += res.TotalTokens
	}

	a.logger.Debug("Batch embedding completed",
		zap.String("model", a.cfg.ModelName),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", totalTokens),
	)
	return out, nil
}

func (a *Adapter) embedInner(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := domain.EmbedAll(ctx, a.backend, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, fmt.Errorf("inner embed: %w", err)
	}
	return res, nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, a.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}
