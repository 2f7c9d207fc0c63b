package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/config"
	dbRedis "github.com/TechTorque-2025/Agent-Bot/internal/db/redis"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/chunk"
	logpkg "github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
	"github.com/TechTorque-2025/Agent-Bot/internal/repository/embcache"
	vectorrepo "github.com/TechTorque-2025/Agent-Bot/internal/repository/vector"
	openaiTransport "github.com/TechTorque-2025/Agent-Bot/internal/transport/openai"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/embedding"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/ingest"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg    config.Config
	env    string
	logger *zap.Logger
	store  *dbRedis.Store // nil when every backend is in-memory
	embed  *embedding.Adapter
	index  knowledgeIndex
}

// knowledgeIndex is satisfied by both vector index backends.
type knowledgeIndex interface {
	ingest.Index
	retrieval.Index
}

// bootstrap loads configuration, connects the database when a backend needs
// it and assembles the embedding chain and the knowledge index.
func bootstrap(ctx context.Context) (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{cfg: cfg, env: env, logger: logger}

	if cfg.NeedsDatabase() {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("create database store: %w", err)
		}
		if err := store.WaitForReady(ctx, seconds(cfg.Database.ReadinessTimeout)); err != nil {
			store.Close()
			return nil, fmt.Errorf("database not ready: %w", err)
		}
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
		a.store = store
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAgentMetrics()

	a.embed = buildEmbedder(ctx, cfg.Embedding, a.store, logger)

	if err := a.buildIndex(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func (a *app) chunker() *chunk.Chunker {
	return chunk.New(a.cfg.Chunking.Size, a.cfg.Chunking.Overlap)
}

// buildIndex selects the vector index backend. A Redis index that cannot be
// created stays unavailable; the agent keeps answering without knowledge.
func (a *app) buildIndex(ctx context.Context) error {
	ic := a.cfg.Index
	switch ic.Backend {
	case config.BackendMemory:
		a.index = vectorrepo.NewMemory(ic.Name, a.cfg.Embedding.Dimension)
	case config.BackendRedis:
		idx := vectorrepo.NewRedis(a.store, vectorrepo.RedisConfig{
			IndexName: ic.Name,
			Dimension: a.cfg.Embedding.Dimension,
			HNSW:      vectorrepo.HNSWConfig{M: ic.HNSWM, EFConstruct: ic.HNSWEFConstruct},
			Timeout:   ic.Timeout(),
		}, a.logger)
		if err := idx.EnsureIndex(ctx); err != nil {
			a.logger.Error("Vector index unavailable", zap.String("index", ic.Name), zap.Error(err))
		}
		a.index = idx
	default:
		return fmt.Errorf("unknown index backend %q", ic.Backend)
	}
	a.logger.Info("Vector index ready",
		zap.String("backend", ic.Backend),
		zap.String("index", ic.Name),
		zap.Bool("available", a.index.Available()),
	)
	return nil
}

// buildEmbedder assembles the chain: OpenAI -> Cached -> Adapter (resize + availability).
func buildEmbedder(
	ctx context.Context,
	ec config.EmbeddingConfig,
	store *dbRedis.Store,
	logger *zap.Logger,
) *embedding.Adapter {
	var backend embedding.Backend
	if ec.APIKey == "" && ec.BaseURL == "" {
		logger.Warn("Embedding provider not configured, knowledge base disabled")
	} else {
		var emb domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     ec.APIKey,
			BaseURL:    ec.BaseURL,
			Model:      ec.Model,
			Dimensions: ec.NativeDimensions,
			Provider:   ec.Provider,
			Logger:     logger,
		})
		if ec.Cache && store != nil {
			emb = embcache.New(emb, store, embcache.Options{
				Model:      ec.Model,
				CacheTotal: metrics.EmbeddingCacheTotal,
				Logger:     logger,
			})
		}
		backend = emb
	}

	adapter := embedding.NewAdapter(backend, embedding.Config{
		ModelName: ec.Model,
		Dimension: ec.Dimension,
		Timeout:   ec.Timeout(),
	}, logger)

	available := adapter.Probe(ctx)
	logger.Info("Embedder created",
		zap.String("provider", ec.Provider),
		zap.String("model", ec.Model),
		zap.Int("dimension", ec.Dimension),
		zap.Bool("available", available),
	)
	return adapter
}
