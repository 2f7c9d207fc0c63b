// Package vector stores knowledge-base chunk vectors and answers similarity queries.
package vector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/db"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
)

const (
	vectorField = "vector"
	titleWeight = 2
)

var keyPrefix = domain.KeyPrefix + "kb:"

// store is the consumer interface for the knowledge-base index (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGet(ctx context.Context, key, field string) (string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexInfo(ctx context.Context, name string) (db.IndexInfo, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index tuning parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// RedisConfig configures the Redis-backed index.
type RedisConfig struct {
	IndexName string
	Dimension int
	HNSW      HNSWConfig
	Timeout   time.Duration // per round-trip; zero disables
}

// RedisIndex keeps chunk vectors as HASH keys under an FT HNSW/COSINE index.
type RedisIndex struct {
	store     store
	cfg       RedisConfig
	available atomic.Bool
	logger    *zap.Logger
}

// NewRedis creates a Redis-backed index. Call EnsureIndex before use.
func NewRedis(s store, cfg RedisConfig, logger *zap.Logger) *RedisIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisIndex{store: s, cfg: cfg, logger: logger}
}

// EnsureIndex creates the FT index if it is missing and marks the index available.
func (r *RedisIndex) EnsureIndex(ctx context.Context) error {
	def, err := buildIndex(r.cfg)
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		r.available.Store(false)
		return fmt.Errorf("create index %s: %w: %w", r.cfg.IndexName, err, domain.ErrVectorStoreUnavailable)
	}

	r.available.Store(true)
	r.logger.Info("Knowledge base index ready",
		zap.String("index", r.cfg.IndexName),
		zap.Int("dimension", r.cfg.Dimension),
	)
	return nil
}

// Available reports whether the index passed EnsureIndex.
func (r *RedisIndex) Available() bool { return r.available.Load() }

// Upsert writes records in pipelined batches of at most MaxUpsertBatch.
func (r *RedisIndex) Upsert(ctx context.Context, records []domvec.Record) error {
	if !r.Available() {
		return domain.ErrVectorStoreUnavailable
	}

	for _, rec := range records {
		if len(rec.Vector) != r.cfg.Dimension {
			return fmt.Errorf("record %s: vector length %d, want %d: %w",
				rec.ID, len(rec.Vector), r.cfg.Dimension, domain.ErrInvalidDocument)
		}
	}

	for start := 0; start < len(records); start += domvec.MaxUpsertBatch {
		end := min(start+domvec.MaxUpsertBatch, len(records))

		items := make([]db.HashSetItem, 0, end-start)
		for _, rec := range records[start:end] {
			items = append(items, db.HashSetItem{Key: keyPrefix + rec.ID, Fields: toHash(rec)})
		}

		if err := r.hsetMulti(ctx, items); err != nil {
			return fmt.Errorf("upsert batch at %d: %w: %w", start, err, domain.ErrVectorStoreUnavailable)
		}
	}
	return nil
}

func (r *RedisIndex) hsetMulti(ctx context.Context, items []db.HashSetItem) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.store.HSetMulti(ctx, items)
}

// ChunkCount returns the total_chunks recorded on the first chunk of docID,
// or 0 when the document is not indexed.
func (r *RedisIndex) ChunkCount(ctx context.Context, docID string) (int, error) {
	if !r.Available() {
		return 0, domain.ErrVectorStoreUnavailable
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	v, err := r.store.HGet(ctx, keyPrefix+domvec.RecordID(docID, 0), domvec.FieldTotalChunks)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("chunk count %s: %w: %w", docID, err, domain.ErrVectorStoreUnavailable)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("chunk count %s: bad total_chunks %q", docID, v)
	}
	return n, nil
}

// Delete removes records by ID in batches of at most MaxUpsertBatch keys.
func (r *RedisIndex) Delete(ctx context.Context, ids []string) error {
	if !r.Available() {
		return domain.ErrVectorStoreUnavailable
	}

	for start := 0; start < len(ids); start += domvec.MaxUpsertBatch {
		end := min(start+domvec.MaxUpsertBatch, len(ids))

		keys := make([]string, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, keyPrefix+id)
		}

		if err := r.del(ctx, keys); err != nil {
			return fmt.Errorf("delete batch at %d: %w: %w", start, err, domain.ErrVectorStoreUnavailable)
		}
	}
	return nil
}

func (r *RedisIndex) del(ctx context.Context, keys []string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.store.Del(ctx, keys...)
	return err
}

// Query returns up to topK matches ordered by descending similarity.
func (r *RedisIndex) Query(
	ctx context.Context, vec []float32, topK int, filter domvec.Filter,
) ([]domvec.Match, error) {
	if !r.Available() {
		return nil, domain.ErrVectorStoreUnavailable
	}
	if topK <= 0 {
		return nil, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.cfg.IndexName,
		Tags:         filter.Tags(),
		Vector:       vec,
		K:            topK,
		ReturnFields: metadataFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w: %w", err, domain.ErrVectorStoreUnavailable)
	}

	matches := make([]domvec.Match, 0, len(res.Entries))
	for _, e := range res.Entries {
		matches = append(matches, domvec.Match{
			ID:       strings.TrimPrefix(e.Key, keyPrefix),
			Score:    e.Score,
			Metadata: e.Fields,
		})
	}
	return matches, nil
}

// Stats reports the vector count from FT.INFO.
func (r *RedisIndex) Stats(ctx context.Context) (domvec.Stats, error) {
	stats := domvec.Stats{
		Available: r.Available(),
		Dimension: r.cfg.Dimension,
		IndexName: r.cfg.IndexName,
	}
	if !stats.Available {
		return stats, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	info, err := r.store.IndexInfo(ctx, r.cfg.IndexName)
	if err != nil {
		stats.Available = false
		return stats, fmt.Errorf("index info: %w: %w", err, domain.ErrVectorStoreUnavailable)
	}
	stats.TotalVectors = info.NumDocs
	return stats, nil
}

func (r *RedisIndex) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

var metadataFields = []string{
	domvec.FieldText,
	domvec.FieldDocID,
	domvec.FieldTitle,
	domvec.FieldDocType,
	domvec.FieldSource,
	domvec.FieldContentHash,
	domvec.FieldIngestedAt,
	domvec.FieldChunkIndex,
	domvec.FieldTotalChunks,
}

// buildIndex creates the FT definition over knowledge-base HASH keys.
// doc_type and source are TAG fields so filters are applied inside the engine.
func buildIndex(cfg RedisConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(cfg.IndexName).
		Prefix(keyPrefix).
		Text(domvec.FieldText).
		WeightedText(domvec.FieldTitle, titleWeight).
		Tag(domvec.FieldDocID, domvec.FieldDocType, domvec.FieldSource).
		SortableNumeric(domvec.FieldChunkIndex).
		VectorHNSW(vectorField, cfg.Dimension, cfg.HNSW.M, cfg.HNSW.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", cfg.IndexName, err)
	}
	return def, nil
}

func toHash(rec domvec.Record) map[string]string {
	m := make(map[string]string, len(rec.Metadata)+1)
	for k, v := range rec.Metadata {
		m[k] = v
	}
	m[vectorField] = db.VectorBlob(rec.Vector)
	return m
}
