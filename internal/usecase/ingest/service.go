// Package ingest turns documents into embedded, indexed chunks.
package ingest

import (
	"context"
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	"github.com/TechTorque-2025/Agent-Bot/internal/domain/chunk"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
)

// Defaults for documents that omit them.
const (
	DefaultDocType = "general"
	DefaultSource  = "manual"
)

// BatchConcurrency bounds documents processed in parallel by IngestBatch.
const BatchConcurrency = 4

// Document is an ingestion request. ID is optional; a random one is assigned when empty.
type Document struct {
	ID       string
	Title    string
	Content  string
	DocType  string
	Source   string
	Metadata map[string]string
}

// Result is the outcome for one document.
type Result struct {
	Success       bool
	DocID         string
	Title         string
	ChunksCreated int
	ContentHash   string
	Err           error
}

// BatchResult aggregates per-document results in input order.
type BatchResult struct {
	Total      int
	Successful int
	Failed     int
	Results    []Result
}

// Service is the ingestion use case.
type Service struct {
	chunker *chunk.Chunker
	embed   Embedder
	index   Index
	now     func() time.Time
}

// New creates an ingestion service.
func New(chunker *chunk.Chunker, embed Embedder, index Index) *Service {
	return &Service{chunker: chunker, embed: embed, index: index, now: time.Now}
}

// Ingest chunks, embeds and stores one document. Failures are reported in Result.Err.
func (s *Service) Ingest(ctx context.Context, doc Document) Result {
	res := s.ingest(ctx, doc)

	status := "ok"
	if res.Err != nil {
		status = "error"
		logger.FromContext(ctx).Warn("Document ingestion failed",
			zap.String("title", doc.Title), zap.Error(res.Err))
	} else {
		logger.FromContext(ctx).Info("Document ingested",
			zap.String("doc_id", res.DocID),
			zap.String("title", res.Title),
			zap.Int("chunks", res.ChunksCreated),
		)
	}
	metrics.IngestDocumentsTotal.WithLabelValues(status).Inc()
	return res
}

func (s *Service) ingest(ctx context.Context, doc Document) Result {
	res := Result{Title: doc.Title}

	if err := validate(doc); err != nil {
		res.Err = err
		return res
	}
	if !s.embed.Available() {
		res.Err = domain.ErrEmbeddingUnavailable
		return res
	}
	if !s.index.Available() {
		res.Err = domain.ErrVectorStoreUnavailable
		return res
	}

	sum := md5.Sum([]byte(doc.Content)) //nolint:gosec // fingerprint
	res.ContentHash = hex.EncodeToString(sum[:])
	res.DocID = doc.ID
	if res.DocID == "" {
		res.DocID = uuid.NewString()
	}

	chunks := s.chunker.Chunk(doc.Content, chunk.Metadata{
		DocID:       res.DocID,
		Title:       doc.Title,
		DocType:     orDefault(doc.DocType, DefaultDocType),
		Source:      orDefault(doc.Source, DefaultSource),
		ContentHash: res.ContentHash,
		IngestedAt:  s.now(),
	})
	if len(chunks) == 0 {
		res.Err = fmt.Errorf("no chunks created from content: %w", domain.ErrInvalidDocument)
		return res
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := s.embed.EmbedBatch(ctx, texts)
	if err != nil {
		res.Err = fmt.Errorf("embed chunks: %w", err)
		return res
	}
	if len(vectors) != len(chunks) {
		res.Err = fmt.Errorf("embed chunks: got %d vectors for %d chunks: %w",
			len(vectors), len(chunks), domain.ErrEmbeddingProviderError)
		return res
	}

	prev := 0
	if doc.ID != "" {
		prev = s.chunkCount(ctx, res.DocID)
	}

	records := make([]domvec.Record, len(chunks))
	for i, c := range chunks {
		records[i] = withExtra(domvec.FromChunk(c, vectors[i]), doc.Metadata)
	}
	if err := s.index.Upsert(ctx, records); err != nil {
		res.Err = fmt.Errorf("store chunks: %w", err)
		return res
	}

	res.Success = true
	res.ChunksCreated = len(chunks)

	if prev > len(chunks) {
		if err := s.index.Delete(ctx, chunkIDs(res.DocID, len(chunks), prev)); err != nil {
			logger.FromContext(ctx).Warn("Stale chunk cleanup failed",
				zap.String("doc_id", res.DocID), zap.Int("stale", prev-len(chunks)), zap.Error(err))
		}
	}
	return res
}

// Remove deletes every chunk of docID and returns how many were removed.
func (s *Service) Remove(ctx context.Context, docID string) (int, error) {
	if !s.index.Available() {
		return 0, domain.ErrVectorStoreUnavailable
	}
	n, err := s.index.ChunkCount(ctx, docID)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := s.index.Delete(ctx, chunkIDs(docID, 0, n)); err != nil {
		return 0, fmt.Errorf("delete chunks: %w", err)
	}
	logger.FromContext(ctx).Info("Document removed", zap.String("doc_id", docID), zap.Int("chunks", n))
	return n, nil
}

// chunkCount is the number of chunks currently indexed for docID. A failed
// lookup counts as zero, which only skips stale-chunk cleanup.
func (s *Service) chunkCount(ctx context.Context, docID string) int {
	n, err := s.index.ChunkCount(ctx, docID)
	if err != nil {
		logger.FromContext(ctx).Warn("Chunk count lookup failed", zap.String("doc_id", docID), zap.Error(err))
		return 0
	}
	return n
}

// chunkIDs lists record IDs for chunk indexes in [from, to).
func chunkIDs(docID string, from, to int) []string {
	ids := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		ids = append(ids, domvec.RecordID(docID, i))
	}
	return ids
}

// IngestBatch ingests documents concurrently. Every document reports its own result.
func (s *Service) IngestBatch(ctx context.Context, docs []Document) BatchResult {
	results := make([]Result, len(docs))

	var g errgroup.Group
	g.SetLimit(BatchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			results[i] = s.Ingest(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	out := BatchResult{Total: len(docs), Results: results}
	for _, r := range results {
		if r.Success {
			out.Successful++
		} else {
			out.Failed++
		}
	}
	return out
}

func validate(doc Document) error {
	if strings.TrimSpace(doc.Title) == "" {
		return fmt.Errorf("title is required: %w", domain.ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Content) == "" {
		return fmt.Errorf("content is required: %w", domain.ErrInvalidDocument)
	}
	return nil
}

// withExtra adds caller metadata without overwriting reserved chunk fields.
func withExtra(rec domvec.Record, extra map[string]string) domvec.Record {
	for k, v := range extra {
		if _, reserved := rec.Metadata[k]; reserved || k == "" {
			continue
		}
		rec.Metadata[k] = v
	}
	return rec
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
