// Package retrieval finds knowledge-base passages for a question and renders them as model context.
package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
)

// Defaults applied when Config leaves a field at zero.
const (
	DefaultTopK            = 5
	DefaultMinScore        = 0.3
	DefaultMaxContextChars = 2000
)

const contextHeading = "Relevant Information:\n\n"

// Fallback metadata for passages stored without it.
const (
	unknownTitle   = "Unknown"
	generalDocType = "general"
	unknownSource  = "unknown"
)

// Config holds retrieval defaults. A nil MinScore means DefaultMinScore;
// a zero MinScore disables score filtering.
type Config struct {
	TopK            int
	MinScore        *float64
	MaxContextChars int
}

// Options narrows a single retrieval. Zero TopK and nil MinScore fall back to Config.
type Options struct {
	TopK     int
	MinScore *float64
	DocType  string
}

// Score returns a pointer to v for Config.MinScore and Options.MinScore.
func Score(v float64) *float64 { return &v }

// Passage is a retrieved chunk with its similarity score.
type Passage struct {
	Text       string
	Score      float64
	Title      string
	DocType    string
	Source     string
	DocID      string
	ChunkIndex int
}

// SourceRef summarizes a passage for the response.
type SourceRef struct {
	Title   string  `json:"title"`
	Score   float64 `json:"score"`
	DocType string  `json:"doc_type"`
}

// Result is the formatted knowledge context for one question.
// Available is false when the knowledge base could not be consulted.
type Result struct {
	Context    string
	NumSources int
	HasContext bool
	Sources    []SourceRef
	Available  bool
}

// Status is the knowledge-base readiness report.
type Status struct {
	Available   bool
	Embedding   domain.ModelInfo
	VectorStore domvec.Stats
}

// Service is the retrieval engine.
type Service struct {
	embed    Embedder
	index    Index
	cfg      Config
	minScore float64
}

// New creates a retrieval service.
func New(embed Embedder, index Index, cfg Config) *Service {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	minScore := DefaultMinScore
	if cfg.MinScore != nil {
		minScore = *cfg.MinScore
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = DefaultMaxContextChars
	}
	return &Service{embed: embed, index: index, cfg: cfg, minScore: minScore}
}

// Available reports whether both the embedder and the index can serve.
func (s *Service) Available() bool {
	return s.embed.Available() && s.index.Available()
}

// Retrieve returns passages scoring at least MinScore, in index order.
func (s *Service) Retrieve(ctx context.Context, query string, opts Options) ([]Passage, error) {
	if !s.embed.Available() {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !s.index.Available() {
		return nil, domain.ErrVectorStoreUnavailable
	}

	topK := opts.TopK
	if topK <= 0 {
		topK = s.cfg.TopK
	}
	minScore := s.minScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}

	vec, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	matches, err := s.index.Query(ctx, vec, topK, domvec.Filter{DocType: opts.DocType})
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		if m.Score < minScore {
			continue
		}
		passages = append(passages, toPassage(m))
	}
	return passages, nil
}

// FormatContext renders passages as numbered source blocks. Blocks are added in order
// until the next one would push their total length in characters past maxChars;
// a block is never cut.
// Returns "" when no block fits.
func FormatContext(passages []Passage, maxChars int) string {
	blocks := packBlocks(passages, maxChars)
	if len(blocks) == 0 {
		return ""
	}
	return contextHeading + strings.Join(blocks, "\n")
}

func packBlocks(passages []Passage, maxChars int) []string {
	blocks := make([]string, 0, len(passages))
	total := 0
	for i, p := range passages {
		block := fmt.Sprintf("[Source %d: %s]\n%s\n", i+1, p.Title, p.Text)
		n := utf8.RuneCountInString(block)
		if total+n > maxChars {
			break
		}
		blocks = append(blocks, block)
		total += n
	}
	return blocks
}

// RetrieveAndFormat retrieves passages and renders them. NumSources and Sources
// describe every passage above the threshold, even when the context budget keeps
// some of them out of Context. Failures degrade to an empty result with
// Available=false instead of an error.
func (s *Service) RetrieveAndFormat(ctx context.Context, query string, opts Options) Result {
	passages, err := s.Retrieve(ctx, query, opts)
	if err != nil {
		logger.FromContext(ctx).Warn("Knowledge retrieval failed", zap.Error(err))
		metrics.RetrievalSources.Observe(0)
		return Result{}
	}

	blocks := packBlocks(passages, s.cfg.MaxContextChars)
	included := len(blocks)

	res := Result{NumSources: len(passages), HasContext: len(passages) > 0, Available: true}
	if included > 0 {
		res.Context = contextHeading + strings.Join(blocks, "\n")
	}
	for _, p := range passages {
		res.Sources = append(res.Sources, SourceRef{Title: p.Title, Score: p.Score, DocType: p.DocType})
	}

	metrics.RetrievalSources.Observe(float64(len(passages)))
	logger.FromContext(ctx).Debug("Knowledge retrieved",
		zap.Int("passages", len(passages)),
		zap.Int("included", included),
	)
	return res
}

// Status reports embedding and index readiness.
func (s *Service) Status(ctx context.Context) Status {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("Vector store stats failed", zap.Error(err))
		stats.Available = false
	}
	info := s.embed.Info()
	return Status{
		Available:   info.Available && stats.Available,
		Embedding:   info,
		VectorStore: stats,
	}
}

func toPassage(m domvec.Match) Passage {
	p := Passage{
		Text:    m.Metadata[domvec.FieldText],
		Score:   m.Score,
		Title:   orDefault(m.Metadata[domvec.FieldTitle], unknownTitle),
		DocType: orDefault(m.Metadata[domvec.FieldDocType], generalDocType),
		Source:  orDefault(m.Metadata[domvec.FieldSource], unknownSource),
		DocID:   m.Metadata[domvec.FieldDocID],
	}
	if idx, err := strconv.Atoi(m.Metadata[domvec.FieldChunkIndex]); err == nil {
		p.ChunkIndex = idx
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
