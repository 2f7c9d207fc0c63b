package vector

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"sync"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/embedding"
)

// MemoryIndex is a brute-force in-process index for local runs and tests.
type MemoryIndex struct {
	mu        sync.RWMutex
	name      string
	dimension int
	records   map[string]domvec.Record
}

// NewMemory creates an empty in-memory index.
func NewMemory(name string, dimension int) *MemoryIndex {
	return &MemoryIndex{
		name:      name,
		dimension: dimension,
		records:   make(map[string]domvec.Record),
	}
}

// Available is always true.
func (m *MemoryIndex) Available() bool { return true }

// Upsert stores or replaces records by ID.
func (m *MemoryIndex) Upsert(_ context.Context, records []domvec.Record) error {
	for _, rec := range records {
		if len(rec.Vector) != m.dimension {
			return fmt.Errorf("record %s: vector length %d, want %d: %w",
				rec.ID, len(rec.Vector), m.dimension, domain.ErrInvalidDocument)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.records[rec.ID] = domvec.Record{
			ID:       rec.ID,
			Vector:   append([]float32(nil), rec.Vector...),
			Metadata: maps.Clone(rec.Metadata),
		}
	}
	return nil
}

// ChunkCount returns the total_chunks recorded on the first chunk of docID,
// or 0 when the document is not indexed.
func (m *MemoryIndex) ChunkCount(_ context.Context, docID string) (int, error) {
	m.mu.RLock()
	rec, ok := m.records[domvec.RecordID(docID, 0)]
	m.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(rec.Metadata[domvec.FieldTotalChunks])
	if err != nil {
		return 0, fmt.Errorf("chunk count %s: %w", docID, err)
	}
	return n, nil
}

// Delete removes records by ID. Unknown IDs are ignored.
func (m *MemoryIndex) Delete(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.records, id)
	}
	return nil
}

// Query scores every record against vec and returns the topK best, highest first.
// Ties are broken by ID for stable output.
func (m *MemoryIndex) Query(
	_ context.Context, vec []float32, topK int, filter domvec.Filter,
) ([]domvec.Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	tags := filter.Tags()

	m.mu.RLock()
	matches := make([]domvec.Match, 0, len(m.records))
	for _, rec := range m.records {
		if !matchesTags(rec.Metadata, tags) {
			continue
		}
		matches = append(matches, domvec.Match{
			ID:       rec.ID,
			Score:    embedding.Similarity(vec, rec.Vector),
			Metadata: maps.Clone(rec.Metadata),
		})
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].ID < matches[j].ID
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Stats reports the number of stored vectors.
func (m *MemoryIndex) Stats(_ context.Context) (domvec.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domvec.Stats{
		Available:    true,
		TotalVectors: len(m.records),
		Dimension:    m.dimension,
		IndexName:    m.name,
	}, nil
}

func matchesTags(meta, tags map[string]string) bool {
	for k, v := range tags {
		if meta[k] != v {
			return false
		}
	}
	return true
}
