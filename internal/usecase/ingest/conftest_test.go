package ingest

import (
	"context"
	"sync"

	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
)

type mockEmbedder struct {
	unavailable bool
	embedFn     func(texts []string) ([][]float32, error)
}

func (m *mockEmbedder) Available() bool { return !m.unavailable }

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(texts)
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

type mockIndex struct {
	mu          sync.Mutex
	unavailable bool
	records     []domvec.Record
	upsertErr   error
	counts      map[string]int
	countErr    error
	deleted     []string
	deleteErr   error
}

func (m *mockIndex) Available() bool { return !m.unavailable }

func (m *mockIndex) Upsert(_ context.Context, records []domvec.Record) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *mockIndex) ChunkCount(_ context.Context, docID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[docID], m.countErr
}

func (m *mockIndex) Delete(_ context.Context, ids []string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, ids...)
	return nil
}
