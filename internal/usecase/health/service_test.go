package health

import (
	"context"
	"errors"
	"testing"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockRAG struct {
	status retrieval.Status
}

func (m *mockRAG) Status(_ context.Context) retrieval.Status { return m.status }

func ragStatus(embedding, store bool) *mockRAG {
	return &mockRAG{status: retrieval.Status{
		Available:   embedding && store,
		Embedding:   domain.ModelInfo{ModelName: "text-embedding-3-small", Dimension: 384, Available: embedding},
		VectorStore: domvec.Stats{Available: store, TotalVectors: 12, Dimension: 384, IndexName: "kb"},
	}}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	r := New(&mockDBPinger{}, ragStatus(true, true)).Check(context.Background())

	if r.Status != Healthy || !r.RAGEnabled {
		t.Errorf("status = %q, rag = %v", r.Status, r.RAGEnabled)
	}
	for _, name := range []string{"database", "embedding", "vector_store"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
	if r.VectorStore.TotalVectors != 12 || r.VectorStore.IndexName != "kb" {
		t.Errorf("vector store = %+v", r.VectorStore)
	}
}

func TestCheck_DBError(t *testing.T) {
	r := New(&mockDBPinger{err: errors.New("conn refused")}, ragStatus(true, true)).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_EmbeddingUnavailable(t *testing.T) {
	r := New(&mockDBPinger{}, ragStatus(false, true)).Check(context.Background())

	if r.Status != Degraded || r.RAGEnabled {
		t.Errorf("status = %q, rag = %v", r.Status, r.RAGEnabled)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_NoDatabase(t *testing.T) {
	r := New(nil, ragStatus(true, true)).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent without a database")
	}
}
