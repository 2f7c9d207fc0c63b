// Package health aggregates component checks for the health endpoint.
package health

import (
	"context"

	domvec "github.com/TechTorque-2025/Agent-Bot/internal/domain/vector"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "healthy"
	// Degraded indicates partial failure. The agent still answers, without knowledge context.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status      Status
	RAGEnabled  bool
	VectorStore domvec.Stats
	Checks      map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db  DBPinger
	rag RAGReporter
}

// New creates a Service. db is nil when no Redis backend is configured.
func New(db DBPinger, rag RAGReporter) *Service {
	return &Service{db: db, rag: rag}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.db != nil {
		checks["database"] = result(s.db.Ping(ctx) == nil)
	}

	rag := s.rag.Status(ctx)
	checks["embedding"] = result(rag.Embedding.Available)
	checks["vector_store"] = result(rag.VectorStore.Available)

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{
		Status:      status,
		RAGEnabled:  rag.Available,
		VectorStore: rag.VectorStore,
		Checks:      checks,
	}
}

func result(ok bool) CheckResult {
	if ok {
		return CheckOK
	}
	return CheckError
}
