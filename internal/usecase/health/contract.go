package health

import (
	"context"

	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
)

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// RAGReporter reports knowledge-base readiness.
type RAGReporter interface {
	Status(ctx context.Context) retrieval.Status
}
