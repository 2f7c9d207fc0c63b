package embedding

import (
	"context"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
)

// Backend is what the adapter needs from an embedding provider.
// BatchEmbedder and HealthChecker are detected at runtime.
type Backend interface {
	domain.Embedder
}

// prober is satisfied by providers that expose a cheap availability check.
type prober interface {
	HealthCheck(ctx context.Context) error
}
