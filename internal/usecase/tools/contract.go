// Package tools holds the agent's callable capabilities and the registry
// that validates and dispatches model tool calls.
package tools

import (
	"context"

	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
)

// Category labels reported as the turn classification.
const (
	CategoryAppointment    = "Appointment_Check"
	CategoryActiveServices = "Active_Services_Check"
	CategoryWorkLog        = "Work_Log_Check"
)

// Tool is a capability the model can invoke. The caller credential is passed
// per call and never retained.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema object
	Category() string
	Execute(ctx context.Context, args map[string]any, credential string) (string, error)
}

// Backend is the downstream surface the built-in tools need.
type Backend interface {
	AvailableSlots(ctx context.Context, credential, date, serviceType string) ([]backend.Slot, error)
	Jobs(ctx context.Context, credential string) ([]backend.Job, error)
	TimeLogs(ctx context.Context, credential, serviceID string) ([]backend.TimeLog, error)
}
