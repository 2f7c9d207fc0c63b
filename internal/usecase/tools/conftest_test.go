package tools

import (
	"context"

	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
)

// mockBackend is a hand-written Backend with overridable calls.
type mockBackend struct {
	slotsFn    func(ctx context.Context, credential, date, serviceType string) ([]backend.Slot, error)
	jobsFn     func(ctx context.Context, credential string) ([]backend.Job, error)
	timeLogsFn func(ctx context.Context, credential, serviceID string) ([]backend.TimeLog, error)
}

func (m *mockBackend) AvailableSlots(ctx context.Context, credential, date, serviceType string) ([]backend.Slot, error) {
	if m.slotsFn != nil {
		return m.slotsFn(ctx, credential, date, serviceType)
	}
	return nil, nil
}

func (m *mockBackend) Jobs(ctx context.Context, credential string) ([]backend.Job, error) {
	if m.jobsFn != nil {
		return m.jobsFn(ctx, credential)
	}
	return nil, nil
}

func (m *mockBackend) TimeLogs(ctx context.Context, credential, serviceID string) ([]backend.TimeLog, error) {
	if m.timeLogsFn != nil {
		return m.timeLogsFn(ctx, credential, serviceID)
	}
	return nil, nil
}
