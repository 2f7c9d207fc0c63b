package tools

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain/llm"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
)

func newRegistry(t *testing.T, b Backend) *Registry {
	t.Helper()
	r, err := NewRegistry(Defaults(b)...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func TestRegistry_Specs(t *testing.T) {
	specs := newRegistry(t, &mockBackend{}).Specs()
	if len(specs) != 3 {
		t.Fatalf("len = %d", len(specs))
	}
	if specs[0].Name != "check_appointment_slots" || specs[2].Name != "get_last_work_log" {
		t.Errorf("order = %s, %s", specs[0].Name, specs[2].Name)
	}
	if specs[0].Parameters["type"] != "object" {
		t.Errorf("parameters = %v", specs[0].Parameters)
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	b := &mockBackend{}
	if _, err := NewRegistry(&SlotsTool{backend: b}, &SlotsTool{backend: b}); err == nil {
		t.Error("expected duplicate name error")
	}
}

func TestRegistry_Dispatch(t *testing.T) {
	b := &mockBackend{
		slotsFn: func(context.Context, string, string, string) ([]backend.Slot, error) {
			return []backend.Slot{{Time: "10:00"}}, nil
		},
		jobsFn: func(context.Context, string) ([]backend.Job, error) {
			return nil, &backend.UpstreamError{Service: backend.ServiceJobs, StatusCode: http.StatusInternalServerError}
		},
	}
	r := newRegistry(t, b)

	tests := []struct {
		name       string
		call       llm.ToolCall
		wantStatus string
		wantPrefix string
		wantCat    string
	}{
		{
			name:       "ok",
			call:       llm.ToolCall{Name: "check_appointment_slots", Arguments: `{"date":"2025-11-20","service_type":"Oil Change"}`},
			wantStatus: StatusOK,
			wantPrefix: "Available slots on 2025-11-20",
			wantCat:    CategoryAppointment,
		},
		{
			name:       "no arguments",
			call:       llm.ToolCall{Name: "get_user_active_services"},
			wantStatus: StatusError,
			wantPrefix: "Error: could not load active services: jobs: HTTP 500",
			wantCat:    CategoryActiveServices,
		},
		{
			name:       "unknown tool",
			call:       llm.ToolCall{Name: "book_appointment", Arguments: `{}`},
			wantStatus: StatusUnknown,
			wantPrefix: `Error: unknown tool "book_appointment".`,
		},
		{
			name:       "malformed json",
			call:       llm.ToolCall{Name: "get_last_work_log", Arguments: `{"service_id":`},
			wantStatus: StatusInvalidArgs,
			wantPrefix: "Error: malformed arguments for get_last_work_log",
			wantCat:    CategoryWorkLog,
		},
		{
			name:       "missing required",
			call:       llm.ToolCall{Name: "get_last_work_log", Arguments: `{}`},
			wantStatus: StatusInvalidArgs,
			wantPrefix: "Error: invalid arguments for get_last_work_log",
			wantCat:    CategoryWorkLog,
		},
		{
			name:       "bad date format",
			call:       llm.ToolCall{Name: "check_appointment_slots", Arguments: `{"date":"tomorrow","service_type":"Oil Change"}`},
			wantStatus: StatusInvalidArgs,
			wantPrefix: "Error: invalid arguments for check_appointment_slots",
			wantCat:    CategoryAppointment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Dispatch(context.Background(), tt.call, "tok")
			if res.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q (output %q)", res.Status, tt.wantStatus, res.Output)
			}
			if !strings.HasPrefix(res.Output, tt.wantPrefix) {
				t.Errorf("output = %q, want prefix %q", res.Output, tt.wantPrefix)
			}
			if res.Category != tt.wantCat {
				t.Errorf("category = %q, want %q", res.Category, tt.wantCat)
			}
		})
	}
}

func TestRegistry_DispatchMetrics(t *testing.T) {
	r := newRegistry(t, &mockBackend{})
	counter := metrics.ToolCallsTotal.WithLabelValues("get_last_work_log", StatusOK)
	before := testutil.ToFloat64(counter)

	r.Dispatch(context.Background(), llm.ToolCall{Name: "get_last_work_log", Arguments: `{"service_id":"S-1"}`}, "tok")

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestRegistry_CredentialsDoNotCross(t *testing.T) {
	b := &mockBackend{timeLogsFn: func(_ context.Context, cred, id string) ([]backend.TimeLog, error) {
		// each caller asks for a log named after its own credential
		if cred != id {
			t.Errorf("credential %q leaked into call for %q", cred, id)
		}
		return nil, nil
	}}
	r := newRegistry(t, b)

	var wg sync.WaitGroup
	for i := range 50 {
		cred := "C1"
		if i%2 == 1 {
			cred = "C2"
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Dispatch(context.Background(),
				llm.ToolCall{Name: "get_last_work_log", Arguments: `{"service_id":"` + cred + `"}`}, cred)
		}()
	}
	wg.Wait()
}
