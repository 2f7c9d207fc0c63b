package tools

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
)

func TestSlotsTool(t *testing.T) {
	var gotCred string
	b := &mockBackend{slotsFn: func(_ context.Context, cred, date, st string) ([]backend.Slot, error) {
		gotCred = cred
		if date != "2025-11-20" || st != "Oil Change" {
			t.Errorf("date=%q serviceType=%q", date, st)
		}
		return []backend.Slot{{Time: "09:00"}, {Time: ""}, {Time: "14:00"}}, nil
	}}

	out, err := (&SlotsTool{backend: b}).Execute(context.Background(),
		map[string]any{"date": "2025-11-20", "service_type": "Oil Change"}, "tok-A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Available slots on 2025-11-20 for Oil Change: 09:00, 14:00. Ask the user to specify a time if they want to book."
	if out != want {
		t.Errorf("got %q\nwant %q", out, want)
	}
	if gotCred != "tok-A" {
		t.Errorf("credential = %q", gotCred)
	}
}

func TestSlotsTool_None(t *testing.T) {
	out, err := (&SlotsTool{backend: &mockBackend{}}).Execute(context.Background(),
		map[string]any{"date": "2025-11-20", "service_type": "Diagnostics"}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "No available slots found on 2025-11-20 for Diagnostics." {
		t.Errorf("got %q", out)
	}
}

func TestActiveServicesTool(t *testing.T) {
	b := &mockBackend{jobsFn: func(context.Context, string) ([]backend.Job, error) {
		return []backend.Job{
			{ID: "S-1", Status: "IN_PROGRESS"},
			{ID: "S-2", Status: "COMPLETED"},
			{ID: "P-3", IsProject: true, Status: "APPROVED"},
			{ID: "S-4", Status: "REQUESTED"},
		}, nil
	}}

	out, err := (&ActiveServicesTool{backend: b}).Execute(context.Background(), nil, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "The user has the following items IN_PROGRESS:\n" +
		"- Service ID: S-1 (Status: IN_PROGRESS)\n" +
		"- Project ID: P-3 (Status: APPROVED)\n" +
		"- Service ID: S-4 (Status: REQUESTED)"
	if out != want {
		t.Errorf("got %q\nwant %q", out, want)
	}
}

func TestActiveServicesTool_NoneActive(t *testing.T) {
	b := &mockBackend{jobsFn: func(context.Context, string) ([]backend.Job, error) {
		return []backend.Job{{ID: "S-2", Status: "COMPLETED"}}, nil
	}}
	out, _ := (&ActiveServicesTool{backend: b}).Execute(context.Background(), nil, "tok")
	if out != "The user currently has no active services or modification projects." {
		t.Errorf("got %q", out)
	}
}

func TestWorkLogTool_Latest(t *testing.T) {
	b := &mockBackend{timeLogsFn: func(_ context.Context, _, id string) ([]backend.TimeLog, error) {
		if id != "S-1" {
			t.Errorf("service id = %q", id)
		}
		return []backend.TimeLog{
			{Date: "2025-11-01", Hours: 2, Description: "Drained oil", CreatedAt: "2025-11-01T10:00:00Z"},
			{Date: "2025-11-03", Hours: 1.5, CreatedAt: "2025-11-03T09:00:00Z"},
			{Date: "2025-11-02", Hours: 3, Description: "Replaced filter", CreatedAt: "2025-11-02T16:00:00Z"},
		}, nil
	}}

	out, err := (&WorkLogTool{backend: b}).Execute(context.Background(), map[string]any{"service_id": "S-1"}, "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"date":"2025-11-03","hours":1.5,"description":"No note provided."}`
	if out != want {
		t.Errorf("got %s\nwant %s", out, want)
	}
}

func TestWorkLogTool_LatestByTimestamp(t *testing.T) {
	tests := []struct {
		name string
		logs []backend.TimeLog
	}{
		{"fractional seconds", []backend.TimeLog{
			{Date: "old", CreatedAt: "2025-11-01T10:00:00Z"},
			{Date: "new", CreatedAt: "2025-11-01T10:00:00.500Z"},
		}},
		{"timezone offsets", []backend.TimeLog{
			{Date: "new", CreatedAt: "2025-11-01T09:00:00-03:00"},
			{Date: "old", CreatedAt: "2025-11-01T10:00:00Z"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &mockBackend{timeLogsFn: func(context.Context, string, string) ([]backend.TimeLog, error) {
				return tt.logs, nil
			}}
			out, err := (&WorkLogTool{backend: b}).Execute(context.Background(), map[string]any{"service_id": "S-1"}, "tok")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(out, `{"date":"new"`) {
				t.Errorf("got %s, want the newest log", out)
			}
		})
	}
}

func TestCompareCreatedAt_Unparseable(t *testing.T) {
	if compareCreatedAt("b", "a") <= 0 || compareCreatedAt("2025-11-01T10:00:00Z", "zzz") >= 0 {
		t.Error("unparseable timestamps must fall back to string order")
	}
}

func TestWorkLogTool_None(t *testing.T) {
	out, _ := (&WorkLogTool{backend: &mockBackend{}}).Execute(context.Background(),
		map[string]any{"service_id": "X-9"}, "tok")
	if out != "No time logs found for service/project ID: X-9." {
		t.Errorf("got %q", out)
	}
}

func TestTools_DownstreamError(t *testing.T) {
	upstream := &backend.UpstreamError{Service: backend.ServiceJobs, StatusCode: http.StatusServiceUnavailable}
	b := &mockBackend{jobsFn: func(context.Context, string) ([]backend.Job, error) { return nil, upstream }}

	_, err := (&ActiveServicesTool{backend: b}).Execute(context.Background(), nil, "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "could not load active services: jobs: HTTP 503" {
		t.Errorf("err = %q", err.Error())
	}
}

func TestDefaults_Categories(t *testing.T) {
	want := map[string]string{
		"check_appointment_slots":  CategoryAppointment,
		"get_user_active_services": CategoryActiveServices,
		"get_last_work_log":        CategoryWorkLog,
	}
	for _, tool := range Defaults(&mockBackend{}) {
		if got := tool.Category(); got != want[tool.Name()] {
			t.Errorf("%s category = %q, want %q", tool.Name(), got, want[tool.Name()])
		}
	}
}
