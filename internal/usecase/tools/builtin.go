package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
)

// Defaults returns the three business tools bound to b.
func Defaults(b Backend) []Tool {
	return []Tool{
		&SlotsTool{backend: b},
		&ActiveServicesTool{backend: b},
		&WorkLogTool{backend: b},
	}
}

// SlotsTool checks appointment availability.
type SlotsTool struct{ backend Backend }

func (t *SlotsTool) Name() string     { return "check_appointment_slots" }
func (t *SlotsTool) Category() string { return CategoryAppointment }

func (t *SlotsTool) Description() string {
	return "Checks the available appointment slots for a given date (YYYY-MM-DD) " +
		"and service_type (e.g., 'Oil Change', 'Diagnostics'). " +
		"Use this tool ONLY when the user asks for available times or scheduling."
}

func (t *SlotsTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date": map[string]any{
				"type":        "string",
				"description": "Appointment date in YYYY-MM-DD format",
				"pattern":     `^\d{4}-\d{2}-\d{2}$`,
			},
			"service_type": map[string]any{
				"type":        "string",
				"description": "Kind of service, e.g. Oil Change",
				"minLength":   1,
			},
		},
		"required": []any{"date", "service_type"},
	}
}

func (t *SlotsTool) Execute(ctx context.Context, args map[string]any, credential string) (string, error) {
	date, _ := args["date"].(string)
	serviceType, _ := args["service_type"].(string)

	slots, err := t.backend.AvailableSlots(ctx, credential, date, serviceType)
	if err != nil {
		return "", fmt.Errorf("could not check slots: %w", err)
	}

	times := make([]string, 0, len(slots))
	for _, s := range slots {
		if s.Time != "" {
			times = append(times, s.Time)
		}
	}
	if len(times) == 0 {
		return fmt.Sprintf("No available slots found on %s for %s.", date, serviceType), nil
	}
	return fmt.Sprintf("Available slots on %s for %s: %s. Ask the user to specify a time if they want to book.",
		date, serviceType, strings.Join(times, ", ")), nil
}

// activeStatuses are the job states reported as active.
var activeStatuses = []string{"IN_PROGRESS", "REQUESTED", "APPROVED"}

// ActiveServicesTool lists the caller's in-flight services and projects.
type ActiveServicesTool struct{ backend Backend }

func (t *ActiveServicesTool) Name() string     { return "get_user_active_services" }
func (t *ActiveServicesTool) Category() string { return CategoryActiveServices }

func (t *ActiveServicesTool) Description() string {
	return "Retrieves a list of all IN_PROGRESS services and projects for the current user. " +
		"Use this tool when the user asks for the status of their vehicle or project."
}

func (t *ActiveServicesTool) Parameters() map[string]any {
	return map[string]any{"type": "object", "properties": map[string]any{}}
}

func (t *ActiveServicesTool) Execute(ctx context.Context, _ map[string]any, credential string) (string, error) {
	jobs, err := t.backend.Jobs(ctx, credential)
	if err != nil {
		return "", fmt.Errorf("could not load active services: %w", err)
	}

	var b strings.Builder
	for _, j := range jobs {
		if !slices.Contains(activeStatuses, j.Status) {
			continue
		}
		fmt.Fprintf(&b, "\n- %s ID: %s (Status: %s)", capitalize(j.Kind()), j.ID, j.Status)
	}
	if b.Len() == 0 {
		return "The user currently has no active services or modification projects.", nil
	}
	return "The user has the following items IN_PROGRESS:" + b.String(), nil
}

// WorkLogTool reports the most recent technician entry for a job.
type WorkLogTool struct{ backend Backend }

func (t *WorkLogTool) Name() string     { return "get_last_work_log" }
func (t *WorkLogTool) Category() string { return CategoryWorkLog }

func (t *WorkLogTool) Description() string {
	return "Retrieves the most recent time log and technician note for a specific service or project ID. " +
		"The service_id must be provided by the user or extracted from the conversation history."
}

func (t *WorkLogTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"service_id": map[string]any{
				"type":        "string",
				"description": "Service or project ID",
				"minLength":   1,
			},
		},
		"required": []any{"service_id"},
	}
}

type workLogSummary struct {
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func (t *WorkLogTool) Execute(ctx context.Context, args map[string]any, credential string) (string, error) {
	serviceID, _ := args["service_id"].(string)

	logs, err := t.backend.TimeLogs(ctx, credential, serviceID)
	if err != nil {
		return "", fmt.Errorf("could not load work logs: %w", err)
	}
	if len(logs) == 0 {
		return fmt.Sprintf("No time logs found for service/project ID: %s.", serviceID), nil
	}

	latest := slices.MaxFunc(logs, func(a, b backend.TimeLog) int { return compareCreatedAt(a.CreatedAt, b.CreatedAt) })

	desc := latest.Description
	if desc == "" {
		desc = "No note provided."
	}
	out, err := json.Marshal(workLogSummary{Date: latest.Date, Hours: latest.Hours, Description: desc})
	if err != nil {
		return "", fmt.Errorf("encode work log: %w", err)
	}
	return string(out), nil
}

// compareCreatedAt orders RFC 3339 timestamps chronologically. Values that do not
// parse fall back to string order.
func compareCreatedAt(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
