package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain/profile"
)

// Slot is one bookable appointment time.
type Slot struct {
	Time string `json:"time"`
}

// Job is a service or modification project owned by the caller.
type Job struct {
	ID           string
	IsProject    bool
	Status       string
	VehicleModel string
}

// Kind is "project" or "service".
func (j Job) Kind() string {
	if j.IsProject {
		return "project"
	}
	return "service"
}

// TimeLog is a technician work entry.
type TimeLog struct {
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	CreatedAt   string  `json:"createdAt"`
}

type userDTO struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type vehicleDTO struct {
	VehicleID    string `json:"vehicleId"`
	ID           string `json:"id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	LicensePlate string `json:"licensePlate"`
}

type jobDTO struct {
	ProjectID string `json:"projectId"`
	ServiceID string `json:"serviceId"`
	IsProject bool   `json:"isProject"`
	Status    string `json:"status"`
	Vehicle   struct {
		Model string `json:"model"`
	} `json:"vehicle"`
}

// Profile resolves the caller identity and vehicles. It never fails: an empty
// credential or an unusable auth response yields the guest profile, and a
// vehicle lookup failure yields no vehicles.
func (c *Client) Profile(ctx context.Context, credential string) profile.Profile {
	if credential == "" {
		return profile.Guest()
	}

	var u userDTO
	if err := c.getJSON(ctx, ServiceAuth, c.cfg.AuthURL+"/me", credential, nil, &u); err != nil {
		c.logger.Info("Falling back to guest profile", zap.Error(err))
		return profile.Guest()
	}

	p := profile.Profile{
		UserID:   firstNonEmpty(u.ID, u.UserID, "unknown"),
		FullName: firstNonEmpty(u.FullName, u.Username, "unknown"),
		Role:     firstNonEmpty(u.Role, profile.RoleDefault),
	}

	var vs []vehicleDTO
	if err := c.getJSON(ctx, ServiceVehicles, c.cfg.VehiclesURL, credential, nil, &vs); err != nil {
		c.logger.Info("Vehicle lookup failed", zap.Error(err))
		return p
	}
	for _, v := range vs {
		p.Vehicles = append(p.Vehicles, profile.Vehicle{
			ID:           firstNonEmpty(v.VehicleID, v.ID),
			Make:         v.Make,
			Model:        v.Model,
			LicensePlate: v.LicensePlate,
		})
	}
	return p
}

// AvailableSlots lists bookable times for a date (YYYY-MM-DD) and service type.
func (c *Client) AvailableSlots(ctx context.Context, credential, date, serviceType string) ([]Slot, error) {
	var resp struct {
		AvailableSlots []Slot `json:"available_slots"`
	}
	q := url.Values{"date": {date}, "serviceType": {serviceType}}
	if err := c.getJSON(ctx, ServiceAppointments, c.cfg.AppointmentsURL+"/availability", credential, q, &resp); err != nil {
		return nil, err
	}
	return resp.AvailableSlots, nil
}

// Jobs lists the caller's services and projects.
func (c *Client) Jobs(ctx context.Context, credential string) ([]Job, error) {
	var dtos []jobDTO
	if err := c.getJSON(ctx, ServiceJobs, c.cfg.JobsURL, credential, nil, &dtos); err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(dtos))
	for _, d := range dtos {
		jobs = append(jobs, Job{
			ID:           firstNonEmpty(d.ProjectID, d.ServiceID, "N/A"),
			IsProject:    d.IsProject,
			Status:       d.Status,
			VehicleModel: firstNonEmpty(d.Vehicle.Model, "N/A"),
		})
	}
	return jobs, nil
}

// TimeLogs lists the work entries of a service or project. The service
// answers with either a bare array or {"logs": [...]}.
func (c *Client) TimeLogs(ctx context.Context, credential, serviceID string) ([]TimeLog, error) {
	var raw json.RawMessage
	endpoint := c.cfg.TimeLogsURL + "/" + url.PathEscape(serviceID)
	if err := c.getJSON(ctx, ServiceTimeLogs, endpoint, credential, nil, &raw); err != nil {
		return nil, err
	}
	logs, err := parseTimeLogs(raw)
	if err != nil {
		return nil, &UpstreamError{Service: ServiceTimeLogs, Err: fmt.Errorf("decoding time logs: %w", err)}
	}
	return logs, nil
}

func parseTimeLogs(raw json.RawMessage) ([]TimeLog, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	var logs []TimeLog
	if trimmed[0] == '[' {
		if err := json.Unmarshal(raw, &logs); err != nil {
			return nil, err
		}
		return logs, nil
	}

	var wrapped struct {
		Logs []TimeLog `json:"logs"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Logs, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
