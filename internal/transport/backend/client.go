// Package backend calls the business microservices (auth, vehicles, jobs,
// appointments, time logs) on behalf of the calling user.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
)

// DefaultTimeout bounds every downstream call.
const DefaultTimeout = 5 * time.Second

// Service names reported in UpstreamError.
const (
	ServiceAuth         = "auth"
	ServiceVehicles     = "vehicles"
	ServiceJobs         = "jobs"
	ServiceAppointments = "appointments"
	ServiceTimeLogs     = "time_logs"
)

const maxErrorBody = 512

// UpstreamError is a failed downstream call. StatusCode is 0 when the service was unreachable.
type UpstreamError struct {
	Service    string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: HTTP %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Is makes every UpstreamError match domain.ErrUpstream.
func (e *UpstreamError) Is(target error) bool { return target == domain.ErrUpstream }

// Config holds the downstream endpoints.
type Config struct {
	AuthURL         string
	VehiclesURL     string
	AppointmentsURL string
	JobsURL         string
	TimeLogsURL     string
	Timeout         time.Duration
	Logger          *zap.Logger
}

// Client is a stateless HTTP client. The credential is passed to every call.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.AuthURL = strings.TrimRight(cfg.AuthURL, "/")
	cfg.VehiclesURL = strings.TrimRight(cfg.VehiclesURL, "/")
	cfg.AppointmentsURL = strings.TrimRight(cfg.AppointmentsURL, "/")
	cfg.JobsURL = strings.TrimRight(cfg.JobsURL, "/")
	cfg.TimeLogsURL = strings.TrimRight(cfg.TimeLogsURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// getJSON performs an authenticated GET and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, service, rawURL, credential string, query url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &UpstreamError{Service: service, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Upstream unreachable", zap.String("service", service), zap.Error(err))
		return &UpstreamError{Service: service, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Upstream returned error status",
			zap.String("service", service),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return &UpstreamError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return &UpstreamError{Service: service, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
