package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/config"
	logpkg "github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/metrics"
	"github.com/TechTorque-2025/Agent-Bot/internal/repository/session"
	"github.com/TechTorque-2025/Agent-Bot/internal/transport/backend"
	chiTransport "github.com/TechTorque-2025/Agent-Bot/internal/transport/chi"
	openaiTransport "github.com/TechTorque-2025/Agent-Bot/internal/transport/openai"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/agent"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/chat"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/conversation"
	healthuc "github.com/TechTorque-2025/Agent-Bot/internal/usecase/health"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/ingest"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/tools"
	"github.com/TechTorque-2025/Agent-Bot/internal/version"
)

const metricsPath = "/metrics"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd.Context())
	},
}

func runServer(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	logger := a.logger
	cfg := a.cfg

	logger.Info("Starting agentbot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("sessions_backend", cfg.Sessions.Backend),
	)

	retr := retrieval.New(a.embed, a.index, retrieval.Config{
		TopK:            cfg.Retrieval.TopK,
		MinScore:        cfg.Retrieval.MinScore,
		MaxContextChars: cfg.Retrieval.MaxContextChars,
	})

	services := backend.New(backend.Config{
		AuthURL:         cfg.Services.AuthURL,
		VehiclesURL:     cfg.Services.VehiclesURL,
		AppointmentsURL: cfg.Services.AppointmentsURL,
		JobsURL:         cfg.Services.JobsURL,
		TimeLogsURL:     cfg.Services.TimeLogsURL,
		Timeout:         cfg.Services.Timeout(),
		Logger:          logger,
	})

	registry, err := tools.NewRegistry(tools.Defaults(services)...)
	if err != nil {
		return fmt.Errorf("build tool registry: %w", err)
	}

	model := openaiTransport.NewChatModel(&openaiTransport.ChatConfig{
		APIKey:      cfg.Model.APIKey,
		BaseURL:     cfg.Model.BaseURL,
		Model:       cfg.Model.Model,
		Temperature: cfg.Model.Temperature,
		Timeout:     cfg.Model.Timeout(),
		Logger:      logger,
	})
	checkChatModel(ctx, model, logger)

	orchestrator := agent.New(
		retr,
		agent.NewHeuristic(cfg.Agent.DomainKeywords, cfg.Agent.Greetings),
		services,
		model,
		registry,
		agent.Config{MaxIterations: cfg.Agent.MaxIterations},
	)

	chatSvc := chat.New(buildSessions(a), orchestrator, cfg.Sessions.HistoryLimit)
	ingestSvc := ingest.New(a.chunker(), a.embed, a.index)

	// Pass nil interface (not typed nil pointer!) when no database is configured.
	var pinger healthuc.DBPinger
	if a.store != nil {
		pinger = a.store
	}
	healthSvc := healthuc.New(pinger, retr)

	server := chiTransport.NewServer(chatSvc, ingestSvc, retr, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware(metricsPath))
	r.Handle(metricsPath, promhttp.Handler())
	r.Route(cfg.HTTP.BasePath, func(r chi.Router) {
		server.Routes(r, nonEmpty(cfg.Auth.AdminAPIKeys))
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: seconds(cfg.HTTP.WriteTimeoutSec),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr), zap.String("base_path", cfg.HTTP.BasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func buildSessions(a *app) conversation.Store {
	sc := a.cfg.Sessions
	if sc.Backend == config.BackendRedis {
		return session.New(a.store, sc.MaxHistory, sc.TTL(), a.logger)
	}
	return conversation.NewMemoryStore(sc.MaxHistory, sc.TTL())
}

// nonEmpty drops blank keys left by unset ${VAR} references.
func nonEmpty(keys []string) []string {
	out := keys[:0:0]
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

// checkChatModel calls the model endpoint once at startup. A failure is only
// logged: turns report the model as unavailable until it answers.
func checkChatModel(ctx context.Context, m *openaiTransport.ChatModel, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := m.HealthCheck(ctx); err != nil {
		logger.Warn("Chat model check failed", zap.String("model", m.Name()), zap.Error(err))
		return
	}
	logger.Info("Chat model reachable", zap.String("model", m.Name()))
}
