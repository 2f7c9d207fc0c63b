// Package chi exposes the agent over HTTP using the chi router.
package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/TechTorque-2025/Agent-Bot/internal/logger"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/chat"
	healthuc "github.com/TechTorque-2025/Agent-Bot/internal/usecase/health"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/ingest"
	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/retrieval"
)

// MaxBatchSize is the largest accepted batch-ingest request.
const MaxBatchSize = 100

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// ChatService answers chat messages.
type ChatService interface {
	Chat(ctx context.Context, req chat.Request) (chat.Response, error)
}

// Ingester stores knowledge documents.
type Ingester interface {
	Ingest(ctx context.Context, doc ingest.Document) ingest.Result
	IngestBatch(ctx context.Context, docs []ingest.Document) ingest.BatchResult
}

// RAGReporter reports knowledge-base readiness.
type RAGReporter interface {
	Status(ctx context.Context) retrieval.Status
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Server holds the HTTP handlers.
type Server struct {
	chat          ChatService
	ingest        Ingester
	rag           RAGReporter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(c ChatService, in Ingester, rag RAGReporter, health HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		chat:          c,
		ingest:        in,
		rag:           rag,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers the API on r. Document routes require one of adminKeys
// when the list is non-empty.
func (s *Server) Routes(r chi.Router, adminKeys []string) {
	r.Post("/chat", s.Chat)
	r.Get("/rag/status", s.RAGStatus)
	r.Get("/health", s.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(BearerAuthMiddleware(adminKeys))
		r.Post("/documents/ingest", s.IngestDocument)
		r.Post("/documents/batch-ingest", s.BatchIngest)
	})
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	credential := req.Token
	if credential == "" {
		credential = bearerToken(r)
	}

	resp, err := s.chat.Chat(r.Context(), chat.Request{
		Query:      req.Query,
		SessionID:  req.SessionID,
		Credential: credential,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	out := ChatResponse{Reply: resp.Reply, SessionID: resp.SessionID}
	if resp.ToolExecuted != "" {
		label := resp.ToolExecuted
		out.ToolExecuted = &label
	}
	writeJSON(w, http.StatusOK, out)
}

// IngestDocument handles POST /documents/ingest.
func (s *Server) IngestDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	res := s.ingest.Ingest(r.Context(), documentFromRequest(req))
	if res.Err != nil {
		s.handleDomainError(w, r, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResultToResponse(res))
}

// BatchIngest handles POST /documents/batch-ingest. The body is either
// {"documents": [...]} or a bare array.
func (s *Server) BatchIngest(w http.ResponseWriter, r *http.Request) {
	docs, err := decodeBatch(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(docs) == 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "documents must not be empty")
		return
	}
	if len(docs) > MaxBatchSize {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			fmt.Sprintf("batch size %d exceeds maximum %d", len(docs), MaxBatchSize))
		return
	}

	in := make([]ingest.Document, len(docs))
	for i, d := range docs {
		in[i] = documentFromRequest(d)
	}
	out := s.ingest.IngestBatch(r.Context(), in)

	resp := BatchIngestResponse{
		Total:      out.Total,
		Successful: out.Successful,
		Failed:     out.Failed,
		Results:    make([]IngestResponse, len(out.Results)),
	}
	for i, res := range out.Results {
		resp.Results[i] = ingestResultToResponse(res)
	}
	writeJSON(w, http.StatusOK, resp)
}

// RAGStatus handles GET /rag/status.
func (s *Server) RAGStatus(w http.ResponseWriter, r *http.Request) {
	st := s.rag.Status(r.Context())
	writeJSON(w, http.StatusOK, RAGStatusResponse{
		RAGAvailable: st.Available,
		EmbeddingService: EmbeddingServiceStatus{
			ModelName: st.Embedding.ModelName,
			Dimension: st.Embedding.Dimension,
			Available: st.Embedding.Available,
		},
		VectorStore: VectorStoreStatus{
			Available:    st.VectorStore.Available,
			TotalVectors: st.VectorStore.TotalVectors,
			Dimension:    st.VectorStore.Dimension,
			IndexName:    st.VectorStore.IndexName,
		},
	})
}

// HealthCheck handles GET /health. It always answers 200: a degraded
// knowledge base still leaves the agent able to reply.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:     string(report.Status),
		RAGEnabled: report.RAGEnabled,
		VectorStore: VectorStoreStatus{
			Available:    report.VectorStore.Available,
			TotalVectors: report.VectorStore.TotalVectors,
			Dimension:    report.VectorStore.Dimension,
			IndexName:    report.VectorStore.IndexName,
		},
		Checks: checks,
	})
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
}

func decodeBatch(r *http.Request) ([]DocumentRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, io.EOF
	}

	if trimmed[0] == '[' {
		var docs []DocumentRequest
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	}

	var req BatchIngestRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return req.Documents, nil
}
