package chi

import (
	"fmt"

	"github.com/TechTorque-2025/Agent-Bot/internal/usecase/ingest"
)

// ChatRequest is the body of POST /chat. Token may instead arrive as a Bearer header.
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
	Token     string `json:"token,omitempty"`
}

// ChatResponse is the answer to POST /chat. ToolExecuted is null when no tool ran.
type ChatResponse struct {
	Reply        string  `json:"reply"`
	SessionID    string  `json:"session_id"`
	ToolExecuted *string `json:"tool_executed"`
}

// DocumentRequest is one document to ingest.
type DocumentRequest struct {
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	DocType  string         `json:"doc_type,omitempty"`
	Source   string         `json:"source,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// BatchIngestRequest wraps a batch of documents.
type BatchIngestRequest struct {
	Documents []DocumentRequest `json:"documents"`
}

// IngestResponse reports one ingested document.
type IngestResponse struct {
	Success       bool   `json:"success"`
	DocID         string `json:"doc_id,omitempty"`
	Title         string `json:"title"`
	ChunksCreated int    `json:"chunks_created"`
	ContentHash   string `json:"content_hash,omitempty"`
	Error         string `json:"error,omitempty"`
}

// BatchIngestResponse reports a batch.
type BatchIngestResponse struct {
	Total      int              `json:"total"`
	Successful int              `json:"successful"`
	Failed     int              `json:"failed"`
	Results    []IngestResponse `json:"results"`
}

// EmbeddingServiceStatus describes the embedding model.
type EmbeddingServiceStatus struct {
	ModelName string `json:"model_name"`
	Dimension int    `json:"dimension"`
	Available bool   `json:"available"`
}

// VectorStoreStatus describes the vector index.
type VectorStoreStatus struct {
	Available    bool   `json:"available"`
	TotalVectors int    `json:"total_vectors"`
	Dimension    int    `json:"dimension"`
	IndexName    string `json:"index_name"`
}

// RAGStatusResponse is the body of GET /rag/status.
type RAGStatusResponse struct {
	RAGAvailable     bool                   `json:"rag_available"`
	EmbeddingService EmbeddingServiceStatus `json:"embedding_service"`
	VectorStore      VectorStoreStatus      `json:"vector_store"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status      string            `json:"status"`
	RAGEnabled  bool              `json:"rag_enabled"`
	VectorStore VectorStoreStatus `json:"vector_store"`
	Checks      map[string]string `json:"checks"`
}

func documentFromRequest(req DocumentRequest) ingest.Document {
	var meta map[string]string
	if len(req.Metadata) > 0 {
		meta = make(map[string]string, len(req.Metadata))
		for k, v := range req.Metadata {
			meta[k] = fmt.Sprint(v)
		}
	}
	return ingest.Document{
		Title:    req.Title,
		Content:  req.Content,
		DocType:  req.DocType,
		Source:   req.Source,
		Metadata: meta,
	}
}

func ingestResultToResponse(r ingest.Result) IngestResponse {
	resp := IngestResponse{
		Success:       r.Success,
		DocID:         r.DocID,
		Title:         r.Title,
		ChunksCreated: r.ChunksCreated,
		ContentHash:   r.ContentHash,
	}
	if r.Err != nil {
		resp.Error = safeDomainMessage(r.Err)
	}
	return resp
}
