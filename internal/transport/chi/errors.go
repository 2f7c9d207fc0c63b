package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/TechTorque-2025/Agent-Bot/internal/domain"
)

// ErrorCode is the machine-readable error identifier of ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnauthorized           ErrorCode = "unauthorized"
	CodeEmbeddingUnavailable   ErrorCode = "embedding_unavailable"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeVectorStoreUnavailable ErrorCode = "vector_store_unavailable"
	CodeModelUnavailable       ErrorCode = "model_unavailable"
	CodeUpstreamError          ErrorCode = "upstream_error"
	CodeSessionNotFound        ErrorCode = "session_not_found"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound),
		sentinelHandler(domain.ErrEmbeddingUnavailable, http.StatusServiceUnavailable, CodeEmbeddingUnavailable),
		sentinelHandler(domain.ErrVectorStoreUnavailable, http.StatusServiceUnavailable, CodeVectorStoreUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError),
		sentinelHandler(domain.ErrModelUnavailable, http.StatusBadGateway, CodeModelUnavailable),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstreamError),
	}
}

// domainSentinels are the errors whose text is safe to return to clients.
var domainSentinels = []error{
	domain.ErrInvalidRequest,
	domain.ErrInvalidDocument,
	domain.ErrSessionNotFound,
	domain.ErrEmbeddingUnavailable,
	domain.ErrVectorStoreUnavailable,
	domain.ErrEmbeddingProviderError,
	domain.ErrModelUnavailable,
	domain.ErrUpstream,
}

// safeDomainMessage returns the client-facing message for err. Validation
// errors keep their detail; everything else is reduced to its sentinel.
func safeDomainMessage(err error) string {
	if errors.Is(err, domain.ErrInvalidRequest) || errors.Is(err, domain.ErrInvalidDocument) {
		return err.Error()
	}
	for _, s := range domainSentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}
