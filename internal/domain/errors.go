package domain

import "errors"

var (
	// ErrEmbeddingUnavailable signals that the embedding backend failed its startup probe.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrVectorStoreUnavailable signals that the vector index cannot be reached.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")
	// ErrModelUnavailable signals a language model failure (timeout, transport, API error).
	ErrModelUnavailable = errors.New("language model unavailable")
	// ErrInvalidDocument signals a malformed ingestion entry.
	ErrInvalidDocument = errors.New("invalid document")
	// ErrInvalidRequest signals a malformed chat request.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrSessionNotFound signals an unknown conversation session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUpstream signals a failed call to a downstream business service.
	ErrUpstream = errors.New("upstream service error")
)
