package domain

import "errors"

var (
	// ErrInvalidRequest signals a request rejected before any retrieval (blank message, bad limit).
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstreamUnavailable signals a failed collaborator call (embedding, interpretation, store).
	// The query pipeline degrades on it instead of failing.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrInterpretationFailed signals that the interpretation collaborator returned nothing usable.
	ErrInterpretationFailed = errors.New("interpretation failed")
)
