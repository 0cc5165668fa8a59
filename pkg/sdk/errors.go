package contentfinder

import (
	"errors"

	"github.com/kailas-cloud/contentfinder/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest         = domain.ErrInvalidRequest
	ErrEmbeddingQuotaExceeded = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrEmbedderNotConfigured  = errors.New("contentfinder: embedder not configured")
)
