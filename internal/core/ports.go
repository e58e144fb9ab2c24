package core

import (
	"context"
	"errors"
)

var (
	// ErrServiceUnavailable is wrapped by delegate failures caused by transport,
	// quota or an open circuit breaker
	ErrServiceUnavailable = errors.New("categorization service unavailable")
	// ErrMalformedResponse is wrapped by delegate failures caused by a response
	// that could not be turned into a result
	ErrMalformedResponse = errors.New("malformed categorization response")
	// ErrDelegateDisabled is returned by the no-op delegate
	ErrDelegateDisabled = errors.New("categorization delegate disabled")
)

// Classifier is the deterministic rule engine contract
type Classifier interface {
	// Classify never fails; missing fields are treated as empty
	Classify(email *Email) *ClassificationResult
}

// Categorizer defines the interface for an external categorization service.
// Errors wrap ErrServiceUnavailable or ErrMalformedResponse.
type Categorizer interface {
	Categorize(ctx context.Context, email *Email) (*ClassificationResult, error)
	// Model names the backing model, recorded as the result source
	Model() string
}

// CacheRepository defines the interface for caching delegate verdicts
type CacheRepository interface {
	// Get retrieves a cached entry by message fingerprint
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// NoopCategorizer is used when no delegate is configured
type NoopCategorizer struct{}

func (NoopCategorizer) Categorize(context.Context, *Email) (*ClassificationResult, error) {
	return nil, ErrDelegateDisabled
}

func (NoopCategorizer) Model() string { return "none" }
