package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownDomain indicates a domain identifier outside the fixed set.
	ErrUnknownDomain = errors.New("unknown domain")

	// ErrCacheUnavailable indicates the cache backend failed.
	// The engine bypasses the cache transparently.
	ErrCacheUnavailable = errors.New("cache unavailable")

	// ErrCacheMiss indicates the key is absent or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrLLMUnavailable indicates the enrichment provider is not configured.
	// Answers fall back to the engine's own synthesised text.
	ErrLLMUnavailable = errors.New("LLM service unavailable")
)
