package domain

import "errors"

var (
	// ErrInvalidVIN is returned for malformed VIN input. Never retried and
	// never consumes a network call or cache slot.
	ErrInvalidVIN = errors.New("invalid VIN format")

	// ErrResolutionFailed is returned when the VIN decode service is
	// unavailable or returns no data. Callers downgrade to tier 2/3 queries.
	ErrResolutionFailed = errors.New("vehicle resolution failed")

	// ErrProviderTimeout is returned when a search provider call exceeds its
	// deadline. Transient; retried per policy.
	ErrProviderTimeout = errors.New("search provider timeout")

	// ErrProviderError is returned for transient provider failures (5xx,
	// rate limiting). Retried per policy, then tier escalated.
	ErrProviderError = errors.New("search provider error")

	// ErrNoUsableResults is returned when every tier has exhausted every
	// provider without producing usable results. Terminal for the request.
	ErrNoUsableResults = errors.New("no usable results from any search tier")

	// ErrExtractionAmbiguous is returned when a price or time figure cannot
	// be parsed from an individual result. That result is dropped, not the
	// whole request.
	ErrExtractionAmbiguous = errors.New("could not extract figure from result")

	// ErrInvalidRequest is returned when request parameters are invalid.
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache or expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend is unreachable.
	ErrCacheUnavailable = errors.New("cache backend unavailable")
)
