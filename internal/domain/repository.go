package domain

import (
	"context"
	"time"
)

// CacheRepository defines the low-level key-value contract satisfied by the
// memory and Redis backends. Values are opaque JSON; the cache manager owns
// serialization and per-type TTL assignment.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// VINDecoder defines the interface to the external VIN decode service.
type VINDecoder interface {
	Decode(ctx context.Context, vin string) (*VehicleProfile, error)
}

// SearchProvider defines the interface to one external web search provider.
// Implementations return results in provider order; the scorer does not
// depend on that order.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, maxResults int) ([]RawResult, error)
}
