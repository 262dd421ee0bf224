package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/repairlens/backend/internal/domain"
)

// CacheType namespaces cache entries so each kind of data gets its own TTL
// and its own eviction behavior.
type CacheType string

const (
	CacheVehicleDecode    CacheType = "vehicle_decode"
	CachePartsPricing     CacheType = "parts_pricing"
	CacheLaborEstimates   CacheType = "labor_estimates"
	CacheRepairProcedures CacheType = "repair_procedures"
	CacheNHTSALookup      CacheType = "nhtsa_lookup"
)

// cacheTTLs is the fixed per-type freshness table. Vehicle identity is
// stable for a day; part prices move fast enough that 15 minutes is already
// generous; labor guides and repair procedures sit in between.
var cacheTTLs = map[CacheType]time.Duration{
	CacheVehicleDecode:    86400 * time.Second,
	CachePartsPricing:     900 * time.Second,
	CacheLaborEstimates:   3600 * time.Second,
	CacheRepairProcedures: 14400 * time.Second,
	CacheNHTSALookup:      7200 * time.Second,
}

// Package-level compiled regex patterns for cache key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// CacheManager is the only mutable shared structure in the engine. It wraps
// a CacheRepository backend with type-aware keys, JSON serialization, and
// the per-type TTL table. Every component receives it by injection; there is
// no ambient/global cache access.
type CacheManager struct {
	repo domain.CacheRepository
}

// NewCacheManager creates a cache manager over the given backend
func NewCacheManager(repo domain.CacheRepository) *CacheManager {
	return &CacheManager{repo: repo}
}

// TTLFor returns the freshness window for a cache type
func TTLFor(typ CacheType) time.Duration {
	if ttl, ok := cacheTTLs[typ]; ok {
		return ttl
	}
	return 900 * time.Second
}

// Get reads a typed entry into out. Expired or absent entries return
// domain.ErrCacheMiss; backend failures are reported as a miss too, since a
// degraded cache must never fail a request.
func (m *CacheManager) Get(ctx context.Context, typ CacheType, key string, out interface{}) error {
	data, err := m.repo.Get(ctx, m.namespacedKey(typ, key))
	if err != nil {
		return domain.ErrCacheMiss
	}
	if err := json.Unmarshal(data, out); err != nil {
		return domain.ErrCacheMiss
	}
	return nil
}

// Put stores a typed entry, stamping it with the TTL from the per-type table
func (m *CacheManager) Put(ctx context.Context, typ CacheType, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	return m.repo.Set(ctx, m.namespacedKey(typ, key), data, TTLFor(typ))
}

// namespacedKey builds "type:key" with a normalized key component, so
// "Brake Pads" and "brake  pads" share one entry per type namespace.
func (m *CacheManager) namespacedKey(typ CacheType, key string) string {
	return fmt.Sprintf("%s:%s", typ, normalizeForCacheKey(key))
}

// normalizeForCacheKey lowercases, strips special characters, and collapses
// whitespace so cosmetically different inputs hit the same entry.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
