package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/repairlens/backend/internal/domain"
)

// engineState tracks where a request is in its lifecycle. States exist for
// diagnostics; transitions are linear with two non-fatal detours
// (vehicle resolution skipped, tier downgrade).
type engineState string

const (
	stateInit             engineState = "init"
	stateResolvingVehicle engineState = "resolving_vehicle"
	stateBuildingQueries  engineState = "building_queries"
	stateSearching        engineState = "searching"
	stateValidating       engineState = "validating"
	stateAggregating      engineState = "aggregating"
	stateCacheWrite       engineState = "cache_write"
	stateDone             engineState = "done"
)

// EngineConfig holds facade-level tuning
type EngineConfig struct {
	// IncompleteDiscount multiplies confidence when the caller's deadline
	// cut the search short and the result is a partial assembly.
	IncompleteDiscount float64
	// Debug enables per-request state transition logging
	Debug bool
}

// DefaultEngineConfig returns the standard facade configuration
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{IncompleteDiscount: 0.8}
}

// Engine is the single entry point for the VIN-enhanced search and
// validation engine. It composes the resolver, tier builder, cache manager,
// executor, scorer and labor aggregator, and always returns a structured
// EngineResult: internal errors collapse into confidence 0 plus a reason,
// never a panic past this boundary.
type Engine struct {
	resolver *VehicleResolver
	builder  *QueryBuilder
	cache    *CacheManager
	executor *SearchExecutor
	scorer   *Scorer
	labor    *LaborAggregator
	cfg      EngineConfig
}

// NewEngine creates the engine facade from its injected components
func NewEngine(
	resolver *VehicleResolver,
	cache *CacheManager,
	executor *SearchExecutor,
	scorer *Scorer,
	cfg EngineConfig,
) *Engine {
	if cfg.IncompleteDiscount <= 0 || cfg.IncompleteDiscount > 1 {
		cfg.IncompleteDiscount = DefaultEngineConfig().IncompleteDiscount
	}
	return &Engine{
		resolver: resolver,
		builder:  NewQueryBuilder(),
		cache:    cache,
		executor: executor,
		scorer:   scorer,
		labor:    NewLaborAggregator(),
		cfg:      cfg,
	}
}

// ResolveVehicle decodes a VIN into a VehicleProfile.
// Errors: domain.ErrInvalidVIN for malformed input, domain.ErrResolutionFailed
// when the decode service is unavailable or returned nothing.
func (e *Engine) ResolveVehicle(ctx context.Context, vin string) (*domain.VehicleProfile, error) {
	return e.resolver.Resolve(ctx, vin)
}

// ResolveOrSkip resolves a VIN for a search request, treating any failure
// as the non-fatal resolution-skipped path: the caller proceeds without a
// profile and the search downgrades to tier 2/3 queries.
func (e *Engine) ResolveOrSkip(ctx context.Context, vin string) *domain.VehicleProfile {
	if vin == "" {
		return nil
	}
	if e.cfg.Debug {
		log.Printf("[ENGINE] %s -> %s", stateInit, stateResolvingVehicle)
	}
	profile, err := e.resolver.Resolve(ctx, vin)
	if err != nil {
		log.Printf("[ENGINE] vehicle resolution skipped (%v); downgrading to tier 2/3", err)
		return nil
	}
	return profile
}

// SearchPartPrice produces a priced, confidence-annotated estimate for a
// part description, using whatever vehicle context is supplied.
func (e *Engine) SearchPartPrice(ctx context.Context, description string, profile *domain.VehicleProfile) *domain.EngineResult {
	return e.search(ctx, description, profile, domain.QueryKindPrice)
}

// SearchLaborTime produces a labor-time estimate for a repair description.
func (e *Engine) SearchLaborTime(ctx context.Context, repairDescription string, profile *domain.VehicleProfile) *domain.EngineResult {
	return e.search(ctx, repairDescription, profile, domain.QueryKindLabor)
}

func (e *Engine) search(ctx context.Context, description string, profile *domain.VehicleProfile, kind domain.QueryKind) (result *domain.EngineResult) {
	state := stateInit
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ENGINE] panic recovered in state %s: %v", state, r)
			result = &domain.EngineResult{
				Query:             description,
				Source:            domain.SourceFallback,
				OverallConfidence: 0,
				Reason:            fmt.Sprintf("internal error while %s", state),
			}
		}
	}()

	if description == "" {
		return &domain.EngineResult{
			Query:             description,
			Source:            domain.SourceFallback,
			OverallConfidence: 0,
			Reason:            "empty description",
		}
	}

	cacheType := CachePartsPricing
	if kind == domain.QueryKindLabor {
		cacheType = CacheLaborEstimates
	}
	cacheKey := estimateCacheKey(description, profile)

	var cached domain.EngineResult
	if err := e.cache.Get(ctx, cacheType, cacheKey, &cached); err == nil && cached.Query != "" {
		cached.Source = domain.SourceCache
		return &cached
	}

	state = e.transition(state, stateBuildingQueries)
	queries := e.builder.BuildTiers(description, profile, kind)

	state = e.transition(state, stateSearching)
	outcome, err := e.executor.Execute(ctx, queries, kind)
	if err != nil {
		if errors.Is(err, domain.ErrNoUsableResults) {
			return &domain.EngineResult{
				Query:             description,
				VehicleProfile:    profile,
				Source:            domain.SourceFallback,
				OverallConfidence: 0,
				Reason:            "insufficient data: no usable results from any search tier",
			}
		}
		return &domain.EngineResult{
			Query:             description,
			VehicleProfile:    profile,
			Source:            domain.SourceFallback,
			OverallConfidence: 0,
			Reason:            fmt.Sprintf("search failed: %v", err),
		}
	}

	state = e.transition(state, stateValidating)
	result = &domain.EngineResult{
		Query:          description,
		VehicleProfile: profile,
		Source:         domain.SourceLive,
		TierUsed:       outcome.TierUsed,
	}

	switch kind {
	case domain.QueryKindLabor:
		state = e.transition(state, stateAggregating)
		samples := ExtractLaborSamples(outcome.Results)
		estimate := e.labor.Aggregate(samples)
		if estimate == nil {
			result.Source = domain.SourceFallback
			result.OverallConfidence = 0
			result.Reason = "insufficient data: no labor time figures extracted"
			return result
		}
		result.LaborEstimate = estimate
		// Labor confidence measures sample agreement; the tier base folds
		// in how vehicle-specific the contributing queries were.
		result.OverallConfidence = clamp(e.scorer.TierBase(outcome.TierUsed)*estimate.Confidence/100, 0, 100)
	default:
		state = e.transition(state, stateAggregating)
		estimate := e.scorer.BuildPriceEstimate(outcome.Results, outcome.TierUsed)
		if estimate == nil {
			result.Source = domain.SourceFallback
			result.OverallConfidence = 0
			result.Reason = "insufficient data: no prices extracted"
			return result
		}
		result.PriceEstimate = estimate
		result.OverallConfidence = estimate.Confidence
	}

	if outcome.Truncated {
		result.OverallConfidence = clamp(result.OverallConfidence*e.cfg.IncompleteDiscount, 0, 100)
		result.Reason = "deadline reached; partial results"
	}

	state = e.transition(state, stateCacheWrite)
	if err := e.cache.Put(ctx, cacheType, cacheKey, result); err != nil {
		log.Printf("[ENGINE] cache write failed for %q: %v", cacheKey, err)
	}

	state = e.transition(state, stateDone)
	return result
}

func (e *Engine) transition(from, to engineState) engineState {
	if e.cfg.Debug {
		log.Printf("[ENGINE] %s -> %s", from, to)
	}
	return to
}

// estimateCacheKey folds the vehicle identity into the cache key so a
// VIN-scoped estimate never answers a generic query, and vice versa.
func estimateCacheKey(description string, profile *domain.VehicleProfile) string {
	if profile.Complete() {
		return fmt.Sprintf("%d %s %s %s", profile.Year, profile.Make, profile.Model, description)
	}
	return description
}
