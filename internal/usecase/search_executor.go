package usecase

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/repairlens/backend/internal/domain"
)

// ExecutorConfig holds search executor tuning
type ExecutorConfig struct {
	// MinUsableResults is the per-tier yield below which the executor
	// escalates to the next, less specific tier.
	MinUsableResults int
	// MaxResultsPerQuery caps how many results each provider returns
	MaxResultsPerQuery int
}

// DefaultExecutorConfig returns the standard executor configuration
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		MinUsableResults:   3,
		MaxResultsPerQuery: 10,
	}
}

// ExecOutcome is what one tier-escalating search run produced
type ExecOutcome struct {
	Results []domain.ScoredResult
	// TierUsed is the most specific tier that contributed usable results
	TierUsed int
	// Truncated is set when the caller's deadline cut the tier loop short
	Truncated bool
}

// SearchExecutor runs tier-ordered queries against the configured providers.
// Queries within one tier fan out concurrently (one goroutine per
// provider-query pair); the tier loop itself is strictly sequential because
// escalation depends on the previous tier's scored yield.
type SearchExecutor struct {
	providers []domain.SearchProvider
	scorer    *Scorer
	cfg       ExecutorConfig
}

// NewSearchExecutor creates a search executor
func NewSearchExecutor(providers []domain.SearchProvider, scorer *Scorer, cfg ExecutorConfig) *SearchExecutor {
	def := DefaultExecutorConfig()
	if cfg.MinUsableResults <= 0 {
		cfg.MinUsableResults = def.MinUsableResults
	}
	if cfg.MaxResultsPerQuery <= 0 {
		cfg.MaxResultsPerQuery = def.MaxResultsPerQuery
	}
	return &SearchExecutor{providers: providers, scorer: scorer, cfg: cfg}
}

// Execute runs the query sequence tier by tier and returns everything scored
// along the way. A tier with enough usable results stops the escalation; a
// tier where every provider fails just moves on to the next. Only when every
// tier has exhausted every provider without a single usable result does it
// return ErrNoUsableResults.
func (e *SearchExecutor) Execute(ctx context.Context, queries []domain.SearchQuery, kind domain.QueryKind) (*ExecOutcome, error) {
	outcome := &ExecOutcome{}
	seen := make(map[string]bool)

	for _, tier := range tierOrder(queries) {
		if ctx.Err() != nil {
			outcome.Truncated = true
			break
		}

		tierQueries := queriesForTier(queries, tier)
		raw := e.fanOut(ctx, tierQueries)

		usable := 0
		for _, r := range raw {
			if seen[r.SourceURL] {
				continue
			}
			seen[r.SourceURL] = true

			scored := e.scorer.Score(r, kind, tier)
			outcome.Results = append(outcome.Results, scored)
			if e.scorer.Usable(scored, kind) {
				usable++
				if outcome.TierUsed == 0 || tier < outcome.TierUsed {
					outcome.TierUsed = tier
				}
			}
		}

		log.Printf("[SEARCH] tier %d: %d results, %d usable (min %d)",
			tier, len(raw), usable, e.cfg.MinUsableResults)

		if usable >= e.cfg.MinUsableResults {
			return outcome, nil
		}
		if ctx.Err() != nil {
			outcome.Truncated = true
			break
		}
	}

	if outcome.TierUsed == 0 {
		return nil, domain.ErrNoUsableResults
	}
	return outcome, nil
}

// fanOut issues every query in one tier against every provider concurrently
// and collects whatever succeeds. Individual provider failures are absorbed
// and logged; the provider clients already retried them.
func (e *SearchExecutor) fanOut(ctx context.Context, queries []domain.SearchQuery) []domain.RawResult {
	var (
		mu      sync.Mutex
		results []domain.RawResult
		wg      sync.WaitGroup
	)

	for _, q := range queries {
		for _, p := range e.providers {
			wg.Add(1)
			go func(q domain.SearchQuery, p domain.SearchProvider) {
				defer wg.Done()
				found, err := p.Search(ctx, q.Text, e.cfg.MaxResultsPerQuery)
				if err != nil {
					log.Printf("[SEARCH] provider %s failed for %q: %v", p.Name(), q.Text, err)
					return
				}
				mu.Lock()
				results = append(results, found...)
				mu.Unlock()
			}(q, p)
		}
	}
	wg.Wait()

	return results
}

// tierOrder returns the distinct tiers present in the query list, ascending,
// so escalation always moves from specific toward generic.
func tierOrder(queries []domain.SearchQuery) []int {
	present := make(map[int]bool)
	for _, q := range queries {
		present[q.Tier] = true
	}
	tiers := make([]int, 0, len(present))
	for t := range present {
		tiers = append(tiers, t)
	}
	sort.Ints(tiers)
	return tiers
}

func queriesForTier(queries []domain.SearchQuery, tier int) []domain.SearchQuery {
	var out []domain.SearchQuery
	for _, q := range queries {
		if q.Tier == tier {
			out = append(out, q)
		}
	}
	return out
}
