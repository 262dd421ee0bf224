package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/repairlens/backend/internal/domain"
)

// Compiled patterns for query cleaning
var (
	querySpecialCharsRegex = regexp.MustCompile(`[#%+@!^*()=\[\]{}<>|\\~` + "`" + `"]`)
	queryMultiSpaceRegex   = regexp.MustCompile(`\s+`)
)

// QueryBuilder turns a free-text part/repair description plus whatever
// vehicle context exists into an ordered list of search queries, most
// specific first. Tier 3 is always present so at least one query exists.
type QueryBuilder struct{}

// NewQueryBuilder creates a query builder
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// BuildTiers produces the tier-ordered query sequence for one request.
// The query kind is an explicit parameter so downstream extraction stays
// deterministic; it is never inferred from the description text.
func (b *QueryBuilder) BuildTiers(description string, profile *domain.VehicleProfile, kind domain.QueryKind) []domain.SearchQuery {
	desc := cleanDescription(description)
	var queries []domain.SearchQuery

	// Tier 1: full VIN-resolved profile, with an engine-code variant when
	// the decode produced one. Trim narrows fitment; engine narrows it
	// differently, so both run in the same tier.
	if profile.Complete() && profile.VIN != "" {
		base := fmt.Sprintf("%d %s %s", profile.Year, profile.Make, profile.Model)
		if profile.Trim != "" {
			queries = append(queries, domain.SearchQuery{
				Text: collapse(fmt.Sprintf("%s %s %s %s", base, profile.Trim, desc, kindSuffix(kind))),
				Tier: domain.TierVINSpecific,
			})
		} else {
			queries = append(queries, domain.SearchQuery{
				Text: collapse(fmt.Sprintf("%s %s %s", base, desc, kindSuffix(kind))),
				Tier: domain.TierVINSpecific,
			})
		}
		if profile.Engine != "" {
			queries = append(queries, domain.SearchQuery{
				Text: collapse(fmt.Sprintf("%s %s %s %s", base, profile.Engine, desc, kindSuffix(kind))),
				Tier: domain.TierVINSpecific,
			})
		}
	}

	// Tier 2: year/make/model is enough even without a VIN
	if profile.Complete() {
		queries = append(queries, domain.SearchQuery{
			Text: collapse(fmt.Sprintf("%d %s %s %s %s", profile.Year, profile.Make, profile.Model, desc, kindSuffix(kind))),
			Tier: domain.TierMakeModel,
		})
	}

	// Tier 3: universal fallback, never skipped
	queries = append(queries, domain.SearchQuery{
		Text: collapse(fmt.Sprintf("%s %s", desc, kindSuffix(kind))),
		Tier: domain.TierGeneric,
	})

	return queries
}

// kindSuffix appends the extraction hint that steers providers toward pages
// the scorer can actually parse.
func kindSuffix(kind domain.QueryKind) string {
	if kind == domain.QueryKindLabor {
		return "labor time"
	}
	return "price"
}

// cleanDescription strips characters that break search provider APIs and
// collapses whitespace. Descriptions come from a conversational layer and
// can contain arbitrary punctuation.
func cleanDescription(description string) string {
	s := strings.ReplaceAll(description, "&", " and ")
	s = querySpecialCharsRegex.ReplaceAllString(s, " ")
	return collapse(s)
}

func collapse(s string) string {
	return strings.TrimSpace(queryMultiSpaceRegex.ReplaceAllString(s, " "))
}
