package domain

import "time"

// QueryKind selects what the downstream extractor looks for. It is an
// explicit parameter, never inferred from the query text.
type QueryKind string

const (
	QueryKindPrice QueryKind = "price"
	QueryKindLabor QueryKind = "labor"
)

// Query specificity tiers. Lower numbers are more specific; the executor
// escalates from tier 1 toward tier 3 and never goes back down mid-attempt.
const (
	TierVINSpecific = 1 // full vehicle profile, VIN-resolved
	TierMakeModel   = 2 // year/make/model known, VIN or not
	TierGeneric     = 3 // description only, always available
)

// SearchQuery is one query in a tier-ordered sequence.
type SearchQuery struct {
	Text       string `json:"text"`
	Tier       int    `json:"tier"`
	SourceHint string `json:"sourceHint,omitempty"`
}

// RawResult is a single untrusted result page returned by a search provider.
// It is ephemeral and discarded after scoring.
type RawResult struct {
	SourceURL   string    `json:"sourceUrl"`
	Title       string    `json:"title"`
	Snippet     string    `json:"snippet"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// PageType classifies what kind of page a result URL likely points at.
type PageType string

const (
	PageTypeProduct  PageType = "product"
	PageTypeCategory PageType = "category"
	PageTypeUnknown  PageType = "unknown"
)

// ScoredResult is a RawResult annotated with extraction and trust signals.
// Derived once from the raw result and never mutated afterwards.
type ScoredResult struct {
	RawResult
	ExtractedPrice float64  `json:"extractedPrice,omitempty"`
	PriceFound     bool     `json:"priceFound"`
	TimeFound      bool     `json:"timeFound"`
	PageType       PageType `json:"pageType"`
	QualityScore   float64  `json:"qualityScore"`  // 0-100
	RetailerTrust  float64  `json:"retailerTrust"` // 0-100
	Tier           int      `json:"tier"`
	Anomaly        bool     `json:"anomaly"`
}
