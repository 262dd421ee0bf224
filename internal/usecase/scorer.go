package usecase

import (
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/repairlens/backend/internal/domain"
)

// Quality score weights: retailer trust matters most, then page type, then
// whether a figure could be extracted at all.
const (
	weightRetailerTrust   = 0.4
	weightPageType        = 0.3
	weightExtraction      = 0.3
	pageWeightProduct     = 1.0
	pageWeightCategory    = 0.5
	pageWeightUnknown     = 0.2
	defaultRetailerTrust  = 50.0
	anomalyIQRMultiplier  = 1.5
	anomalyMinSampleCount = 3
)

// ScorerConfig holds the tunable scoring knobs. The tier confidence bases
// came out of calibration against known-good estimates, so they are
// configuration with named semantics rather than inline literals.
type ScorerConfig struct {
	MinSanePrice   float64
	MaxSanePrice   float64
	Tier1Base      float64
	Tier2Base      float64
	Tier3Base      float64
	SourceSaturate int // source count past which more sources stop helping
}

// DefaultScorerConfig returns the standard scoring configuration
func DefaultScorerConfig() ScorerConfig {
	return ScorerConfig{
		MinSanePrice:   0.01,
		MaxSanePrice:   50000,
		Tier1Base:      95,
		Tier2Base:      80,
		Tier3Base:      65,
		SourceSaturate: 5,
	}
}

// Scorer extracts prices and page-type signals from raw results, scores
// trustworthiness, and detects cross-source price anomalies.
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer, filling zero config fields with defaults
func NewScorer(cfg ScorerConfig) *Scorer {
	def := DefaultScorerConfig()
	if cfg.MinSanePrice <= 0 {
		cfg.MinSanePrice = def.MinSanePrice
	}
	if cfg.MaxSanePrice <= 0 {
		cfg.MaxSanePrice = def.MaxSanePrice
	}
	if cfg.Tier1Base <= 0 {
		cfg.Tier1Base = def.Tier1Base
	}
	if cfg.Tier2Base <= 0 {
		cfg.Tier2Base = def.Tier2Base
	}
	if cfg.Tier3Base <= 0 {
		cfg.Tier3Base = def.Tier3Base
	}
	if cfg.SourceSaturate <= 0 {
		cfg.SourceSaturate = def.SourceSaturate
	}
	return &Scorer{cfg: cfg}
}

// priceRegex matches currency-prefixed numeric tokens like "$129.99",
// "$1,249" or "$45". Extraction only trusts tokens near price keywords.
var priceRegex = regexp.MustCompile(`\$\s?(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)

// priceKeywords gate extraction: a dollar token with none of these nearby is
// more likely a date, model number, or ad copy than a part price.
var priceKeywords = []string{
	"price", "cost", "sale", "msrp", "each", "buy", "now", "only",
	"part", "parts", "kit", "set", "oem", "aftermarket", "replacement",
	"shipping", "free", "from", "starting",
}

// Score converts one raw result into a scored result. Scoring is a pure
// function of the result content, so re-running it on the same input always
// produces the same output.
func (s *Scorer) Score(raw domain.RawResult, kind domain.QueryKind, tier int) domain.ScoredResult {
	scored := domain.ScoredResult{
		RawResult: raw,
		PageType:  classifyPage(raw.SourceURL),
		Tier:      tier,
	}
	scored.RetailerTrust = retailerTrustFor(raw.SourceURL)

	text := raw.Title + " " + raw.Snippet
	extracted := false
	switch kind {
	case domain.QueryKindLabor:
		if _, ok := extractLaborSample(text); ok {
			scored.TimeFound = true
			extracted = true
		}
	default:
		if price, ok := s.extractPrice(text); ok {
			scored.ExtractedPrice = price
			scored.PriceFound = true
			extracted = true
		}
	}

	pageWeight := pageWeightUnknown
	switch scored.PageType {
	case domain.PageTypeProduct:
		pageWeight = pageWeightProduct
	case domain.PageTypeCategory:
		pageWeight = pageWeightCategory
	}

	extractionScore := 0.0
	if extracted {
		extractionScore = 1.0
	}

	scored.QualityScore = clamp(
		(scored.RetailerTrust/100)*weightRetailerTrust*100+
			pageWeight*weightPageType*100+
			extractionScore*weightExtraction*100,
		0, 100)

	return scored
}

// Usable reports whether a scored result counts toward the tier's minimum
// usable result threshold for the given query kind.
func (s *Scorer) Usable(sr domain.ScoredResult, kind domain.QueryKind) bool {
	if kind == domain.QueryKindLabor {
		return sr.TimeFound
	}
	return sr.PriceFound
}

// extractPrice finds the first sane currency token near a price keyword.
// Tokens outside the sanity range are extraction noise, not anomalies; they
// never enter the anomaly set.
func (s *Scorer) extractPrice(text string) (float64, bool) {
	lower := strings.ToLower(text)

	hasKeyword := false
	for _, kw := range priceKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return 0, false
	}

	for _, match := range priceRegex.FindAllStringSubmatch(text, -1) {
		token := strings.ReplaceAll(match[1], ",", "")
		price, err := strconv.ParseFloat(token, 64)
		if err != nil {
			continue
		}
		if price < s.cfg.MinSanePrice || price > s.cfg.MaxSanePrice {
			continue
		}
		return price, true
	}
	return 0, false
}

// URL-shape heuristics for page classification
var (
	productPathRegex  = regexp.MustCompile(`(?i)/(dp|p|product|products|item|itm|part|sku)/`)
	categoryPathRegex = regexp.MustCompile(`(?i)/(category|categories|c|shop|collections|browse|catalog|search)(/|$|\?)`)
	partNumberRegex   = regexp.MustCompile(`(?i)\b[a-z]{0,4}[-_]?\d{4,}[a-z0-9-]*\b`)
)

// classifyPage guesses whether a URL points at a single product page, a
// category/listing page, or something unidentifiable. Product pages carry
// the most trustworthy single price, so this feeds the quality score.
func classifyPage(rawURL string) domain.PageType {
	u, err := url.Parse(rawURL)
	if err != nil {
		return domain.PageTypeUnknown
	}
	path := u.Path

	if productPathRegex.MatchString(path) {
		return domain.PageTypeProduct
	}
	if categoryPathRegex.MatchString(path) {
		return domain.PageTypeCategory
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 1 && segments[0] == "" {
		// Bare domain root is a storefront, not a product
		return domain.PageTypeCategory
	}

	last := segments[len(segments)-1]
	// Deep paths ending in a part-number-looking token are product pages
	if len(segments) >= 2 && partNumberRegex.MatchString(last) {
		return domain.PageTypeProduct
	}
	return domain.PageTypeUnknown
}

// trustedRetailers maps known automotive retail domains to trust scores.
// Unknown domains get defaultRetailerTrust rather than zero: an unfamiliar
// shop is unproven, not untrustworthy.
var trustedRetailers = map[string]float64{
	"rockauto.com":         95,
	"autozone.com":         90,
	"oreillyauto.com":      90,
	"advanceautoparts.com": 90,
	"napaonline.com":       90,
	"summitracing.com":     85,
	"partsgeek.com":        85,
	"carparts.com":         85,
	"repairpal.com":        90,
	"yourmechanic.com":     85,
	"1aauto.com":           80,
	"amazon.com":           75,
	"walmart.com":          75,
	"ebay.com":             60,
}

// retailerTrustFor looks up the registrable domain of a result URL in the
// retailer allowlist.
func retailerTrustFor(rawURL string) float64 {
	u, err := url.Parse(rawURL)
	if err != nil {
		return defaultRetailerTrust
	}
	host := strings.ToLower(u.Hostname())

	for domainName, trust := range trustedRetailers {
		if host == domainName || strings.HasSuffix(host, "."+domainName) {
			return trust
		}
	}
	return defaultRetailerTrust
}

// BuildPriceEstimate combines the priced results for one query into a
// PriceEstimate. With three or more prices it flags IQR outliers as
// anomalies and excludes them from the bounds while keeping them in the
// output; with fewer it skips anomaly detection entirely.
func (s *Scorer) BuildPriceEstimate(results []domain.ScoredResult, tierUsed int) *domain.PriceEstimate {
	var priced []domain.ScoredResult
	for _, r := range results {
		if r.PriceFound {
			priced = append(priced, r)
		}
	}
	if len(priced) == 0 {
		return nil
	}

	var anomalies []domain.ScoredResult
	kept := priced

	if len(priced) >= anomalyMinSampleCount {
		prices := make([]float64, len(priced))
		for i, r := range priced {
			prices[i] = r.ExtractedPrice
		}
		med := median(prices)
		iqr := interquartileRange(prices)
		low := med - anomalyIQRMultiplier*iqr
		high := med + anomalyIQRMultiplier*iqr

		kept = kept[:0:0]
		for _, r := range priced {
			if r.ExtractedPrice < low || r.ExtractedPrice > high {
				r.Anomaly = true
				anomalies = append(anomalies, r)
				continue
			}
			kept = append(kept, r)
		}
		// Degenerate distributions (iqr 0 with all-equal prices) keep
		// everything; an empty kept set can only happen if the math broke.
		if len(kept) == 0 {
			kept = priced
			anomalies = nil
		}
	}

	keptPrices := make([]float64, len(kept))
	qualitySum := 0.0
	lowPrice, highPrice := math.Inf(1), math.Inf(-1)
	for i, r := range kept {
		keptPrices[i] = r.ExtractedPrice
		qualitySum += r.QualityScore
		lowPrice = math.Min(lowPrice, r.ExtractedPrice)
		highPrice = math.Max(highPrice, r.ExtractedPrice)
	}
	avgQuality := qualitySum / float64(len(kept))

	return &domain.PriceEstimate{
		Low:        lowPrice,
		High:       highPrice,
		Median:     median(keptPrices),
		Currency:   "USD",
		Anomalies:  anomalies,
		Confidence: s.Confidence(tierUsed, len(kept), avgQuality),
		Sources:    len(kept),
	}
}

// Confidence blends the tier base with source count and average result
// quality. More non-anomalous sources help up to the saturation point; the
// tier base encodes the flat bonus for VIN-specific results, which also
// keeps confidence monotone in information richness.
func (s *Scorer) Confidence(tier, sources int, avgQuality float64) float64 {
	if sources <= 0 {
		return 0
	}

	base := s.TierBase(tier)

	n := sources
	if n > s.cfg.SourceSaturate {
		n = s.cfg.SourceSaturate
	}
	sourceFactor := 0.7 + 0.3*float64(n)/float64(s.cfg.SourceSaturate)
	qualityFactor := 0.85 + 0.15*avgQuality/100

	return clamp(base*sourceFactor*qualityFactor, 0, 100)
}

// TierBase returns the confidence base for a tier
func (s *Scorer) TierBase(tier int) float64 {
	switch tier {
	case domain.TierVINSpecific:
		return s.cfg.Tier1Base
	case domain.TierMakeModel:
		return s.cfg.Tier2Base
	default:
		return s.cfg.Tier3Base
	}
}

// median returns the middle value of the input (not modified)
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// interquartileRange returns Q3-Q1 using the midpoint-exclusive method
func interquartileRange(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	lower := sorted[:mid]
	var upper []float64
	if len(sorted)%2 == 0 {
		upper = sorted[mid:]
	} else {
		upper = sorted[mid+1:]
	}
	return median(upper) - median(lower)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
