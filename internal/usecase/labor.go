package usecase

import (
	"math"
	"regexp"
	"sort"
	"strconv"

	"github.com/repairlens/backend/internal/domain"
)

// LaborSample is one labor-time figure extracted from free text, normalized
// to minutes with explicit low/high bounds. Single figures have Low == High.
type LaborSample struct {
	Low  float64
	High float64
}

// Midpoint returns the center of the sample's range in minutes
func (s LaborSample) Midpoint() float64 {
	return (s.Low + s.High) / 2
}

// Labor time patterns, ranges before single figures so "30-45 minutes"
// never half-matches as "45 minutes".
var (
	minutesRangeRegex = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)\s*(?:minutes|minute|mins|min)\b`)
	hoursRangeRegex   = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:-|–|to)\s*(\d+(?:\.\d+)?)\s*(?:hours|hour|hrs|hr)\b`)
	minutesRegex      = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:minutes|minute|mins|min)\b`)
	hoursRegex        = regexp.MustCompile(`(?i)\b(\d+(?:\.\d+)?)\s*(?:hours|hour|hrs|hr)\b`)
)

// laborSanityMaxMinutes rejects parses like "24 hours a day" ad copy.
// No single repair labor figure should exceed 40 hours.
const laborSanityMaxMinutes = 2400

// extractLaborSample parses the first labor-time figure from text.
// Returns false when nothing parses; such results are dropped individually
// rather than failing the request.
func extractLaborSample(text string) (LaborSample, bool) {
	if m := minutesRangeRegex.FindStringSubmatch(text); m != nil {
		return buildSample(parseF(m[1]), parseF(m[2]), 1)
	}
	if m := hoursRangeRegex.FindStringSubmatch(text); m != nil {
		return buildSample(parseF(m[1]), parseF(m[2]), 60)
	}
	if m := minutesRegex.FindStringSubmatch(text); m != nil {
		v := parseF(m[1])
		return buildSample(v, v, 1)
	}
	if m := hoursRegex.FindStringSubmatch(text); m != nil {
		v := parseF(m[1])
		return buildSample(v, v, 60)
	}
	return LaborSample{}, false
}

func buildSample(low, high, unitMinutes float64) (LaborSample, bool) {
	low *= unitMinutes
	high *= unitMinutes
	if low > high {
		low, high = high, low
	}
	if low <= 0 || high > laborSanityMaxMinutes {
		return LaborSample{}, false
	}
	return LaborSample{Low: low, High: high}, true
}

func parseF(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// ExtractLaborSamples collects the labor figures from a set of scored
// results. Only results the scorer marked as carrying a time figure are
// parsed; anything that fails to re-parse is skipped.
func ExtractLaborSamples(results []domain.ScoredResult) []LaborSample {
	var samples []LaborSample
	for _, r := range results {
		if !r.TimeFound {
			continue
		}
		if sample, ok := extractLaborSample(r.Title + " " + r.Snippet); ok {
			samples = append(samples, sample)
		}
	}
	return samples
}

// trimmedMeanMinSamples is the sample count at which the aggregator starts
// dropping the single highest and lowest figure to resist outliers.
const trimmedMeanMinSamples = 5

// LaborAggregator statistically combines labor-time samples from multiple
// sources into a point estimate with spread and confidence.
type LaborAggregator struct{}

// NewLaborAggregator creates a labor aggregator
func NewLaborAggregator() *LaborAggregator {
	return &LaborAggregator{}
}

// Aggregate combines samples into a LaborEstimate. Zero samples yield nil:
// absence of data is explicit, never a zero-confidence placeholder.
// With five or more samples a trimmed mean drops the single highest and
// lowest midpoint; fewer samples use the straight mean.
func (a *LaborAggregator) Aggregate(samples []LaborSample) *domain.LaborEstimate {
	if len(samples) == 0 {
		return nil
	}

	retained := append([]LaborSample(nil), samples...)
	sort.Slice(retained, func(i, j int) bool {
		return retained[i].Midpoint() < retained[j].Midpoint()
	})
	if len(retained) >= trimmedMeanMinSamples {
		retained = retained[1 : len(retained)-1]
	}

	var sum, low, high float64
	low = math.Inf(1)
	high = math.Inf(-1)
	for _, s := range retained {
		sum += s.Midpoint()
		low = math.Min(low, s.Low)
		high = math.Max(high, s.High)
	}
	point := sum / float64(len(retained))

	return &domain.LaborEstimate{
		MinutesPoint: point,
		MinutesLow:   low,
		MinutesHigh:  high,
		Confidence:   laborConfidence(retained, point),
		SampleCount:  len(samples),
	}
}

// laborConfidence scales with sample count (saturating at five) and
// agreement between sources: low variance across midpoints means the guides
// agree and the point estimate deserves more trust.
func laborConfidence(retained []LaborSample, point float64) float64 {
	n := len(retained)
	countFactor := 0.35 + 0.13*float64(n)
	if countFactor > 1 {
		countFactor = 1
	}

	agreement := 1.0
	if n > 1 && point > 0 {
		var variance float64
		for _, s := range retained {
			d := s.Midpoint() - point
			variance += d * d
		}
		variance /= float64(n)
		cv := math.Sqrt(variance) / point
		agreement = 1 / (1 + 2*cv)
	}

	return clamp(100*countFactor*agreement, 0, 100)
}
