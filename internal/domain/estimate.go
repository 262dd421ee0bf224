package domain

// PriceEstimate summarizes the non-anomalous extracted prices for one query.
// Anomalies are excluded from Low/High/Median but kept for transparency.
type PriceEstimate struct {
	Low        float64        `json:"low"`
	High       float64        `json:"high"`
	Median     float64        `json:"median"`
	Currency   string         `json:"currency"`
	Anomalies  []ScoredResult `json:"anomalies,omitempty"`
	Confidence float64        `json:"confidence"` // 0-100
	Sources    int            `json:"sources"`    // non-anomalous contributing sources
}

// LaborEstimate is a statistically combined labor-time figure. A query with
// zero extractable labor figures yields no LaborEstimate at all rather than a
// zero-confidence placeholder.
type LaborEstimate struct {
	MinutesPoint float64 `json:"minutesPoint"`
	MinutesLow   float64 `json:"minutesLow"`
	MinutesHigh  float64 `json:"minutesHigh"`
	Confidence   float64 `json:"confidence"` // 0-100
	SampleCount  int     `json:"sampleCount"`
}

// ResultSource tells the caller where an EngineResult came from.
type ResultSource string

const (
	SourceCache    ResultSource = "cache"
	SourceLive     ResultSource = "live"
	SourceFallback ResultSource = "fallback"
)

// EngineResult is the only object returned across the engine boundary.
// It is always populated, even on failure: internal errors collapse into
// OverallConfidence 0 plus a human-readable Reason.
type EngineResult struct {
	Query             string          `json:"query"`
	VehicleProfile    *VehicleProfile `json:"vehicleProfile,omitempty"`
	PriceEstimate     *PriceEstimate  `json:"priceEstimate,omitempty"`
	LaborEstimate     *LaborEstimate  `json:"laborEstimate,omitempty"`
	OverallConfidence float64         `json:"overallConfidence"` // 0-100
	Source            ResultSource    `json:"source"`
	TierUsed          int             `json:"tierUsed,omitempty"`
	Reason            string          `json:"reason,omitempty"`
}
