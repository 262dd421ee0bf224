package domain

// VehicleProfile represents a decoded vehicle identity. It is immutable once
// resolved; downstream components only read it.
type VehicleProfile struct {
	Year   int    `json:"year"`
	Make   string `json:"make"`
	Model  string `json:"model"`
	Trim   string `json:"trim,omitempty"`
	Engine string `json:"engine,omitempty"`
	VIN    string `json:"vin,omitempty"`
}

// Complete reports whether the profile carries enough identity
// (year/make/model) to build vehicle-specific search queries.
func (p *VehicleProfile) Complete() bool {
	return p != nil && p.Year > 0 && p.Make != "" && p.Model != ""
}
