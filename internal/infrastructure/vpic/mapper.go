package vpic

import (
	"strconv"
	"strings"

	"github.com/repairlens/backend/internal/domain"
)

// mapToProfile converts a vPIC decode entry into the domain VehicleProfile.
// vPIC serves every field as a string and frequently leaves Trim empty while
// populating Series, so Series is used as the trim fallback.
func mapToProfile(entry *decodeEntry, vin string) *domain.VehicleProfile {
	year, _ := strconv.Atoi(strings.TrimSpace(entry.ModelYear))

	trim := strings.TrimSpace(entry.Trim)
	if trim == "" {
		trim = strings.TrimSpace(entry.Series)
	}

	return &domain.VehicleProfile{
		Year:   year,
		Make:   normalizeMake(entry.Make),
		Model:  strings.TrimSpace(entry.Model),
		Trim:   trim,
		Engine: buildEngineLabel(entry),
		VIN:    vin,
	}
}

// normalizeMake converts vPIC's all-caps make names ("HONDA") into the
// title-cased form used in search queries ("Honda"). Known multi-word or
// stylized makes are mapped explicitly.
func normalizeMake(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}

	if fixed, ok := makeSpellings[strings.ToUpper(name)]; ok {
		return fixed
	}

	words := strings.Fields(strings.ToLower(name))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// makeSpellings covers makes whose canonical form is not simple title case
var makeSpellings = map[string]string{
	"BMW":           "BMW",
	"GMC":           "GMC",
	"MINI":          "MINI",
	"RAM":           "RAM",
	"KIA":           "Kia",
	"MERCEDES-BENZ": "Mercedes-Benz",
	"ROLLS-ROYCE":   "Rolls-Royce",
	"MCLAREN":       "McLaren",
	"ALFA ROMEO":    "Alfa Romeo",
	"LAND ROVER":    "Land Rover",
	"ASTON MARTIN":  "Aston Martin",
}

// buildEngineLabel produces a compact engine descriptor such as "2.0L L4"
// from the decode entry, or the raw engine model when displacement is absent.
func buildEngineLabel(entry *decodeEntry) string {
	displacement := strings.TrimSpace(entry.DisplacementL)
	cylinders := strings.TrimSpace(entry.EngineCylinder)

	if displacement != "" {
		// vPIC reports displacement with trailing precision ("2.000")
		if f, err := strconv.ParseFloat(displacement, 64); err == nil {
			displacement = strconv.FormatFloat(f, 'f', 1, 64)
		}
		label := displacement + "L"
		if cylinders != "" {
			label += " L" + cylinders
		}
		return label
	}

	return strings.TrimSpace(entry.EngineModel)
}
