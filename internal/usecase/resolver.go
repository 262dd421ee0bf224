package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/repairlens/backend/internal/domain"
)

// vinRegex validates VIN shape: exactly 17 characters from the VIN alphabet,
// which excludes I, O and Q to avoid confusion with 1 and 0.
var vinRegex = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// VehicleResolver turns a raw VIN string into a VehicleProfile via the
// external decode service, with a 24h cache in front of it.
type VehicleResolver struct {
	cache   *CacheManager
	decoder domain.VINDecoder
}

// NewVehicleResolver creates a vehicle resolver
func NewVehicleResolver(cache *CacheManager, decoder domain.VINDecoder) *VehicleResolver {
	return &VehicleResolver{cache: cache, decoder: decoder}
}

// NormalizeVIN uppercases and trims a raw VIN string
func NormalizeVIN(vin string) string {
	return strings.ToUpper(strings.TrimSpace(vin))
}

// ValidVIN reports whether a normalized VIN has a decodable format
func ValidVIN(vin string) bool {
	return vinRegex.MatchString(vin)
}

// Resolve validates, then decodes a VIN. Malformed input fails fast with
// ErrInvalidVIN before touching the network or the cache. Decode service
// failures surface as ErrResolutionFailed so callers can downgrade to
// tier 2/3 queries instead of blocking.
func (r *VehicleResolver) Resolve(ctx context.Context, vin string) (*domain.VehicleProfile, error) {
	vin = NormalizeVIN(vin)
	if !ValidVIN(vin) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidVIN, vin)
	}

	var cached domain.VehicleProfile
	if err := r.cache.Get(ctx, CacheVehicleDecode, vin, &cached); err == nil && cached.Complete() {
		return &cached, nil
	}

	profile, err := r.decoder.Decode(ctx, vin)
	if err != nil {
		if errors.Is(err, domain.ErrResolutionFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrResolutionFailed, err)
	}

	if err := r.cache.Put(ctx, CacheVehicleDecode, vin, profile); err != nil {
		// A cold cache next time is not worth failing the decode over
		log.Printf("[RESOLVER] cache write failed for VIN %s: %v", vin, err)
	}

	return profile, nil
}
