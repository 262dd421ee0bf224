package vpic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/repairlens/backend/internal/domain"
	"github.com/repairlens/backend/internal/retry"
)

// Client handles communication with the NHTSA vPIC VIN decode API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	policy      retry.Policy
	debug       bool
}

// NewClient creates a new vPIC API client. The vPIC API is unauthenticated
// but shared infrastructure, so outbound calls are rate limited to roughly
// 5 requests per second with a small burst.
func NewClient(baseURL string, policy retry.Policy) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
		policy:      policy,
	}
}

// SetDebug enables verbose request logging
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// decodeResponse mirrors the vPIC DecodeVinValues JSON envelope
type decodeResponse struct {
	Count   int           `json:"Count"`
	Results []decodeEntry `json:"Results"`
}

// decodeEntry holds the flat-format vPIC fields this engine cares about.
// vPIC returns every value as a string, including the model year.
type decodeEntry struct {
	ModelYear      string `json:"ModelYear"`
	Make           string `json:"Make"`
	Model          string `json:"Model"`
	Trim           string `json:"Trim"`
	Series         string `json:"Series"`
	EngineModel    string `json:"EngineModel"`
	DisplacementL  string `json:"DisplacementL"`
	EngineCylinder string `json:"EngineCylinders"`
	ErrorCode      string `json:"ErrorCode"`
	ErrorText      string `json:"ErrorText"`
}

// Decode looks up a VIN against the vPIC flat decode endpoint and maps the
// response to a VehicleProfile. The caller validates VIN format first; this
// client only handles transport and mapping.
func (c *Client) Decode(ctx context.Context, vin string) (*domain.VehicleProfile, error) {
	endpoint := fmt.Sprintf("%s/vehicles/DecodeVinValues/%s", c.baseURL, url.PathEscape(vin))
	params := url.Values{}
	params.Add("format", "json")
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	var decoded decodeResponse
	err := c.policy.Do(ctx, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter error: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", "RepairLens/1.0")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if c.debug {
				log.Printf("[VPIC] Request error for VIN %s: %v", vin, err)
			}
			if !retry.IsTransient(err) {
				return retry.Permanent(err)
			}
			return fmt.Errorf("%w: %v", domain.ErrResolutionFailed, err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[VPIC] API error - Status: %d, Body: %s", resp.StatusCode, string(body))
			}
			statusErr := fmt.Errorf("%w: status %d", domain.ErrResolutionFailed, resp.StatusCode)
			if !retry.RetryableStatus(resp.StatusCode) {
				return retry.Permanent(statusErr)
			}
			return statusErr
		}

		if err := json.Unmarshal(body, &decoded); err != nil {
			return retry.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	})
	if err != nil {
		log.Printf("[VPIC] Decode failed for VIN %s: %v", vin, err)
		return nil, err
	}

	if len(decoded.Results) == 0 {
		return nil, fmt.Errorf("%w: empty decode result", domain.ErrResolutionFailed)
	}

	profile := mapToProfile(&decoded.Results[0], vin)
	if !profile.Complete() {
		return nil, fmt.Errorf("%w: decode returned no year/make/model", domain.ErrResolutionFailed)
	}

	if c.debug {
		log.Printf("[VPIC] Decoded VIN %s -> %d %s %s", vin, profile.Year, profile.Make, profile.Model)
	}
	return profile, nil
}
