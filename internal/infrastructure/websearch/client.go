package websearch

import (
	"context"
	"encoding/json"
	"errors"
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

// Client calls one external web search provider. Multiple instances with
// different names/base URLs give the executor its provider fan-out.
type Client struct {
	name        string
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	callTimeout time.Duration
	rateLimiter *rate.Limiter
	policy      retry.Policy
}

// Config holds per-provider settings
type Config struct {
	Name        string
	BaseURL     string
	APIKey      string
	CallTimeout time.Duration
	// RatePerSec caps outbound request rate for this provider (0 = 10/s)
	RatePerSec float64
}

// NewClient creates a search provider client
func NewClient(cfg Config, policy retry.Policy) *Client {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 10
	}

	return &Client{
		name: cfg.Name,
		httpClient: &http.Client{
			// The transport timeout is a backstop; the per-call context
			// timeout below is the one the retry policy reacts to.
			Timeout: timeout + 2*time.Second,
		},
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		callTimeout: timeout,
		rateLimiter: rate.NewLimiter(rate.Limit(perSec), 5),
		policy:      policy,
	}
}

// Name returns the provider name used in logs and source hints
func (c *Client) Name() string {
	return c.name
}

// searchResponse is the provider's JSON result envelope
type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Search issues one query to the provider with independent per-call timeout
// and retry. Timeouts, 5xx and 429 responses are retried with backoff;
// other 4xx responses fail immediately.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]domain.RawResult, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("count", fmt.Sprintf("%d", maxResults))
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var parsed searchResponse
	err := c.policy.Do(ctx, func() error {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return retry.Permanent(fmt.Errorf("rate limiter error: %w", err))
		}

		callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(callCtx, "GET", reqURL, nil)
		if err != nil {
			return retry.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", "RepairLens/1.0")
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Distinguish the per-call timeout from caller cancellation:
			// only the former is worth another attempt.
			if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
				log.Printf("[SEARCH] %s: timeout for query %q", c.name, query)
				return fmt.Errorf("%w: %s", domain.ErrProviderTimeout, c.name)
			}
			if !retry.IsTransient(err) {
				return retry.Permanent(err)
			}
			return fmt.Errorf("%w: %s: %v", domain.ErrProviderError, c.name, err)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusOK {
			statusErr := fmt.Errorf("%w: %s: status %d", domain.ErrProviderError, c.name, resp.StatusCode)
			if !retry.RetryableStatus(resp.StatusCode) {
				return retry.Permanent(statusErr)
			}
			log.Printf("[SEARCH] %s: transient status %d for query %q", c.name, resp.StatusCode, query)
			return statusErr
		}

		if err := json.Unmarshal(body, &parsed); err != nil {
			return retry.Permanent(fmt.Errorf("%w: %s: bad response body", domain.ErrProviderError, c.name))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrProviderTimeout) || errors.Is(err, domain.ErrProviderError) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrProviderError, c.name, err)
	}

	now := time.Now()
	results := make([]domain.RawResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.URL == "" {
			continue
		}
		results = append(results, domain.RawResult{
			SourceURL:   r.URL,
			Title:       r.Title,
			Snippet:     r.Snippet,
			RetrievedAt: now,
		})
	}
	return results, nil
}
