// Package edgar fetches company financial facts from the SEC EDGAR
// XBRL API and reduces them to the two ratios the signal encoder
// consumes.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	companyFactsURL = "https://data.sec.gov/api/xbrl/companyfacts/CIK%s.json"

	// factsCacheMaxAge keeps a cached facts document fresh for a day;
	// filings change quarterly so same-day reruns never refetch.
	factsCacheMaxAge = 24 * time.Hour
)

// FactsCache stores raw company-facts documents keyed by CIK.
type FactsCache interface {
	SaveCompanyFacts(cik string, document []byte) error
	CompanyFacts(cik string, maxAge time.Duration) ([]byte, bool, error)
}

// Client is a SEC EDGAR API client. EDGAR requires a descriptive
// User-Agent with contact information on every request.
type Client struct {
	client    *http.Client
	cache     FactsCache
	userAgent string
	log       zerolog.Logger
}

// NewClient creates a new EDGAR client. The cache may be nil, in which
// case every facts lookup hits the API.
func NewClient(userAgent string, cache FactsCache, log zerolog.Logger) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:     cache,
		userAgent: userAgent,
		log:       log.With().Str("client", "edgar").Logger(),
	}
}

// CompanyFacts fetches the full XBRL company-facts document for a CIK,
// preferring the cache when fresh.
func (c *Client) CompanyFacts(ctx context.Context, cik string) (*CompanyFacts, error) {
	if c.cache != nil {
		cached, hit, err := c.cache.CompanyFacts(cik, factsCacheMaxAge)
		if err != nil {
			c.log.Warn().Err(err).Str("cik", cik).Msg("Facts cache read failed")
		} else if hit {
			var facts CompanyFacts
			if err := json.Unmarshal(cached, &facts); err == nil {
				return &facts, nil
			}
			c.log.Warn().Str("cik", cik).Msg("Discarding unparsable cached facts")
		}
	}

	url := fmt.Sprintf(companyFactsURL, cik)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company facts: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("company facts for CIK %s: unexpected status %d", cik, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var facts CompanyFacts
	if err := json.Unmarshal(body, &facts); err != nil {
		return nil, fmt.Errorf("failed to parse company facts: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.SaveCompanyFacts(cik, body); err != nil {
			c.log.Warn().Err(err).Str("cik", cik).Msg("Facts cache write failed")
		}
	}

	c.log.Debug().Str("cik", cik).Int("bytes", len(body)).Msg("Fetched company facts")

	return &facts, nil
}

// Fundamentals fetches and reduces the facts for a ticker in one call.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (Fundamentals, error) {
	cik, err := LookupCIK(ticker)
	if err != nil {
		return Fundamentals{}, err
	}

	facts, err := c.CompanyFacts(ctx, cik)
	if err != nil {
		return Fundamentals{}, err
	}

	f := ReduceFundamentals(facts, c.log)

	c.log.Info().
		Str("ticker", ticker).
		Str("cik", cik).
		Bool("has_growth", f.GrowthRate != nil).
		Bool("has_debt_equity", f.DebtEquity != nil).
		Msg("Reduced fundamentals")

	return f, nil
}
