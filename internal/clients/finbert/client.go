// Package finbert is an HTTP client for the FinBERT sentiment
// microservice, which scores a text as a probability vector over
// {negative, neutral, positive}.
package finbert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// minTextLength is the shortest article worth scoring. Shorter texts
// (scrape failures, cookie banners) get the zero vector without a
// round trip to the model.
const minTextLength = 150

// Client is an HTTP client for the FinBERT microservice.
type Client struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

// NewClient creates a new FinBERT client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second, // model inference can take time
		},
		log: log.With().Str("client", "finbert").Logger(),
	}
}

// sentimentRequest mirrors the Python microservice contract.
type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Scores []float64 `json:"scores"` // [negative, neutral, positive]
	Error  *string   `json:"error"`
}

// Score returns the (negative, neutral, positive) probability vector
// for a text. Texts below the minimum length score zero everywhere.
func (c *Client) Score(ctx context.Context, text string) ([3]float64, error) {
	if len([]rune(text)) < minTextLength {
		return [3]float64{}, nil
	}

	payload, err := json.Marshal(sentimentRequest{Text: text})
	if err != nil {
		return [3]float64{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sentiment", bytes.NewReader(payload))
	if err != nil {
		return [3]float64{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return [3]float64{}, fmt.Errorf("sentiment service unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return [3]float64{}, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return [3]float64{}, fmt.Errorf("sentiment service returned status %d", resp.StatusCode)
	}

	var parsed sentimentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return [3]float64{}, fmt.Errorf("failed to parse sentiment response: %w", err)
	}
	if parsed.Error != nil {
		return [3]float64{}, fmt.Errorf("sentiment service error: %s", *parsed.Error)
	}
	if len(parsed.Scores) != 3 {
		return [3]float64{}, fmt.Errorf("expected 3 sentiment scores, got %d", len(parsed.Scores))
	}

	return [3]float64{parsed.Scores[0], parsed.Scores[1], parsed.Scores[2]}, nil
}
