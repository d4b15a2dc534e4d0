// Package suggest calls the external crop-suitability scorer and merges
// its output with local price data. The scorer itself is an opaque
// collaborator reached over HTTP; its failures are surfaced as
// ErrExternalService and never retried.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"agritrade/internal/models"
)

// Scorer produces ranked crop recommendations for a set of farm and
// regional parameters
type Scorer interface {
	Suggest(ctx context.Context, req models.SuggestionRequest) ([]models.SuggestedCrop, error)
}

// HTTPScorer reaches the scorer over HTTP with a hard timeout
type HTTPScorer struct {
	url    string
	client *http.Client
}

// NewHTTPScorer creates a scorer client for the given endpoint
func NewHTTPScorer(url string, timeout time.Duration) *HTTPScorer {
	return &HTTPScorer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPScorer) Suggest(ctx context.Context, req models.SuggestionRequest) ([]models.SuggestedCrop, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode scorer request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build scorer request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("scorer unreachable: %v: %w", err, models.ErrExternalService)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorer returned status %d: %w", resp.StatusCode, models.ErrExternalService)
	}

	var out struct {
		SuggestedCrops []models.SuggestedCrop `json:"suggestedCrops"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("malformed scorer response: %v: %w", err, models.ErrExternalService)
	}
	return out.SuggestedCrops, nil
}

// Enrich attaches price data to the scorer's output. Current price comes
// from the latest observation per crop (0 when the crop has no price
// history); the predicted price projects the scorer's profit margin onto it.
func Enrich(crops []models.SuggestedCrop, latestPrice map[string]float64) []models.CropSuggestion {
	suggestions := make([]models.CropSuggestion, 0, len(crops))
	for _, crop := range crops {
		current := latestPrice[crop.Name]
		suggestions = append(suggestions, models.CropSuggestion{
			SuggestedCrop:  crop,
			CurrentPrice:   current,
			PredictedPrice: current * (1 + crop.ProfitMargin/100),
		})
	}
	return suggestions
}
