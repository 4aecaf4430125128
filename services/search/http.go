package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"travelagent/models"
)

// HTTPProvider calls a remote search service. The timeout is fixed and
// short: a slow provider is treated as a failed call, never as a
// reason to hold a thread lock.
type HTTPProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Logger  *zap.Logger
}

func NewHTTPProvider(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) *HTTPProvider {
	return &HTTPProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: timeout},
		Logger:  logger,
	}
}

func (p *HTTPProvider) SearchFlights(ctx context.Context, q Query) ([]models.FlightOption, error) {
	var out struct {
		Flights []models.FlightOption `json:"flights"`
	}
	if err := p.post(ctx, "/flights/search", q, &out); err != nil {
		return nil, err
	}
	return out.Flights, nil
}

func (p *HTTPProvider) SearchHotels(ctx context.Context, q Query) ([]models.HotelOption, error) {
	var out struct {
		Hotels []models.HotelOption `json:"hotels"`
	}
	if err := p.post(ctx, "/hotels/search", q, &out); err != nil {
		return nil, err
	}
	return out.Hotels, nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, q Query, out any) error {
	payload, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal search query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.APIKey != "" {
		req.Header.Set("X-API-Key", p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		p.Logger.Error("Failed to call search provider", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("failed to reach search provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.Logger.Error("Search provider returned non-OK status",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("search provider error: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode search response: %w", err)
	}
	return nil
}
