package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"seatcore/internal/shared/constants"
	"seatcore/pkg/cache"
)

// CustomAdapter delegates price resolution to an external service. The last
// resolved value is cached with a short TTL so a slow or flapping adapter
// cannot stall the hold path on every request.
type CustomAdapter interface {
	ResolvePrice(ctx context.Context, in StrategyInput) (int64, error)
}

type httpCustomAdapter struct {
	url          string
	client       *http.Client
	cacheService cache.Service
	cacheTTL     time.Duration
}

func NewHTTPCustomAdapter(url string, callTimeout, cacheTTL time.Duration, cacheService cache.Service) CustomAdapter {
	return &httpCustomAdapter{
		url:          url,
		client:       &http.Client{Timeout: callTimeout},
		cacheService: cacheService,
		cacheTTL:     cacheTTL,
	}
}

type customPriceRequest struct {
	EventSeatingID string `json:"event_seating_id"`
	SeatUID        string `json:"seat_uid"`
	SectionName    string `json:"section_name"`
	RowLabel       string `json:"row_label"`
	TierPriceCents int64  `json:"tier_price_cents"`
	At             string `json:"at"`
}

type customPriceResponse struct {
	PriceCents int64 `json:"price_cents"`
}

func (a *httpCustomAdapter) ResolvePrice(ctx context.Context, in StrategyInput) (int64, error) {
	if a.url == "" {
		return 0, fmt.Errorf("custom pricing adapter is not configured")
	}

	cacheKey := constants.BuildCustomPriceKey(in.EventSeatingID.String(), in.SeatUID)

	var priceCents int64
	err := a.cacheService.GetOrSet(ctx, cacheKey, a.cacheTTL, func() (interface{}, error) {
		price, err := a.callAdapter(ctx, in)
		if err != nil {
			return nil, err
		}
		return price, nil
	}, &priceCents)
	if err != nil {
		return 0, err
	}
	return priceCents, nil
}

func (a *httpCustomAdapter) callAdapter(ctx context.Context, in StrategyInput) (int64, error) {
	body, err := json.Marshal(customPriceRequest{
		EventSeatingID: in.EventSeatingID.String(),
		SeatUID:        in.SeatUID,
		SectionName:    in.SectionName,
		RowLabel:       in.RowLabel,
		TierPriceCents: in.TierPriceCents,
		At:             in.At.Format(time.RFC3339),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal adapter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to build adapter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("custom pricing adapter call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("custom pricing adapter returned status %d", resp.StatusCode)
	}

	var out customPriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode adapter response: %w", err)
	}
	if out.PriceCents <= 0 {
		return 0, fmt.Errorf("custom pricing adapter returned non-positive price")
	}
	return out.PriceCents, nil
}
