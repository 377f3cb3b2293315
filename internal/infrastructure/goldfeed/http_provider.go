package goldfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/goldprice"
	"go.uber.org/zap"
)

const (
	currentPricePath = "/v1/gold/price"
	priceHistoryPath = "/v1/gold/history"
)

// HTTPProvider implements goldprice.PriceFeed against an external REST price
// provider. The provider quotes the 18k per-gram price in Toman; other purities
// are derived by linear karat scaling.
//
// FetchCurrent never surfaces an error: after the configured retries every
// failure resolves to the static fallback table, tagged with its source, so
// price unavailability can never block a payment.
type HTTPProvider struct {
	config     *ProviderConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPProvider creates a new HTTP price provider
func NewHTTPProvider(config *ProviderConfig, logger *zap.Logger) (*HTTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &HTTPProvider{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: logger,
	}, nil
}

// priceResponse is the provider's current-price payload
type priceResponse struct {
	Price     decimal.Decimal `json:"price"`
	Timestamp int64           `json:"timestamp"`
}

// historyResponse is the provider's trend payload, oldest first
type historyResponse struct {
	Prices []struct {
		Price     decimal.Decimal `json:"price"`
		Timestamp int64           `json:"timestamp"`
	} `json:"prices"`
}

// FetchCurrent returns the current per-gram price for the karat
func (p *HTTPProvider) FetchCurrent(ctx context.Context, karat int) goldprice.PricePoint {
	base, at, err := p.fetchReferencePrice(ctx)
	if err != nil {
		p.logger.Warn("price provider unavailable, using fallback table",
			zap.Int("karat", karat),
			zap.Error(err))
		return goldprice.FallbackPrice(karat, time.Now())
	}

	effective := scalingKarat(karat)
	return goldprice.NewPricePoint(effective, goldprice.ScaleFromReference(base, effective), at, goldprice.SourcePrimary)
}

// scalingKarat resolves the karat to scale a live quote by. Any positive
// karat scales linearly; nearest-entry mapping is reserved for invalid input
// and the fallback table.
func scalingKarat(karat int) int {
	if karat > 0 {
		return karat
	}
	return goldprice.NearestSupportedKarat(karat)
}

// FetchTrend returns one price point per day for the last `days` days
// including today, oldest first. Days the provider cannot serve carry
// fallback prices.
func (p *HTTPProvider) FetchTrend(ctx context.Context, karat int, days int) []goldprice.PricePoint {
	if days <= 0 {
		return nil
	}

	effective := scalingKarat(karat)

	history, err := p.fetchHistory(ctx, days)
	if err != nil {
		p.logger.Warn("price history unavailable, using fallback table",
			zap.Int("karat", karat),
			zap.Int("days", days),
			zap.Error(err))
		points := make([]goldprice.PricePoint, 0, days)
		now := time.Now()
		for i := days - 1; i >= 0; i-- {
			points = append(points, goldprice.FallbackPrice(karat, now.AddDate(0, 0, -i)))
		}
		return points
	}

	points := make([]goldprice.PricePoint, 0, len(history.Prices))
	for _, entry := range history.Prices {
		at := time.Unix(entry.Timestamp, 0)
		points = append(points, goldprice.NewPricePoint(
			effective, goldprice.ScaleFromReference(entry.Price, effective), at, goldprice.SourcePrimary))
	}
	return points
}

// fetchReferencePrice fetches the 18k per-gram price with retries
func (p *HTTPProvider) fetchReferencePrice(ctx context.Context) (decimal.Decimal, time.Time, error) {
	query := url.Values{}
	query.Set("karat", strconv.Itoa(goldprice.ReferenceKarat))

	var lastErr error
	for attempt := 0; attempt <= p.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return decimal.Zero, time.Time{}, ctx.Err()
			case <-time.After(p.config.RetryDelay):
			}
		}

		var resp priceResponse
		if err := p.doRequest(ctx, currentPricePath, query, &resp); err != nil {
			lastErr = err
			continue
		}
		if !resp.Price.IsPositive() {
			lastErr = fmt.Errorf("goldfeed: provider returned non-positive price %s", resp.Price)
			continue
		}

		at := time.Now()
		if resp.Timestamp > 0 {
			at = time.Unix(resp.Timestamp, 0)
		}
		return resp.Price, at, nil
	}

	return decimal.Zero, time.Time{}, lastErr
}

// fetchHistory fetches the daily 18k price history, no retries; trend views
// tolerate a fallback day
func (p *HTTPProvider) fetchHistory(ctx context.Context, days int) (*historyResponse, error) {
	query := url.Values{}
	query.Set("karat", strconv.Itoa(goldprice.ReferenceKarat))
	query.Set("days", strconv.Itoa(days))

	var resp historyResponse
	if err := p.doRequest(ctx, priceHistoryPath, query, &resp); err != nil {
		return nil, err
	}
	if len(resp.Prices) == 0 {
		return nil, fmt.Errorf("goldfeed: provider returned empty history")
	}
	return &resp, nil
}

// doRequest performs one GET against the provider and decodes the JSON body
func (p *HTTPProvider) doRequest(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := p.config.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("goldfeed: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("goldfeed: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("goldfeed: provider returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("goldfeed: failed to decode response: %w", err)
	}
	return nil
}

// Ensure HTTPProvider implements PriceFeed
var _ goldprice.PriceFeed = (*HTTPProvider)(nil)
