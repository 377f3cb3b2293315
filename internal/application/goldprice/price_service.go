package goldprice

import (
	"context"

	"github.com/zarnegar/backend/internal/domain/goldprice"
	"github.com/zarnegar/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// GoldPriceService resolves current and historical market prices for the
// payment engine and the back-office dashboards. Reads go through the price
// cache; the feed behind it absorbs provider failures into the static
// fallback table, so price resolution never fails a payment.
type GoldPriceService struct {
	cache  goldprice.PriceCache
	feed   goldprice.PriceFeed
	logger *zap.Logger
}

// NewGoldPriceService creates a new GoldPriceService
func NewGoldPriceService(cache goldprice.PriceCache, feed goldprice.PriceFeed, logger *zap.Logger) *GoldPriceService {
	return &GoldPriceService{
		cache:  cache,
		feed:   feed,
		logger: logger,
	}
}

// GetCurrentPrice returns the current per-gram price for a karat, served
// from cache when fresh. Cache infrastructure failures degrade to a direct
// feed fetch instead of erroring.
func (s *GoldPriceService) GetCurrentPrice(ctx context.Context, karat int) (goldprice.PricePoint, error) {
	point, err := s.cache.Get(ctx, karat)
	if err != nil {
		s.logger.Warn("price cache unavailable, fetching directly",
			zap.Int("karat", karat),
			zap.Error(err))
		return s.feed.FetchCurrent(ctx, karat), nil
	}
	return point, nil
}

// GetTrend returns one price point per day for the last `days` days
// including today, oldest first
func (s *GoldPriceService) GetTrend(ctx context.Context, karat int, days int) ([]goldprice.PricePoint, error) {
	if days <= 0 {
		return nil, shared.NewDomainError("INVALID_TREND_RANGE", "Trend range must cover at least one day")
	}
	return s.feed.FetchTrend(ctx, karat, days), nil
}

// RefreshResult is the outcome of a price refresh run. The run as a whole
// always succeeds; individual karats that could not be resolved live carry
// fallback prices, visible through their source tag.
type RefreshResult struct {
	Prices        map[int]goldprice.PricePoint `json:"prices"`
	FallbackCount int                          `json:"fallback_count"`
}

// RefreshAll invalidates and re-fetches prices for the given karats.
// Each karat's cycle is independent; one karat resolving to fallback never
// fails the batch.
func (s *GoldPriceService) RefreshAll(ctx context.Context, karats []int) *RefreshResult {
	if len(karats) == 0 {
		karats = goldprice.SupportedKarats
	}

	result := &RefreshResult{
		Prices: make(map[int]goldprice.PricePoint, len(karats)),
	}

	for _, karat := range karats {
		if err := s.cache.Invalidate(ctx, karat); err != nil {
			s.logger.Warn("failed to invalidate price cache entry",
				zap.Int("karat", karat),
				zap.Error(err))
		}

		point, err := s.cache.Get(ctx, karat)
		if err != nil {
			point = s.feed.FetchCurrent(ctx, karat)
		}

		if point.IsFallback() {
			result.FallbackCount++
		}
		result.Prices[karat] = point
	}

	s.logger.Info("gold price refresh completed",
		zap.Int("karats", len(result.Prices)),
		zap.Int("fallbacks", result.FallbackCount))

	return result
}
