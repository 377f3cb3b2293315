package goldfeed

import (
	"context"
	"time"

	"github.com/zarnegar/backend/internal/domain/goldprice"
	"go.uber.org/zap"
)

// StaticProvider implements goldprice.PriceFeed from the built-in fallback
// table. It serves deployments without a configured price provider, which is
// only acceptable outside production.
type StaticProvider struct {
	logger *zap.Logger
}

// NewStaticProvider creates a price feed backed by the fallback table
func NewStaticProvider(logger *zap.Logger) *StaticProvider {
	return &StaticProvider{logger: logger}
}

// FetchCurrent returns the fallback per-gram price for the karat
func (p *StaticProvider) FetchCurrent(_ context.Context, karat int) goldprice.PricePoint {
	return goldprice.FallbackPrice(karat, time.Now())
}

// FetchTrend returns a flat trend of fallback prices, oldest first
func (p *StaticProvider) FetchTrend(_ context.Context, karat int, days int) []goldprice.PricePoint {
	if days <= 0 {
		return nil
	}
	now := time.Now()
	points := make([]goldprice.PricePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		points = append(points, goldprice.FallbackPrice(karat, now.AddDate(0, 0, -i)))
	}
	return points
}

var _ goldprice.PriceFeed = (*StaticProvider)(nil)
