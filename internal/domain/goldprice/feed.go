package goldprice

import (
	"context"
)

// PriceFeed resolves current market prices for gold purities.
//
// Implementations must never return an error from FetchCurrent: provider
// failures are absorbed into the static fallback table so that price
// unavailability can never block a payment. The Source tag on the returned
// point tells the caller whether the price is live or fallback.
type PriceFeed interface {
	// FetchCurrent returns the current per-gram price for the karat
	FetchCurrent(ctx context.Context, karat int) PricePoint

	// FetchTrend returns one price point per day for the last `days` days
	// including today, ordered oldest to newest. Each day is independently
	// subject to live-or-fallback resolution.
	FetchTrend(ctx context.Context, karat int, days int) []PricePoint
}

// PriceCache memoizes PriceFeed results per karat with a TTL.
//
// Keys are strictly per-karat: resolving 18k neither populates nor warms any
// other purity even though prices are mathematically related. Implementations
// must be safe for concurrent use across payment-processing calls; redundant
// fetches on expiry are acceptable.
type PriceCache interface {
	// Get returns the cached point for the karat, fetching through the feed
	// on miss or expiry
	Get(ctx context.Context, karat int) (PricePoint, error)

	// Invalidate removes the single-karat entry
	Invalidate(ctx context.Context, karat int) error

	// InvalidateAll clears every cached entry
	InvalidateAll(ctx context.Context) error
}
