package goldprice

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// PriceSource identifies where a price point was resolved from
type PriceSource string

const (
	SourcePrimary  PriceSource = "primary"  // live primary provider
	SourceFallback PriceSource = "fallback" // static built-in table
	SourceCache    PriceSource = "cache"    // served from the price cache
)

// ReferenceKarat is the purity the external providers quote. All other
// karats are derived from it by linear scaling.
const ReferenceKarat = 18

// priceScale is the number of decimal places carried by per-gram prices
const priceScale int32 = 2

// SupportedKarats are the purities the back office quotes by default
var SupportedKarats = []int{14, 18, 21, 22, 24}

// PricePoint is a per-gram gold price for a given purity at a point in time.
// It is transient market data, not business data; callers may persist it for
// trend history but the core never does.
type PricePoint struct {
	Karat        int                  `json:"karat"`
	PricePerGram valueobject.Money    `json:"price_per_gram"`
	Timestamp    time.Time            `json:"timestamp"`
	Source       PriceSource          `json:"source"`
	Currency     valueobject.Currency `json:"currency"`
}

// NewPricePoint creates a price point in the default currency
func NewPricePoint(karat int, pricePerGram decimal.Decimal, at time.Time, source PriceSource) PricePoint {
	return PricePoint{
		Karat:        karat,
		PricePerGram: valueobject.NewMoneyIRT(pricePerGram.Round(priceScale)),
		Timestamp:    at,
		Source:       source,
		Currency:     valueobject.DefaultCurrency,
	}
}

// IsFallback returns true if the price came from the static fallback table
func (p PricePoint) IsFallback() bool {
	return p.Source == SourceFallback
}

// ScaleFromReference derives the per-gram price for the requested karat from
// an 18k-equivalent base price: price(k) = base * k/18, rounded half-up to
// two decimals.
func ScaleFromReference(basePrice decimal.Decimal, karat int) decimal.Decimal {
	return basePrice.
		Mul(decimal.NewFromInt(int64(karat))).
		Div(decimal.NewFromInt(ReferenceKarat)).
		Round(priceScale)
}

// fallbackBase is the static 18k-equivalent per-gram price used when every
// provider fetch fails. Refreshed manually when the market moves far from it.
var fallbackBase = decimal.NewFromInt(3500000)

// fallbackTable holds static per-gram prices keyed by karat
var fallbackTable = map[int]decimal.Decimal{
	14: ScaleFromReference(fallbackBase, 14),
	18: fallbackBase,
	21: ScaleFromReference(fallbackBase, 21),
	22: ScaleFromReference(fallbackBase, 22),
	24: ScaleFromReference(fallbackBase, 24),
}

// FallbackPrice returns the static fallback price point for a karat.
// Unknown or non-positive karats resolve to the closest defined entry
// rather than failing; price availability must never block a payment.
func FallbackPrice(karat int, at time.Time) PricePoint {
	effective := NearestSupportedKarat(karat)
	return NewPricePoint(effective, fallbackTable[effective], at, SourceFallback)
}

// NearestSupportedKarat maps an arbitrary karat to the closest entry of the
// fallback table. Non-positive values resolve to the reference karat.
func NearestSupportedKarat(karat int) int {
	if karat <= 0 {
		return ReferenceKarat
	}
	if _, ok := fallbackTable[karat]; ok {
		return karat
	}
	nearest := ReferenceKarat
	bestDist := -1
	for _, k := range SupportedKarats {
		dist := karat - k
		if dist < 0 {
			dist = -dist
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && k < nearest) {
			nearest = k
			bestDist = dist
		}
	}
	return nearest
}
