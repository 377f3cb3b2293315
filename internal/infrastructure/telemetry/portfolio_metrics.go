// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"go.uber.org/zap"

	"go.opentelemetry.io/otel/metric"
)

// PortfolioMetrics provides business metrics for the installment engine.
// It tracks payment activity, protection and discount application, contract
// completions, and the portfolio-wide remaining balance.
type PortfolioMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	paymentProcessedTotal  *Counter
	paymentAmountTotal     *Counter
	protectionAppliedTotal *Counter
	discountAppliedTotal   *Counter
	contractCompletedTotal *Counter
	balanceFlippedTotal    *Counter

	// Histogram metrics
	paymentWeightGrams *Histogram

	// Gauge metrics (point-in-time values, refreshed by the daily rollup)
	portfolioActiveContracts *Gauge
	portfolioRemainingWeight *FloatGauge
}

// PortfolioMetricsConfig holds configuration for portfolio metrics.
type PortfolioMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewPortfolioMetrics creates a new PortfolioMetrics instance.
func NewPortfolioMetrics(cfg PortfolioMetricsConfig) (*PortfolioMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PortfolioMetrics{
		meter:  cfg.Meter,
		logger: logger,
	}

	var err error

	pm.paymentProcessedTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_payment_processed_total",
		"Total number of installment payments processed",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	pm.paymentAmountTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_payment_amount_toman_total",
		"Total payment amount in Toman",
		"{toman}",
	)
	if err != nil {
		return nil, err
	}

	pm.protectionAppliedTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_price_protection_applied_total",
		"Payments priced at a contractual bound instead of market price",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	pm.discountAppliedTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_early_discount_applied_total",
		"Early-completion discounts actually applied",
		"{payments}",
	)
	if err != nil {
		return nil, err
	}

	pm.contractCompletedTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_contract_completed_total",
		"Installment contracts settled to zero",
		"{contracts}",
	)
	if err != nil {
		return nil, err
	}

	pm.balanceFlippedTotal, err = NewCounter(
		cfg.Meter,
		"zarnegar_balance_type_flipped_total",
		"Adjustments that crossed zero and flipped the balance side",
		"{adjustments}",
	)
	if err != nil {
		return nil, err
	}

	pm.paymentWeightGrams, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "zarnegar_payment_weight_grams",
		Description: "Gold weight equivalent per payment in grams",
		Unit:        "{grams}",
		Boundaries:  []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 25, 50},
	})
	if err != nil {
		return nil, err
	}

	pm.portfolioActiveContracts, err = NewGauge(
		cfg.Meter,
		"zarnegar_portfolio_active_contracts",
		"Number of active installment contracts",
		"{contracts}",
	)
	if err != nil {
		return nil, err
	}

	pm.portfolioRemainingWeight, err = NewFloatGauge(
		cfg.Meter,
		"zarnegar_portfolio_remaining_weight_grams",
		"Total remaining gold weight across active contracts",
		"{grams}",
	)
	if err != nil {
		return nil, err
	}

	return pm, nil
}

// RecordPayment records one processed payment with its amount and weight.
func (pm *PortfolioMetrics) RecordPayment(ctx context.Context, tenantID uuid.UUID, paymentType string, amountToman decimal.Decimal, weightGrams decimal.Decimal) {
	pm.paymentProcessedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrPaymentType.String(paymentType),
	)
	pm.paymentAmountTotal.Add(ctx, amountToman.IntPart(),
		AttrTenantID.String(tenantID.String()),
	)
	weight, _ := weightGrams.Float64()
	pm.paymentWeightGrams.Record(ctx, weight,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordProtectionApplied records a payment priced at a protection bound.
func (pm *PortfolioMetrics) RecordProtectionApplied(ctx context.Context, tenantID uuid.UUID, activeBound string) {
	pm.protectionAppliedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
		AttrActiveBound.String(activeBound),
	)
}

// RecordDiscountApplied records an applied early-completion discount.
func (pm *PortfolioMetrics) RecordDiscountApplied(ctx context.Context, tenantID uuid.UUID) {
	pm.discountAppliedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordContractCompleted records a settled contract.
func (pm *PortfolioMetrics) RecordContractCompleted(ctx context.Context, tenantID uuid.UUID) {
	pm.contractCompletedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordBalanceFlipped records an adjustment that crossed zero.
func (pm *PortfolioMetrics) RecordBalanceFlipped(ctx context.Context, tenantID uuid.UUID) {
	pm.balanceFlippedTotal.Inc(ctx,
		AttrTenantID.String(tenantID.String()),
	)
}

// RecordPortfolioSnapshot records the portfolio-wide gauges. Called by the
// daily metrics rollup.
func (pm *PortfolioMetrics) RecordPortfolioSnapshot(ctx context.Context, activeContracts int, remainingWeightGrams decimal.Decimal) {
	pm.portfolioActiveContracts.Record(ctx, int64(activeContracts))
	weight, _ := remainingWeightGrams.Float64()
	pm.portfolioRemainingWeight.Record(ctx, weight)
}

// =============================================================================
// Event Handler
// =============================================================================

// PortfolioMetricsHandler subscribes portfolio metrics to installment domain
// events so counters follow the engine without the application layer calling
// telemetry directly.
type PortfolioMetricsHandler struct {
	metrics *PortfolioMetrics
}

// NewPortfolioMetricsHandler creates a new event-driven metrics handler
func NewPortfolioMetricsHandler(metrics *PortfolioMetrics) *PortfolioMetricsHandler {
	return &PortfolioMetricsHandler{metrics: metrics}
}

// EventTypes returns the installment events the handler consumes
func (h *PortfolioMetricsHandler) EventTypes() []string {
	return []string{
		installment.EventTypePaymentRecorded,
		installment.EventTypeProtectionApplied,
		installment.EventTypeEarlyDiscountApplied,
		installment.EventTypeContractCompleted,
		installment.EventTypeBalanceTypeFlipped,
	}
}

// Handle records the metric matching the event
func (h *PortfolioMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *installment.PaymentRecordedEvent:
		paymentType := string(installment.PaymentTypeRegular)
		if e.DiscountApplied {
			paymentType = string(installment.PaymentTypeEarlyCompletion)
		}
		h.metrics.RecordPayment(ctx, e.TenantID(), paymentType, e.AmountToman, e.GoldWeight.Grams())
	case *installment.PriceProtectionAppliedEvent:
		h.metrics.RecordProtectionApplied(ctx, e.TenantID(), e.ActiveBound)
	case *installment.EarlyDiscountAppliedEvent:
		h.metrics.RecordDiscountApplied(ctx, e.TenantID())
	case *installment.ContractCompletedEvent:
		h.metrics.RecordContractCompleted(ctx, e.TenantID())
	case *installment.BalanceTypeFlippedEvent:
		h.metrics.RecordBalanceFlipped(ctx, e.TenantID())
	}
	return nil
}

// Ensure PortfolioMetricsHandler implements EventHandler
var _ shared.EventHandler = (*PortfolioMetricsHandler)(nil)

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPortfolioMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
