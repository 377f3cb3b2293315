package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// ProcessPaymentRequest carries everything needed to process one Toman
// payment against a contract
type ProcessPaymentRequest struct {
	TenantID           uuid.UUID
	ContractID         uuid.UUID
	Amount             valueobject.Money
	Method             installment.PaymentMethod
	PaymentDate        *time.Time // nil means "now" per the injected clock
	ApplyEarlyDiscount bool
	Notes              string
}

// ProcessPaymentResult is the outcome of a successful payment
type ProcessPaymentResult struct {
	Payment           *installment.Payment       `json:"payment"`
	ContractNumber    string                     `json:"contract_number"`
	MarketPrice       valueobject.Money          `json:"market_price_per_gram"`
	EffectivePrice    valueobject.Money          `json:"effective_price_per_gram"`
	GoldWeight        valueobject.GoldWeight     `json:"gold_weight_equivalent"`
	ProtectionApplied bool                       `json:"price_protection_applied"`
	DiscountApplied   bool                       `json:"discount_applied"`
	DiscountAmount    valueobject.Money          `json:"discount_amount"`
	RemainingWeight   valueobject.GoldWeight     `json:"remaining_gold_weight_grams"`
	ContractStatus    installment.ContractStatus `json:"contract_status"`
	Completed         bool                       `json:"completed"`
}

// ImpactReport is the protection-impact analysis for a contract at the
// current market price. When HasProtection is false no further fields are
// populated.
type ImpactReport struct {
	HasProtection bool `json:"has_protection"`

	ProtectionActive bool              `json:"protection_active"`
	ActiveBound      string            `json:"active_bound"` // "ceiling", "floor" or ""
	MarketPrice      valueobject.Money `json:"market_price_per_gram"`
	EffectivePrice   valueobject.Money `json:"effective_price_per_gram"`
	// PriceDifference is signed market minus effective
	PriceDifference decimal.Decimal `json:"price_difference"`

	RemainingValueAtMarket    valueobject.Money `json:"remaining_value_at_market"`
	RemainingValueAtEffective valueobject.Money `json:"remaining_value_at_effective"`
	// ValueDelta is signed market value minus effective value
	ValueDelta decimal.Decimal `json:"value_delta"`

	// CustomerBenefit is true when the active bound favors the customer,
	// i.e. a binding ceiling (they pay under market)
	CustomerBenefit bool `json:"customer_benefit"`
}

// SavingsReport previews the outcome of settling the full remaining balance
// with the early-payment discount. Pure projection; nothing is mutated.
type SavingsReport struct {
	Eligible            bool              `json:"eligible"`
	DiscountPct         decimal.Decimal   `json:"discount_percentage"`
	EffectivePrice      valueobject.Money `json:"effective_price_per_gram"`
	CurrentBalanceValue valueobject.Money `json:"current_balance_value"`
	DiscountAmount      valueobject.Money `json:"discount_amount"`
	FinalPaymentAmount  valueobject.Money `json:"final_payment_amount"`
}

// AdjustmentRequest carries one bidirectional balance transaction
type AdjustmentRequest struct {
	TenantID     uuid.UUID
	ContractID   uuid.UUID
	Type         installment.TransactionType
	AmountGrams  valueobject.GoldWeight
	Reason       string
	Description  string
	AuthorizedBy uuid.UUID
}

// AdjustmentResult is the outcome of a processed adjustment
type AdjustmentResult struct {
	Adjustment      *installment.WeightAdjustment `json:"adjustment"`
	RemainingWeight valueobject.GoldWeight        `json:"remaining_gold_weight_grams"`
	BalanceType     installment.BalanceType       `json:"balance_type"`
	Flipped         bool                          `json:"balance_type_flipped"`
}

// DailyMetrics is the daily portfolio rollup across active contracts
type DailyMetrics struct {
	Date                 time.Time              `json:"date"`
	ActiveContracts      int                    `json:"active_contracts"`
	TotalRemainingWeight valueobject.GoldWeight `json:"total_remaining_weight_grams"`
	TotalRemainingValue  valueobject.Money      `json:"total_remaining_value"`
	OverdueCount         int                    `json:"overdue_count"`
	NearCompletionCount  int                    `json:"near_completion_count"`
	ProtectedCount       int                    `json:"protected_count"`
}

// ReminderFailure records one contract whose reminder could not be delivered
type ReminderFailure struct {
	ContractID     uuid.UUID `json:"contract_id"`
	ContractNumber string    `json:"contract_number"`
	Error          string    `json:"error"`
}

// ReminderSweepResult is the outcome of one overdue-reminder sweep
type ReminderSweepResult struct {
	Scanned  int               `json:"scanned"`
	Overdue  int               `json:"overdue"`
	Sent     int               `json:"sent"`
	Failed   int               `json:"failed"`
	Failures []ReminderFailure `json:"failures,omitempty"`
}
