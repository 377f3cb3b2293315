package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// Event type names for the installment context
const (
	EventTypeContractCreated      = "InstallmentContractCreated"
	EventTypePaymentRecorded      = "InstallmentPaymentRecorded"
	EventTypeProtectionApplied    = "PriceProtectionApplied"
	EventTypeEarlyDiscountApplied = "EarlyDiscountApplied"
	EventTypeContractCompleted    = "InstallmentContractCompleted"
	EventTypeBalanceAdjusted      = "InstallmentBalanceAdjusted"
	EventTypeBalanceTypeFlipped   = "InstallmentBalanceTypeFlipped"
)

// ContractCreatedEvent is raised when a new installment contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID              `json:"contract_id"`
	ContractNumber string                 `json:"contract_number"`
	CustomerID     uuid.UUID              `json:"customer_id"`
	InitialWeight  valueobject.GoldWeight `json:"initial_gold_weight_grams"`
	GoldKarat      int                    `json:"gold_karat"`
}

// EventType returns the event type name
func (e *ContractCreatedEvent) EventType() string {
	return EventTypeContractCreated
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCreated, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		InitialWeight:   c.InitialGoldWeight,
		GoldKarat:       c.GoldKarat,
	}
}

// PaymentRecordedEvent is raised for every successful payment
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	ContractID        uuid.UUID              `json:"contract_id"`
	ContractNumber    string                 `json:"contract_number"`
	PaymentID         uuid.UUID              `json:"payment_id"`
	AmountToman       decimal.Decimal        `json:"amount_toman"`
	MarketPrice       decimal.Decimal        `json:"market_price_per_gram"`
	EffectivePrice    decimal.Decimal        `json:"effective_price_per_gram"`
	GoldWeight        valueobject.GoldWeight `json:"gold_weight_equivalent"`
	RemainingWeight   valueobject.GoldWeight `json:"remaining_gold_weight_grams"`
	ProtectionApplied bool                   `json:"price_protection_applied"`
	DiscountApplied   bool                   `json:"discount_applied"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(c *Contract, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypePaymentRecorded, "InstallmentContract", c.ID, c.TenantID),
		ContractID:        c.ID,
		ContractNumber:    c.ContractNumber,
		PaymentID:         p.ID,
		AmountToman:       p.AmountToman.Amount(),
		MarketPrice:       p.MarketPrice.Amount(),
		EffectivePrice:    p.EffectivePrice.Amount(),
		GoldWeight:        p.GoldWeight,
		RemainingWeight:   c.RemainingGoldWeight,
		ProtectionApplied: p.ProtectionApplied,
		DiscountApplied:   p.DiscountApplied,
	}
}

// PriceProtectionAppliedEvent is raised when a payment was priced at a
// contractual bound instead of the market price
type PriceProtectionAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	MarketPrice    decimal.Decimal `json:"market_price_per_gram"`
	EffectivePrice decimal.Decimal `json:"effective_price_per_gram"`
	ActiveBound    string          `json:"active_bound"` // ceiling or floor
}

// EventType returns the event type name
func (e *PriceProtectionAppliedEvent) EventType() string {
	return EventTypeProtectionApplied
}

// NewPriceProtectionAppliedEvent creates a new PriceProtectionAppliedEvent
func NewPriceProtectionAppliedEvent(c *Contract, market, effective decimal.Decimal, bound string) *PriceProtectionAppliedEvent {
	return &PriceProtectionAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProtectionApplied, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		MarketPrice:     market,
		EffectivePrice:  effective,
		ActiveBound:     bound,
	}
}

// EarlyDiscountAppliedEvent is raised when an early-completion discount was
// actually applied to a payment
type EarlyDiscountAppliedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID       `json:"contract_id"`
	ContractNumber string          `json:"contract_number"`
	DiscountPct    decimal.Decimal `json:"discount_percentage"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
}

// EventType returns the event type name
func (e *EarlyDiscountAppliedEvent) EventType() string {
	return EventTypeEarlyDiscountApplied
}

// NewEarlyDiscountAppliedEvent creates a new EarlyDiscountAppliedEvent
func NewEarlyDiscountAppliedEvent(c *Contract, pct, amount decimal.Decimal) *EarlyDiscountAppliedEvent {
	return &EarlyDiscountAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEarlyDiscountApplied, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		DiscountPct:     pct,
		DiscountAmount:  amount,
	}
}

// ContractCompletedEvent is raised exactly once, when the remaining balance
// clamps to zero
type ContractCompletedEvent struct {
	shared.BaseDomainEvent
	ContractID     uuid.UUID              `json:"contract_id"`
	ContractNumber string                 `json:"contract_number"`
	TotalPaid      valueobject.GoldWeight `json:"total_gold_weight_paid"`
	CompletedAt    time.Time              `json:"completed_at"`
}

// EventType returns the event type name
func (e *ContractCompletedEvent) EventType() string {
	return EventTypeContractCompleted
}

// NewContractCompletedEvent creates a new ContractCompletedEvent
func NewContractCompletedEvent(c *Contract, at time.Time) *ContractCompletedEvent {
	return &ContractCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractCompleted, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		TotalPaid:       c.TotalGoldWeightPaid,
		CompletedAt:     at,
	}
}

// BalanceAdjustedEvent is raised for every processed bidirectional transaction
type BalanceAdjustedEvent struct {
	shared.BaseDomainEvent
	ContractID      uuid.UUID              `json:"contract_id"`
	ContractNumber  string                 `json:"contract_number"`
	TransactionType TransactionType        `json:"transaction_type"`
	Amount          valueobject.GoldWeight `json:"amount_grams"`
	WeightBefore    valueobject.GoldWeight `json:"weight_before_grams"`
	WeightAfter     valueobject.GoldWeight `json:"weight_after_grams"`
	BalanceType     BalanceType            `json:"balance_type"`
	AuthorizedBy    uuid.UUID              `json:"authorized_by"`
}

// EventType returns the event type name
func (e *BalanceAdjustedEvent) EventType() string {
	return EventTypeBalanceAdjusted
}

// NewBalanceAdjustedEvent creates a new BalanceAdjustedEvent
func NewBalanceAdjustedEvent(c *Contract, txType TransactionType, amount, before valueobject.GoldWeight, authorizedBy uuid.UUID) *BalanceAdjustedEvent {
	return &BalanceAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBalanceAdjusted, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		TransactionType: txType,
		Amount:          amount,
		WeightBefore:    before,
		WeightAfter:     c.RemainingGoldWeight,
		BalanceType:     c.BalanceType,
		AuthorizedBy:    authorizedBy,
	}
}

// BalanceTypeFlippedEvent is raised when an adjustment crosses zero and the
// contract switches between debt and credit
type BalanceTypeFlippedEvent struct {
	shared.BaseDomainEvent
	ContractID      uuid.UUID              `json:"contract_id"`
	ContractNumber  string                 `json:"contract_number"`
	TransactionType TransactionType        `json:"transaction_type"`
	Amount          valueobject.GoldWeight `json:"amount_grams"`
	PreviousWeight  valueobject.GoldWeight `json:"previous_remaining_grams"`
	NewBalanceType  BalanceType            `json:"new_balance_type"`
}

// EventType returns the event type name
func (e *BalanceTypeFlippedEvent) EventType() string {
	return EventTypeBalanceTypeFlipped
}

// NewBalanceTypeFlippedEvent creates a new BalanceTypeFlippedEvent
func NewBalanceTypeFlippedEvent(c *Contract, txType TransactionType, amount, previous valueobject.GoldWeight) *BalanceTypeFlippedEvent {
	return &BalanceTypeFlippedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBalanceTypeFlipped, "InstallmentContract", c.ID, c.TenantID),
		ContractID:      c.ID,
		ContractNumber:  c.ContractNumber,
		TransactionType: txType,
		Amount:          amount,
		PreviousWeight:  previous,
		NewBalanceType:  c.BalanceType,
	}
}
