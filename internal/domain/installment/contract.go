package installment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// CompletionEpsilonGrams is the threshold below which a remaining balance is
// treated as settled. Weight math carries three decimals, so exact-zero
// comparison is unsafe; anything at or under one milligram completes the
// contract and the stored remaining weight clamps to exactly 0.000.
var CompletionEpsilonGrams = decimal.NewFromFloat(0.001)

// ContractStatus represents the lifecycle status of a gold installment contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusSuspended ContractStatus = "SUSPENDED"
	ContractStatusCompleted ContractStatus = "COMPLETED"
	ContractStatusDefaulted ContractStatus = "DEFAULTED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusActive, ContractStatusSuspended, ContractStatusCompleted, ContractStatusDefaulted:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the contract is in a terminal state
func (s ContractStatus) IsTerminal() bool {
	return s == ContractStatusCompleted || s == ContractStatusDefaulted
}

// CanAcceptPayment returns true if payments can be processed in this status
func (s ContractStatus) CanAcceptPayment() bool {
	return s == ContractStatusActive || s == ContractStatusSuspended
}

// BalanceType tracks which side of zero the running balance sits on after
// bidirectional adjustments
type BalanceType string

const (
	BalanceTypeDebt   BalanceType = "DEBT"   // customer owes the shop
	BalanceTypeCredit BalanceType = "CREDIT" // shop owes the customer
)

// IsValid checks if the balance type is valid
func (b BalanceType) IsValid() bool {
	return b == BalanceTypeDebt || b == BalanceTypeCredit
}

// Opposite returns the other side of the balance
func (b BalanceType) Opposite() BalanceType {
	if b == BalanceTypeDebt {
		return BalanceTypeCredit
	}
	return BalanceTypeDebt
}

// PaymentSchedule represents how installments are expected to recur
type PaymentSchedule string

const (
	ScheduleWeekly  PaymentSchedule = "WEEKLY"
	ScheduleMonthly PaymentSchedule = "MONTHLY"
	ScheduleCustom  PaymentSchedule = "CUSTOM"
)

// IsValid checks if the schedule is valid
func (p PaymentSchedule) IsValid() bool {
	return p == ScheduleWeekly || p == ScheduleMonthly || p == ScheduleCustom
}

// Interval returns the nominal gap between due dates. CUSTOM schedules have
// no fixed interval and return zero.
func (p PaymentSchedule) Interval() time.Duration {
	switch p {
	case ScheduleWeekly:
		return 7 * 24 * time.Hour
	case ScheduleMonthly:
		return 30 * 24 * time.Hour
	default:
		return 0
	}
}

// PriceProtection holds the optional contractual price bounds. Its presence
// on a contract is the type-level signal that protection is configured; at
// most one bound may be set independently, and when both are set the ceiling
// must sit above the floor.
type PriceProtection struct {
	CeilingPerGram *valueobject.Money `json:"ceiling_per_gram,omitempty"`
	FloorPerGram   *valueobject.Money `json:"floor_per_gram,omitempty"`
}

// NewPriceProtection validates and creates a protection configuration
func NewPriceProtection(ceiling, floor *valueobject.Money) (*PriceProtection, error) {
	if ceiling == nil && floor == nil {
		return nil, ErrPriceProtectionConfig
	}
	if ceiling != nil && floor != nil {
		gt, err := ceiling.GreaterThan(*floor)
		if err != nil {
			return nil, fmt.Errorf("price protection bounds: %w", err)
		}
		if !gt {
			return nil, ErrPriceProtectionConfig
		}
	}
	return &PriceProtection{CeilingPerGram: ceiling, FloorPerGram: floor}, nil
}

// HasCeiling returns true if a ceiling bound is configured
func (p *PriceProtection) HasCeiling() bool {
	return p != nil && p.CeilingPerGram != nil
}

// HasFloor returns true if a floor bound is configured
func (p *PriceProtection) HasFloor() bool {
	return p != nil && p.FloorPerGram != nil
}

// Contract is the gold installment contract aggregate root. The customer owes
// a fixed initial gold weight; Toman payments are converted to gold-weight
// equivalents at the effective per-gram price and burn down the remaining
// balance until it clamps to zero at completion.
type Contract struct {
	shared.TenantAggregateRoot
	ContractNumber string    `json:"contract_number"`
	CustomerID     uuid.UUID `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerPhone  string    `json:"customer_phone,omitempty"`

	InitialGoldWeight       valueobject.GoldWeight `json:"initial_gold_weight_grams"`
	GoldKarat               int                    `json:"gold_karat"`
	Schedule                PaymentSchedule        `json:"payment_schedule"`
	EarlyPaymentDiscountPct decimal.Decimal        `json:"early_payment_discount_percentage"`

	RemainingGoldWeight valueobject.GoldWeight `json:"remaining_gold_weight_grams"`
	TotalGoldWeightPaid valueobject.GoldWeight `json:"total_gold_weight_paid"`
	BalanceType         BalanceType            `json:"balance_type"`

	Protection *PriceProtection `json:"price_protection,omitempty"`

	Status         ContractStatus `json:"status"`
	NextDueDate    *time.Time     `json:"next_due_date,omitempty"`
	CompletionDate *time.Time     `json:"completion_date,omitempty"`
}

// NewContract creates a new gold installment contract
func NewContract(
	tenantID uuid.UUID,
	contractNumber string,
	customerID uuid.UUID,
	customerName string,
	initialWeight valueobject.GoldWeight,
	karat int,
	schedule PaymentSchedule,
	earlyDiscountPct decimal.Decimal,
) (*Contract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if len(contractNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot exceed 50 characters")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if !initialWeight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Initial gold weight must be positive")
	}
	if karat <= 0 {
		return nil, shared.NewDomainError("INVALID_KARAT", "Gold karat must be positive")
	}
	if !schedule.IsValid() {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Payment schedule is not valid")
	}
	if earlyDiscountPct.IsNegative() || earlyDiscountPct.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Early payment discount must be between 0 and 100 percent")
	}

	c := &Contract{
		TenantAggregateRoot:     shared.NewTenantAggregateRoot(tenantID),
		ContractNumber:          contractNumber,
		CustomerID:              customerID,
		CustomerName:            customerName,
		InitialGoldWeight:       initialWeight,
		GoldKarat:               karat,
		Schedule:                schedule,
		EarlyPaymentDiscountPct: earlyDiscountPct,
		RemainingGoldWeight:     initialWeight,
		TotalGoldWeightPaid:     valueobject.ZeroWeight(),
		BalanceType:             BalanceTypeDebt,
		Status:                  ContractStatusActive,
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

// ConfigureProtection attaches validated price protection to the contract.
// Validation happens before any mutation.
func (c *Contract) ConfigureProtection(ceiling, floor *valueobject.Money) error {
	protection, err := NewPriceProtection(ceiling, floor)
	if err != nil {
		return err
	}

	c.Protection = protection
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// RemoveProtection clears any configured price protection
func (c *Contract) RemoveProtection() {
	c.Protection = nil
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// HasPriceProtection returns true if protection is configured
func (c *Contract) HasPriceProtection() bool {
	return c.Protection != nil
}

// DiscountEligible returns true if the contract participates in the
// early-payment discount program at all
func (c *Contract) DiscountEligible() bool {
	return c.EarlyPaymentDiscountPct.IsPositive()
}

// RecordPayment burns the gold-weight equivalent of a payment off the
// remaining balance. The remaining weight never goes negative: it clamps to
// exactly 0.000, and anything at or under CompletionEpsilonGrams completes
// the contract and stamps the completion date exactly once.
// Returns true if this payment completed the contract.
func (c *Contract) RecordPayment(weight valueobject.GoldWeight, at time.Time) (bool, error) {
	if !c.Status.CanAcceptPayment() {
		return false, ErrInvalidContractState
	}
	if !weight.IsPositive() {
		return false, shared.NewDomainError("INVALID_WEIGHT", "Payment weight must be positive")
	}

	remaining := c.RemainingGoldWeight.Subtract(weight)
	if remaining.IsNegative() {
		remaining = valueobject.ZeroWeight()
	}
	c.RemainingGoldWeight = remaining
	c.TotalGoldWeightPaid = c.TotalGoldWeightPaid.Add(weight)

	completed := false
	if c.RemainingGoldWeight.Grams().LessThanOrEqual(CompletionEpsilonGrams) {
		c.RemainingGoldWeight = valueobject.ZeroWeight()
		c.Status = ContractStatusCompleted
		completionDate := at
		c.CompletionDate = &completionDate
		c.NextDueDate = nil
		completed = true
		c.AddDomainEvent(NewContractCompletedEvent(c, at))
	} else {
		c.advanceDueDate(at)
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return completed, nil
}

// ApplyAdjustment applies a signed bidirectional balance transaction. A debt
// increases what the customer owes, a credit decreases it. When a transaction
// crosses zero the balance type flips and the remaining weight becomes the
// overshoot (amount - previous remaining); smaller transactions add or
// subtract without flipping.
// Returns true if the balance type flipped.
func (c *Contract) ApplyAdjustment(txType TransactionType, amount valueobject.GoldWeight) (bool, error) {
	if !txType.IsValid() {
		return false, ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return false, shared.NewDomainError("INVALID_WEIGHT", "Adjustment amount must be positive")
	}
	if c.Status.IsTerminal() {
		return false, ErrInvalidContractState
	}

	sameSide := (txType == TransactionTypeDebt && c.BalanceType == BalanceTypeDebt) ||
		(txType == TransactionTypeCredit && c.BalanceType == BalanceTypeCredit)

	flipped := false
	if sameSide {
		c.RemainingGoldWeight = c.RemainingGoldWeight.Add(amount)
	} else if amount.GreaterThanOrEqual(c.RemainingGoldWeight) {
		// crossing zero: flip side, keep the overshoot
		previous := c.RemainingGoldWeight
		c.RemainingGoldWeight = amount.Subtract(previous)
		c.BalanceType = c.BalanceType.Opposite()
		flipped = true
		c.AddDomainEvent(NewBalanceTypeFlippedEvent(c, txType, amount, previous))
	} else {
		c.RemainingGoldWeight = c.RemainingGoldWeight.Subtract(amount)
	}

	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return flipped, nil
}

// Suspend pauses an active contract
func (c *Contract) Suspend() error {
	if c.Status != ContractStatusActive {
		return ErrInvalidContractState
	}
	c.Status = ContractStatusSuspended
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Resume reactivates a suspended contract
func (c *Contract) Resume() error {
	if c.Status != ContractStatusSuspended {
		return ErrInvalidContractState
	}
	c.Status = ContractStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// MarkDefaulted moves the contract into the defaulted terminal state
func (c *Contract) MarkDefaulted() error {
	if c.Status.IsTerminal() {
		return ErrInvalidContractState
	}
	c.Status = ContractStatusDefaulted
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// IsOverdue reports whether the next scheduled installment is past due
func (c *Contract) IsOverdue(now time.Time) bool {
	return c.Status == ContractStatusActive && c.NextDueDate != nil && c.NextDueDate.Before(now)
}

// IsNearCompletion reports whether at least 90% of the initial weight has
// been paid off
func (c *Contract) IsNearCompletion() bool {
	if !c.InitialGoldWeight.IsPositive() {
		return false
	}
	ratio := c.TotalGoldWeightPaid.Grams().Div(c.InitialGoldWeight.Grams())
	return ratio.GreaterThanOrEqual(decimal.NewFromFloat(0.9))
}

// advanceDueDate pushes the next due date forward by one schedule interval
// after a successful payment. CUSTOM schedules are managed by the caller.
func (c *Contract) advanceDueDate(from time.Time) {
	interval := c.Schedule.Interval()
	if interval == 0 {
		return
	}
	next := from.Add(interval)
	c.NextDueDate = &next
}

// ScheduleNextDue sets the next due date explicitly (used at creation and for
// CUSTOM schedules)
func (c *Contract) ScheduleNextDue(due time.Time) {
	c.NextDueDate = &due
	c.UpdatedAt = time.Now()
}
