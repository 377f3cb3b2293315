package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// PaymentType distinguishes a regular installment from a discounted
// early-completion settlement
type PaymentType string

const (
	PaymentTypeRegular         PaymentType = "REGULAR"
	PaymentTypeEarlyCompletion PaymentType = "EARLY_COMPLETION"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeRegular || t == PaymentTypeEarlyCompletion
}

// PaymentMethod is how the Toman amount was collected
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

// Payment is an immutable audit record of one successful payment against a
// contract. It is created once by the payment engine and never mutated; the
// market and effective price snapshots preserve exactly what the customer's
// Toman amount was converted at.
type Payment struct {
	shared.BaseEntity
	TenantID   uuid.UUID `json:"tenant_id"`
	ContractID uuid.UUID `json:"contract_id"`

	PaymentDate    time.Time              `json:"payment_date"`
	AmountToman    valueobject.Money      `json:"amount_toman"`
	MarketPrice    valueobject.Money      `json:"market_price_per_gram"`
	EffectivePrice valueobject.Money      `json:"effective_price_per_gram"`
	GoldWeight     valueobject.GoldWeight `json:"gold_weight_equivalent"`

	Method PaymentMethod `json:"payment_method"`
	Type   PaymentType   `json:"payment_type"`

	ProtectionApplied bool              `json:"price_protection_applied"`
	DiscountApplied   bool              `json:"discount_applied"`
	DiscountPct       decimal.Decimal   `json:"discount_percentage"`
	DiscountAmount    valueobject.Money `json:"discount_amount"`

	Notes string `json:"notes,omitempty"`
}

// NewPayment creates an immutable payment record
func NewPayment(
	tenantID uuid.UUID,
	contractID uuid.UUID,
	paymentDate time.Time,
	amount valueobject.Money,
	marketPrice valueobject.Money,
	effectivePrice valueobject.Money,
	goldWeight valueobject.GoldWeight,
	method PaymentMethod,
	notes string,
) (*Payment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if !goldWeight.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Gold weight equivalent must be positive")
	}

	return &Payment{
		BaseEntity:        shared.NewBaseEntity(),
		TenantID:          tenantID,
		ContractID:        contractID,
		PaymentDate:       paymentDate,
		AmountToman:       amount,
		MarketPrice:       marketPrice,
		EffectivePrice:    effectivePrice,
		GoldWeight:        goldWeight,
		Method:            method,
		Type:              PaymentTypeRegular,
		ProtectionApplied: !marketPrice.Equals(effectivePrice),
		DiscountPct:       decimal.Zero,
		DiscountAmount:    valueobject.ZeroIRT(),
		Notes:             notes,
	}, nil
}

// MarkEarlyCompletion flags the payment as a discounted early settlement.
// Called before the record is persisted; persisted payments stay immutable.
func (p *Payment) MarkEarlyCompletion(discountPct decimal.Decimal, discountAmount valueobject.Money) {
	p.Type = PaymentTypeEarlyCompletion
	p.DiscountApplied = true
	p.DiscountPct = discountPct
	p.DiscountAmount = discountAmount
}
