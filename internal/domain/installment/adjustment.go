package installment

import (
	"time"

	"github.com/google/uuid"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// TransactionType is the direction of a bidirectional balance transaction
type TransactionType string

const (
	TransactionTypeDebt   TransactionType = "DEBT"   // increases what the customer owes
	TransactionTypeCredit TransactionType = "CREDIT" // decreases what the customer owes
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeDebt || t == TransactionTypeCredit
}

// AdjustmentType records whether the adjustment increased or decreased the
// remaining weight
type AdjustmentType string

const (
	AdjustmentTypeIncrease AdjustmentType = "INCREASE"
	AdjustmentTypeDecrease AdjustmentType = "DECREASE"
)

// WeightAdjustment is an immutable record of one manual balance adjustment.
// The signed amount is positive for debt (increase) and negative for credit
// (decrease); the weight-before snapshot preserves the balance the
// adjustment was applied against.
type WeightAdjustment struct {
	shared.BaseEntity
	TenantID   uuid.UUID `json:"tenant_id"`
	ContractID uuid.UUID `json:"contract_id"`

	AdjustmentDate time.Time              `json:"adjustment_date"`
	WeightBefore   valueobject.GoldWeight `json:"weight_before_grams"`
	SignedAmount   valueobject.GoldWeight `json:"signed_amount_grams"`
	Type           AdjustmentType         `json:"adjustment_type"`

	Reason       string    `json:"reason"`
	Description  string    `json:"description,omitempty"`
	AuthorizedBy uuid.UUID `json:"authorized_by"`
}

// NewWeightAdjustment creates an immutable adjustment record from a validated
// bidirectional transaction
func NewWeightAdjustment(
	tenantID uuid.UUID,
	contractID uuid.UUID,
	adjustmentDate time.Time,
	weightBefore valueobject.GoldWeight,
	txType TransactionType,
	amount valueobject.GoldWeight,
	reason string,
	description string,
	authorizedBy uuid.UUID,
) (*WeightAdjustment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT", "Contract ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, ErrInvalidTransactionType
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_WEIGHT", "Adjustment amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}
	if authorizedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHORIZER", "Authorizing actor is required")
	}

	signed := amount
	adjType := AdjustmentTypeIncrease
	if txType == TransactionTypeCredit {
		signed = amount.Negate()
		adjType = AdjustmentTypeDecrease
	}

	return &WeightAdjustment{
		BaseEntity:     shared.NewBaseEntity(),
		TenantID:       tenantID,
		ContractID:     contractID,
		AdjustmentDate: adjustmentDate,
		WeightBefore:   weightBefore,
		SignedAmount:   signed,
		Type:           adjType,
		Reason:         reason,
		Description:    description,
		AuthorizedBy:   authorizedBy,
	}, nil
}
