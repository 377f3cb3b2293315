package installment

import (
	"errors"

	"github.com/zarnegar/backend/internal/domain/shared"
)

// Validation errors are detected before any mutation; callers can correct
// input and retry safely.
var (
	ErrInvalidContractState = shared.NewDomainError("INVALID_CONTRACT_STATE",
		"Payments are only accepted against active or suspended contracts")
	ErrPriceProtectionConfig = shared.NewDomainError("PRICE_PROTECTION_CONFIG",
		"Price protection requires at least one bound and ceiling above floor")
	ErrInvalidTransactionType = shared.NewDomainError("INVALID_TRANSACTION_TYPE",
		"Balance transactions must be of type debt or credit")
	ErrContractCompleted = shared.NewDomainError("CONTRACT_COMPLETED",
		"Contract is already completed")
)

// ErrPaymentProcessingFailed wraps any failure of the atomic
// persist-payment-and-update-contract step. When surfaced, no Payment record
// or contract balance change has been retained.
var ErrPaymentProcessingFailed = errors.New("installment: payment processing failed")

// ErrAdjustmentProcessingFailed wraps failures of the atomic adjustment step.
var ErrAdjustmentProcessingFailed = errors.New("installment: adjustment processing failed")
