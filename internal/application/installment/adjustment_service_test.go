package installment

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

func newTestAdjustmentService(repo *MockContractRepository) *AdjustmentService {
	return NewAdjustmentService(repo, nil, shared.FixedClock{Instant: testInstant}, zap.NewNop())
}

func adjustmentRequest(tenantID uuid.UUID, contractID uuid.UUID, txType installment.TransactionType, grams float64) AdjustmentRequest {
	return AdjustmentRequest{
		TenantID:     tenantID,
		ContractID:   contractID,
		Type:         txType,
		AmountGrams:  valueobject.NewGoldWeightFromFloat(grams),
		Reason:       "manual correction",
		AuthorizedBy: uuid.New(),
	}
}

func TestAdjustmentService_CreditLargerThanBalanceFlips(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	contract := createTestContract(t, tenantID)
	contract.RemainingGoldWeight = valueobject.NewGoldWeightFromFloat(3.000)

	repo.On("FindByIDForTenant", ctx, tenantID, contract.ID).Return(contract, nil)
	repo.On("RecordAdjustment", ctx, contract, mock.AnythingOfType("*installment.WeightAdjustment")).Return(nil)

	// crediting 5.000g against a 3.000g debt crosses zero: the shop now
	// owes the customer the 2.000g overshoot
	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, contract.ID, installment.TransactionTypeCredit, 5.000))

	assert.NoError(t, err)
	assert.True(t, result.Flipped)
	assert.Equal(t, installment.BalanceTypeCredit, result.BalanceType)
	assert.Equal(t, "2.000", result.RemainingWeight.StringFixed())
	assert.Equal(t, "3.000", result.Adjustment.WeightBefore.StringFixed())
	assert.Equal(t, "-5.000", result.Adjustment.SignedAmount.StringFixed())
	assert.Equal(t, installment.AdjustmentTypeDecrease, result.Adjustment.Type)

	repo.AssertExpectations(t)
}

func TestAdjustmentService_SameSideDebtAccumulates(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	contract := createTestContract(t, tenantID)

	repo.On("FindByIDForTenant", ctx, tenantID, contract.ID).Return(contract, nil)
	repo.On("RecordAdjustment", ctx, contract, mock.AnythingOfType("*installment.WeightAdjustment")).Return(nil)

	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, contract.ID, installment.TransactionTypeDebt, 1.500))

	assert.NoError(t, err)
	assert.False(t, result.Flipped)
	assert.Equal(t, installment.BalanceTypeDebt, result.BalanceType)
	assert.Equal(t, "11.500", result.RemainingWeight.StringFixed())
	assert.Equal(t, "1.500", result.Adjustment.SignedAmount.StringFixed())
	assert.Equal(t, installment.AdjustmentTypeIncrease, result.Adjustment.Type)
}

func TestAdjustmentService_SmallCreditSubtractsWithoutFlip(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	contract := createTestContract(t, tenantID)

	repo.On("FindByIDForTenant", ctx, tenantID, contract.ID).Return(contract, nil)
	repo.On("RecordAdjustment", ctx, contract, mock.AnythingOfType("*installment.WeightAdjustment")).Return(nil)

	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, contract.ID, installment.TransactionTypeCredit, 2.500))

	assert.NoError(t, err)
	assert.False(t, result.Flipped)
	assert.Equal(t, installment.BalanceTypeDebt, result.BalanceType)
	assert.Equal(t, "7.500", result.RemainingWeight.StringFixed())
}

func TestAdjustmentService_InvalidTypeRejectedBeforeLoad(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, uuid.New(), installment.TransactionType("TRANSFER"), 1.000))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, installment.ErrInvalidTransactionType)
	repo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "RecordAdjustment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustmentService_TerminalContractRejected(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	contract := createTestContract(t, tenantID)
	assert.NoError(t, contract.MarkDefaulted())

	repo.On("FindByIDForTenant", ctx, tenantID, contract.ID).Return(contract, nil)

	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, contract.ID, installment.TransactionTypeDebt, 1.000))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, installment.ErrInvalidContractState)
	repo.AssertNotCalled(t, "RecordAdjustment", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdjustmentService_PersistenceFailureWrapped(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockContractRepository)
	service := newTestAdjustmentService(repo)

	contract := createTestContract(t, tenantID)

	repo.On("FindByIDForTenant", ctx, tenantID, contract.ID).Return(contract, nil)
	repo.On("RecordAdjustment", ctx, contract, mock.AnythingOfType("*installment.WeightAdjustment")).
		Return(errors.New("deadlock detected"))

	result, err := service.ProcessBidirectionalTransaction(ctx,
		adjustmentRequest(tenantID, contract.ID, installment.TransactionTypeDebt, 1.000))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, installment.ErrAdjustmentProcessingFailed)
}
