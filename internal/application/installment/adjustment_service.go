package installment

import (
	"context"
	"fmt"

	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AdjustmentService processes bidirectional (debt/credit) manual balance
// transactions independent of payments.
type AdjustmentService struct {
	contractRepo installment.ContractRepository
	events       shared.EventPublisher
	clock        shared.Clock
	logger       *zap.Logger
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	contractRepo installment.ContractRepository,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *AdjustmentService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &AdjustmentService{
		contractRepo: contractRepo,
		events:       events,
		clock:        clock,
		logger:       logger,
	}
}

// ProcessBidirectionalTransaction applies one debt or credit transaction to
// a contract's balance. The type is validated before any mutation; a
// transaction crossing zero flips the balance type and keeps the overshoot
// as the new remaining weight. The adjustment record and contract mutation
// persist atomically.
func (s *AdjustmentService) ProcessBidirectionalTransaction(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	if !req.Type.IsValid() {
		return nil, installment.ErrInvalidTransactionType
	}

	contract, err := s.contractRepo.FindByIDForTenant(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	weightBefore := contract.RemainingGoldWeight

	adjustment, err := installment.NewWeightAdjustment(
		req.TenantID,
		contract.ID,
		s.clock.Now(),
		weightBefore,
		req.Type,
		req.AmountGrams,
		req.Reason,
		req.Description,
		req.AuthorizedBy,
	)
	if err != nil {
		return nil, err
	}

	flipped, err := contract.ApplyAdjustment(req.Type, req.AmountGrams)
	if err != nil {
		return nil, err
	}
	contract.AddDomainEvent(installment.NewBalanceAdjustedEvent(
		contract, req.Type, req.AmountGrams, weightBefore, req.AuthorizedBy))

	if err := s.contractRepo.RecordAdjustment(ctx, contract, adjustment); err != nil {
		return nil, fmt.Errorf("%w: %v", installment.ErrAdjustmentProcessingFailed, err)
	}

	if s.events != nil {
		if pubErr := s.events.Publish(ctx, contract.GetDomainEvents()...); pubErr != nil {
			s.logger.Warn("failed to publish adjustment events",
				zap.String("contract_number", contract.ContractNumber),
				zap.Error(pubErr))
		}
		contract.ClearDomainEvents()
	}

	s.logger.Info("balance adjustment processed",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("type", string(req.Type)),
		zap.String("amount", req.AmountGrams.StringFixed()),
		zap.String("remaining", contract.RemainingGoldWeight.StringFixed()),
		zap.Bool("flipped", flipped))

	return &AdjustmentResult{
		Adjustment:      adjustment,
		RemainingWeight: contract.RemainingGoldWeight,
		BalanceType:     contract.BalanceType,
		Flipped:         flipped,
	}, nil
}
