package installment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// CreateContractRequest carries everything needed to open a new contract
type CreateContractRequest struct {
	ContractNumber          string
	CustomerID              uuid.UUID
	CustomerName            string
	CustomerPhone           string
	InitialGoldWeight       valueobject.GoldWeight
	GoldKarat               int
	Schedule                installment.PaymentSchedule
	EarlyPaymentDiscountPct decimal.Decimal
	ProtectionCeiling       *decimal.Decimal
	ProtectionFloor         *decimal.Decimal
	FirstDueDate            *time.Time
}

// ContractService hosts contract lifecycle operations: creation, lookup,
// listing and the status transitions that are not driven by payments.
type ContractService struct {
	contractRepo installment.ContractRepository
	events       shared.EventPublisher
	clock        shared.Clock
	logger       *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo installment.ContractRepository,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *ContractService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ContractService{
		contractRepo: contractRepo,
		events:       events,
		clock:        clock,
		logger:       logger,
	}
}

// Create opens a new gold installment contract. The contract number must be
// unique per tenant; protection bounds, when supplied, are validated before
// anything is persisted.
func (s *ContractService) Create(ctx context.Context, tenantID uuid.UUID, req CreateContractRequest) (*installment.Contract, error) {
	existing, err := s.contractRepo.FindByContractNumber(ctx, tenantID, req.ContractNumber)
	if err != nil && err != shared.ErrNotFound {
		return nil, fmt.Errorf("failed to check contract number: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CONTRACT_NUMBER",
			fmt.Sprintf("Contract number %s already exists", req.ContractNumber))
	}

	contract, err := installment.NewContract(
		tenantID,
		req.ContractNumber,
		req.CustomerID,
		req.CustomerName,
		req.InitialGoldWeight,
		req.GoldKarat,
		req.Schedule,
		req.EarlyPaymentDiscountPct,
	)
	if err != nil {
		return nil, err
	}
	contract.CustomerPhone = req.CustomerPhone

	if req.ProtectionCeiling != nil || req.ProtectionFloor != nil {
		var ceiling, floor *valueobject.Money
		if req.ProtectionCeiling != nil {
			m := valueobject.NewMoneyIRT(*req.ProtectionCeiling)
			ceiling = &m
		}
		if req.ProtectionFloor != nil {
			m := valueobject.NewMoneyIRT(*req.ProtectionFloor)
			floor = &m
		}
		if err := contract.ConfigureProtection(ceiling, floor); err != nil {
			return nil, err
		}
	}

	switch {
	case req.FirstDueDate != nil:
		contract.ScheduleNextDue(*req.FirstDueDate)
	case contract.Schedule.Interval() > 0:
		contract.ScheduleNextDue(s.clock.Now().Add(contract.Schedule.Interval()))
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	s.publishEvents(ctx, contract)

	s.logger.Info("contract created",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("customer_name", contract.CustomerName),
		zap.String("initial_weight", contract.InitialGoldWeight.StringFixed()),
		zap.Int("karat", contract.GoldKarat))

	return contract, nil
}

// GetByID retrieves a contract by ID within a tenant
func (s *ContractService) GetByID(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error) {
	return s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
}

// GetByNumber retrieves a contract by its contract number within a tenant
func (s *ContractService) GetByNumber(ctx context.Context, tenantID uuid.UUID, contractNumber string) (*installment.Contract, error) {
	return s.contractRepo.FindByContractNumber(ctx, tenantID, contractNumber)
}

// List retrieves contracts for a tenant with filtering and pagination
func (s *ContractService) List(ctx context.Context, tenantID uuid.UUID, filter installment.ContractFilter) ([]installment.Contract, error) {
	return s.contractRepo.FindAllForTenant(ctx, tenantID, filter)
}

// Suspend pauses an active contract
func (s *ContractService) Suspend(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error) {
	return s.transition(ctx, tenantID, contractID, "suspended", (*installment.Contract).Suspend)
}

// Resume reactivates a suspended contract
func (s *ContractService) Resume(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error) {
	return s.transition(ctx, tenantID, contractID, "resumed", (*installment.Contract).Resume)
}

// MarkDefaulted moves a contract into the defaulted terminal state
func (s *ContractService) MarkDefaulted(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error) {
	return s.transition(ctx, tenantID, contractID, "defaulted", (*installment.Contract).MarkDefaulted)
}

// Payments returns a contract's payment history in chronological order
func (s *ContractService) Payments(ctx context.Context, tenantID, contractID uuid.UUID) ([]installment.Payment, error) {
	if _, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID); err != nil {
		return nil, err
	}
	return s.contractRepo.PaymentsByContract(ctx, contractID)
}

// Adjustments returns a contract's adjustment history in chronological order
func (s *ContractService) Adjustments(ctx context.Context, tenantID, contractID uuid.UUID) ([]installment.WeightAdjustment, error) {
	if _, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID); err != nil {
		return nil, err
	}
	return s.contractRepo.AdjustmentsByContract(ctx, contractID)
}

// transition loads the contract, applies a status mutation and saves with
// optimistic locking
func (s *ContractService) transition(
	ctx context.Context,
	tenantID, contractID uuid.UUID,
	action string,
	mutate func(*installment.Contract) error,
) (*installment.Contract, error) {
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	if err := mutate(contract); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save contract: %w", err)
	}

	s.logger.Info("contract "+action,
		zap.String("contract_number", contract.ContractNumber),
		zap.String("status", contract.Status.String()))

	return contract, nil
}

func (s *ContractService) publishEvents(ctx context.Context, contract *installment.Contract) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, contract.GetDomainEvents()...); err != nil {
		s.logger.Warn("failed to publish domain events",
			zap.String("contract_number", contract.ContractNumber),
			zap.Error(err))
	}
	contract.ClearDomainEvents()
}
