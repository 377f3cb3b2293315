package installment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Active bound labels reported by ApplyProtection and AnalyzeImpact
const (
	BoundCeiling = "ceiling"
	BoundFloor   = "floor"
	BoundNone    = ""
)

// PriceProtectionService computes the effective per-gram price for a
// contract given the market price, and analyzes what the configured bounds
// are worth to the customer right now.
type PriceProtectionService struct {
	contractRepo installment.ContractRepository
	logger       *zap.Logger
}

// NewPriceProtectionService creates a new PriceProtectionService
func NewPriceProtectionService(contractRepo installment.ContractRepository, logger *zap.Logger) *PriceProtectionService {
	return &PriceProtectionService{
		contractRepo: contractRepo,
		logger:       logger,
	}
}

// ApplyProtection returns the effective price for a payment and which bound,
// if any, was binding. Without protection the market price passes through
// unchanged. Ceiling and floor are mutually exclusive per call: the ceiling
// sits above the floor, so a price cannot violate both.
func (s *PriceProtectionService) ApplyProtection(contract *installment.Contract, marketPrice valueobject.Money) (valueobject.Money, string) {
	if !contract.HasPriceProtection() {
		return marketPrice, BoundNone
	}

	p := contract.Protection
	if p.HasCeiling() {
		if above, _ := marketPrice.GreaterThan(*p.CeilingPerGram); above {
			return *p.CeilingPerGram, BoundCeiling
		}
	}
	if p.HasFloor() {
		if below, _ := marketPrice.LessThan(*p.FloorPerGram); below {
			return *p.FloorPerGram, BoundFloor
		}
	}
	return marketPrice, BoundNone
}

// AnalyzeImpact reports whether protection is configured, whether it is
// currently binding, and what the remaining balance is worth at market
// versus effective prices. CustomerBenefit is true only for a binding
// ceiling: the customer pays under market.
func (s *PriceProtectionService) AnalyzeImpact(contract *installment.Contract, marketPrice valueobject.Money) *ImpactReport {
	if !contract.HasPriceProtection() {
		return &ImpactReport{HasProtection: false}
	}

	effective, bound := s.ApplyProtection(contract, marketPrice)

	valueAtMarket := contract.RemainingGoldWeight.ValueAt(marketPrice)
	valueAtEffective := contract.RemainingGoldWeight.ValueAt(effective)

	return &ImpactReport{
		HasProtection:             true,
		ProtectionActive:          bound != BoundNone,
		ActiveBound:               bound,
		MarketPrice:               marketPrice,
		EffectivePrice:            effective,
		PriceDifference:           marketPrice.Amount().Sub(effective.Amount()),
		RemainingValueAtMarket:    valueAtMarket,
		RemainingValueAtEffective: valueAtEffective,
		ValueDelta:                valueAtMarket.Amount().Sub(valueAtEffective.Amount()),
		CustomerBenefit:           bound == BoundCeiling,
	}
}

// ConfigureProtection validates and persists protection bounds on a
// contract. Validation (at least one bound, ceiling above floor) happens
// before any mutation.
func (s *PriceProtectionService) ConfigureProtection(
	ctx context.Context,
	tenantID, contractID uuid.UUID,
	ceiling, floor *decimal.Decimal,
) (*installment.Contract, error) {
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	var ceilingMoney, floorMoney *valueobject.Money
	if ceiling != nil {
		m := valueobject.NewMoneyIRT(*ceiling)
		ceilingMoney = &m
	}
	if floor != nil {
		m := valueobject.NewMoneyIRT(*floor)
		floorMoney = &m
	}

	if err := contract.ConfigureProtection(ceilingMoney, floorMoney); err != nil {
		return nil, err
	}

	if err := s.contractRepo.SaveWithLock(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save protection config: %w", err)
	}

	s.logger.Info("price protection configured",
		zap.String("contract_number", contract.ContractNumber),
		zap.Bool("ceiling", ceilingMoney != nil),
		zap.Bool("floor", floorMoney != nil))

	return contract, nil
}

// RemoveProtection clears any configured bounds from a contract
func (s *PriceProtectionService) RemoveProtection(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error) {
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	contract.RemoveProtection()

	if err := s.contractRepo.SaveWithLock(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to save protection config: %w", err)
	}

	s.logger.Info("price protection removed",
		zap.String("contract_number", contract.ContractNumber))

	return contract, nil
}
