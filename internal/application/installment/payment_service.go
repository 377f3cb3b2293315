package installment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zarnegar/backend/internal/domain/goldprice"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PriceProvider resolves the current per-gram price for a purity.
// Satisfied by the gold price application service; payment processing only
// needs this single read.
type PriceProvider interface {
	GetCurrentPrice(ctx context.Context, karat int) (goldprice.PricePoint, error)
}

// PaymentProcessingService is the gold-installment payment engine. It
// converts Toman amounts into gold-weight equivalents at the effective
// (protection-adjusted) price, applies early-completion discounts, and
// persists the payment and contract mutation atomically.
type PaymentProcessingService struct {
	contractRepo installment.ContractRepository
	prices       PriceProvider
	protection   *PriceProtectionService
	events       shared.EventPublisher
	clock        shared.Clock
	logger       *zap.Logger
	tracer       trace.Tracer
}

// NewPaymentProcessingService creates a new PaymentProcessingService
func NewPaymentProcessingService(
	contractRepo installment.ContractRepository,
	prices PriceProvider,
	protection *PriceProtectionService,
	events shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *PaymentProcessingService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &PaymentProcessingService{
		contractRepo: contractRepo,
		prices:       prices,
		protection:   protection,
		events:       events,
		clock:        clock,
		logger:       logger,
		tracer:       otel.Tracer("application/installment"),
	}
}

// ProcessPayment processes one Toman payment against a contract.
//
// Validation errors (contract state, amount, method) surface before any side
// effect. The payment record and contract mutation are persisted in a single
// transaction; any failure there surfaces as ErrPaymentProcessingFailed with
// no partial state retained. Price unavailability cannot fail a payment: the
// feed falls back to its static table.
func (s *PaymentProcessingService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	ctx, span := s.tracer.Start(ctx, "PaymentProcessingService.ProcessPayment",
		trace.WithAttributes(
			attribute.String("contract_id", req.ContractID.String()),
			attribute.Bool("early_discount_requested", req.ApplyEarlyDiscount),
		))
	defer span.End()

	contract, err := s.contractRepo.FindByIDForTenant(ctx, req.TenantID, req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if !contract.Status.CanAcceptPayment() {
		return nil, installment.ErrInvalidContractState
	}
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !req.Method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	paymentDate := s.clock.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	point, err := s.prices.GetCurrentPrice(ctx, contract.GoldKarat)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gold price: %w", err)
	}
	marketPrice := point.PricePerGram

	effectivePrice, bound := s.protection.ApplyProtection(contract, marketPrice)
	if bound != BoundNone {
		s.logger.Info("price protection applied to payment",
			zap.String("contract_number", contract.ContractNumber),
			zap.String("bound", bound),
			zap.String("market_price", marketPrice.StringFixed(2)),
			zap.String("effective_price", effectivePrice.StringFixed(2)))
		contract.AddDomainEvent(installment.NewPriceProtectionAppliedEvent(
			contract, marketPrice.Amount(), effectivePrice.Amount(), bound))
	}

	goldWeight, err := valueobject.WeightFromAmount(req.Amount, effectivePrice)
	if err != nil {
		return nil, fmt.Errorf("failed to compute gold weight: %w", err)
	}

	// Early-discount branch: requested, contract enrolled, and strictly
	// active. The discount only applies when the amount covers the full
	// remaining balance at the effective price; an insufficient amount is a
	// silent no-op, not an error.
	discountApplied := false
	discountAmount := valueobject.ZeroIRT()
	if req.ApplyEarlyDiscount && contract.DiscountEligible() && contract.Status == installment.ContractStatusActive {
		remainingValue := contract.RemainingGoldWeight.ValueAt(effectivePrice)
		if covers, _ := req.Amount.GreaterThanOrEqual(remainingValue); covers {
			discountAmount = remainingValue.CalculatePercentage(contract.EarlyPaymentDiscountPct)
			discountedAmount, subErr := req.Amount.Subtract(discountAmount)
			if subErr != nil {
				return nil, fmt.Errorf("failed to apply discount: %w", subErr)
			}
			goldWeight, err = valueobject.WeightFromAmount(discountedAmount, effectivePrice)
			if err != nil {
				return nil, fmt.Errorf("failed to compute discounted gold weight: %w", err)
			}
			discountApplied = true
			contract.AddDomainEvent(installment.NewEarlyDiscountAppliedEvent(
				contract, contract.EarlyPaymentDiscountPct, discountAmount.Amount()))
		}
	}

	payment, err := installment.NewPayment(
		req.TenantID,
		contract.ID,
		paymentDate,
		req.Amount,
		marketPrice,
		effectivePrice,
		goldWeight,
		req.Method,
		req.Notes,
	)
	if err != nil {
		return nil, err
	}
	if discountApplied {
		payment.MarkEarlyCompletion(contract.EarlyPaymentDiscountPct, discountAmount)
	}

	completed, err := contract.RecordPayment(goldWeight, paymentDate)
	if err != nil {
		return nil, err
	}
	contract.AddDomainEvent(installment.NewPaymentRecordedEvent(contract, payment))

	if err := s.contractRepo.RecordPayment(ctx, contract, payment); err != nil {
		return nil, fmt.Errorf("%w: %v", installment.ErrPaymentProcessingFailed, err)
	}

	s.publishEvents(ctx, contract)

	s.logger.Info("payment processed",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("amount_toman", req.Amount.StringFixed(0)),
		zap.String("gold_weight", goldWeight.StringFixed()),
		zap.String("remaining", contract.RemainingGoldWeight.StringFixed()),
		zap.Bool("discount_applied", discountApplied),
		zap.Bool("completed", completed))

	return &ProcessPaymentResult{
		Payment:           payment,
		ContractNumber:    contract.ContractNumber,
		MarketPrice:       marketPrice,
		EffectivePrice:    effectivePrice,
		GoldWeight:        goldWeight,
		ProtectionApplied: bound != BoundNone,
		DiscountApplied:   discountApplied,
		DiscountAmount:    discountAmount,
		RemainingWeight:   contract.RemainingGoldWeight,
		ContractStatus:    contract.Status,
		Completed:         completed,
	}, nil
}

// CalculateEarlyPaymentSavings previews what settling the full remaining
// balance today would cost with the early-payment discount. Read-only; no
// record is created and the contract is not mutated.
func (s *PaymentProcessingService) CalculateEarlyPaymentSavings(ctx context.Context, tenantID, contractID uuid.UUID) (*SavingsReport, error) {
	contract, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}

	if !contract.DiscountEligible() {
		return &SavingsReport{
			Eligible:            false,
			EffectivePrice:      valueobject.ZeroIRT(),
			CurrentBalanceValue: valueobject.ZeroIRT(),
			DiscountAmount:      valueobject.ZeroIRT(),
			FinalPaymentAmount:  valueobject.ZeroIRT(),
		}, nil
	}

	point, err := s.prices.GetCurrentPrice(ctx, contract.GoldKarat)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve gold price: %w", err)
	}
	effectivePrice, _ := s.protection.ApplyProtection(contract, point.PricePerGram)

	currentBalanceValue := contract.RemainingGoldWeight.ValueAt(effectivePrice)
	discountAmount := currentBalanceValue.CalculatePercentage(contract.EarlyPaymentDiscountPct)
	finalPayment, err := currentBalanceValue.Subtract(discountAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to compute final payment: %w", err)
	}

	return &SavingsReport{
		Eligible:            true,
		DiscountPct:         contract.EarlyPaymentDiscountPct,
		EffectivePrice:      effectivePrice,
		CurrentBalanceValue: currentBalanceValue,
		DiscountAmount:      discountAmount,
		FinalPaymentAmount:  finalPayment,
	}, nil
}

// publishEvents publishes pending domain events after a successful commit.
// The audit sink is not transactionally coupled; publish failures are logged
// and never unwind the payment.
func (s *PaymentProcessingService) publishEvents(ctx context.Context, contract *installment.Contract) {
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
