package installment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appgoldprice "github.com/zarnegar/backend/internal/application/goldprice"
	"github.com/zarnegar/backend/internal/domain/goldprice"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// PriceRefresher re-resolves cached prices for a set of purities.
// Satisfied by the gold price application service.
type PriceRefresher interface {
	RefreshAll(ctx context.Context, karats []int) *appgoldprice.RefreshResult
}

// PortfolioService hosts the periodic work that runs across the whole
// contract book: automatic scheduled payments, overdue reminder sweeps and
// the daily metrics rollup. It sequences the payment engine and price
// service; it carries no pricing or balance logic of its own.
type PortfolioService struct {
	contractRepo installment.ContractRepository
	payments     *PaymentProcessingService
	prices       PriceProvider
	refresher    PriceRefresher
	reminders    installment.ReminderSender
	clock        shared.Clock
	logger       *zap.Logger
}

// NewPortfolioService creates a new PortfolioService
func NewPortfolioService(
	contractRepo installment.ContractRepository,
	payments *PaymentProcessingService,
	prices PriceProvider,
	refresher PriceRefresher,
	reminders installment.ReminderSender,
	clock shared.Clock,
	logger *zap.Logger,
) *PortfolioService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &PortfolioService{
		contractRepo: contractRepo,
		payments:     payments,
		prices:       prices,
		refresher:    refresher,
		reminders:    reminders,
		clock:        clock,
		logger:       logger,
	}
}

// RunPriceRefresh re-resolves the cached price for every supported purity.
// The refresh itself never fails; fallback resolutions are reported, not
// errored.
func (s *PortfolioService) RunPriceRefresh(ctx context.Context) *appgoldprice.RefreshResult {
	return s.refresher.RefreshAll(ctx, goldprice.SupportedKarats)
}

// ScheduledPaymentRequest carries one automatic installment collection
type ScheduledPaymentRequest struct {
	ContractID uuid.UUID
	Amount     valueobject.Money
	Method     installment.PaymentMethod
	Notes      string
}

// ProcessScheduledPayment collects one due installment automatically.
// Unlike interactive payments, scheduled collection only runs against
// strictly active contracts; anything else is rejected without side effects.
func (s *PortfolioService) ProcessScheduledPayment(ctx context.Context, req ScheduledPaymentRequest) (*ProcessPaymentResult, error) {
	contract, err := s.contractRepo.FindByID(ctx, req.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to load contract: %w", err)
	}
	if contract.Status != installment.ContractStatusActive {
		return nil, installment.ErrInvalidContractState
	}

	return s.payments.ProcessPayment(ctx, ProcessPaymentRequest{
		TenantID:   contract.TenantID,
		ContractID: contract.ID,
		Amount:     req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	})
}

// SendOverdueReminders scans all active contracts and notifies the customers
// of those with a past-due installment. Each delivery is attempted
// independently; one failure never prevents the rest.
func (s *PortfolioService) SendOverdueReminders(ctx context.Context) (*ReminderSweepResult, error) {
	contracts, err := s.contractRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}

	now := s.clock.Now()
	result := &ReminderSweepResult{Scanned: len(contracts)}

	for i := range contracts {
		contract := &contracts[i]
		if !contract.IsOverdue(now) {
			continue
		}
		result.Overdue++

		if err := s.reminders.SendReminder(ctx, contract); err != nil {
			result.Failed++
			result.Failures = append(result.Failures, ReminderFailure{
				ContractID:     contract.ID,
				ContractNumber: contract.ContractNumber,
				Error:          err.Error(),
			})
			s.logger.Warn("failed to send overdue reminder",
				zap.String("contract_number", contract.ContractNumber),
				zap.Error(err))
			continue
		}
		result.Sent++
	}

	s.logger.Info("overdue reminder sweep completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("overdue", result.Overdue),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))

	return result, nil
}

// ComputeDailyMetrics aggregates the daily portfolio rollup across all
// active contracts. Zero contracts yields zero metrics, not an error; a
// failing price dependency surfaces as a job failure.
func (s *PortfolioService) ComputeDailyMetrics(ctx context.Context) (*DailyMetrics, error) {
	contracts, err := s.contractRepo.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}

	now := s.clock.Now()
	metrics := &DailyMetrics{
		Date:                 now,
		ActiveContracts:      len(contracts),
		TotalRemainingWeight: valueobject.ZeroWeight(),
		TotalRemainingValue:  valueobject.ZeroIRT(),
	}

	// one price resolution per karat per run
	pricesByKarat := make(map[int]goldprice.PricePoint)

	for i := range contracts {
		contract := &contracts[i]

		point, ok := pricesByKarat[contract.GoldKarat]
		if !ok {
			point, err = s.prices.GetCurrentPrice(ctx, contract.GoldKarat)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve price for %dk: %w", contract.GoldKarat, err)
			}
			pricesByKarat[contract.GoldKarat] = point
		}

		metrics.TotalRemainingWeight = metrics.TotalRemainingWeight.Add(contract.RemainingGoldWeight)
		metrics.TotalRemainingValue = metrics.TotalRemainingValue.MustAdd(
			contract.RemainingGoldWeight.ValueAt(point.PricePerGram))

		if contract.IsOverdue(now) {
			metrics.OverdueCount++
		}
		if contract.IsNearCompletion() {
			metrics.NearCompletionCount++
		}
		if contract.HasPriceProtection() {
			metrics.ProtectedCount++
		}
	}

	s.logger.Info("daily portfolio metrics computed",
		zap.Int("active_contracts", metrics.ActiveContracts),
		zap.String("total_remaining_weight", metrics.TotalRemainingWeight.StringFixed()),
		zap.Int("overdue", metrics.OverdueCount),
		zap.Int("near_completion", metrics.NearCompletionCount))

	return metrics, nil
}
