package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// PortfolioHandler exposes the portfolio jobs for on-demand runs: scheduled
// collections, reminder sweeps and the daily metrics rollup. The same jobs
// run periodically through the cron scheduler.
type PortfolioHandler struct {
	BaseHandler
	portfolioService *installmentapp.PortfolioService
}

// NewPortfolioHandler creates a new PortfolioHandler
func NewPortfolioHandler(portfolioService *installmentapp.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
	}
}

// ScheduledPaymentAPIRequest represents one automatic installment collection
type ScheduledPaymentAPIRequest struct {
	ContractID    string  `json:"contract_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	AmountToman   float64 `json:"amount_toman" binding:"required,gt=0" example:"7000000"`
	PaymentMethod string  `json:"payment_method" binding:"required,oneof=CASH CARD BANK_TRANSFER CHEQUE" example:"BANK_TRANSFER"`
	Notes         string  `json:"notes" binding:"max=500" example:"direct debit 1404-06"`
}

// ProcessScheduledPayment collects one due installment automatically.
// Only strictly active contracts are eligible.
func (h *PortfolioHandler) ProcessScheduledPayment(c *gin.Context) {
	var req ScheduledPaymentAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contractID, err := uuid.Parse(req.ContractID)
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	result, err := h.portfolioService.ProcessScheduledPayment(c.Request.Context(), installmentapp.ScheduledPaymentRequest{
		ContractID: contractID,
		Amount:     valueobject.NewMoneyIRT(toDecimal(req.AmountToman)),
		Method:     installment.PaymentMethod(req.PaymentMethod),
		Notes:      req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// RunReminderSweep scans active contracts and notifies customers with a
// past-due installment
func (h *PortfolioHandler) RunReminderSweep(c *gin.Context) {
	result, err := h.portfolioService.SendOverdueReminders(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// DailyMetrics computes the portfolio rollup across all active contracts
func (h *PortfolioHandler) DailyMetrics(c *gin.Context) {
	metrics, err := h.portfolioService.ComputeDailyMetrics(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, metrics)
}

// RunPriceRefresh re-resolves the cached price for every supported purity
func (h *PortfolioHandler) RunPriceRefresh(c *gin.Context) {
	h.Success(c, h.portfolioService.RunPriceRefresh(c.Request.Context()))
}
