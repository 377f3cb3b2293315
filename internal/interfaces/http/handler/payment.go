package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// PaymentHandler handles installment payment endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *installmentapp.PaymentProcessingService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *installmentapp.PaymentProcessingService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// ProcessPaymentRequest represents a request to process one Toman payment
type ProcessPaymentRequest struct {
	AmountToman        float64    `json:"amount_toman" binding:"required,gt=0" example:"7000000"`
	PaymentMethod      string     `json:"payment_method" binding:"required,oneof=CASH CARD BANK_TRANSFER CHEQUE" example:"CASH"`
	PaymentDate        *time.Time `json:"payment_date" example:"2026-08-25T10:00:00Z"`
	ApplyEarlyDiscount bool       `json:"apply_early_discount" example:"false"`
	Notes              string     `json:"notes" binding:"max=500" example:"monthly installment"`
}

// Process converts a Toman payment into its gold-weight equivalent and burns
// it off the contract balance
func (h *PaymentHandler) Process(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.ProcessPayment(c.Request.Context(), installmentapp.ProcessPaymentRequest{
		TenantID:           tenantID,
		ContractID:         contractID,
		Amount:             valueobject.NewMoneyIRT(toDecimal(req.AmountToman)),
		Method:             installment.PaymentMethod(req.PaymentMethod),
		PaymentDate:        req.PaymentDate,
		ApplyEarlyDiscount: req.ApplyEarlyDiscount,
		Notes:              req.Notes,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// SavingsPreview previews the early-settlement discount for a contract
// without creating any payment
func (h *PaymentHandler) SavingsPreview(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	report, err := h.paymentService.CalculateEarlyPaymentSavings(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, report)
}
