package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
)

// AdjustmentHandler handles manual balance adjustment endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *installmentapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *installmentapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{
		adjustmentService: adjustmentService,
	}
}

// ApplyAdjustmentRequest represents a bidirectional balance transaction
type ApplyAdjustmentRequest struct {
	TransactionType string  `json:"transaction_type" binding:"required,oneof=DEBT CREDIT" example:"CREDIT"`
	AmountGrams     float64 `json:"amount_grams" binding:"required,gt=0" example:"1.500"`
	Reason          string  `json:"reason" binding:"required,min=1,max=200" example:"returned bracelet"`
	Description     string  `json:"description" binding:"max=1000" example:"customer returned the 1.5g bracelet from order 1404-221"`
}

// Apply processes one manual debt or credit transaction against a contract.
// The balance may flip sides when the transaction crosses zero.
func (h *AdjustmentHandler) Apply(c *gin.Context) {
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

	// adjustments are audited; the authorizing actor comes from the token
	userID, err := getUserID(c)
	if err != nil || userID == uuid.Nil {
		h.Unauthorized(c, "Authorizing user is required")
		return
	}

	var req ApplyAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.adjustmentService.ProcessBidirectionalTransaction(c.Request.Context(), installmentapp.AdjustmentRequest{
		TenantID:     tenantID,
		ContractID:   contractID,
		Type:         installment.TransactionType(req.TransactionType),
		AmountGrams:  valueobject.NewGoldWeightFromFloat(req.AmountGrams),
		Reason:       req.Reason,
		Description:  req.Description,
		AuthorizedBy: userID,
	})
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}
