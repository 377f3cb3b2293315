package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goldpriceapp "github.com/zarnegar/backend/internal/application/goldprice"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
)

// ProtectionHandler handles price protection endpoints
type ProtectionHandler struct {
	BaseHandler
	protectionService *installmentapp.PriceProtectionService
	contractService   *installmentapp.ContractService
	priceService      *goldpriceapp.GoldPriceService
}

// NewProtectionHandler creates a new ProtectionHandler
func NewProtectionHandler(
	protectionService *installmentapp.PriceProtectionService,
	contractService *installmentapp.ContractService,
	priceService *goldpriceapp.GoldPriceService,
) *ProtectionHandler {
	return &ProtectionHandler{
		protectionService: protectionService,
		contractService:   contractService,
		priceService:      priceService,
	}
}

// ConfigureProtectionRequest represents protection bounds for a contract.
// At least one bound must be set; when both are set the ceiling must sit
// above the floor.
type ConfigureProtectionRequest struct {
	CeilingPerGram *float64 `json:"ceiling_per_gram" binding:"omitempty,gt=0" example:"4000000"`
	FloorPerGram   *float64 `json:"floor_per_gram" binding:"omitempty,gt=0" example:"3000000"`
}

// Configure sets or replaces the price protection bounds on a contract
func (h *ProtectionHandler) Configure(c *gin.Context) {
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

	var req ConfigureProtectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.protectionService.ConfigureProtection(
		c.Request.Context(), tenantID, contractID,
		toDecimalPtrOrNil(req.CeilingPerGram), toDecimalPtrOrNil(req.FloorPerGram))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// Remove clears the price protection bounds from a contract
func (h *ProtectionHandler) Remove(c *gin.Context) {
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

	contract, err := h.protectionService.RemoveProtection(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// Impact reports whether protection is currently binding for a contract and
// what the remaining balance is worth at market versus effective prices
func (h *ProtectionHandler) Impact(c *gin.Context) {
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

	contract, err := h.contractService.GetByID(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	point, err := h.priceService.GetCurrentPrice(c.Request.Context(), contract.GoldKarat)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, h.protectionService.AnalyzeImpact(contract, point.PricePerGram))
}
