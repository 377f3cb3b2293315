package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	installmentapp "github.com/zarnegar/backend/internal/application/installment"
	"github.com/zarnegar/backend/internal/domain/installment"
	"github.com/zarnegar/backend/internal/domain/shared"
	"github.com/zarnegar/backend/internal/domain/shared/valueobject"
	"github.com/zarnegar/backend/internal/interfaces/http/dto"
)

// ContractHandler handles gold installment contract endpoints
type ContractHandler struct {
	BaseHandler
	contractService *installmentapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *installmentapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// CreateContractRequest represents a request to open a new contract
type CreateContractRequest struct {
	ContractNumber          string     `json:"contract_number" binding:"required,min=1,max=50" example:"GC-1404-0001"`
	CustomerID              string     `json:"customer_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	CustomerName            string     `json:"customer_name" binding:"required,min=1,max=200" example:"Maryam Hosseini"`
	CustomerPhone           string     `json:"customer_phone" binding:"max=20" example:"+989121234567"`
	InitialGoldWeightGrams  float64    `json:"initial_gold_weight_grams" binding:"required,gt=0" example:"10.000"`
	GoldKarat               int        `json:"gold_karat" binding:"required,gt=0" example:"18"`
	PaymentSchedule         string     `json:"payment_schedule" binding:"required,oneof=WEEKLY MONTHLY CUSTOM" example:"MONTHLY"`
	EarlyDiscountPercentage float64    `json:"early_payment_discount_percentage" binding:"min=0,max=100" example:"5"`
	ProtectionCeiling       *float64   `json:"protection_ceiling_per_gram" binding:"omitempty,gt=0" example:"4000000"`
	ProtectionFloor         *float64   `json:"protection_floor_per_gram" binding:"omitempty,gt=0" example:"3000000"`
	FirstDueDate            *time.Time `json:"first_due_date" example:"2026-09-25T00:00:00Z"`
}

// ListContractsRequest represents contract list query parameters
type ListContractsRequest struct {
	dto.ListRequest
	CustomerID    string `form:"customer_id" binding:"omitempty,uuid"`
	Status        string `form:"status" binding:"omitempty,oneof=ACTIVE SUSPENDED COMPLETED DEFAULTED"`
	GoldKarat     *int   `form:"gold_karat" binding:"omitempty,gt=0"`
	HasProtection *bool  `form:"has_protection"`
	Overdue       bool   `form:"overdue"`
	FromDate      string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate        string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// Create opens a new gold installment contract
func (h *ContractHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		h.BadRequest(c, "Invalid customer ID format")
		return
	}

	appReq := installmentapp.CreateContractRequest{
		ContractNumber:          req.ContractNumber,
		CustomerID:              customerID,
		CustomerName:            req.CustomerName,
		CustomerPhone:           req.CustomerPhone,
		InitialGoldWeight:       valueobject.NewGoldWeightFromFloat(req.InitialGoldWeightGrams),
		GoldKarat:               req.GoldKarat,
		Schedule:                installment.PaymentSchedule(req.PaymentSchedule),
		EarlyPaymentDiscountPct: decimal.NewFromFloat(req.EarlyDiscountPercentage),
		FirstDueDate:            req.FirstDueDate,
	}
	if req.ProtectionCeiling != nil {
		appReq.ProtectionCeiling = toDecimalPtr(*req.ProtectionCeiling)
	}
	if req.ProtectionFloor != nil {
		appReq.ProtectionFloor = toDecimalPtr(*req.ProtectionFloor)
	}

	contract, err := h.contractService.Create(c.Request.Context(), tenantID, appReq)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, contract)
}

// GetByID retrieves a contract by ID
func (h *ContractHandler) GetByID(c *gin.Context) {
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

	h.Success(c, contract)
}

// GetByNumber retrieves a contract by its contract number
func (h *ContractHandler) GetByNumber(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Contract number is required")
		return
	}

	contract, err := h.contractService.GetByNumber(c.Request.Context(), tenantID, number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// List retrieves a paginated list of contracts with optional filtering
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	req := ListContractsRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := h.buildFilter(req)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contracts, err := h.contractService.List(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contracts)
}

// Suspend pauses an active contract
func (h *ContractHandler) Suspend(c *gin.Context) {
	h.transition(c, h.contractService.Suspend)
}

// Resume reactivates a suspended contract
func (h *ContractHandler) Resume(c *gin.Context) {
	h.transition(c, h.contractService.Resume)
}

// MarkDefaulted moves a contract into the defaulted terminal state
func (h *ContractHandler) MarkDefaulted(c *gin.Context) {
	h.transition(c, h.contractService.MarkDefaulted)
}

// ListPayments returns a contract's payment history in chronological order
func (h *ContractHandler) ListPayments(c *gin.Context) {
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

	payments, err := h.contractService.Payments(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, payments)
}

// ListAdjustments returns a contract's adjustment history in chronological order
func (h *ContractHandler) ListAdjustments(c *gin.Context) {
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

	adjustments, err := h.contractService.Adjustments(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, adjustments)
}

func (h *ContractHandler) transition(
	c *gin.Context,
	apply func(ctx context.Context, tenantID, contractID uuid.UUID) (*installment.Contract, error),
) {
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

	contract, err := apply(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

func (h *ContractHandler) buildFilter(req ListContractsRequest) (installment.ContractFilter, error) {
	filter := installment.ContractFilter{
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
			Search:   req.Search,
		},
	}

	if req.CustomerID != "" {
		id, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return filter, err
		}
		filter.CustomerID = &id
	}
	if req.Status != "" {
		status := installment.ContractStatus(req.Status)
		filter.Status = &status
	}
	filter.GoldKarat = req.GoldKarat
	filter.HasProtection = req.HasProtection
	if req.Overdue {
		now := time.Now()
		filter.OverdueAsOf = &now
	}
	if req.FromDate != "" {
		from, err := time.Parse("2006-01-02", req.FromDate)
		if err != nil {
			return filter, err
		}
		filter.FromDate = &from
	}
	if req.ToDate != "" {
		to, err := time.Parse("2006-01-02", req.ToDate)
		if err != nil {
			return filter, err
		}
		// inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.ToDate = &to
	}

	return filter, nil
}
