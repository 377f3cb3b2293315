package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	goldpriceapp "github.com/zarnegar/backend/internal/application/goldprice"
	"github.com/zarnegar/backend/internal/domain/goldprice"
)

// GoldPriceHandler handles market price endpoints
type GoldPriceHandler struct {
	BaseHandler
	priceService *goldpriceapp.GoldPriceService
}

// NewGoldPriceHandler creates a new GoldPriceHandler
func NewGoldPriceHandler(priceService *goldpriceapp.GoldPriceService) *GoldPriceHandler {
	return &GoldPriceHandler{
		priceService: priceService,
	}
}

// Current returns the current per-gram price for a karat. Defaults to the
// 18k reference purity.
func (h *GoldPriceHandler) Current(c *gin.Context) {
	karat, ok := h.karatParam(c)
	if !ok {
		return
	}

	point, err := h.priceService.GetCurrentPrice(c.Request.Context(), karat)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, point)
}

// Trend returns one price point per day over the requested range, oldest
// first. Defaults to the last 7 days.
func (h *GoldPriceHandler) Trend(c *gin.Context) {
	karat, ok := h.karatParam(c)
	if !ok {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			h.BadRequest(c, "Invalid days parameter")
			return
		}
		days = parsed
	}

	points, err := h.priceService.GetTrend(c.Request.Context(), karat, days)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, points)
}

// RefreshPricesRequest selects which purities to refresh; empty means all
// supported karats
type RefreshPricesRequest struct {
	Karats []int `json:"karats" binding:"omitempty,dive,gt=0" example:"18,24"`
}

// Refresh invalidates cached prices and re-resolves them from the provider.
// Karats that cannot be resolved live come back with fallback prices; the
// refresh itself never fails.
func (h *GoldPriceHandler) Refresh(c *gin.Context) {
	var req RefreshPricesRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	h.Success(c, h.priceService.RefreshAll(c.Request.Context(), req.Karats))
}

func (h *GoldPriceHandler) karatParam(c *gin.Context) (int, bool) {
	karat := goldprice.ReferenceKarat
	if raw := c.Query("karat"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "Invalid karat parameter")
			return 0, false
		}
		karat = parsed
	}
	return karat, true
}
