package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"stockledger/internal/core/id"
	"stockledger/internal/domain/ledger"
	"stockledger/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles HTTP requests for the stock projection engine.
type InventoryHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *ledger.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
	}
}

// GetProjection handles GET /inventory/projection
func (h *InventoryHandler) GetProjection(c *gin.Context) {
	ctx := c.Request.Context()

	filter := ledger.ProjectionFilter{
		Search:      c.Query("search"),
		IncludeZero: h.ParseBoolQuery(c, "includeZero"),
		Limit:       h.ParseIntQuery(c, "limit", 0),
	}

	if whStr := c.Query("storageId"); whStr != "" {
		parsed, err := id.Parse(whStr)
		if err != nil {
			h.Validation(c, "invalid storageId format")
			return
		}
		filter.StorageID = &parsed
	}

	if brStr := c.Query("branchId"); brStr != "" {
		parsed, err := id.Parse(brStr)
		if err != nil {
			h.Validation(c, "invalid branchId format")
			return
		}
		filter.BranchID = &parsed
	}

	rows, err := h.service.GetProjection(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromRows(rows))
}

// GetBalances handles GET /inventory/balances
func (h *InventoryHandler) GetBalances(c *gin.Context) {
	ctx := c.Request.Context()

	storageID, err := id.Parse(c.Query("storageId"))
	if err != nil {
		h.Validation(c, "invalid storageId format")
		return
	}

	var variantIDs []id.ID
	if raw := c.Query("variantIds"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			parsed, err := id.Parse(part)
			if err != nil {
				h.Validation(c, "invalid variantIds entry: "+part)
				return
			}
			variantIDs = append(variantIDs, parsed)
		}
	}

	balances, err := h.service.GetBalances(ctx, storageID, variantIDs)
	if err != nil {
		h.Error(c, err)
		return
	}

	resp := dto.BalancesResponse{
		StorageID: storageID.String(),
		Balances:  make(map[string]float64, len(balances)),
	}
	for variantID, balance := range balances {
		resp.Balances[variantID.String()] = balance.InexactFloat64()
	}

	h.OK(c, resp)
}

// GetFilters handles GET /inventory/filters
func (h *InventoryHandler) GetFilters(c *gin.Context) {
	filters, err := h.service.GetFilters(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromFilters(filters))
}

// RegisterRoutes registers inventory projection routes.
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/projection", h.GetProjection)
	rg.GET("/balances", h.GetBalances)
	rg.GET("/filters", h.GetFilters)
}
