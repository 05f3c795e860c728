package handlers

import (
	"github.com/gin-gonic/gin"

	appctx "retailpos/internal/core/context"
	"retailpos/internal/domain/reports"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for reports.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SalesStats handles GET /reports/sales/stats?from=&to=&sellerId=
func (h *ReportsHandler) SalesStats(c *gin.Context) {
	var q dto.DateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, to, ok := h.DateRange(c, q.From, q.To)
	if !ok {
		return
	}
	sellerID, ok := h.SellerScope(c, q.SellerID)
	if !ok {
		return
	}

	stats, err := h.service.SalesStats(c.Request.Context(), from, to, sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, stats)
}

// ProductBreakdown handles GET /reports/sales/products?from=&to=&sellerId=
func (h *ReportsHandler) ProductBreakdown(c *gin.Context) {
	var q dto.DateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, to, ok := h.DateRange(c, q.From, q.To)
	if !ok {
		return
	}
	sellerID, ok := h.SellerScope(c, q.SellerID)
	if !ok {
		return
	}

	report, err := h.service.ProductBreakdown(c.Request.Context(), from, to, sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, report)
}

// Dashboard handles GET /reports/dashboard. Sellers get their own figures;
// admins get shop totals plus the inventory block.
func (h *ReportsHandler) Dashboard(c *gin.Context) {
	sellerID, ok := h.SellerScope(c, c.Query("sellerId"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	d, err := h.service.Dashboard(ctx, sellerID, appctx.IsAdmin(ctx))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, d)
}

// StockValuation handles GET /reports/stock/valuation
func (h *ReportsHandler) StockValuation(c *gin.Context) {
	v, err := h.service.StockValuation(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, v)
}
