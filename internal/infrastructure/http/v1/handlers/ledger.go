package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// LedgerHandler handles sales, purchases, returns and warranty lookups.
type LedgerHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler(base *BaseHandler, service *ledger.Service) *LedgerHandler {
	return &LedgerHandler{
		BaseHandler: base,
		service:     service,
	}
}

// --- Sales ---

// CreateSale handles POST /ledger/sales
func (h *LedgerHandler) CreateSale(c *gin.Context) {
	var req dto.SaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordSale(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sale)
}

// CreateWarrantySale handles POST /ledger/sales/warranty
func (h *LedgerHandler) CreateWarrantySale(c *gin.Context) {
	var req dto.WarrantySaleRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	sale, err := h.service.RecordSaleWithWarranty(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, sale)
}

// ListSales handles GET /ledger/sales?from=&to=&sellerId=
func (h *LedgerHandler) ListSales(c *gin.Context) {
	var q dto.OptionalDateRangeQuery
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

	sales, err := h.service.ListSales(c.Request.Context(), from, to, sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(sales))
}

// TodaySales handles GET /ledger/sales/today
func (h *LedgerHandler) TodaySales(c *gin.Context) {
	sellerID, ok := h.SellerScope(c, c.Query("sellerId"))
	if !ok {
		return
	}

	sales, err := h.service.TodaySales(c.Request.Context(), sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(sales))
}

// SoldProducts handles GET /ledger/sales/sold-products?from=&to=
func (h *LedgerHandler) SoldProducts(c *gin.Context) {
	var q dto.OptionalDateRangeQuery
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

	stats, err := h.service.SoldProducts(c.Request.Context(), from, to, sellerID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(stats))
}

// --- Purchases ---

// CreatePurchase handles POST /ledger/purchases
func (h *LedgerHandler) CreatePurchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	purchase, err := h.service.RecordPurchase(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, purchase)
}

// ListPurchases handles GET /ledger/purchases?from=&to=
func (h *LedgerHandler) ListPurchases(c *gin.Context) {
	var q dto.OptionalDateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, to, ok := h.DateRange(c, q.From, q.To)
	if !ok {
		return
	}

	purchases, err := h.service.ListPurchases(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(purchases))
}

// --- Returns ---

// CreateReturn handles POST /ledger/returns
func (h *LedgerHandler) CreateReturn(c *gin.Context) {
	var req dto.ReturnRequest
	if !h.BindJSON(c, &req) {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	ret, err := h.service.RecordReturn(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, ret)
}

// ListReturns handles GET /ledger/returns?from=&to=
func (h *LedgerHandler) ListReturns(c *gin.Context) {
	var q dto.OptionalDateRangeQuery
	if !h.BindQuery(c, &q) {
		return
	}
	from, to, ok := h.DateRange(c, q.From, q.To)
	if !ok {
		return
	}

	returns, err := h.service.ListReturns(c.Request.Context(), from, to)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(returns))
}

// Warranty handles GET /ledger/warranties/:uniqueId
func (h *LedgerHandler) Warranty(c *gin.Context) {
	info, err := h.service.WarrantyLookup(c.Request.Context(), c.Param("uniqueId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, info)
}
