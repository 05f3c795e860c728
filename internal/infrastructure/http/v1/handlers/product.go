package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"retailpos/internal/core/apperror"
	"retailpos/internal/domain/catalogs/product"
	"retailpos/internal/infrastructure/http/v1/dto"
	"retailpos/internal/infrastructure/label"
)

// ProductHandler handles product endpoints on top of the generic catalog CRUD.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
	labels  *label.Generator
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, labels *label.Generator) *ProductHandler {
	if labels == nil {
		labels = label.NewGenerator(label.DefaultSize, "M")
	}
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateProductRequest) (*product.Product, error) {
			return req.ToEntity()
		},
		MapUpdateDTO: func(req dto.UpdateProductRequest, existing *product.Product) (*product.Product, error) {
			return req.ApplyTo(existing)
		},
	})
	return &ProductHandler{CatalogHandler: catalog, service: service, labels: labels}
}

// GetByUniqueID handles GET /catalog/products/by-unique-id/:uniqueId
func (h *ProductHandler) GetByUniqueID(c *gin.Context) {
	p, err := h.service.GetByUniqueID(c.Request.Context(), c.Param("uniqueId"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, p)
}

// CreateUnits handles POST /catalog/products/units
func (h *ProductHandler) CreateUnits(c *gin.Context) {
	var req dto.CreateUnitsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	template, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}

	units, err := h.service.CreateUnits(c.Request.Context(), template, req.Count)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.NewItemsResponse(units))
}

// GenerateIDs handles POST /catalog/products/ids/generate
func (h *ProductHandler) GenerateIDs(c *gin.Context) {
	var req dto.GenerateIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	ids, err := h.service.GenerateIDs(c.Request.Context(), req.CommonID, req.Count)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.GenerateIDsResponse{CommonID: req.CommonID, UniqueIDs: ids})
}

// CheckIDs handles POST /catalog/products/ids/check
func (h *ProductHandler) CheckIDs(c *gin.Context) {
	var req dto.CheckIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	res, err := h.service.CheckIDs(c.Request.Context(), req.ToCheckRequest())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, res)
}

// LowStock handles GET /catalog/products/low-stock
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(items))
}

// Restore handles POST /catalog/products/:id/restore
func (h *ProductHandler) Restore(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	if err := h.service.Restore(c.Request.Context(), productID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "product restored")
}

// Label handles GET /catalog/products/:id/label.png
func (h *ProductHandler) Label(c *gin.Context) {
	productID, ok := h.ParamID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	png, err := h.labels.PNG(p.UniqueID)
	if err != nil {
		h.Error(c, apperror.NewInternal(err).WithDetail("product_id", productID.String()))
		return
	}

	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}
