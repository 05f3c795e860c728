package handlers

import (
	"github.com/gin-gonic/gin"

	"retailpos/internal/domain/catalogs/brand"
	"retailpos/internal/domain/catalogs/category"
	"retailpos/internal/infrastructure/http/v1/dto"
)

// BrandHandler handles brand endpoints.
type BrandHandler struct {
	*CatalogHandler[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]
	service *brand.Service
}

// NewBrandHandler creates a new brand handler.
func NewBrandHandler(base *BaseHandler, service *brand.Service) *BrandHandler {
	catalog := NewCatalogHandler(base, CatalogHandlerConfig[*brand.Brand, dto.CreateBrandRequest, dto.UpdateBrandRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateBrandRequest) (*brand.Brand, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateBrandRequest, existing *brand.Brand) (*brand.Brand, error) {
			return req.ApplyTo(existing), nil
		},
	})
	return &BrandHandler{CatalogHandler: catalog, service: service}
}

// Distinct handles GET /catalog/brands/distinct
func (h *BrandHandler) Distinct(c *gin.Context) {
	brands, err := h.service.ListDistinct(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewItemsResponse(brands))
}

// NewCategoryHandler creates the category handler; categories need nothing
// beyond the generic CRUD.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest] {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.UpdateCategoryRequest]{
		Service: service.CatalogService,
		MapCreateDTO: func(req dto.CreateCategoryRequest) (*category.Category, error) {
			return req.ToEntity(), nil
		},
		MapUpdateDTO: func(req dto.UpdateCategoryRequest, existing *category.Category) (*category.Category, error) {
			return req.ApplyTo(existing), nil
		},
	})
}
