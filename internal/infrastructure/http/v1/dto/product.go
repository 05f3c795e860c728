package dto

import (
	"github.com/shopspring/decimal"

	"retailpos/internal/domain/catalogs/product"
)

// ProductFields are the editable attributes shared by create requests.
type ProductFields struct {
	Name           string           `json:"name" binding:"required,max=200"`
	CommonID       string           `json:"commonId" binding:"required,commonid"`
	CategoryID     *string          `json:"categoryId" binding:"omitempty,uuid"`
	BrandID        *string          `json:"brandId" binding:"omitempty,uuid"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	SellPrice      *decimal.Decimal `json:"sellPrice"`
	Stock          *decimal.Decimal `json:"stock"`
	Unit           string           `json:"unit" binding:"omitempty,max=20"`
	WarrantyMonths int              `json:"warrantyMonths" binding:"min=0,max=120"`
	Description    *string          `json:"description"`
}

// ToEntity builds a product without a unique id.
func (f ProductFields) ToEntity() (*product.Product, error) {
	p := product.NewProduct(f.Name, f.CommonID)
	var err error
	if p.CategoryID, err = ParseOptionalID("categoryId", f.CategoryID); err != nil {
		return nil, err
	}
	if p.BrandID, err = ParseOptionalID("brandId", f.BrandID); err != nil {
		return nil, err
	}
	if f.PurchasePrice != nil {
		p.PurchasePrice = *f.PurchasePrice
	}
	if f.SellPrice != nil {
		p.SellPrice = *f.SellPrice
	}
	if f.Stock != nil {
		p.Stock = *f.Stock
	}
	if f.Unit != "" {
		p.Unit = f.Unit
	}
	p.WarrantyMonths = f.WarrantyMonths
	p.Description = f.Description
	return p, nil
}

// CreateProductRequest creates one unit. An empty uniqueId is generated.
type CreateProductRequest struct {
	ProductFields
	UniqueID string `json:"uniqueId" binding:"omitempty,uniqueid"`
}

// ToEntity builds the product.
func (r CreateProductRequest) ToEntity() (*product.Product, error) {
	p, err := r.ProductFields.ToEntity()
	if err != nil {
		return nil, err
	}
	p.UniqueID = r.UniqueID
	return p, nil
}

// CreateUnitsRequest creates count units sharing the same attributes.
type CreateUnitsRequest struct {
	ProductFields
	Count int `json:"count" binding:"required,min=1,max=100"`
}

// UpdateProductRequest for updating a product. Stock changes go through the ledger.
type UpdateProductRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=200"`
	CommonID       *string          `json:"commonId" binding:"omitempty,commonid"`
	UniqueID       *string          `json:"uniqueId" binding:"omitempty,uniqueid"`
	CategoryID     *string          `json:"categoryId" binding:"omitempty,uuid"`
	BrandID        *string          `json:"brandId" binding:"omitempty,uuid"`
	PurchasePrice  *decimal.Decimal `json:"purchasePrice"`
	SellPrice      *decimal.Decimal `json:"sellPrice"`
	Unit           *string          `json:"unit" binding:"omitempty,max=20"`
	WarrantyMonths *int             `json:"warrantyMonths" binding:"omitempty,min=0,max=120"`
	Description    *string          `json:"description"`
	Version        int              `json:"version" binding:"required,min=1"`
}

// ApplyTo copies the set fields onto existing.
func (r UpdateProductRequest) ApplyTo(existing *product.Product) (*product.Product, error) {
	if r.Name != nil {
		existing.Name = *r.Name
	}
	if r.CommonID != nil {
		existing.CommonID = *r.CommonID
	}
	if r.UniqueID != nil {
		existing.UniqueID = *r.UniqueID
	}
	if r.CategoryID != nil {
		v, err := ParseOptionalID("categoryId", r.CategoryID)
		if err != nil {
			return nil, err
		}
		existing.CategoryID = v
	}
	if r.BrandID != nil {
		v, err := ParseOptionalID("brandId", r.BrandID)
		if err != nil {
			return nil, err
		}
		existing.BrandID = v
	}
	if r.PurchasePrice != nil {
		existing.PurchasePrice = *r.PurchasePrice
	}
	if r.SellPrice != nil {
		existing.SellPrice = *r.SellPrice
	}
	if r.Unit != nil {
		existing.Unit = *r.Unit
	}
	if r.WarrantyMonths != nil {
		existing.WarrantyMonths = *r.WarrantyMonths
	}
	if r.Description != nil {
		existing.Description = r.Description
	}
	existing.Version = r.Version
	return existing, nil
}

// --- Identifiers ---

// GenerateIDsRequest asks for free unique ids.
type GenerateIDsRequest struct {
	CommonID string `json:"commonId" binding:"required,commonid"`
	Count    int    `json:"count" binding:"omitempty,min=1,max=100"`
}

// GenerateIDsResponse lists the proposed ids.
type GenerateIDsResponse struct {
	CommonID  string   `json:"commonId"`
	UniqueIDs []string `json:"uniqueIds"`
}

// CheckIDsRequest asks for inline validation while typing. Fields are not
// tag-validated; the response carries the per-field verdict.
type CheckIDsRequest struct {
	CommonID string `json:"commonId"`
	UniqueID string `json:"uniqueId"`
	Previous string `json:"previousUniqueId"`
}

// ToCheckRequest converts to the service request.
func (r CheckIDsRequest) ToCheckRequest() product.CheckRequest {
	return product.CheckRequest{
		CommonID: r.CommonID,
		UniqueID: r.UniqueID,
		Previous: r.Previous,
	}
}
