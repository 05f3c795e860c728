// Package product provides the product catalog: one row per physical unit,
// grouped by a shared common id.
package product

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/identifier"
)

// DefaultUnit is used when a product is created without a unit.
const DefaultUnit = "pcs"

// MaxWarrantyMonths bounds the default warranty of a product.
const MaxWarrantyMonths = 120

// Product is one sellable unit.
type Product struct {
	entity.Catalog

	// CommonID groups all units of the same catalog item (CAM-1001)
	CommonID string `db:"common_id" json:"commonId"`

	// UniqueID tags this unit (CAM-1001-7QX2)
	UniqueID string `db:"unique_id" json:"uniqueId"`

	CategoryID *id.ID `db:"category_id" json:"categoryId,omitempty"`
	BrandID    *id.ID `db:"brand_id" json:"brandId,omitempty"`

	PurchasePrice decimal.Decimal `db:"purchase_price" json:"purchasePrice"`
	SellPrice     decimal.Decimal `db:"sell_price" json:"sellPrice"`

	// Stock on hand, in Unit
	Stock decimal.Decimal `db:"stock" json:"stock"`
	Unit  string          `db:"unit" json:"unit"`

	// WarrantyMonths is the default warranty granted on sale, 0 for none
	WarrantyMonths int `db:"warranty_months" json:"warrantyMonths"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(name, commonID string) *Product {
	return &Product{
		Catalog:       entity.NewCatalog(name),
		CommonID:      identifier.FormatCommonID(commonID),
		PurchasePrice: decimal.Zero,
		SellPrice:     decimal.Zero,
		Stock:         decimal.Zero,
		Unit:          DefaultUnit,
	}
}

// Normalize puts identifiers into canonical form.
func (p *Product) Normalize() {
	p.CommonID = identifier.FormatCommonID(p.CommonID)
	p.UniqueID = identifier.FormatUniqueID(p.UniqueID)
	p.Unit = strings.TrimSpace(p.Unit)
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
}

// Validate implements entity.Validatable interface.
// UniqueID may be empty here; the service generates it.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}
	p.Normalize()

	if r := identifier.ValidateCommonID(p.CommonID); !r.Valid {
		return apperror.NewValidation(r.Message).
			WithDetail("field", "commonId")
	}

	if p.PurchasePrice.IsNegative() {
		return apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePrice")
	}
	if p.SellPrice.IsNegative() {
		return apperror.NewValidation("sell price cannot be negative").
			WithDetail("field", "sellPrice")
	}
	if p.Stock.IsNegative() {
		return apperror.NewValidation("stock cannot be negative").
			WithDetail("field", "stock")
	}
	if p.WarrantyMonths < 0 || p.WarrantyMonths > MaxWarrantyMonths {
		return apperror.NewValidation("warranty months out of range").
			WithDetail("field", "warrantyMonths").
			WithDetail("max", MaxWarrantyMonths)
	}
	return nil
}

// HasWarranty reports whether sales of this product carry a warranty by default.
func (p *Product) HasWarranty() bool {
	return p.WarrantyMonths > 0
}

// CloneUnit copies catalog attributes into a fresh unit with a new id and no unique id.
func (p *Product) CloneUnit() *Product {
	unit := *p
	unit.Catalog = entity.NewCatalog(p.Name)
	unit.Description = p.Description
	unit.UniqueID = ""
	return &unit
}
