package dto

import (
	"github.com/shopspring/decimal"

	"retailpos/internal/domain/ledger"
)

// SaleRequest records a sale at the counter.
type SaleRequest struct {
	ProductID        string           `json:"productId" binding:"required,uuid"`
	Quantity         decimal.Decimal  `json:"quantity"`
	SellPricePerUnit *decimal.Decimal `json:"sellPricePerUnit"`
	CustomerName     string           `json:"customerName" binding:"max=200"`
	CustomerPhone    string           `json:"customerPhone" binding:"max=50"`
}

// ToInput converts to the ledger input.
func (r SaleRequest) ToInput() (ledger.SaleInput, error) {
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return ledger.SaleInput{}, err
	}
	return ledger.SaleInput{
		ProductID:        productID,
		Quantity:         r.Quantity,
		SellPricePerUnit: r.SellPricePerUnit,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
	}, nil
}

// WarrantySaleRequest records a sale that must carry a warranty.
type WarrantySaleRequest struct {
	SaleRequest
	WarrantyMonths int `json:"warrantyMonths" binding:"min=0,max=120"`
}

// ToInput converts to the ledger input.
func (r WarrantySaleRequest) ToInput() (ledger.WarrantySaleInput, error) {
	in, err := r.SaleRequest.ToInput()
	if err != nil {
		return ledger.WarrantySaleInput{}, err
	}
	return ledger.WarrantySaleInput{SaleInput: in, WarrantyMonths: r.WarrantyMonths}, nil
}

// PurchaseRequest records received stock.
type PurchaseRequest struct {
	ProductID            string           `json:"productId" binding:"required,uuid"`
	Quantity             decimal.Decimal  `json:"quantity"`
	PurchasePricePerUnit *decimal.Decimal `json:"purchasePricePerUnit"`
	SupplierName         string           `json:"supplierName" binding:"max=200"`
}

// ToInput converts to the ledger input.
func (r PurchaseRequest) ToInput() (ledger.PurchaseInput, error) {
	productID, err := ParseID("productId", r.ProductID)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	return ledger.PurchaseInput{
		ProductID:            productID,
		Quantity:             r.Quantity,
		PurchasePricePerUnit: r.PurchasePricePerUnit,
		SupplierName:         r.SupplierName,
	}, nil
}

// ReturnRequest records a customer return. saleId or productId is required.
type ReturnRequest struct {
	SaleID       *string          `json:"saleId" binding:"omitempty,uuid"`
	ProductID    string           `json:"productId" binding:"required_without=SaleID,omitempty,uuid"`
	Quantity     decimal.Decimal  `json:"quantity"`
	RefundAmount *decimal.Decimal `json:"refundAmount"`
	Reason       string           `json:"reason" binding:"max=500"`
}

// ToInput converts to the ledger input.
func (r ReturnRequest) ToInput() (ledger.ReturnInput, error) {
	saleID, err := ParseOptionalID("saleId", r.SaleID)
	if err != nil {
		return ledger.ReturnInput{}, err
	}
	in := ledger.ReturnInput{
		SaleID:       saleID,
		Quantity:     r.Quantity,
		RefundAmount: r.RefundAmount,
		Reason:       r.Reason,
	}
	if r.ProductID != "" {
		if in.ProductID, err = ParseID("productId", r.ProductID); err != nil {
			return ledger.ReturnInput{}, err
		}
	}
	return in, nil
}

// DateRangeQuery selects a window of calendar dates (YYYY-MM-DD).
type DateRangeQuery struct {
	From     string `form:"from" binding:"required,datetime=2006-01-02"`
	To       string `form:"to" binding:"required,datetime=2006-01-02"`
	SellerID string `form:"sellerId" binding:"omitempty,uuid"`
}

// OptionalDateRangeQuery is DateRangeQuery where both dates default.
type OptionalDateRangeQuery struct {
	From     string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To       string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	SellerID string `form:"sellerId" binding:"omitempty,uuid"`
}
