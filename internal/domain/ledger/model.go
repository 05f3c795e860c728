// Package ledger records the append-only sale, purchase and return journals
// and keeps product stock in step with them.
package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
)

// dateLayout is the wire and storage form of calendar dates.
const dateLayout = "2006-01-02"

// Sale is one sold line. Product attributes are snapshotted at sale time.
type Sale struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`
	CommonID    string `db:"common_id" json:"commonId"`
	UniqueID    string `db:"unique_id" json:"uniqueId"`

	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	SellPricePerUnit decimal.Decimal `db:"sell_price_per_unit" json:"sellPricePerUnit"`
	TotalPrice       decimal.Decimal `db:"total_price" json:"totalPrice"`
	Unit             string          `db:"unit" json:"unit"`

	// DateOfSale is the local calendar date; SoldAt is the exact instant
	DateOfSale time.Time `db:"date_of_sale" json:"dateOfSale"`
	SoldAt     time.Time `db:"sold_at" json:"timestamp"`

	CustomerName    *string    `db:"customer_name" json:"customerName,omitempty"`
	CustomerPhone   *string    `db:"customer_phone" json:"customerPhone,omitempty"`
	WarrantyEndDate *time.Time `db:"warranty_end_date" json:"warrantyEndDate,omitempty"`

	SellerID *id.ID `db:"seller_id" json:"sellerId,omitempty"`
}

// Record converts the sale into the aggregator input shape.
func (s *Sale) Record() analytics.SaleRecord {
	r := analytics.SaleRecord{
		ProductID:        s.ProductID.String(),
		ProductName:      s.ProductName,
		Quantity:         s.Quantity,
		SellPricePerUnit: s.SellPricePerUnit,
		TotalPrice:       s.TotalPrice,
		Unit:             s.Unit,
		DateOfSale:       s.DateOfSale.Format(dateLayout),
		Timestamp:        s.SoldAt.Format(time.RFC3339Nano),
	}
	if s.CustomerName != nil {
		r.CustomerName = *s.CustomerName
	}
	if s.CustomerPhone != nil {
		r.CustomerPhone = *s.CustomerPhone
	}
	if s.WarrantyEndDate != nil {
		r.WarrantyEndDate = s.WarrantyEndDate.Format(dateLayout)
	}
	return r
}

// MarshalJSON renders calendar dates as YYYY-MM-DD. A fresh sale carries
// local midnight and a stored one UTC midnight; both print the same day.
func (s Sale) MarshalJSON() ([]byte, error) {
	type sale Sale
	return json.Marshal(struct {
		sale
		DateOfSale      string  `json:"dateOfSale"`
		WarrantyEndDate *string `json:"warrantyEndDate,omitempty"`
	}{sale(s), s.DateOfSale.Format(dateLayout), formatDate(s.WarrantyEndDate)})
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(dateLayout)
	return &v
}

// Records converts a slice of sales.
func Records(sales []*Sale) []analytics.SaleRecord {
	out := make([]analytics.SaleRecord, len(sales))
	for i, s := range sales {
		out[i] = s.Record()
	}
	return out
}

// Purchase is one received stock line.
type Purchase struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`

	Quantity             decimal.Decimal `db:"quantity" json:"quantity"`
	PurchasePricePerUnit decimal.Decimal `db:"purchase_price_per_unit" json:"purchasePricePerUnit"`
	TotalPrice           decimal.Decimal `db:"total_price" json:"totalPrice"`
	Unit                 string          `db:"unit" json:"unit"`

	SupplierName *string `db:"supplier_name" json:"supplierName,omitempty"`

	DateOfPurchase time.Time `db:"date_of_purchase" json:"dateOfPurchase"`
	PurchasedAt    time.Time `db:"purchased_at" json:"timestamp"`

	CreatedBy *id.ID `db:"created_by" json:"createdBy,omitempty"`
}

func (p Purchase) MarshalJSON() ([]byte, error) {
	type purchase Purchase
	return json.Marshal(struct {
		purchase
		DateOfPurchase string `json:"dateOfPurchase"`
	}{purchase(p), p.DateOfPurchase.Format(dateLayout)})
}

// Return is one customer return, optionally linked to its sale.
type Return struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	SaleID      *id.ID `db:"sale_id" json:"saleId,omitempty"`
	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductName string `db:"product_name" json:"productName"`
	UniqueID    string `db:"unique_id" json:"uniqueId"`

	Quantity     decimal.Decimal `db:"quantity" json:"quantity"`
	RefundAmount decimal.Decimal `db:"refund_amount" json:"refundAmount"`
	Reason       *string         `db:"reason" json:"reason,omitempty"`

	DateOfReturn time.Time `db:"date_of_return" json:"dateOfReturn"`
	ReturnedAt   time.Time `db:"returned_at" json:"timestamp"`

	CreatedBy *id.ID `db:"created_by" json:"createdBy,omitempty"`
}

func (r Return) MarshalJSON() ([]byte, error) {
	type ret Return
	return json.Marshal(struct {
		ret
		DateOfReturn string `json:"dateOfReturn"`
	}{ret(r), r.DateOfReturn.Format(dateLayout)})
}

// WarrantyStatus of a unit at lookup time.
type WarrantyStatus string

const (
	WarrantyActive  WarrantyStatus = "active"
	WarrantyExpired WarrantyStatus = "expired"
	WarrantyNone    WarrantyStatus = "none"
)

// WarrantyInfo is the answer to a warranty lookup by unique id.
type WarrantyInfo struct {
	UniqueID string         `json:"uniqueId"`
	Status   WarrantyStatus `json:"status"`
	// Sale is the latest sale of the unit, nil if never sold
	Sale    *Sale      `json:"sale,omitempty"`
	EndDate *time.Time `json:"endDate,omitempty"`
	// DaysLeft counts calendar days until EndDate inclusive, 0 when not active
	DaysLeft int `json:"daysLeft"`
}

func (w WarrantyInfo) MarshalJSON() ([]byte, error) {
	type info WarrantyInfo
	return json.Marshal(struct {
		info
		EndDate *string `json:"endDate,omitempty"`
	}{info(w), formatDate(w.EndDate)})
}
