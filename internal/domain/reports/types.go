package reports

import (
	"github.com/shopspring/decimal"

	"retailpos/internal/domain/analytics"
)

// ProductBreakdown is the per-product sales report with consistent header totals.
type ProductBreakdown struct {
	From     string                  `json:"from"`
	To       string                  `json:"to"`
	Products []analytics.ProductStat `json:"products"`
	Summary  analytics.Summary       `json:"summary"`
}

// StockValuation values the stock on hand.
type StockValuation struct {
	Units       decimal.Decimal     `json:"units"`
	CostValue   decimal.Decimal     `json:"costValue"`
	RetailValue decimal.Decimal     `json:"retailValue"`
	ByCategory  []CategoryValuation `json:"byCategory"`
}

// CategoryValuation is one category line of StockValuation.
// Products without a category report an empty name.
type CategoryValuation struct {
	CategoryID   *string         `db:"category_id" json:"categoryId,omitempty"`
	CategoryName string          `db:"category_name" json:"categoryName"`
	ProductCount int64           `db:"product_count" json:"productCount"`
	Units        decimal.Decimal `db:"units" json:"units"`
	CostValue    decimal.Decimal `db:"cost_value" json:"costValue"`
	RetailValue  decimal.Decimal `db:"retail_value" json:"retailValue"`
}

// LowStockItem is a product flagged by the low-stock rule.
type LowStockItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	UniqueID string          `json:"uniqueId"`
	Stock    decimal.Decimal `json:"stock"`
	Unit     string          `json:"unit"`
}

// InventoryOverview is the admin part of the dashboard.
type InventoryOverview struct {
	ProductCount  int64           `json:"productCount"`
	LowStockCount int             `json:"lowStockCount"`
	LowStock      []LowStockItem  `json:"lowStock"`
	Valuation     *StockValuation `json:"valuation,omitempty"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	Date        string                  `json:"date"`
	Today       analytics.SalesStats    `json:"today"`
	MonthToDate analytics.SalesStats    `json:"monthToDate"`
	TopProducts []analytics.ProductStat `json:"topProducts"`
	Inventory   *InventoryOverview      `json:"inventory,omitempty"`
}
