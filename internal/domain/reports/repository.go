package reports

import (
	"context"
	"time"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/catalogs/product"
)

// SalesSource loads sale records dated from..to inclusive.
type SalesSource interface {
	SaleRecords(ctx context.Context, from, to time.Time, sellerID *id.ID) ([]analytics.SaleRecord, error)
}

// InventorySource answers product questions for the dashboard.
type InventorySource interface {
	CountActive(ctx context.Context) (int64, error)
	LowStock(ctx context.Context) ([]*product.Product, error)
}

// Repository defines report queries that run directly in SQL.
type Repository interface {
	StockValuation(ctx context.Context) (*StockValuation, error)
}
