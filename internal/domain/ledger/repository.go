package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/catalogs/product"
)

// ProductStore is the part of the product repository the ledger needs.
type ProductStore interface {
	GetForUpdate(ctx context.Context, id id.ID) (*product.Product, error)
	AdjustStock(ctx context.Context, id id.ID, delta decimal.Decimal) error
}

// SaleFilter selects sales. Zero fields do not filter.
type SaleFilter struct {
	Window   analytics.Window
	SellerID *id.ID
	UniqueID string
	// Limit 0 means no limit
	Limit int
}

// SaleRepository persists sales. List returns newest first.
type SaleRepository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	List(ctx context.Context, filter SaleFilter) ([]*Sale, error)
}

// PurchaseRepository persists purchases. List returns newest first.
type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error
	List(ctx context.Context, window analytics.Window) ([]*Purchase, error)
}

// ReturnRepository persists returns. List returns newest first.
type ReturnRepository interface {
	Create(ctx context.Context, r *Return) error
	List(ctx context.Context, window analytics.Window) ([]*Return, error)
	// ReturnedQuantity sums returns already booked against saleID.
	ReturnedQuantity(ctx context.Context, saleID id.ID) (decimal.Decimal, error)
}
