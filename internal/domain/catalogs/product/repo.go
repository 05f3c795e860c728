package product

import (
	"context"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/id"
	"retailpos/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetForUpdate retrieves a product with row lock. Must run inside a transaction.
	GetForUpdate(ctx context.Context, id id.ID) (*Product, error)

	// FindByUniqueID looks up a live product by its formatted unique id.
	FindByUniqueID(ctx context.Context, uniqueID string) (*Product, error)

	// ListUniqueIDs returns unique ids of all live products.
	ListUniqueIDs(ctx context.Context) ([]string, error)

	// ListActive returns all live products ordered by name.
	ListActive(ctx context.Context) ([]*Product, error)

	// AdjustStock adds delta to stock without touching the version.
	AdjustStock(ctx context.Context, id id.ID, delta decimal.Decimal) error
}
