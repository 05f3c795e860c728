package brand

import (
	"context"

	"retailpos/internal/domain"
)

// Repository defines the interface for Brand persistence.
type Repository interface {
	domain.CatalogRepository[*Brand]

	// ListActive returns every live brand in creation order.
	ListActive(ctx context.Context) ([]*Brand, error)
}
