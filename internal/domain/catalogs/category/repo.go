package category

import (
	"context"

	"retailpos/internal/domain"
)

// Repository defines the interface for Category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]

	// FindByName looks a category up by name, case-insensitively.
	FindByName(ctx context.Context, name string) (*Category, error)
}
