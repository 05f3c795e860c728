// Package category provides the product category catalog.
package category

import (
	"context"

	"retailpos/internal/core/entity"
)

// Category groups products on shelves and in reports.
type Category struct {
	entity.Catalog
}

// NewCategory creates a new Category.
func NewCategory(name string) *Category {
	return &Category{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable interface.
func (c *Category) Validate(ctx context.Context) error {
	return c.Catalog.Validate(ctx)
}
