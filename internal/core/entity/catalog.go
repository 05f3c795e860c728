package entity

import (
	"context"
	"strings"

	"retailpos/internal/core/apperror"
)

// MaxNameLength bounds display names of catalog records.
const MaxNameLength = 200

// Catalog is the base type for reference data: categories, brands, products.
type Catalog struct {
	BaseEntity

	// Name is the display name
	Name string `db:"name" json:"name"`

	// Description is a free-form note
	Description *string `db:"description" json:"description,omitempty"`
}

// NewCatalog creates a new Catalog with generated ID.
func NewCatalog(name string) Catalog {
	return Catalog{
		BaseEntity: NewBaseEntity(),
		Name:       strings.TrimSpace(name),
	}
}

// Validate implements Validatable interface.
func (c *Catalog) Validate(ctx context.Context) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if len(c.Name) > MaxNameLength {
		return apperror.NewValidation("name is too long").
			WithDetail("field", "name").
			WithDetail("max", MaxNameLength)
	}
	return nil
}
