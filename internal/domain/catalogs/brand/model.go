// Package brand provides the brand catalog.
package brand

import (
	"context"
	"strings"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
)

// Brand is a product manufacturer or label.
type Brand struct {
	entity.Catalog

	// Country of origin, free text
	Country *string `db:"country" json:"country,omitempty"`
}

// NewBrand creates a new Brand.
func NewBrand(name string) *Brand {
	return &Brand{Catalog: entity.NewCatalog(name)}
}

// Validate implements entity.Validatable interface.
func (b *Brand) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}
	if b.Country != nil && len(strings.TrimSpace(*b.Country)) > 100 {
		return apperror.NewValidation("country is too long").
			WithDetail("field", "country")
	}
	return nil
}

// DedupeByName drops brands whose name repeats an earlier one,
// ignoring case and surrounding spaces. The first occurrence wins.
func DedupeByName(brands []*Brand) []*Brand {
	seen := make(map[string]struct{}, len(brands))
	out := make([]*Brand, 0, len(brands))
	for _, b := range brands {
		key := strings.ToLower(strings.TrimSpace(b.Name))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, b)
	}
	return out
}
