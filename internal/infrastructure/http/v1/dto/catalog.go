package dto

import (
	"retailpos/internal/domain/catalogs/brand"
	"retailpos/internal/domain/catalogs/category"
)

// --- Category ---

// CreateCategoryRequest for creating a category.
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description *string `json:"description"`
}

// ToEntity builds a new category.
func (r CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Name)
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest for updating a category.
type UpdateCategoryRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo copies the set fields onto existing.
func (r UpdateCategoryRequest) ApplyTo(existing *category.Category) *category.Category {
	if r.Name != nil {
		existing.Name = *r.Name
	}
	if r.Description != nil {
		existing.Description = r.Description
	}
	existing.Version = r.Version
	return existing
}

// --- Brand ---

// CreateBrandRequest for creating a brand.
type CreateBrandRequest struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	Description *string `json:"description"`
}

// ToEntity builds a new brand.
func (r CreateBrandRequest) ToEntity() *brand.Brand {
	b := brand.NewBrand(r.Name)
	b.Country = r.Country
	b.Description = r.Description
	return b
}

// UpdateBrandRequest for updating a brand.
type UpdateBrandRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=200"`
	Country     *string `json:"country" binding:"omitempty,max=100"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required,min=1"`
}

// ApplyTo copies the set fields onto existing.
func (r UpdateBrandRequest) ApplyTo(existing *brand.Brand) *brand.Brand {
	if r.Name != nil {
		existing.Name = *r.Name
	}
	if r.Country != nil {
		existing.Country = r.Country
	}
	if r.Description != nil {
		existing.Description = r.Description
	}
	existing.Version = r.Version
	return existing
}
