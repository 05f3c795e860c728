// Package domain provides the generic catalog contracts shared by
// categories, brands and products.
package domain

import (
	"context"

	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/filter"
)

// Page sizes for list endpoints.
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

// ListFilter selects a page of catalog rows.
type ListFilter struct {
	// Search matches name and the entity's own text columns.
	Search string

	IDs            []id.ID
	IncludeDeleted bool
	Filters        []filter.Item

	// OrderBy is a column name, "-" prefixed for descending.
	OrderBy string

	Limit  int
	Offset int
}

// DefaultListFilter is the first page ordered by name.
func DefaultListFilter() ListFilter {
	return ListFilter{Limit: DefaultListLimit, OrderBy: "name"}
}

// Normalize clamps paging into the allowed range.
func (f ListFilter) Normalize() ListFilter {
	switch {
	case f.Limit <= 0:
		f.Limit = DefaultListLimit
	case f.Limit > MaxListLimit:
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// ListResult is one page plus the total row count.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// CatalogRepository stores one catalog entity type.
type CatalogRepository[T entity.Validatable] interface {
	Create(ctx context.Context, entity T) error
	GetByID(ctx context.Context, id id.ID) (T, error)

	// Update fails with a concurrent-modification error when the stored
	// version differs from the entity's.
	Update(ctx context.Context, entity T) error

	// SetDeletionMark soft-deletes (true) or restores (false) a row.
	SetDeletionMark(ctx context.Context, id id.ID, marked bool) error

	List(ctx context.Context, filter ListFilter) (ListResult[T], error)
}

// Op names the write a Guard is called for.
type Op uint8

const (
	OpCreate Op = iota + 1
	OpUpdate
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return "unknown"
}

// Guard runs inside the write transaction before the row is stored. It may
// fill derived fields; an error aborts the write.
type Guard[T any] func(ctx context.Context, op Op, entity T) error
