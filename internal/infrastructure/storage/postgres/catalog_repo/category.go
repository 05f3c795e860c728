package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/domain/catalogs/category"
	"retailpos/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

var _ category.Repository = (*CategoryRepo)(nil)

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			categoryTable,
			"category",
			postgres.ExtractDBColumns[category.Category](),
			func() *category.Category { return &category.Category{} },
		),
	}
}

// FindByName looks a live category up by name, case-insensitively.
func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*category.Category, error) {
	name = strings.TrimSpace(name)
	q := r.baseSelect().
		Where(squirrel.Expr("lower(name) = lower(?)", name)).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, name)
}
