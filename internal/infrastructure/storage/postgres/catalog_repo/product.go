package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/catalogs/product"
	"retailpos/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			productTable,
			"product",
			postgres.ExtractDBColumns[product.Product](),
			func() *product.Product { return &product.Product{} },
		).WithSearchColumns("name", "common_id", "unique_id"),
	}
}

// FindByUniqueID looks up a live product by its formatted unique id.
func (r *ProductRepo) FindByUniqueID(ctx context.Context, uniqueID string) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"unique_id": uniqueID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)
	return r.FindOne(ctx, q, uniqueID)
}

// ListUniqueIDs returns unique ids of all live products.
func (r *ProductRepo) ListUniqueIDs(ctx context.Context) ([]string, error) {
	sql, args, err := r.Builder().
		Select("unique_id").
		From(productTable).
		Where(squirrel.Eq{"deletion_mark": false}).
		Where(squirrel.NotEq{"unique_id": ""}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.querier(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list unique ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan unique id: %w", err)
		}
		ids = append(ids, v)
	}
	return ids, rows.Err()
}

// ListActive returns all live products ordered by name.
func (r *ProductRepo) ListActive(ctx context.Context) ([]*product.Product, error) {
	return r.listLive(ctx, "name, unique_id")
}

// AdjustStock adds delta to stock without touching the version.
// The stock check constraint rejects a result below zero.
func (r *ProductRepo) AdjustStock(ctx context.Context, productID id.ID, delta decimal.Decimal) error {
	sql, args, err := r.Builder().
		Update(productTable).
		Set("stock", squirrel.Expr("stock + ?", delta)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build adjust stock: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if tErr := postgres.TranslateError(err, "product", nil); tErr != err {
			return tErr
		}
		return fmt.Errorf("adjust stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID.String())
	}
	return nil
}
