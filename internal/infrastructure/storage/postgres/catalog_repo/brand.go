package catalog_repo

import (
	"context"

	"retailpos/internal/domain/catalogs/brand"
	"retailpos/internal/infrastructure/storage/postgres"
)

const brandTable = "cat_brands"

var _ brand.Repository = (*BrandRepo)(nil)

// BrandRepo implements brand.Repository.
type BrandRepo struct {
	*BaseCatalogRepo[*brand.Brand]
}

// NewBrandRepo creates a new brand repository.
func NewBrandRepo(txm *postgres.TxManager) *BrandRepo {
	return &BrandRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm,
			brandTable,
			"brand",
			postgres.ExtractDBColumns[brand.Brand](),
			func() *brand.Brand { return &brand.Brand{} },
		).WithSearchColumns("name", "country"),
	}
}

// ListActive returns every live brand in creation order.
func (r *BrandRepo) ListActive(ctx context.Context) ([]*brand.Brand, error) {
	return r.listLive(ctx, "created_at, id")
}
