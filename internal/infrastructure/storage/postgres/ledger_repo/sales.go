package ledger_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/storage/postgres"
)

const salesTable = "sales"

var _ ledger.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implements ledger.SaleRepository.
type SaleRepo struct {
	*journalRepo[*ledger.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		journalRepo: newJournalRepo(
			txm,
			salesTable,
			"sale",
			"sold_at",
			postgres.ExtractDBColumns[ledger.Sale](),
			func() *ledger.Sale { return &ledger.Sale{} },
		),
	}
}

// List returns sales matching filter, newest first.
func (r *SaleRepo) List(ctx context.Context, filter ledger.SaleFilter) ([]*ledger.Sale, error) {
	q := r.inWindow(r.baseSelect(), filter.Window)
	if filter.SellerID != nil {
		q = q.Where(squirrel.Eq{"seller_id": *filter.SellerID})
	}
	if filter.UniqueID != "" {
		q = q.Where(squirrel.Eq{"unique_id": filter.UniqueID})
	}
	q = r.newestFirst(q)
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	return r.selectAll(ctx, q)
}
