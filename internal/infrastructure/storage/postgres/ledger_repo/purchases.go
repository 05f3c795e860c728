package ledger_repo

import (
	"context"

	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/storage/postgres"
)

const purchasesTable = "purchases"

var _ ledger.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implements ledger.PurchaseRepository.
type PurchaseRepo struct {
	*journalRepo[*ledger.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		journalRepo: newJournalRepo(
			txm,
			purchasesTable,
			"purchase",
			"purchased_at",
			postgres.ExtractDBColumns[ledger.Purchase](),
			func() *ledger.Purchase { return &ledger.Purchase{} },
		),
	}
}

// List returns purchases in window, newest first.
func (r *PurchaseRepo) List(ctx context.Context, window analytics.Window) ([]*ledger.Purchase, error) {
	return r.selectAll(ctx, r.newestFirst(r.inWindow(r.baseSelect(), window)))
}
