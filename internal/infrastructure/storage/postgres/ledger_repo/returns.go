package ledger_repo

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/infrastructure/storage/postgres"
)

const returnsTable = "returns"

var _ ledger.ReturnRepository = (*ReturnRepo)(nil)

// ReturnRepo implements ledger.ReturnRepository.
type ReturnRepo struct {
	*journalRepo[*ledger.Return]
}

// NewReturnRepo creates a new return repository.
func NewReturnRepo(txm *postgres.TxManager) *ReturnRepo {
	return &ReturnRepo{
		journalRepo: newJournalRepo(
			txm,
			returnsTable,
			"return",
			"returned_at",
			postgres.ExtractDBColumns[ledger.Return](),
			func() *ledger.Return { return &ledger.Return{} },
		),
	}
}

// List returns returns in window, newest first.
func (r *ReturnRepo) List(ctx context.Context, window analytics.Window) ([]*ledger.Return, error) {
	return r.selectAll(ctx, r.newestFirst(r.inWindow(r.baseSelect(), window)))
}

// ReturnedQuantity sums returns already booked against saleID.
func (r *ReturnRepo) ReturnedQuantity(ctx context.Context, saleID id.ID) (decimal.Decimal, error) {
	sql, args, err := r.builder().
		Select("COALESCE(SUM(quantity), 0)").
		From(returnsTable).
		Where("sale_id = ?", saleID).
		ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build query: %w", err)
	}

	var total decimal.Decimal
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("returned quantity: %w", err)
	}
	return total, nil
}
