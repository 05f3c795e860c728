// Package ledger_repo provides PostgreSQL implementations of the sale,
// purchase and return journals. Journal rows are append-only.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/infrastructure/storage/postgres"
)

// journalRepo provides insert and read operations shared by the journals.
type journalRepo[T any] struct {
	txm        *postgres.TxManager
	tableName  string
	entityName string
	timeCol    string // windows and ordering apply to it
	selectCols []string
	newFn      func() T
}

func newJournalRepo[T any](
	txm *postgres.TxManager,
	tableName, entityName, timeCol string,
	selectCols []string,
	newFn func() T,
) *journalRepo[T] {
	return &journalRepo[T]{
		txm:        txm,
		tableName:  tableName,
		entityName: entityName,
		timeCol:    timeCol,
		selectCols: selectCols,
		newFn:      newFn,
	}
}

func (r *journalRepo[T]) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *journalRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(r.selectCols...).
		From(r.tableName)
}

// Create inserts a journal row.
func (r *journalRepo[T]) Create(ctx context.Context, entity T) error {
	data := postgres.StructToMap(entity)
	if len(data) == 0 {
		return fmt.Errorf("no db tags found in %s", r.entityName)
	}

	filtered := make(map[string]any, len(r.selectCols))
	for _, col := range r.selectCols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Insert(r.tableName).
		SetMap(filtered).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if tErr := postgres.TranslateError(err, r.entityName, filtered); tErr != err {
			return tErr
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// GetByID retrieves a journal row by ID.
func (r *journalRepo[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity := r.newFn()

	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"id": entityID}).
		Limit(1).
		ToSql()
	if err != nil {
		return entity, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), entity, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return entity, apperror.NewNotFound(r.entityName, entityID.String())
		}
		return entity, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

// inWindow restricts q to w. A zero bound does not filter.
func (r *journalRepo[T]) inWindow(q squirrel.SelectBuilder, w analytics.Window) squirrel.SelectBuilder {
	if !w.Start.IsZero() {
		q = q.Where(squirrel.GtOrEq{r.timeCol: w.Start})
	}
	if !w.End.IsZero() {
		q = q.Where(squirrel.Lt{r.timeCol: w.End})
	}
	return q
}

// newestFirst orders q by the journal timestamp descending.
func (r *journalRepo[T]) newestFirst(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.OrderBy(r.timeCol+" DESC", "number DESC")
}

func (r *journalRepo[T]) selectAll(ctx context.Context, q squirrel.SelectBuilder) ([]T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	items := []T{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	return items, nil
}
