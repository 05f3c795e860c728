// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"retailpos/internal/domain/reports"
	"retailpos/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txm *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// stockValuationQuery groups live products with stock by category.
func (r *ReportRepo) stockValuationQuery() squirrel.SelectBuilder {
	return r.builder.
		Select(
			"p.category_id::text AS category_id",
			"COALESCE(c.name, '') AS category_name",
			"COUNT(*) AS product_count",
			"SUM(p.stock) AS units",
			"SUM(p.stock * p.purchase_price) AS cost_value",
			"SUM(p.stock * p.sell_price) AS retail_value",
		).
		From("cat_products p").
		LeftJoin("cat_categories c ON c.id = p.category_id").
		Where(squirrel.Eq{"p.deletion_mark": false}).
		Where(squirrel.Gt{"p.stock": 0}).
		GroupBy("p.category_id", "c.name").
		OrderBy("category_name")
}

// StockValuation values the stock on hand at purchase and sell prices.
func (r *ReportRepo) StockValuation(ctx context.Context) (*reports.StockValuation, error) {
	sql, args, err := r.stockValuationQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock valuation: %w", err)
	}

	rows := []reports.CategoryValuation{}
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock valuation: %w", err)
	}

	v := &reports.StockValuation{
		Units:       decimal.Zero,
		CostValue:   decimal.Zero,
		RetailValue: decimal.Zero,
		ByCategory:  rows,
	}
	for _, row := range rows {
		v.Units = v.Units.Add(row.Units)
		v.CostValue = v.CostValue.Add(row.CostValue)
		v.RetailValue = v.RetailValue.Add(row.RetailValue)
	}
	return v, nil
}

var _ reports.Repository = (*ReportRepo)(nil)
