// Package reports builds sales reports and the dashboard on top of the
// analytics aggregator.
package reports

import (
	"context"
	"fmt"
	"time"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/domain/analytics"
)

// Report limits.
const (
	DefaultTopProducts = 5
	MaxLowStockItems   = 20
	// MaxReportDays bounds a custom report window.
	MaxReportDays = 366
)

// Service provides report generation operations.
type Service struct {
	sales     SalesSource
	inventory InventorySource
	repo      Repository
	agg       *analytics.Aggregator
	now       func() time.Time
}

// NewService creates a new reports service.
// repo may be nil, in which case the dashboard omits the stock valuation.
func NewService(sales SalesSource, inventory InventorySource, repo Repository, agg *analytics.Aggregator) *Service {
	if agg == nil {
		agg = analytics.New(nil)
	}
	return &Service{
		sales:     sales,
		inventory: inventory,
		repo:      repo,
		agg:       agg,
		now:       time.Now,
	}
}

func (s *Service) checkRange(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return apperror.NewValidation("from and to are required")
	}
	start, end := s.agg.StartOfDay(from), s.agg.StartOfDay(to)
	if start.After(end) {
		return apperror.NewValidation("from must not be after to").
			WithDetail("from", start.Format(time.DateOnly)).
			WithDetail("to", end.Format(time.DateOnly))
	}
	if end.Sub(start) > MaxReportDays*24*time.Hour {
		return apperror.NewValidation(fmt.Sprintf("report window is limited to %d days", MaxReportDays))
	}
	return nil
}

// SalesStats summarizes sales dated from..to inclusive.
func (s *Service) SalesStats(ctx context.Context, from, to time.Time, sellerID *id.ID) (analytics.SalesStats, error) {
	if err := s.checkRange(from, to); err != nil {
		return analytics.SalesStats{}, err
	}

	records, err := s.sales.SaleRecords(ctx, from, to, sellerID)
	if err != nil {
		return analytics.SalesStats{}, fmt.Errorf("load sales: %w", err)
	}
	return s.agg.CalculateStats(records, from, to), nil
}

// ProductBreakdown groups sales dated from..to by product.
func (s *Service) ProductBreakdown(ctx context.Context, from, to time.Time, sellerID *id.ID) (*ProductBreakdown, error) {
	if err := s.checkRange(from, to); err != nil {
		return nil, err
	}

	records, err := s.sales.SaleRecords(ctx, from, to, sellerID)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	products := s.agg.BuildProductStats(s.agg.FilterWindow(records, from, to))
	return &ProductBreakdown{
		From:     s.agg.StartOfDay(from).Format(time.DateOnly),
		To:       s.agg.StartOfDay(to).Format(time.DateOnly),
		Products: products,
		Summary:  analytics.SummaryOf(products),
	}, nil
}

// Dashboard returns today and month-to-date figures.
// withInventory adds product counts, low stock and valuation for admins.
func (s *Service) Dashboard(ctx context.Context, sellerID *id.ID, withInventory bool) (*Dashboard, error) {
	now := s.now().In(s.agg.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.agg.Location())

	records, err := s.sales.SaleRecords(ctx, monthStart, now, sellerID)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	top := s.agg.BuildProductStats(s.agg.FilterWindow(records, monthStart, now))
	if len(top) > DefaultTopProducts {
		top = top[:DefaultTopProducts]
	}

	d := &Dashboard{
		Date:        now.Format(time.DateOnly),
		Today:       s.agg.Today(records, now),
		MonthToDate: s.agg.MonthToDate(records, now),
		TopProducts: top,
	}

	if withInventory {
		inv, err := s.inventoryOverview(ctx)
		if err != nil {
			return nil, err
		}
		d.Inventory = inv
	}
	return d, nil
}

func (s *Service) inventoryOverview(ctx context.Context) (*InventoryOverview, error) {
	count, err := s.inventory.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	low, err := s.inventory.LowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}

	inv := &InventoryOverview{
		ProductCount:  count,
		LowStockCount: len(low),
		LowStock:      make([]LowStockItem, 0, min(len(low), MaxLowStockItems)),
	}
	for i, p := range low {
		if i == MaxLowStockItems {
			break
		}
		inv.LowStock = append(inv.LowStock, LowStockItem{
			ID:       p.ID.String(),
			Name:     p.Name,
			UniqueID: p.UniqueID,
			Stock:    p.Stock,
			Unit:     p.Unit,
		})
	}

	if s.repo != nil {
		v, err := s.repo.StockValuation(ctx)
		if err != nil {
			return nil, fmt.Errorf("stock valuation: %w", err)
		}
		inv.Valuation = v
	}
	return inv, nil
}

// StockValuation values current stock by category.
func (s *Service) StockValuation(ctx context.Context) (*StockValuation, error) {
	if s.repo == nil {
		return nil, apperror.NewInternal(fmt.Errorf("stock valuation is not configured"))
	}
	v, err := s.repo.StockValuation(ctx)
	if err != nil {
		return nil, fmt.Errorf("stock valuation: %w", err)
	}
	return v, nil
}
