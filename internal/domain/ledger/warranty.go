package ledger

import (
	"context"
	"fmt"
	"time"

	"retailpos/internal/domain/identifier"
)

// WarrantyLookup reports the warranty of the unit with uniqueID, based on its latest sale.
// The warranty is active through its end date and expired from the next day on.
func (s *Service) WarrantyLookup(ctx context.Context, uniqueID string) (WarrantyInfo, error) {
	formatted := identifier.FormatUniqueID(uniqueID)
	info := WarrantyInfo{UniqueID: formatted, Status: WarrantyNone}

	sales, err := s.sales.List(ctx, SaleFilter{UniqueID: formatted, Limit: 1})
	if err != nil {
		return info, fmt.Errorf("find sales of %s: %w", formatted, err)
	}
	if len(sales) == 0 {
		return info, nil
	}

	sale := sales[0]
	info.Sale = sale
	if sale.WarrantyEndDate == nil {
		return info, nil
	}

	end := civilDate(*sale.WarrantyEndDate)
	today := civilDate(s.now().In(s.agg.Location()))
	info.EndDate = sale.WarrantyEndDate

	if today.After(end) {
		info.Status = WarrantyExpired
		return info, nil
	}
	info.Status = WarrantyActive
	info.DaysLeft = int(end.Sub(today).Hours()/24) + 1
	return info, nil
}

// civilDate drops the clock and zone of t, keeping its own calendar date.
func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
