// Package analytics reduces sale records into report statistics.
//
// All functions are pure: they read a snapshot of records and return fresh
// values. Calendar days are evaluated in the Aggregator's location.
package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/types"
)

// DisplayDateLayout renders dates in product stats (6/15/2024).
const DisplayDateLayout = "1/2/2006"

const dateOnlyLayout = "2006-01-02"

// Timestamps without a zone are read as wall-clock time in the location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	dateOnlyLayout,
}

// Entry is a record with its effective date resolved once.
type Entry struct {
	Record SaleRecord
	// At is the timestamp if present and parseable, else dateOfSale at local midnight.
	At time.Time
	// Dated is false when neither field parsed.
	Dated bool
}

// SalesStats summarizes a set of sales.
type SalesStats struct {
	TotalProducts      decimal.Decimal `json:"totalProducts"`
	TotalRevenue       decimal.Decimal `json:"totalRevenue"`
	UniqueProductCount int             `json:"uniqueProductCount"`
	SalesCount         int             `json:"salesCount"`
	AverageSaleValue   decimal.Decimal `json:"averageSaleValue"`
}

// ProductStat is the rollup of one product.
type ProductStat struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
	// Dates holds distinct display dates in first-seen order.
	Dates []string `json:"dates"`
}

// Summary re-reduces product stats for report headers.
type Summary struct {
	TotalProducts decimal.Decimal `json:"totalProducts"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

// Window is the half-open interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls in the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Aggregator computes statistics in one calendar location.
type Aggregator struct {
	loc *time.Location
}

// New creates an Aggregator. A nil location means time.Local.
func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{loc: loc}
}

// Location returns the calendar location.
func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// Ingest resolves the effective date of every record.
func (a *Aggregator) Ingest(records []SaleRecord) []Entry {
	entries := make([]Entry, len(records))
	for i, r := range records {
		at, ok := a.EffectiveDate(r)
		entries[i] = Entry{Record: r, At: at, Dated: ok}
	}
	return entries
}

// EffectiveDate prefers timestamp and falls back to dateOfSale.
func (a *Aggregator) EffectiveDate(r SaleRecord) (time.Time, bool) {
	if t, ok := a.parseTimestamp(r.Timestamp); ok {
		return t, true
	}
	if t, ok := a.ParseDate(r.DateOfSale); ok {
		return t, true
	}
	return time.Time{}, false
}

// ParseDate reads YYYY-MM-DD as local midnight, or any accepted timestamp.
func (a *Aggregator) ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, s, a.loc); err == nil {
		return t, true
	}
	return a.parseTimestamp(s)
}

func (a *Aggregator) parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.In(a.loc), true
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, a.loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay returns local midnight of t's calendar day.
func (a *Aggregator) StartOfDay(t time.Time) time.Time {
	t = t.In(a.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, a.loc)
}

// Window covers startDate 00:00 through the end of endDate's calendar day.
func (a *Aggregator) Window(startDate, endDate time.Time) Window {
	return Window{
		Start: a.StartOfDay(startDate),
		End:   a.StartOfDay(endDate).AddDate(0, 0, 1),
	}
}

// InWindow keeps dated entries inside w. Undated entries never match.
func InWindow(entries []Entry, w Window) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Dated && w.Contains(e.At) {
			out = append(out, e)
		}
	}
	return out
}

// CalculateStats summarizes the records dated within [startDate, endDate].
func (a *Aggregator) CalculateStats(records []SaleRecord, startDate, endDate time.Time) SalesStats {
	return StatsOf(InWindow(a.Ingest(records), a.Window(startDate, endDate)))
}

// FilterWindow returns the records dated within [startDate, endDate], in input order.
func (a *Aggregator) FilterWindow(records []SaleRecord, startDate, endDate time.Time) []SaleRecord {
	entries := InWindow(a.Ingest(records), a.Window(startDate, endDate))
	out := make([]SaleRecord, len(entries))
	for i, e := range entries {
		out[i] = e.Record
	}
	return out
}

// Today summarizes sales on now's calendar day.
func (a *Aggregator) Today(records []SaleRecord, now time.Time) SalesStats {
	return a.CalculateStats(records, now, now)
}

// MonthToDate summarizes sales from the first of now's month through today.
func (a *Aggregator) MonthToDate(records []SaleRecord, now time.Time) SalesStats {
	local := now.In(a.loc)
	first := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, a.loc)
	return a.CalculateStats(records, first, local)
}

// StatsOf reduces entries in one pass.
func StatsOf(entries []Entry) SalesStats {
	stats := SalesStats{
		TotalProducts:    decimal.Zero,
		TotalRevenue:     decimal.Zero,
		AverageSaleValue: decimal.Zero,
	}
	products := make(map[string]struct{})

	for _, e := range entries {
		stats.TotalProducts = stats.TotalProducts.Add(e.Record.Quantity)
		stats.TotalRevenue = stats.TotalRevenue.Add(e.Record.TotalPrice)
		products[groupKey(e.Record)] = struct{}{}
		stats.SalesCount++
	}

	stats.UniqueProductCount = len(products)
	stats.AverageSaleValue = types.SafeDiv(stats.TotalRevenue, decimal.NewFromInt(int64(stats.SalesCount)))
	return stats
}

// BuildProductStats groups all records by product, largest quantity first.
// Callers filter by window beforehand if needed.
func (a *Aggregator) BuildProductStats(records []SaleRecord) []ProductStat {
	return ProductStatsOf(a.Ingest(records))
}

// ProductStatsOf groups entries by productId, falling back to productName.
// Equal quantities keep their first-seen order.
func ProductStatsOf(entries []Entry) []ProductStat {
	index := make(map[string]int)
	seenDates := make(map[string]map[string]struct{})
	var stats []ProductStat

	for _, e := range entries {
		key := groupKey(e.Record)
		i, ok := index[key]
		if !ok {
			i = len(stats)
			index[key] = i
			seenDates[key] = make(map[string]struct{})
			stats = append(stats, ProductStat{
				ProductID:   e.Record.ProductID,
				ProductName: e.Record.ProductName,
				Quantity:    decimal.Zero,
				Total:       decimal.Zero,
				Dates:       []string{},
			})
		}

		ps := &stats[i]
		ps.Quantity = ps.Quantity.Add(e.Record.Quantity)
		ps.Total = ps.Total.Add(e.Record.TotalPrice)
		if ps.ProductName == "" {
			ps.ProductName = e.Record.ProductName
		}

		if e.Dated {
			d := e.At.Format(DisplayDateLayout)
			if _, dup := seenDates[key][d]; !dup {
				seenDates[key][d] = struct{}{}
				ps.Dates = append(ps.Dates, d)
			}
		}
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Quantity.GreaterThan(stats[j].Quantity)
	})
	return stats
}

// SummaryOf totals product stats.
func SummaryOf(stats []ProductStat) Summary {
	s := Summary{TotalProducts: decimal.Zero, TotalRevenue: decimal.Zero}
	for _, p := range stats {
		s.TotalProducts = s.TotalProducts.Add(p.Quantity)
		s.TotalRevenue = s.TotalRevenue.Add(p.Total)
	}
	return s
}

func groupKey(r SaleRecord) string {
	if id := strings.TrimSpace(r.ProductID); id != "" {
		return "id:" + id
	}
	return "name:" + r.ProductName
}
