package ledger

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/id"
	"retailpos/internal/core/numerator"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/catalogs/product"
)

// --- fakes ---

type fakeProducts struct {
	items map[id.ID]*product.Product
	locks int
}

func (f *fakeProducts) GetForUpdate(_ context.Context, pid id.ID) (*product.Product, error) {
	f.locks++
	p, ok := f.items[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid.String())
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) AdjustStock(_ context.Context, pid id.ID, delta decimal.Decimal) error {
	f.items[pid].Stock = f.items[pid].Stock.Add(delta)
	return nil
}

type fakeSales struct {
	items []*Sale
	last  SaleFilter
}

func (f *fakeSales) Create(_ context.Context, s *Sale) error {
	f.items = append(f.items, s)
	return nil
}

func (f *fakeSales) GetByID(_ context.Context, sid id.ID) (*Sale, error) {
	for _, s := range f.items {
		if s.ID == sid {
			return s, nil
		}
	}
	return nil, apperror.NewNotFound("sale", sid.String())
}

func (f *fakeSales) List(_ context.Context, filter SaleFilter) ([]*Sale, error) {
	f.last = filter
	var out []*Sale
	for _, s := range f.items {
		if filter.UniqueID != "" && s.UniqueID != filter.UniqueID {
			continue
		}
		if !filter.Window.Start.IsZero() && !filter.Window.Contains(s.SoldAt) {
			continue
		}
		if filter.SellerID != nil && (s.SellerID == nil || *s.SellerID != *filter.SellerID) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SoldAt.After(out[j].SoldAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type fakePurchases struct{ items []*Purchase }

func (f *fakePurchases) Create(_ context.Context, p *Purchase) error {
	f.items = append(f.items, p)
	return nil
}

func (f *fakePurchases) List(context.Context, analytics.Window) ([]*Purchase, error) {
	return f.items, nil
}

type fakeReturns struct{ items []*Return }

func (f *fakeReturns) Create(_ context.Context, r *Return) error {
	f.items = append(f.items, r)
	return nil
}

func (f *fakeReturns) List(context.Context, analytics.Window) ([]*Return, error) {
	return f.items, nil
}

func (f *fakeReturns) ReturnedQuantity(_ context.Context, saleID id.ID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range f.items {
		if r.SaleID != nil && *r.SaleID == saleID {
			sum = sum.Add(r.Quantity)
		}
	}
	return sum, nil
}

type countingTx struct{ calls int }

func (c *countingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls++
	return fn(ctx)
}

type fixture struct {
	svc       *Service
	products  *fakeProducts
	sales     *fakeSales
	purchases *fakePurchases
	returns   *fakeReturns
	tx        *countingTx
	clock     *time.Time
	camera    *product.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	camera := product.NewProduct("Camera", "CAM-1001")
	camera.UniqueID = "CAM-1001-A1"
	camera.Stock = decimal.NewFromInt(3)
	camera.SellPrice = decimal.RequireFromString("499.50")
	camera.PurchasePrice = decimal.RequireFromString("350")
	camera.WarrantyMonths = 12

	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)
	f := &fixture{
		products:  &fakeProducts{items: map[id.ID]*product.Product{camera.ID: camera}},
		sales:     &fakeSales{},
		purchases: &fakePurchases{},
		returns:   &fakeReturns{},
		tx:        &countingTx{},
		clock:     &now,
		camera:    camera,
	}
	f.svc = NewService(Config{
		Products:   f.products,
		Sales:      f.sales,
		Purchases:  f.purchases,
		Returns:    f.returns,
		Numerator:  &numerator.MockGenerator{},
		TxManager:  f.tx,
		Aggregator: analytics.New(time.UTC),
		Now:        func() time.Time { return *f.clock },
	})
	return f
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- tests ---

func TestRecordSale(t *testing.T) {
	f := newFixture(t)
	sellerID := id.New()
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: sellerID.String(), Role: appctx.RoleSeller})

	sale, err := f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("2"), CustomerName: "  Ann "})
	require.NoError(t, err)

	assert.Equal(t, "SL-2024-00001", sale.Number)
	assert.Equal(t, "CAM-1001-A1", sale.UniqueID)
	assert.True(t, qty("999").Equal(sale.TotalPrice))
	assert.Equal(t, "2024-06-15", sale.DateOfSale.Format("2006-01-02"))
	require.NotNil(t, sale.CustomerName)
	assert.Equal(t, "Ann", *sale.CustomerName)
	assert.Nil(t, sale.CustomerPhone)
	assert.Nil(t, sale.WarrantyEndDate)
	require.NotNil(t, sale.SellerID)
	assert.Equal(t, sellerID, *sale.SellerID)

	assert.True(t, qty("1").Equal(f.camera.Stock))
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, 1, f.products.locks)
}

func TestRecordSale_PriceOverride(t *testing.T) {
	f := newFixture(t)
	price := qty("450")

	sale, err := f.svc.RecordSale(context.Background(), SaleInput{ProductID: f.camera.ID, Quantity: qty("1"), SellPricePerUnit: &price})
	require.NoError(t, err)
	assert.True(t, qty("450").Equal(sale.TotalPrice))
}

func TestRecordSale_InsufficientStock(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordSale(context.Background(), SaleInput{ProductID: f.camera.ID, Quantity: qty("4")})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	assert.Equal(t, 422, apperror.GetHTTPStatus(err))

	assert.True(t, qty("3").Equal(f.camera.Stock), "stock must be untouched")
	assert.Empty(t, f.sales.items)
}

func TestRecordSale_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("0")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	neg := qty("-1")
	_, err = f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("1"), SellPricePerUnit: &neg})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	_, err = f.svc.RecordSale(ctx, SaleInput{ProductID: id.New(), Quantity: qty("1")})
	assert.True(t, apperror.IsNotFound(err))

	f.camera.DeletionMark = true
	_, err = f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("1")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordSaleWithWarranty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.RecordSaleWithWarranty(ctx, WarrantySaleInput{SaleInput: SaleInput{ProductID: f.camera.ID, Quantity: qty("1")}})
	require.NoError(t, err)
	require.NotNil(t, sale.WarrantyEndDate)
	assert.Equal(t, "2025-06-15", sale.WarrantyEndDate.Format("2006-01-02"))

	sale, err = f.svc.RecordSaleWithWarranty(ctx, WarrantySaleInput{SaleInput: SaleInput{ProductID: f.camera.ID, Quantity: qty("1")}, WarrantyMonths: 3})
	require.NoError(t, err)
	assert.Equal(t, "2024-09-15", sale.WarrantyEndDate.Format("2006-01-02"))

	f.camera.WarrantyMonths = 0
	_, err = f.svc.RecordSaleWithWarranty(ctx, WarrantySaleInput{SaleInput: SaleInput{ProductID: f.camera.ID, Quantity: qty("1")}})
	assert.True(t, apperror.HasCode(err, apperror.CodeBusinessRule))
	assert.True(t, qty("1").Equal(f.camera.Stock))
}

func TestWarrantyLookup_ExpiresDayAfterEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.svc.WarrantyLookup(ctx, "cam 1001 a1")
	require.NoError(t, err)
	assert.Equal(t, WarrantyNone, info.Status)
	assert.Nil(t, info.Sale)

	_, err = f.svc.RecordSaleWithWarranty(ctx, WarrantySaleInput{SaleInput: SaleInput{ProductID: f.camera.ID, Quantity: qty("1")}, WarrantyMonths: 1})
	require.NoError(t, err)

	*f.clock = time.Date(2024, 7, 15, 23, 59, 0, 0, time.UTC)
	info, err = f.svc.WarrantyLookup(ctx, "CAM-1001-A1")
	require.NoError(t, err)
	assert.Equal(t, WarrantyActive, info.Status)
	assert.Equal(t, 1, info.DaysLeft)
	require.NotNil(t, info.EndDate)
	assert.Equal(t, "2024-07-15", info.EndDate.Format("2006-01-02"))

	*f.clock = time.Date(2024, 7, 16, 0, 0, 1, 0, time.UTC)
	info, err = f.svc.WarrantyLookup(ctx, "CAM-1001-A1")
	require.NoError(t, err)
	assert.Equal(t, WarrantyExpired, info.Status)
	assert.Equal(t, 0, info.DaysLeft)
}

func TestWarrantyLookup_SaleWithoutWarranty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.RecordSale(context.Background(), SaleInput{ProductID: f.camera.ID, Quantity: qty("1")})
	require.NoError(t, err)

	info, err := f.svc.WarrantyLookup(context.Background(), "CAM-1001-A1")
	require.NoError(t, err)
	assert.Equal(t, WarrantyNone, info.Status)
	assert.NotNil(t, info.Sale)
	assert.Equal(t, 1, f.sales.last.Limit)
}

func TestRecordPurchase(t *testing.T) {
	f := newFixture(t)

	p, err := f.svc.RecordPurchase(context.Background(), PurchaseInput{ProductID: f.camera.ID, Quantity: qty("10"), SupplierName: "Foto GmbH"})
	require.NoError(t, err)
	assert.Equal(t, "PU-2024-00001", p.Number)
	assert.True(t, qty("3500").Equal(p.TotalPrice))
	assert.True(t, qty("13").Equal(f.camera.Stock))
}

func TestRecordReturn_AgainstSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sale, err := f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("2")})
	require.NoError(t, err)

	ret, err := f.svc.RecordReturn(ctx, ReturnInput{SaleID: &sale.ID, Quantity: qty("1"), Reason: "scratched"})
	require.NoError(t, err)
	assert.Equal(t, "RT-2024-00001", ret.Number)
	assert.True(t, qty("499.5").Equal(ret.RefundAmount))
	assert.True(t, qty("2").Equal(f.camera.Stock))

	_, err = f.svc.RecordReturn(ctx, ReturnInput{SaleID: &sale.ID, Quantity: qty("2")})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeReturnExceedsSale))

	_, err = f.svc.RecordReturn(ctx, ReturnInput{SaleID: &sale.ID, Quantity: qty("1")})
	require.NoError(t, err)
	assert.True(t, qty("3").Equal(f.camera.Stock))

	missing := id.New()
	_, err = f.svc.RecordReturn(ctx, ReturnInput{SaleID: &missing, Quantity: qty("1")})
	assert.True(t, apperror.IsNotFound(err))
}

func TestRecordReturn_WithoutSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	refund := qty("100")
	ret, err := f.svc.RecordReturn(ctx, ReturnInput{ProductID: f.camera.ID, Quantity: qty("1"), RefundAmount: &refund})
	require.NoError(t, err)
	assert.True(t, refund.Equal(ret.RefundAmount))
	assert.Nil(t, ret.SaleID)

	_, err = f.svc.RecordReturn(ctx, ReturnInput{Quantity: qty("1")})
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
}

func TestSoldProductsAndToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lens := product.NewProduct("Lens", "LNS-50")
	lens.UniqueID = "LNS-50-B2"
	lens.Stock = decimal.NewFromInt(10)
	lens.SellPrice = decimal.NewFromInt(100)
	f.products.items[lens.ID] = lens

	_, err := f.svc.RecordSale(ctx, SaleInput{ProductID: lens.ID, Quantity: qty("3")})
	require.NoError(t, err)

	*f.clock = f.clock.AddDate(0, 0, 1)
	_, err = f.svc.RecordSale(ctx, SaleInput{ProductID: f.camera.ID, Quantity: qty("1")})
	require.NoError(t, err)
	_, err = f.svc.RecordSale(ctx, SaleInput{ProductID: lens.ID, Quantity: qty("1")})
	require.NoError(t, err)

	today, err := f.svc.TodaySales(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stats, err := f.svc.SoldProducts(ctx, from, *f.clock, nil)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "Lens", stats[0].ProductName)
	assert.True(t, qty("4").Equal(stats[0].Quantity))
	assert.Equal(t, []string{"6/16/2024", "6/15/2024"}, stats[0].Dates)

	records, err := f.svc.SaleRecords(ctx, from, *f.clock, nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSaleRecord(t *testing.T) {
	end := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	name := "Ann"
	s := &Sale{
		ProductID:       id.MustParse("0190b0a0-0000-7000-8000-000000000001"),
		ProductName:     "Camera",
		Quantity:        qty("1"),
		TotalPrice:      qty("10"),
		DateOfSale:      time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		SoldAt:          time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		CustomerName:    &name,
		WarrantyEndDate: &end,
	}

	r := s.Record()
	assert.Equal(t, "0190b0a0-0000-7000-8000-000000000001", r.ProductID)
	assert.Equal(t, "2024-01-02", r.DateOfSale)
	assert.Equal(t, "2024-01-02T09:00:00Z", r.Timestamp)
	assert.Equal(t, "Ann", r.CustomerName)
	assert.Equal(t, "2025-01-02", r.WarrantyEndDate)
}
