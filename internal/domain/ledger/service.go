package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"retailpos/internal/core/apperror"
	appctx "retailpos/internal/core/context"
	"retailpos/internal/core/id"
	"retailpos/internal/core/numerator"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/catalogs/product"
	"retailpos/pkg/logger"
)

// SaleInput describes a sale at the counter.
type SaleInput struct {
	ProductID id.ID
	Quantity  decimal.Decimal
	// SellPricePerUnit overrides the catalog price when set
	SellPricePerUnit *decimal.Decimal
	CustomerName     string
	CustomerPhone    string
}

// WarrantySaleInput is a sale that must carry a warranty.
type WarrantySaleInput struct {
	SaleInput
	// WarrantyMonths overrides the product default when > 0
	WarrantyMonths int
}

// PurchaseInput describes received stock.
type PurchaseInput struct {
	ProductID id.ID
	Quantity  decimal.Decimal
	// PurchasePricePerUnit overrides the catalog purchase price when set
	PurchasePricePerUnit *decimal.Decimal
	SupplierName         string
}

// ReturnInput describes a customer return. Either SaleID or ProductID is required.
type ReturnInput struct {
	SaleID    *id.ID
	ProductID id.ID
	Quantity  decimal.Decimal
	// RefundAmount defaults to quantity times the sale (or catalog) price
	RefundAmount *decimal.Decimal
	Reason       string
}

// Config wires the ledger service.
type Config struct {
	Products   ProductStore
	Sales      SaleRepository
	Purchases  PurchaseRepository
	Returns    ReturnRepository
	Numerator  numerator.Generator
	TxManager  tx.Manager
	Aggregator *analytics.Aggregator
	// Now defaults to time.Now
	Now func() time.Time
}

// Service provides the ledger operations.
type Service struct {
	products  ProductStore
	sales     SaleRepository
	purchases PurchaseRepository
	returns   ReturnRepository
	numerator numerator.Generator
	txManager tx.Manager
	agg       *analytics.Aggregator
	now       func() time.Time
}

// NewService creates a new ledger service.
func NewService(cfg Config) *Service {
	s := &Service{
		products:  cfg.Products,
		sales:     cfg.Sales,
		purchases: cfg.Purchases,
		returns:   cfg.Returns,
		numerator: cfg.Numerator,
		txManager: cfg.TxManager,
		agg:       cfg.Aggregator,
		now:       cfg.Now,
	}
	if s.txManager == nil {
		s.txManager = tx.Direct{}
	}
	if s.agg == nil {
		s.agg = analytics.New(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Aggregator returns the calendar the ledger uses for date windows.
func (s *Service) Aggregator() *analytics.Aggregator {
	return s.agg
}

// RecordSale books a sale and decrements stock.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*Sale, error) {
	return s.recordSale(ctx, in, 0, false)
}

// RecordSaleWithWarranty books a sale whose warranty ends WarrantyMonths
// (or the product default) after the sale date.
func (s *Service) RecordSaleWithWarranty(ctx context.Context, in WarrantySaleInput) (*Sale, error) {
	if in.WarrantyMonths < 0 || in.WarrantyMonths > product.MaxWarrantyMonths {
		return nil, apperror.NewValidation("warranty months out of range").
			WithDetail("field", "warrantyMonths")
	}
	return s.recordSale(ctx, in.SaleInput, in.WarrantyMonths, true)
}

func (s *Service) recordSale(ctx context.Context, in SaleInput, warrantyMonths int, withWarranty bool) (*Sale, error) {
	if err := requirePositive(in.Quantity, "quantity"); err != nil {
		return nil, err
	}
	if in.SellPricePerUnit != nil && in.SellPricePerUnit.IsNegative() {
		return nil, apperror.NewValidation("sell price cannot be negative").
			WithDetail("field", "sellPricePerUnit")
	}

	now := s.now()
	var sale *Sale

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p.Stock.LessThan(in.Quantity) {
			return apperror.NewInsufficientStock(p.UniqueID, in.Quantity.String(), p.Stock.String())
		}

		price := p.SellPrice
		if in.SellPricePerUnit != nil {
			price = *in.SellPricePerUnit
		}

		sale = &Sale{
			ID:               id.New(),
			ProductID:        p.ID,
			ProductName:      p.Name,
			CommonID:         p.CommonID,
			UniqueID:         p.UniqueID,
			Quantity:         in.Quantity,
			SellPricePerUnit: price,
			TotalPrice:       in.Quantity.Mul(price),
			Unit:             p.Unit,
			DateOfSale:       s.agg.StartOfDay(now),
			SoldAt:           now,
			CustomerName:     optional(in.CustomerName),
			CustomerPhone:    optional(in.CustomerPhone),
			SellerID:         currentUserID(ctx),
		}

		if withWarranty {
			months := warrantyMonths
			if months == 0 {
				months = p.WarrantyMonths
			}
			if months <= 0 {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule, "product has no warranty period").
					WithDetail("productId", p.ID.String())
			}
			end := sale.DateOfSale.AddDate(0, months, 0)
			sale.WarrantyEndDate = &end
		}

		sale.Number, err = s.numerator.Next(ctx, numerator.PrefixSale, now)
		if err != nil {
			return fmt.Errorf("generate sale number: %w", err)
		}
		if err := s.sales.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}
		if err := s.products.AdjustStock(ctx, p.ID, in.Quantity.Neg()); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale recorded", "number", sale.Number, "unique_id", sale.UniqueID, "total", sale.TotalPrice.String())
	return sale, nil
}

// RecordPurchase books received stock and increments it.
func (s *Service) RecordPurchase(ctx context.Context, in PurchaseInput) (*Purchase, error) {
	if err := requirePositive(in.Quantity, "quantity"); err != nil {
		return nil, err
	}
	if in.PurchasePricePerUnit != nil && in.PurchasePricePerUnit.IsNegative() {
		return nil, apperror.NewValidation("purchase price cannot be negative").
			WithDetail("field", "purchasePricePerUnit")
	}

	now := s.now()
	var purchase *Purchase

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.lockProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		price := p.PurchasePrice
		if in.PurchasePricePerUnit != nil {
			price = *in.PurchasePricePerUnit
		}

		purchase = &Purchase{
			ID:                   id.New(),
			ProductID:            p.ID,
			ProductName:          p.Name,
			Quantity:             in.Quantity,
			PurchasePricePerUnit: price,
			TotalPrice:           in.Quantity.Mul(price),
			Unit:                 p.Unit,
			SupplierName:         optional(in.SupplierName),
			DateOfPurchase:       s.agg.StartOfDay(now),
			PurchasedAt:          now,
			CreatedBy:            currentUserID(ctx),
		}

		purchase.Number, err = s.numerator.Next(ctx, numerator.PrefixPurchase, now)
		if err != nil {
			return fmt.Errorf("generate purchase number: %w", err)
		}
		if err := s.purchases.Create(ctx, purchase); err != nil {
			return fmt.Errorf("create purchase: %w", err)
		}
		if err := s.products.AdjustStock(ctx, p.ID, in.Quantity); err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "purchase recorded", "number", purchase.Number, "product_id", purchase.ProductID)
	return purchase, nil
}

// RecordReturn books a return and puts the quantity back in stock.
// A return linked to a sale may not exceed what is left of that sale.
func (s *Service) RecordReturn(ctx context.Context, in ReturnInput) (*Return, error) {
	if err := requirePositive(in.Quantity, "quantity"); err != nil {
		return nil, err
	}
	if in.SaleID == nil && id.IsNil(in.ProductID) {
		return nil, apperror.NewValidation("saleId or productId is required").
			WithDetail("field", "productId")
	}
	if in.RefundAmount != nil && in.RefundAmount.IsNegative() {
		return nil, apperror.NewValidation("refund amount cannot be negative").
			WithDetail("field", "refundAmount")
	}

	now := s.now()
	var ret *Return

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		productID := in.ProductID
		var unitPrice *decimal.Decimal

		if in.SaleID != nil {
			sale, err := s.sales.GetByID(ctx, *in.SaleID)
			if err != nil {
				if apperror.IsNotFound(err) {
					return apperror.NewNotFound("sale", in.SaleID.String())
				}
				return fmt.Errorf("get sale: %w", err)
			}
			returned, err := s.returns.ReturnedQuantity(ctx, sale.ID)
			if err != nil {
				return fmt.Errorf("returned quantity: %w", err)
			}
			remaining := sale.Quantity.Sub(returned)
			if in.Quantity.GreaterThan(remaining) {
				return apperror.NewBusinessRule(apperror.CodeReturnExceedsSale, "return exceeds the quantity left on the sale").
					WithDetail("saleId", sale.ID.String()).
					WithDetail("requested", in.Quantity.String()).
					WithDetail("remaining", remaining.String())
			}
			productID = sale.ProductID
			unitPrice = &sale.SellPricePerUnit
		}

		p, err := s.products.GetForUpdate(ctx, productID)
		if err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewNotFound("product", productID.String())
			}
			return fmt.Errorf("lock product: %w", err)
		}
		if unitPrice == nil {
			unitPrice = &p.SellPrice
		}

		refund := in.Quantity.Mul(*unitPrice)
		if in.RefundAmount != nil {
			refund = *in.RefundAmount
		}

		ret = &Return{
			ID:           id.New(),
			SaleID:       in.SaleID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			UniqueID:     p.UniqueID,
			Quantity:     in.Quantity,
			RefundAmount: refund,
			Reason:       optional(in.Reason),
			DateOfReturn: s.agg.StartOfDay(now),
			ReturnedAt:   now,
			CreatedBy:    currentUserID(ctx),
		}

		ret.Number, err = s.numerator.Next(ctx, numerator.PrefixReturn, now)
		if err != nil {
			return fmt.Errorf("generate return number: %w", err)
		}
		if err := s.returns.Create(ctx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}
		if err := s.products.AdjustStock(ctx, p.ID, in.Quantity); err != nil {
			return fmt.Errorf("increment stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "return recorded", "number", ret.Number, "unique_id", ret.UniqueID)
	return ret, nil
}

// lockProduct loads a live product with a row lock.
func (s *Service) lockProduct(ctx context.Context, productID id.ID) (*product.Product, error) {
	p, err := s.products.GetForUpdate(ctx, productID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("product", productID.String())
		}
		return nil, fmt.Errorf("lock product: %w", err)
	}
	if p.DeletionMark {
		return nil, apperror.NewNotFound("product", productID.String())
	}
	return p, nil
}

// --- Queries ---

// ListSales returns sales dated from..to inclusive, newest first.
// A non-nil sellerID restricts the list to one seller.
func (s *Service) ListSales(ctx context.Context, from, to time.Time, sellerID *id.ID) ([]*Sale, error) {
	sales, err := s.sales.List(ctx, SaleFilter{Window: s.agg.Window(from, to), SellerID: sellerID})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// TodaySales returns today's sales.
func (s *Service) TodaySales(ctx context.Context, sellerID *id.ID) ([]*Sale, error) {
	now := s.now()
	return s.ListSales(ctx, now, now, sellerID)
}

// SoldProducts rolls sales from..to up per product, best sellers first.
func (s *Service) SoldProducts(ctx context.Context, from, to time.Time, sellerID *id.ID) ([]analytics.ProductStat, error) {
	sales, err := s.ListSales(ctx, from, to, sellerID)
	if err != nil {
		return nil, err
	}
	return s.agg.BuildProductStats(Records(sales)), nil
}

// SaleRecords returns sales from..to in aggregator form.
func (s *Service) SaleRecords(ctx context.Context, from, to time.Time, sellerID *id.ID) ([]analytics.SaleRecord, error) {
	sales, err := s.ListSales(ctx, from, to, sellerID)
	if err != nil {
		return nil, err
	}
	return Records(sales), nil
}

// ListPurchases returns purchases dated from..to inclusive.
func (s *Service) ListPurchases(ctx context.Context, from, to time.Time) ([]*Purchase, error) {
	purchases, err := s.purchases.List(ctx, s.agg.Window(from, to))
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	return purchases, nil
}

// ListReturns returns returns dated from..to inclusive.
func (s *Service) ListReturns(ctx context.Context, from, to time.Time) ([]*Return, error) {
	returns, err := s.returns.List(ctx, s.agg.Window(from, to))
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return returns, nil
}

// --- Helpers ---

func requirePositive(v decimal.Decimal, field string) error {
	if !v.IsPositive() {
		return apperror.NewValidation(field+" must be positive").
			WithDetail("field", field)
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func currentUserID(ctx context.Context) *id.ID {
	raw := appctx.GetUserID(ctx)
	if raw == "" {
		return nil
	}
	uid, err := id.Parse(raw)
	if err != nil {
		return nil
	}
	return &uid
}
