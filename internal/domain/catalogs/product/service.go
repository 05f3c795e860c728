package product

import (
	"context"
	"errors"
	"fmt"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/id"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain"
	"retailpos/internal/domain/identifier"
)

// MaxUnitsPerBatch bounds CreateUnits and GenerateIDs.
const MaxUnitsPerBatch = 100

// Service provides business logic for products.
// Each call builds its own identifier.Manager from the stored unique ids;
// the partial UNIQUE index on unique_id settles races between requests.
type Service struct {
	*domain.CatalogService[*Product]
	repo     Repository
	lowStock *LowStockRule
	idOpts   []identifier.Option
}

// Option configures the product service.
type Option func(*Service)

// WithLowStockRule replaces the default low-stock rule.
func WithLowStockRule(rule *LowStockRule) Option {
	return func(s *Service) {
		if rule != nil {
			s.lowStock = rule
		}
	}
}

// WithIdentifierOptions passes options to every identifier.Manager the service builds.
func WithIdentifierOptions(opts ...identifier.Option) Option {
	return func(s *Service) { s.idOpts = append(s.idOpts, opts...) }
}

// NewService creates a new product service.
func NewService(repo Repository, txm tx.Manager, opts ...Option) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		lowStock:       MustDefaultLowStockRule(),
	}
	for _, opt := range opts {
		opt(svc)
	}

	base.Guard(svc.prepareUniqueID)
	return svc
}

// prepareUniqueID assigns or checks the unique id before a product is stored.
func (s *Service) prepareUniqueID(ctx context.Context, op domain.Op, p *Product) error {
	switch op {
	case domain.OpCreate:
		return s.prepareForCreate(ctx, p)
	case domain.OpUpdate:
		return s.prepareForUpdate(ctx, p)
	}
	return nil
}

// identifiers builds a Manager seeded with the unique ids in storage.
func (s *Service) identifiers(ctx context.Context) (*identifier.Manager, error) {
	ids, err := s.repo.ListUniqueIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load unique ids: %w", err)
	}
	return identifier.NewManager(identifier.NewUsedIDs(ids...), s.idOpts...), nil
}

// prepareForCreate generates or validates the unique id.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	ids, err := s.identifiers(ctx)
	if err != nil {
		return err
	}
	return assignUniqueID(ids, p, "")
}

// prepareForUpdate validates the unique id against the stored value.
func (s *Service) prepareForUpdate(ctx context.Context, p *Product) error {
	stored, err := s.repo.GetForUpdate(ctx, p.ID)
	if err != nil {
		return s.NormalizeGetErr(err, p.ID.String())
	}
	if p.UniqueID == "" {
		p.UniqueID = stored.UniqueID
	}

	ids, err := s.identifiers(ctx)
	if err != nil {
		return err
	}
	return assignUniqueID(ids, p, stored.UniqueID)
}

// assignUniqueID fills an empty unique id or checks the given one.
func assignUniqueID(ids *identifier.Manager, p *Product, previous string) error {
	if p.UniqueID == "" {
		generated, err := ids.GenerateUniqueID(p.CommonID)
		if err != nil {
			return mapGenerateErr(err, p.CommonID, ids.MaxAttempts())
		}
		p.UniqueID = generated
		return nil
	}

	p.UniqueID = identifier.FormatUniqueID(p.UniqueID)
	if r := ids.ValidateUniqueIDFor(p.CommonID, p.UniqueID, previous); !r.Valid {
		if ids.Used().Has(p.UniqueID) {
			return apperror.NewDuplicate("product", "uniqueId", p.UniqueID)
		}
		return apperror.NewValidation(r.Message).
			WithDetail("field", "uniqueId")
	}
	return nil
}

func mapGenerateErr(err error, commonID string, attempts int) error {
	switch {
	case errors.Is(err, identifier.ErrGenerationExhausted):
		return apperror.NewIDGenerationExhausted(commonID, attempts).WithCause(err)
	case errors.Is(err, identifier.ErrInvalidCommonID):
		return apperror.NewValidation(err.Error()).WithDetail("field", "commonId")
	default:
		return apperror.NewInternal(err)
	}
}

// GetByUniqueID retrieves a live product by unique id in any formatting.
func (s *Service) GetByUniqueID(ctx context.Context, uniqueID string) (*Product, error) {
	formatted := identifier.FormatUniqueID(uniqueID)
	p, err := s.repo.FindByUniqueID(ctx, formatted)
	if err != nil {
		return nil, s.NormalizeGetErr(err, formatted)
	}
	return p, nil
}

// CreateUnits creates count units of one catalog item in a single transaction.
// Each unit gets a fresh unique id; template.UniqueID is ignored.
func (s *Service) CreateUnits(ctx context.Context, template *Product, count int) ([]*Product, error) {
	if count < 1 || count > MaxUnitsPerBatch {
		return nil, apperror.NewValidation(fmt.Sprintf("count must be between 1 and %d", MaxUnitsPerBatch)).
			WithDetail("field", "count")
	}
	template.UniqueID = ""
	if err := template.Validate(ctx); err != nil {
		return nil, err
	}

	units := make([]*Product, 0, count)
	err := s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		ids, err := s.identifiers(ctx)
		if err != nil {
			return err
		}

		for i := 0; i < count; i++ {
			unit := template.CloneUnit()
			if err := assignUniqueID(ids, unit, ""); err != nil {
				return err
			}
			ids.AddUsedUniqueID(unit.UniqueID)

			if err := s.repo.Create(ctx, unit); err != nil {
				return fmt.Errorf("create product unit %d: %w", i+1, err)
			}
			units = append(units, unit)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return units, nil
}

// GenerateIDs proposes count distinct free unique ids for commonID.
// Nothing is reserved; a concurrent create may still take one of them.
func (s *Service) GenerateIDs(ctx context.Context, commonID string, count int) ([]string, error) {
	if count < 1 || count > MaxUnitsPerBatch {
		return nil, apperror.NewValidation(fmt.Sprintf("count must be between 1 and %d", MaxUnitsPerBatch)).
			WithDetail("field", "count")
	}

	ids, err := s.identifiers(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, count)
	for i := 0; i < count; i++ {
		generated, err := ids.GenerateUniqueID(commonID)
		if err != nil {
			return nil, mapGenerateErr(err, identifier.FormatCommonID(commonID), ids.MaxAttempts())
		}
		ids.AddUsedUniqueID(generated)
		out = append(out, generated)
	}
	return out, nil
}

// CheckRequest asks for inline feedback on identifiers being typed.
type CheckRequest struct {
	CommonID string
	UniqueID string
	// Previous is the stored unique id when editing
	Previous string
}

// CheckResult is the per-field validation outcome with formatted values.
type CheckResult struct {
	CommonID          identifier.Result  `json:"commonId"`
	UniqueID          *identifier.Result `json:"uniqueId,omitempty"`
	FormattedCommonID string             `json:"formattedCommonId"`
	FormattedUniqueID string             `json:"formattedUniqueId,omitempty"`
}

// CheckIDs validates the identifiers without saving anything.
func (s *Service) CheckIDs(ctx context.Context, req CheckRequest) (CheckResult, error) {
	res := CheckResult{
		CommonID:          identifier.ValidateCommonID(req.CommonID),
		FormattedCommonID: identifier.FormatCommonID(req.CommonID),
	}
	if req.UniqueID == "" {
		return res, nil
	}

	ids, err := s.identifiers(ctx)
	if err != nil {
		return res, err
	}

	var r identifier.Result
	if res.CommonID.Valid {
		r = ids.ValidateUniqueIDFor(req.CommonID, req.UniqueID, req.Previous)
	} else {
		r = ids.ValidateUniqueID(req.UniqueID, req.Previous)
	}
	res.UniqueID = &r
	res.FormattedUniqueID = identifier.FormatUniqueID(req.UniqueID)
	return res, nil
}

// LowStock returns live products matching the low-stock rule.
func (s *Service) LowStock(ctx context.Context) ([]*Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]*Product, 0)
	for _, p := range products {
		matched, err := s.lowStock.Match(p)
		if err != nil {
			return nil, apperror.NewInternal(err).WithDetail("productId", p.ID.String())
		}
		if matched {
			out = append(out, p)
		}
	}
	return out, nil
}

// LowStockRule returns the active rule.
func (s *Service) LowStockRule() *LowStockRule {
	return s.lowStock
}

// CountActive returns the number of live products.
func (s *Service) CountActive(ctx context.Context) (int64, error) {
	res, err := s.repo.List(ctx, domain.ListFilter{Limit: 1})
	if err != nil {
		return 0, err
	}
	return res.TotalCount, nil
}

// Restore clears the deletion mark. The unique id may have been reused meanwhile.
func (s *Service) Restore(ctx context.Context, productID id.ID) error {
	return s.TxManager().RunInTransaction(ctx, func(ctx context.Context) error {
		p, err := s.repo.GetByID(ctx, productID)
		if err != nil {
			return s.NormalizeGetErr(err, productID.String())
		}
		if !p.DeletionMark {
			return nil
		}
		ids, err := s.identifiers(ctx)
		if err != nil {
			return err
		}
		if ids.Used().Has(p.UniqueID) {
			return apperror.NewDuplicate("product", "uniqueId", p.UniqueID)
		}
		return s.repo.SetDeletionMark(ctx, productID, false)
	})
}
