package brand

import (
	"context"
	"fmt"

	"retailpos/internal/core/tx"
	"retailpos/internal/domain"
)

// Service provides business logic for brands.
// Brand names are not unique in storage; pickers use ListDistinct.
type Service struct {
	*domain.CatalogService[*Brand]
	repo Repository
}

// NewService creates a new brand service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Brand]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "brand",
	})
	return &Service{CatalogService: base, repo: repo}
}

// ListDistinct returns live brands with case-insensitive duplicate names removed.
func (s *Service) ListDistinct(ctx context.Context) ([]*Brand, error) {
	brands, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	return DedupeByName(brands), nil
}
