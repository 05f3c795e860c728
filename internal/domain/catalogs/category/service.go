package category

import (
	"context"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/tx"
	"retailpos/internal/domain"
)

// Service provides business logic for categories.
type Service struct {
	*domain.CatalogService[*Category]
	repo Repository
}

// NewService creates a new category service.
func NewService(repo Repository, txm tx.Manager) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
		Repo:       repo,
		TxManager:  txm,
		EntityName: "category",
	})

	svc := &Service{CatalogService: base, repo: repo}
	base.Guard(svc.checkNameUnique)
	return svc
}

// checkNameUnique rejects a name already used by another live category.
func (s *Service) checkNameUnique(ctx context.Context, op domain.Op, c *Category) error {
	if op == domain.OpDelete {
		return nil
	}
	existing, err := s.repo.FindByName(ctx, c.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID && !existing.DeletionMark {
		return apperror.NewDuplicate("category", "name", c.Name)
	}
	return nil
}
