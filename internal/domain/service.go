package domain

import (
	"context"
	"fmt"

	"retailpos/internal/core/apperror"
	"retailpos/internal/core/entity"
	"retailpos/internal/core/id"
	"retailpos/internal/core/tx"
	"retailpos/pkg/logger"
)

// CatalogService is the CRUD service embedded by the category, brand and
// product services. Entity-specific rules plug in as guards.
type CatalogService[T entity.Validatable] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	guards     []Guard[T]
	entityName string
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T entity.Validatable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewCatalogService creates a new catalog service.
// A nil TxManager runs operations without a transaction.
func NewCatalogService[T entity.Validatable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	txm := cfg.TxManager
	if txm == nil {
		txm = tx.Direct{}
	}
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  txm,
		entityName: cfg.EntityName,
	}
}

// Guard appends g to the guards run before every write, in order.
func (s *CatalogService[T]) Guard(g Guard[T]) {
	s.guards = append(s.guards, g)
}

// TxManager exposes the transaction manager to embedding services.
func (s *CatalogService[T]) TxManager() tx.Manager {
	return s.txManager
}

// EntityName returns the name used in errors.
func (s *CatalogService[T]) EntityName() string {
	return s.entityName
}

// NormalizeGetErr maps a repository read error to a not-found or internal AppError.
func (s *CatalogService[T]) NormalizeGetErr(err error, key any) error {
	if err == nil {
		return nil
	}
	if apperror.IsNotFound(err) {
		return apperror.NewNotFound(s.entityName, key)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err).WithDetail("entity", s.entityName).WithDetail("id", key)
}

// write validates e, then runs the guards and store inside one transaction.
func (s *CatalogService[T]) write(ctx context.Context, op Op, e T, store func(ctx context.Context) error) error {
	if op != OpDelete {
		if err := e.Validate(ctx); err != nil {
			if apperror.IsAppError(err) {
				return err
			}
			return apperror.NewValidation(err.Error())
		}
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		for _, g := range s.guards {
			if err := g(ctx, op, e); err != nil {
				return err
			}
		}
		if err := store(ctx); err != nil {
			return fmt.Errorf("%s %s: %w", op, s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Debug(ctx, "catalog write", "entity", s.entityName, "op", op.String())
	return nil
}

// Create validates entity and inserts it.
func (s *CatalogService[T]) Create(ctx context.Context, e T) error {
	return s.write(ctx, OpCreate, e, func(ctx context.Context) error {
		return s.repo.Create(ctx, e)
	})
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return e, s.NormalizeGetErr(err, entityID.String())
	}
	return e, nil
}

// Update validates entity and saves it with optimistic locking.
func (s *CatalogService[T]) Update(ctx context.Context, e T) error {
	return s.write(ctx, OpUpdate, e, func(ctx context.Context) error {
		return s.repo.Update(ctx, e)
	})
}

// Delete sets the deletion mark. Rows are never removed.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	e, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		return s.NormalizeGetErr(err, entityID.String())
	}
	return s.write(ctx, OpDelete, e, func(ctx context.Context) error {
		return s.repo.SetDeletionMark(ctx, entityID, true)
	})
}

// List returns one page of entities.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	return s.repo.List(ctx, filter.Normalize())
}
