// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"retailpos/internal/config"
	"retailpos/internal/core/apperror"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/catalogs/brand"
	"retailpos/internal/domain/catalogs/category"
	"retailpos/internal/domain/catalogs/product"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/internal/infrastructure/storage/postgres/auth_repo"
	"retailpos/internal/infrastructure/storage/postgres/catalog_repo"
	"retailpos/pkg/logger"
)

// DefaultCategories are created on every run; existing names are kept.
var DefaultCategories = []string{"Cameras", "Lenses", "Accessories", "Phones", "Audio"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.PoolConfigFrom(cfg.Postgres, cfg.App.Name+"-seed"))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")
	txm := postgres.NewTxManager(pool)

	if err := seedAdminUser(ctx, txm, cfg, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	categories := category.NewService(catalog_repo.NewCategoryRepo(txm), txm)
	if err := seedCategories(ctx, categories, DefaultCategories, log); err != nil {
		log.Fatalw("failed to seed categories", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		brands := brand.NewService(catalog_repo.NewBrandRepo(txm), txm)
		products := product.NewService(catalog_repo.NewProductRepo(txm), txm)
		if err := seedDemoData(ctx, brands, products, log); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, txm *postgres.TxManager, cfg *config.Config, log *logger.Logger) error {
	if cfg.Admin.Password == "" {
		return fmt.Errorf("admin.password (ADMIN_PASSWORD) is required")
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.Auth.JWTSecret))
	svc := auth.NewService(auth_repo.NewUserRepo(txm), txm, jwtService, auth.DefaultServiceConfig())

	admin, err := svc.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name)
	if err != nil {
		return err
	}
	if admin == nil {
		log.Infow("admin user already exists, skipping")
		return nil
	}
	log.Infow("admin user created", "email", admin.Email, "user_id", admin.ID)
	return nil
}

type categoryCreator interface {
	Create(ctx context.Context, c *category.Category) error
}

func seedCategories(ctx context.Context, svc categoryCreator, names []string, log *logger.Logger) error {
	for _, name := range names {
		err := svc.Create(ctx, category.NewCategory(name))
		switch {
		case err == nil:
			log.Infow("category created", "name", name)
		case apperror.HasCode(err, apperror.CodeDuplicate):
			log.Debugw("category exists", "name", name)
		default:
			return fmt.Errorf("create category %q: %w", name, err)
		}
	}
	return nil
}

func seedDemoData(ctx context.Context, brands *brand.Service, products *product.Service, log *logger.Logger) error {
	log.Info("seeding demo data...")

	canon := brand.NewBrand("Canon")
	if err := brands.Create(ctx, canon); err != nil {
		return fmt.Errorf("create brand: %w", err)
	}

	items := []struct {
		name     string
		commonID string
		units    int
		buy      string
		sell     string
		warranty int
	}{
		{"EOS R50 body", "CAM-1001", 3, "520.00", "679.00", 24},
		{"RF 50mm f/1.8", "LNS-2001", 5, "140.00", "199.00", 12},
		{"LP-E17 battery", "ACC-3001", 10, "35.00", "59.00", 6},
	}

	for _, it := range items {
		tmpl := product.NewProduct(it.name, it.commonID)
		tmpl.BrandID = &canon.ID
		tmpl.PurchasePrice = decimal.RequireFromString(it.buy)
		tmpl.SellPrice = decimal.RequireFromString(it.sell)
		tmpl.Stock = decimal.NewFromInt(1)
		tmpl.WarrantyMonths = it.warranty

		created, err := products.CreateUnits(ctx, tmpl, it.units)
		if err != nil {
			return fmt.Errorf("create %s units: %w", it.commonID, err)
		}
		log.Infow("demo units created", "common_id", it.commonID, "count", len(created))
	}

	log.Info("demo data seeded successfully")
	return nil
}
