package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"retailpos/internal/core/numerator"
	"retailpos/internal/domain/analytics"
	"retailpos/internal/domain/auth"
	"retailpos/internal/domain/catalogs/brand"
	"retailpos/internal/domain/catalogs/category"
	"retailpos/internal/domain/catalogs/product"
	"retailpos/internal/domain/ledger"
	"retailpos/internal/domain/reports"
	"retailpos/internal/infrastructure/http/v1/dto"
	"retailpos/internal/infrastructure/http/v1/handlers"
	"retailpos/internal/infrastructure/http/v1/middleware"
	"retailpos/internal/infrastructure/label"
	"retailpos/internal/infrastructure/storage/postgres"
	"retailpos/internal/infrastructure/storage/postgres/catalog_repo"
	"retailpos/internal/infrastructure/storage/postgres/ledger_repo"
	"retailpos/internal/infrastructure/storage/postgres/report_repo"
	"retailpos/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// TxManager gives every repository its querier
	TxManager *postgres.TxManager

	// DB is pinged by the readiness probe
	DB handlers.Pinger

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints
	AuthService *auth.Service

	// Numerator for sale, purchase and return numbers
	Numerator numerator.Generator

	// Calendar fixes the shop time zone for date windows
	Calendar *analytics.Aggregator

	// LowStockRule overrides the default stock <= 5 rule
	LowStockRule *product.LowStockRule

	// Labels renders product QR labels
	Labels *label.Generator

	// IdempotencyTTL keeps X-Idempotency-Key results; 0 disables the middleware
	IdempotencyTTL time.Duration

	// Version is reported by the liveness probe
	Version string

	// Mode is the gin mode, release by default
	Mode string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	if err := dto.RegisterValidators(); err != nil {
		return nil, err
	}
	if cfg.Calendar == nil {
		cfg.Calendar = analytics.New(nil)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler(cfg.Calendar)

	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, base, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))
		if cfg.IdempotencyTTL > 0 {
			protected.Use(middleware.Idempotency(postgres.NewIdempotencyStore(cfg.TxManager, cfg.IdempotencyTTL)))
		}

		products := registerCatalogRoutes(protected, base, cfg)
		ledgerService := registerLedgerRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg, ledgerService, products)
	}

	return router, nil
}

// registerAuthRoutes registers authentication and staff endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.AuthService)

	rg.POST("/auth/login", h.Login)

	authed := rg.Group("")
	authed.Use(middleware.Auth(cfg.JWTValidator))
	authed.GET("/auth/me", h.Me)

	users := authed.Group("/users", middleware.RequireAdmin())
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.PUT("/:id/active", h.SetActive)
}

// registerCatalogRoutes registers category, brand and product endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) *product.Service {
	catalogs := rg.Group("/catalog")

	categoryService := category.NewService(catalog_repo.NewCategoryRepo(cfg.TxManager), cfg.TxManager)
	RegisterCatalogRoutes(catalogs.Group("/categories"), handlers.NewCategoryHandler(base, categoryService))

	brandService := brand.NewService(catalog_repo.NewBrandRepo(cfg.TxManager), cfg.TxManager)
	brandHandler := handlers.NewBrandHandler(base, brandService)
	brands := catalogs.Group("/brands")
	brands.GET("/distinct", brandHandler.Distinct)
	RegisterCatalogRoutes(brands, brandHandler)

	var opts []product.Option
	if cfg.LowStockRule != nil {
		opts = append(opts, product.WithLowStockRule(cfg.LowStockRule))
	}
	productService := product.NewService(catalog_repo.NewProductRepo(cfg.TxManager), cfg.TxManager, opts...)
	productHandler := handlers.NewProductHandler(base, productService, cfg.Labels)

	products := catalogs.Group("/products")
	products.GET("/low-stock", middleware.RequireAdmin(), productHandler.LowStock)
	products.GET("/by-unique-id/:uniqueId", productHandler.GetByUniqueID)
	products.POST("/units", middleware.RequireAdmin(), productHandler.CreateUnits)
	products.POST("/ids/generate", productHandler.GenerateIDs)
	products.POST("/ids/check", productHandler.CheckIDs)
	products.GET("/:id/label.png", productHandler.Label)
	products.POST("/:id/restore", middleware.RequireAdmin(), productHandler.Restore)
	RegisterCatalogRoutes(products, productHandler)

	return productService
}

// registerLedgerRoutes registers sale, purchase, return and warranty endpoints.
func registerLedgerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) *ledger.Service {
	svc := ledger.NewService(ledger.Config{
		Products:   catalog_repo.NewProductRepo(cfg.TxManager),
		Sales:      ledger_repo.NewSaleRepo(cfg.TxManager),
		Purchases:  ledger_repo.NewPurchaseRepo(cfg.TxManager),
		Returns:    ledger_repo.NewReturnRepo(cfg.TxManager),
		Numerator:  cfg.Numerator,
		TxManager:  cfg.TxManager,
		Aggregator: cfg.Calendar,
	})
	h := handlers.NewLedgerHandler(base, svc)

	l := rg.Group("/ledger")
	{
		sales := l.Group("/sales")
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.POST("/warranty", h.CreateWarrantySale)
		sales.GET("/today", h.TodaySales)
		sales.GET("/sold-products", h.SoldProducts)

		purchases := l.Group("/purchases", middleware.RequireAdmin())
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.CreatePurchase)

		returns := l.Group("/returns")
		returns.GET("", middleware.RequireAdmin(), h.ListReturns)
		returns.POST("", h.CreateReturn)

		l.GET("/warranties/:uniqueId", h.Warranty)
	}
	return svc
}

// registerReportRoutes registers report endpoints.
func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig, sales *ledger.Service, products *product.Service) {
	svc := reports.NewService(sales, products, report_repo.NewReportRepo(cfg.TxManager), cfg.Calendar)
	h := handlers.NewReportsHandler(base, svc)

	r := rg.Group("/reports")
	{
		r.GET("/dashboard", h.Dashboard)

		admin := r.Group("", middleware.RequireAdmin())
		admin.GET("/sales/stats", h.SalesStats)
		admin.GET("/sales/products", h.ProductBreakdown)
		admin.GET("/stock/valuation", h.StockValuation)
	}
}
