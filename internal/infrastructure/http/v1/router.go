package v1

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/domain/audit"
	"stockroom/internal/domain/auth"
	"stockroom/internal/domain/catalogs/category"
	"stockroom/internal/domain/catalogs/customer"
	"stockroom/internal/domain/catalogs/paymode"
	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/domain/catalogs/supplier"
	"stockroom/internal/domain/catalogs/unit"
	"stockroom/internal/domain/documents/reception"
	"stockroom/internal/domain/documents/sale"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/domain/movements"
	"stockroom/internal/infrastructure/http/v1/handlers"
	"stockroom/internal/infrastructure/http/v1/middleware"
	"stockroom/internal/infrastructure/storage/postgres"
	"stockroom/internal/infrastructure/storage/postgres/catalog_repo"
	"stockroom/internal/infrastructure/storage/postgres/document_repo"
	"stockroom/pkg/logger"
	"stockroom/pkg/numerator"
)

// RouterConfig holds the dependencies the router wires into handlers.
type RouterConfig struct {
	// Pool is the database connection pool (used by health checks).
	Pool *postgres.Pool

	// TxManager provides transactions to repositories and services.
	TxManager *postgres.TxManager

	// Logger for request logging.
	Logger *logger.Logger

	// JWTValidator for token validation.
	JWTValidator middleware.JWTValidator

	// AuthService for authentication endpoints.
	AuthService *auth.Service

	// Numerator for document number generation.
	Numerator numerator.Generator

	// Trail records document changes. May be nil.
	Trail audit.Trail

	// Version is reported by /health/info.
	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, cfg)
		registerStockRoutes(protected, cfg)
	}

	return router
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	if cfg.AuthService == nil {
		return
	}

	baseHandler := handlers.NewBaseHandler()
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)

	// Public auth endpoints (no JWT required)
	publicAuth := rg.Group("/auth")

	// Protected auth endpoints (JWT required)
	protectedAuth := rg.Group("/auth")
	protectedAuth.Use(middleware.Auth(cfg.JWTValidator))

	authHandler.RegisterRoutes(publicAuth, protectedAuth)
}

// registerCatalogRoutes registers catalog endpoints. Catalog mutations are
// reserved for managers; clerks get read access.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	// --- CATEGORIES ---
	{
		repo := catalog_repo.NewCategoryRepo(cfg.TxManager)
		service := category.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewCategoryHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/categories"), handler, auth.RoleManager)
	}

	// --- UNITS ---
	{
		repo := catalog_repo.NewUnitRepo(cfg.TxManager)
		service := unit.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewUnitHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/units"), handler, auth.RoleManager)
	}

	// --- PRODUCTS ---
	{
		repo := catalog_repo.NewProductRepo(cfg.TxManager)
		service := product.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewProductHandler(baseHandler, service)

		group := catalogs.Group("/products")
		group.GET("/low-stock", handler.LowStock)
		RegisterCatalogRoutes(group, handler, auth.RoleManager)
	}

	// --- CUSTOMERS ---
	{
		repo := catalog_repo.NewCustomerRepo(cfg.TxManager)
		service := customer.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewCustomerHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/customers"), handler, auth.RoleManager)
	}

	// --- SUPPLIERS ---
	{
		repo := catalog_repo.NewSupplierRepo(cfg.TxManager)
		service := supplier.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewSupplierHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/suppliers"), handler, auth.RoleManager)
	}

	// --- PAY MODES ---
	{
		repo := catalog_repo.NewPayModeRepo(cfg.TxManager)
		service := paymode.NewService(repo, cfg.TxManager, cfg.Numerator)
		handler := handlers.NewPayModeHandler(baseHandler, service)
		RegisterCatalogRoutes(catalogs.Group("/pay-modes"), handler, auth.RoleManager)
	}
}

// registerStockRoutes registers movement, sale, and reception endpoints.
// They share one ledger service so every stock mutation goes through the
// same per-product locking path.
func registerStockRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	productRepo := catalog_repo.NewProductRepo(cfg.TxManager)
	ledgerService := ledger.NewService(productRepo)

	// --- MOVEMENTS ---
	{
		repo := document_repo.NewMovementRepo(cfg.TxManager)
		service := movements.NewService(repo, ledgerService, cfg.TxManager, cfg.Numerator, cfg.Trail)
		handler := handlers.NewMovementHandler(baseHandler, service)

		group := rg.Group("/movements")
		group.GET("", handler.List)
		group.GET("/:id", handler.Get)
		group.POST("/entries", handler.CreateEntry)
		group.POST("/exits", handler.CreateExit)
		group.PUT("/:id", handler.Update)
		group.DELETE("/:id", middleware.RequireRole(auth.RoleManager), handler.Delete)
	}

	// --- SALES ---
	{
		repo := document_repo.NewSaleRepo(cfg.TxManager)
		service := sale.NewService(repo, ledgerService, cfg.TxManager, cfg.Numerator, cfg.Trail)
		handler := handlers.NewSaleHandler(baseHandler, service)
		RegisterTradeDocumentRoutes(rg.Group("/sales"), handler, auth.RoleManager)
	}

	// --- RECEPTIONS ---
	{
		repo := document_repo.NewReceptionRepo(cfg.TxManager)
		service := reception.NewService(repo, ledgerService, cfg.TxManager, cfg.Numerator, cfg.Trail)
		handler := handlers.NewReceptionHandler(baseHandler, service)
		RegisterTradeDocumentRoutes(rg.Group("/receptions"), handler, auth.RoleManager)
	}
}
