// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler defines the interface for catalog handlers.
// All catalog handlers must implement these methods.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// TradeDocumentRouteHandler defines the interface for sale and reception
// handlers: header CRUD plus line management, payment, and cancellation.
type TradeDocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	AddLine(c *gin.Context)
	UpdateLine(c *gin.Context)
	RemoveLine(c *gin.Context)
	SetPayment(c *gin.Context)
	Cancel(c *gin.Context)
}

// RegisterCatalogRoutes registers standard CRUD routes for a catalog.
// Reads are open to any authenticated user; mutations require one of
// writeRoles (admins always pass).
//
// Usage:
//
//	repo := catalog_repo.NewUnitRepo(cfg.TxManager)
//	service := unit.NewService(repo, cfg.TxManager, cfg.Numerator)
//	handler := handlers.NewUnitHandler(baseHandler, service)
//	RegisterCatalogRoutes(catalogs.Group("/units"), handler, auth.RoleManager)
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler, writeRoles ...string) {
	write := middleware.RequireRole(writeRoles...)

	group.GET("", handler.List)
	group.POST("", write, handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", write, handler.Update)
	group.DELETE("/:id", write, handler.Delete)
	group.POST("/:id/deletion-mark", write, handler.SetDeletionMark)
}

// RegisterTradeDocumentRoutes registers the standard routes for a trade
// document (sale or reception). Creating and editing documents is open to
// any authenticated user; cancellation requires one of cancelRoles since it
// reverses every stock effect of the document.
func RegisterTradeDocumentRoutes(group *gin.RouterGroup, handler TradeDocumentRouteHandler, cancelRoles ...string) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)

	group.POST("/:id/lines", handler.AddLine)
	group.PUT("/:id/lines/:lineId", handler.UpdateLine)
	group.DELETE("/:id/lines/:lineId", handler.RemoveLine)

	group.POST("/:id/payment", handler.SetPayment)
	group.POST("/:id/cancel", middleware.RequireRole(cancelRoles...), handler.Cancel)
}
