package handlers

import (
	"github.com/gin-gonic/gin"

	"stockroom/internal/domain/catalogs/product"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// ProductHandler extends the generic catalog handler with stock queries.
type ProductHandler struct {
	*CatalogHandler[*product.Product, dto.CreateProductRequest, dto.UpdateProductRequest]
	service *product.Service
}

// NewProductHandler wires the product service into the generic catalog handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	generic := NewCatalogHandler(base, CatalogHandlerConfig[
		*product.Product,
		dto.CreateProductRequest,
		dto.UpdateProductRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "product",
		MapCreateDTO: func(req dto.CreateProductRequest) *product.Product {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateProductRequest, existing *product.Product) {
			req.ApplyTo(existing)
		},
	})

	return &ProductHandler{
		CatalogHandler: generic,
		service:        service,
	}
}

// LowStock handles GET /products/low-stock.
func (h *ProductHandler) LowStock(c *gin.Context) {
	items, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": items})
}
