package handlers

import (
	"stockroom/internal/domain/catalogs/category"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// CategoryHTTPHandler is the configured generic handler for categories.
type CategoryHTTPHandler = CatalogHandler[
	*category.Category,
	dto.CreateCategoryRequest,
	dto.UpdateCategoryRequest,
]

// NewCategoryHandler wires the category service into the generic catalog handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*category.Category,
		dto.CreateCategoryRequest,
		dto.UpdateCategoryRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "category",
		MapCreateDTO: func(req dto.CreateCategoryRequest) *category.Category {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateCategoryRequest, existing *category.Category) {
			req.ApplyTo(existing)
		},
	})
}
