package handlers

import (
	"stockroom/internal/domain/catalogs/supplier"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// SupplierHTTPHandler is the configured generic handler for suppliers.
type SupplierHTTPHandler = CatalogHandler[
	*supplier.Supplier,
	dto.CreateSupplierRequest,
	dto.UpdateSupplierRequest,
]

// NewSupplierHandler wires the supplier service into the generic catalog handler.
func NewSupplierHandler(base *BaseHandler, service *supplier.Service) *SupplierHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*supplier.Supplier,
		dto.CreateSupplierRequest,
		dto.UpdateSupplierRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "supplier",
		MapCreateDTO: func(req dto.CreateSupplierRequest) *supplier.Supplier {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateSupplierRequest, existing *supplier.Supplier) {
			req.ApplyTo(existing)
		},
	})
}
