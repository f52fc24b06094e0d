package handlers

import (
	"stockroom/internal/domain/catalogs/customer"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// CustomerHTTPHandler is the configured generic handler for customers.
type CustomerHTTPHandler = CatalogHandler[
	*customer.Customer,
	dto.CreateCustomerRequest,
	dto.UpdateCustomerRequest,
]

// NewCustomerHandler wires the customer service into the generic catalog handler.
func NewCustomerHandler(base *BaseHandler, service *customer.Service) *CustomerHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*customer.Customer,
		dto.CreateCustomerRequest,
		dto.UpdateCustomerRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "customer",
		MapCreateDTO: func(req dto.CreateCustomerRequest) *customer.Customer {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateCustomerRequest, existing *customer.Customer) {
			req.ApplyTo(existing)
		},
	})
}
