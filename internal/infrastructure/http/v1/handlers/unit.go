package handlers

import (
	"stockroom/internal/domain/catalogs/unit"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// UnitHTTPHandler is the configured generic handler for units.
type UnitHTTPHandler = CatalogHandler[
	*unit.Unit,
	dto.CreateUnitRequest,
	dto.UpdateUnitRequest,
]

// NewUnitHandler wires the unit service into the generic catalog handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*unit.Unit,
		dto.CreateUnitRequest,
		dto.UpdateUnitRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "unit",
		MapCreateDTO: func(req dto.CreateUnitRequest) *unit.Unit {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdateUnitRequest, existing *unit.Unit) {
			req.ApplyTo(existing)
		},
	})
}
