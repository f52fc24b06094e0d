package handlers

import (
	"stockroom/internal/domain/catalogs/paymode"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// PayModeHTTPHandler is the configured generic handler for payment modes.
type PayModeHTTPHandler = CatalogHandler[
	*paymode.PayMode,
	dto.CreatePayModeRequest,
	dto.UpdatePayModeRequest,
]

// NewPayModeHandler wires the payment mode service into the generic catalog handler.
func NewPayModeHandler(base *BaseHandler, service *paymode.Service) *PayModeHTTPHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[
		*paymode.PayMode,
		dto.CreatePayModeRequest,
		dto.UpdatePayModeRequest,
	]{
		Service:    service.CatalogService,
		EntityName: "payment mode",
		MapCreateDTO: func(req dto.CreatePayModeRequest) *paymode.PayMode {
			return req.ToEntity()
		},
		ApplyUpdate: func(req dto.UpdatePayModeRequest, existing *paymode.PayMode) {
			req.ApplyTo(existing)
		},
	})
}
