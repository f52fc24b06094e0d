package dto

import (
	"stockroom/internal/domain/catalogs/paymode"
)

// CreatePayModeRequest is the request body for creating a payment mode.
type CreatePayModeRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePayModeRequest) ToEntity() *paymode.PayMode {
	p := paymode.NewPayMode(r.Code, r.Name)
	p.Description = r.Description
	return p
}

// UpdatePayModeRequest is the request body for updating a payment mode.
type UpdatePayModeRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdatePayModeRequest) ApplyTo(p *paymode.PayMode) {
	p.Code = r.Code
	p.Name = r.Name
	p.Description = r.Description
	p.Version = r.Version
}
