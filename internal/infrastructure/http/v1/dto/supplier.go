package dto

import (
	"stockroom/internal/domain/catalogs/supplier"
)

// CreateSupplierRequest is the request body for creating a supplier.
type CreateSupplierRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSupplierRequest) ToEntity() *supplier.Supplier {
	s := supplier.NewSupplier(r.Code, r.Name)
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	return s
}

// UpdateSupplierRequest is the request body for updating a supplier.
type UpdateSupplierRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Version int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateSupplierRequest) ApplyTo(s *supplier.Supplier) {
	s.Code = r.Code
	s.Name = r.Name
	s.Phone = r.Phone
	s.Email = r.Email
	s.Address = r.Address
	s.Version = r.Version
}
