package dto

import (
	"stockroom/internal/domain/catalogs/customer"
)

// CreateCustomerRequest is the request body for creating a customer.
type CreateCustomerRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCustomerRequest) ToEntity() *customer.Customer {
	c := customer.NewCustomer(r.Code, r.Name)
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	return c
}

// UpdateCustomerRequest is the request body for updating a customer.
type UpdateCustomerRequest struct {
	Code    string  `json:"code"`
	Name    string  `json:"name" binding:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Version int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCustomerRequest) ApplyTo(c *customer.Customer) {
	c.Code = r.Code
	c.Name = r.Name
	c.Phone = r.Phone
	c.Email = r.Email
	c.Address = r.Address
	c.Version = r.Version
}
