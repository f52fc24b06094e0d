package dto

import (
	"stockroom/internal/domain/catalogs/category"
)

// CreateCategoryRequest is the request body for creating a category.
type CreateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCategoryRequest) ToEntity() *category.Category {
	c := category.NewCategory(r.Code, r.Name)
	c.Description = r.Description
	return c
}

// UpdateCategoryRequest is the request body for updating a category.
type UpdateCategoryRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Version     int     `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCategoryRequest) ApplyTo(c *category.Category) {
	c.Code = r.Code
	c.Name = r.Name
	c.Description = r.Description
	c.Version = r.Version
}
