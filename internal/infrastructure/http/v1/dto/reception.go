package dto

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/documents/reception"
)

// ReceptionLineRequest describes one received product.
type ReceptionLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitID    id.ID          `json:"unitId" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// ToLine converts DTO to a domain line.
func (r *ReceptionLineRequest) ToLine() reception.Line {
	return reception.NewLine(r.ProductID, r.UnitID, r.Quantity, r.UnitPrice)
}

// CreateReceptionRequest is the request body for creating a reception.
type CreateReceptionRequest struct {
	Date       time.Time              `json:"date"`
	SupplierID id.ID                  `json:"supplierId" binding:"required"`
	AmountPaid types.Money            `json:"amountPaid"`
	Comment    string                 `json:"comment"`
	Lines      []ReceptionLineRequest `json:"lines"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateReceptionRequest) ToEntity() *reception.Reception {
	doc := reception.NewReception(r.SupplierID)
	if !r.Date.IsZero() {
		doc.Date = r.Date
	}
	if !r.AmountPaid.IsZero() {
		doc.AmountPaid = r.AmountPaid
	}
	doc.Comment = r.Comment
	for _, line := range r.Lines {
		doc.Lines = append(doc.Lines, line.ToLine())
	}
	return doc
}

// UpdateReceptionLineRequest is the request body for editing a reception line.
type UpdateReceptionLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitID    id.ID          `json:"unitId" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// ToLine builds the new line state keyed by the route line ID.
func (r *UpdateReceptionLineRequest) ToLine(lineID id.ID) reception.Line {
	return reception.Line{
		LineID:    lineID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitID:    r.UnitID,
		UnitPrice: r.UnitPrice,
		Active:    true,
	}
}
