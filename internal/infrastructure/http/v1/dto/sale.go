package dto

import (
	"time"

	"stockroom/internal/core/id"
	"stockroom/internal/core/types"
	"stockroom/internal/domain/documents/sale"
)

// SaleLineRequest describes one sold product.
type SaleLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitID    id.ID          `json:"unitId" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// ToLine converts DTO to a domain line.
func (r *SaleLineRequest) ToLine() sale.Line {
	return sale.NewLine(r.ProductID, r.UnitID, r.Quantity, r.UnitPrice)
}

// CreateSaleRequest is the request body for creating a sale.
type CreateSaleRequest struct {
	Date       time.Time         `json:"date"`
	CustomerID *id.ID            `json:"customerId"`
	PayModeID  *id.ID            `json:"payModeId"`
	AmountPaid types.Money       `json:"amountPaid"`
	Comment    string            `json:"comment"`
	Lines      []SaleLineRequest `json:"lines"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateSaleRequest) ToEntity() *sale.Sale {
	doc := sale.NewSale()
	if !r.Date.IsZero() {
		doc.Date = r.Date
	}
	doc.CustomerID = r.CustomerID
	doc.PayModeID = r.PayModeID
	if !r.AmountPaid.IsZero() {
		doc.AmountPaid = r.AmountPaid
	}
	doc.Comment = r.Comment
	for _, line := range r.Lines {
		doc.Lines = append(doc.Lines, line.ToLine())
	}
	return doc
}

// UpdateSaleLineRequest is the request body for editing a sale line.
type UpdateSaleLineRequest struct {
	ProductID id.ID          `json:"productId" binding:"required"`
	Quantity  types.Quantity `json:"quantity" binding:"required"`
	UnitID    id.ID          `json:"unitId" binding:"required"`
	UnitPrice types.Money    `json:"unitPrice"`
}

// ToLine builds the new line state keyed by the route line ID.
func (r *UpdateSaleLineRequest) ToLine(lineID id.ID) sale.Line {
	return sale.Line{
		LineID:    lineID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		UnitID:    r.UnitID,
		UnitPrice: r.UnitPrice,
		Active:    true,
	}
}

// PaymentRequest sets the paid amount on a document.
type PaymentRequest struct {
	Amount types.Money `json:"amount" binding:"required"`
}
