package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/documents/sale"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves sale documents and their lines.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /sales.
func (h *SaleHandler) Create(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), doc); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, doc)
}

// Get handles GET /sales/:id (header plus lines).
func (h *SaleHandler) Get(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// List handles GET /sales.
func (h *SaleHandler) List(c *gin.Context) {
	filter := sale.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if customerID := c.Query("customerId"); customerID != "" {
		parsed, err := id.Parse(customerID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid customerId format"))
			return
		}
		filter.CustomerID = &parsed
	}
	if active := c.Query("active"); active != "" {
		val := active == "true"
		filter.Active = &val
	}
	if from := c.Query("dateFrom"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateFrom format"))
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("dateTo"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid dateTo format"))
			return
		}
		filter.DateTo = &t
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// AddLine handles POST /sales/:id/lines.
func (h *SaleHandler) AddLine(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SaleLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToLine()
	if err := h.service.AddLine(c.Request.Context(), saleID, &line); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, line)
}

// UpdateLine handles PUT /sales/:id/lines/:lineId.
func (h *SaleHandler) UpdateLine(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	var req dto.UpdateSaleLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToLine(lineID)
	if err := h.service.UpdateLine(c.Request.Context(), saleID, &line); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, line)
}

// RemoveLine handles DELETE /sales/:id/lines/:lineId (idempotent).
func (h *SaleHandler) RemoveLine(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	if err := h.service.RemoveLine(c.Request.Context(), saleID, lineID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetPayment handles POST /sales/:id/payment.
func (h *SaleHandler) SetPayment(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetAmountPaid(c.Request.Context(), saleID, req.Amount); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Cancel handles POST /sales/:id/cancel (idempotent).
func (h *SaleHandler) Cancel(c *gin.Context) {
	saleID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), saleID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "sale cancelled")
}
