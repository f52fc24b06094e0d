package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/core/id"
	"stockroom/internal/domain"
	"stockroom/internal/domain/documents/reception"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// ReceptionHandler serves reception documents and their lines.
type ReceptionHandler struct {
	*BaseHandler
	service *reception.Service
}

// NewReceptionHandler creates a new reception handler.
func NewReceptionHandler(base *BaseHandler, service *reception.Service) *ReceptionHandler {
	return &ReceptionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Create handles POST /receptions.
func (h *ReceptionHandler) Create(c *gin.Context) {
	var req dto.CreateReceptionRequest
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

// Get handles GET /receptions/:id (header plus lines).
func (h *ReceptionHandler) Get(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), receptionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// List handles GET /receptions.
func (h *ReceptionHandler) List(c *gin.Context) {
	filter := reception.ListFilter{ListFilter: domain.DefaultListFilter()}
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if supplierID := c.Query("supplierId"); supplierID != "" {
		parsed, err := id.Parse(supplierID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid supplierId format"))
			return
		}
		filter.SupplierID = &parsed
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

// AddLine handles POST /receptions/:id/lines.
func (h *ReceptionHandler) AddLine(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReceptionLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToLine()
	if err := h.service.AddLine(c.Request.Context(), receptionID, &line); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, line)
}

// UpdateLine handles PUT /receptions/:id/lines/:lineId.
func (h *ReceptionHandler) UpdateLine(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	var req dto.UpdateReceptionLineRequest
	if !h.BindJSON(c, &req) {
		return
	}

	line := req.ToLine(lineID)
	if err := h.service.UpdateLine(c.Request.Context(), receptionID, &line); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, line)
}

// RemoveLine handles DELETE /receptions/:id/lines/:lineId (idempotent).
// Fails with INSUFFICIENT_STOCK if the received goods were already consumed.
func (h *ReceptionHandler) RemoveLine(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	lineID, ok := h.ParseID(c, "lineId")
	if !ok {
		return
	}

	if err := h.service.RemoveLine(c.Request.Context(), receptionID, lineID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// SetPayment handles POST /receptions/:id/payment.
func (h *ReceptionHandler) SetPayment(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetAmountPaid(c.Request.Context(), receptionID, req.Amount); err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), receptionID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, doc)
}

// Cancel handles POST /receptions/:id/cancel (idempotent).
func (h *ReceptionHandler) Cancel(c *gin.Context) {
	receptionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), receptionID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "reception cancelled")
}
