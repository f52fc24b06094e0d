package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	"stockroom/internal/domain"
	domainFilter "stockroom/internal/domain/filter"
	"stockroom/internal/domain/ledger"
	"stockroom/internal/domain/movements"
	"stockroom/internal/infrastructure/http/v1/dto"
)

// MovementHandler serves stock entries and exits.
type MovementHandler struct {
	*BaseHandler
	service *movements.Service
}

// NewMovementHandler creates a new movement handler.
func NewMovementHandler(base *BaseHandler, service *movements.Service) *MovementHandler {
	return &MovementHandler{
		BaseHandler: base,
		service:     service,
	}
}

// CreateEntry handles POST /movements/entries.
func (h *MovementHandler) CreateEntry(c *gin.Context) {
	h.create(c, ledger.Inward)
}

// CreateExit handles POST /movements/exits.
func (h *MovementHandler) CreateExit(c *gin.Context) {
	h.create(c, ledger.Outward)
}

func (h *MovementHandler) create(c *gin.Context, direction ledger.Direction) {
	var req dto.CreateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := req.ToEntity(direction)
	if err := h.service.Create(c.Request.Context(), m); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, m)
}

// Get handles GET /movements/:id.
func (h *MovementHandler) Get(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, m)
}

// Update handles PUT /movements/:id. The stored direction is preserved;
// the old stock effect is reversed and the new one applied atomically.
func (h *MovementHandler) Update(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	existing, err := h.service.GetByID(c.Request.Context(), movementID)
	if err != nil {
		h.Error(c, err)
		return
	}

	req.ApplyTo(existing)

	if err := h.service.Update(c.Request.Context(), existing); err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, existing)
}

// Delete handles DELETE /movements/:id (soft delete, idempotent).
func (h *MovementHandler) Delete(c *gin.Context) {
	movementID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.SoftDelete(c.Request.Context(), movementID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

// List handles GET /movements.
func (h *MovementHandler) List(c *gin.Context) {
	filter := domain.DefaultListFilter()
	filter.Search = c.Query("search")
	filter.Limit = h.ParseIntQuery(c, "limit", 50)
	filter.Offset = h.ParseIntQuery(c, "offset", 0)
	filter.OrderBy = c.DefaultQuery("orderBy", "-date")
	filter.IncludeDeleted = c.Query("includeDeleted") == "true"

	if direction := c.Query("direction"); direction != "" {
		filter.AdvancedFilters = append(filter.AdvancedFilters, domainFilter.Item{
			Field:    "direction",
			Operator: domainFilter.Equal,
			Value:    direction,
		})
	}

	if filterJSON := c.Query("filter"); filterJSON != "" {
		var advFilters []domainFilter.Item
		if err := json.Unmarshal([]byte(filterJSON), &advFilters); err != nil {
			h.Error(c, apperror.NewValidation("invalid filter format (json expected)"))
			return
		}
		filter.AdvancedFilters = append(filter.AdvancedFilters, advFilters...)
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
