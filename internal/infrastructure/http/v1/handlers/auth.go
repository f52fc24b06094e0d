package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/core/apperror"
	appctx "stockroom/internal/core/context"
	"stockroom/internal/core/id"
	"stockroom/internal/domain/auth"
	"stockroom/internal/infrastructure/http/v1/dto"
	"stockroom/internal/infrastructure/http/v1/middleware"
)

// AuthHandler serves authentication and user management endpoints.
type AuthHandler struct {
	*BaseHandler
	service *auth.Service
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(base *BaseHandler, service *auth.Service) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		service:     service,
	}
}

// RegisterRoutes registers public and protected auth routes. Account and
// role management is restricted to admins.
func (h *AuthHandler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.POST("/login", h.Login)
	public.POST("/refresh", h.Refresh)

	adminOnly := middleware.RequireRole(auth.RoleAdmin)

	protected.POST("/register", adminOnly, h.Register)
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)
	protected.POST("/change-password", h.ChangePassword)
	protected.GET("/users", adminOnly, h.ListUsers)
	protected.PUT("/users/:id/role", adminOnly, h.SetRole)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, user, err := h.service.Login(c.Request.Context(), auth.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.LoginResponse{
		Tokens: dto.FromTokenPair(tokens),
		User:   dto.FromUser(user),
	})
}

// Refresh handles POST /auth/refresh (refresh token rotation).
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tokens, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromTokenPair(tokens))
}

// Register handles POST /auth/register. Admin only: new accounts start
// with the clerk role.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterRequest{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.FromUser(user))
}

// Logout handles POST /auth/logout. Revokes all refresh tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "logged out")
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromUser(user))
}

// ChangePassword handles POST /auth/change-password.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "password changed")
}

// ListUsers handles GET /auth/users.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := auth.UserFilter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Limit:  h.ParseIntQuery(c, "limit", 50),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	if active := c.Query("isActive"); active != "" {
		val := active == "true"
		filter.IsActive = &val
	}

	users, total, err := h.service.ListUsers(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.UserResponse, len(users))
	for i := range users {
		items[i] = dto.FromUser(&users[i])
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: int64(total),
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// SetRole handles PUT /auth/users/:id/role.
func (h *AuthHandler) SetRole(c *gin.Context) {
	userID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.SetRoleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.SetRole(c.Request.Context(), userID, req.Role); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "role updated")
}

func (h *AuthHandler) currentUserID(c *gin.Context) (id.ID, bool) {
	user := appctx.GetUser(c.Request.Context())
	if user == nil {
		h.Error(c, apperror.NewUnauthorized("authentication required"))
		return id.Nil(), false
	}

	userID, err := id.Parse(user.UserID)
	if err != nil {
		h.Error(c, apperror.NewUnauthorized("invalid user identity"))
		return id.Nil(), false
	}

	return userID, true
}
