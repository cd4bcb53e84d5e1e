package staff

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymdesk/internal/api"
	"gymdesk/internal/apperr"
	"gymdesk/internal/auth"
	"gymdesk/internal/logger"
)

type Handler struct {
	repo          Repository
	accessSecret  string
	refreshSecret string
}

func NewHandler(db *sqlx.DB, accessSecret, refreshSecret string) *Handler {
	return &Handler{
		repo:          NewRepository(db),
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
	}
}

// Register godoc
// @Summary      Register staff account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        account  body      RegisterRequest  true  "Account details"
// @Success      201      {object}  TokenResponse
// @Failure      400      {object}  api.ErrorResponse
// @Failure      409      {object}  api.ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !api.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()

	exists, err := h.repo.EmailExists(ctx, req.Email)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	if exists {
		api.RespondError(c, apperr.Duplicate("email is already registered"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	s, err := h.repo.Create(ctx, req.Name, req.Email, hash, req.Role)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	access, refresh, err := auth.GenerateTokens(s.ID, s.Email, s.Role, h.accessSecret, h.refreshSecret)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	logger.Infof("Staff account created: %s (%s)", s.Email, s.Role)

	c.JSON(http.StatusCreated, TokenResponse{AccessToken: access, RefreshToken: refresh, Staff: s})
}

// Login godoc
// @Summary      Staff login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      LoginRequest  true  "Credentials"
// @Success      200          {object}  TokenResponse
// @Failure      401          {object}  api.ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.repo.FindByEmail(c.Request.Context(), req.Email)
	if err != nil || !auth.CheckPassword(s.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid email or password"})
		return
	}

	access, refresh, err := auth.GenerateTokens(s.ID, s.Email, s.Role, h.accessSecret, h.refreshSecret)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh, Staff: s})
}

// Refresh godoc
// @Summary      Refresh access token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  api.ErrorResponse
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if !api.BindJSON(c, &req) {
		return
	}

	access, _, err := auth.RefreshAccessToken(req.RefreshToken, h.refreshSecret, h.accessSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "invalid refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": access})
}

// Me godoc
// @Summary      Current staff account
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  Staff
// @Router       /me [get]
func (h *Handler) Me(c *gin.Context) {
	staffID, ok := auth.GetStaffID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	s, err := h.repo.FindByID(c.Request.Context(), staffID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}
