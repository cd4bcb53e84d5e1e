package client

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymdesk/internal/api"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

// CreateClient godoc
// @Summary      Register client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        client  body      CreateClientRequest  true  "Client details"
// @Success      201     {object}  Client
// @Failure      400     {object}  api.ErrorResponse
// @Router       /clients [post]
func (h *Handler) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if !api.BindJSON(c, &req) {
		return
	}

	cl, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, cl)
}

// GetClient godoc
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  Client
// @Failure      404       {object}  api.ErrorResponse
// @Router       /clients/{clientID} [get]
func (h *Handler) GetClient(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client ID"})
		return
	}

	cl, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cl)
}

// ListClients godoc
// @Summary      List clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size"
// @Param        offset  query     int  false  "Page offset"
// @Success      200     {array}   Client
// @Router       /clients [get]
func (h *Handler) ListClients(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	clients, err := h.repo.List(c.Request.Context(), limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, clients)
}
