package plan

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

// CreatePlan godoc
// @Summary      Create membership plan
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        plan  body      CreatePlanRequest  true  "Plan definition"
// @Success      201   {object}  MembershipPlan
// @Failure      400   {object}  api.ErrorResponse
// @Router       /admin/plans [post]
func (h *Handler) CreatePlan(c *gin.Context) {
	var req CreatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

// ListPlans godoc
// @Summary      List membership plans
// @Description  Active plans only unless include_inactive=true.
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  MembershipPlan
// @Router       /plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	plans, err := h.repo.List(c.Request.Context(), !includeInactive)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan godoc
// @Summary      Get membership plan
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  MembershipPlan
// @Failure      404     {object}  api.ErrorResponse
// @Router       /plans/{planID} [get]
func (h *Handler) GetPlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdatePlan godoc
// @Summary      Update membership plan
// @Description  Edits affect future sales only; sold memberships keep their snapshot.
// @Tags         plans
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        planID  path      int                true  "Plan ID"
// @Param        plan    body      UpdatePlanRequest  true  "Fields to update"
// @Success      200     {object}  MembershipPlan
// @Failure      404     {object}  api.ErrorResponse
// @Router       /admin/plans/{planID} [patch]
func (h *Handler) UpdatePlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	var req UpdatePlanRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.repo.Update(c.Request.Context(), id, req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// DeactivatePlan godoc
// @Summary      Deactivate membership plan
// @Tags         plans
// @Security     BearerAuth
// @Produce      json
// @Param        planID  path      int  true  "Plan ID"
// @Success      200     {object}  api.MessageResponse
// @Failure      404     {object}  api.ErrorResponse
// @Failure      422     {object}  api.ErrorResponse
// @Router       /admin/plans/{planID} [delete]
func (h *Handler) DeactivatePlan(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("planID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid plan ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Plan deactivated"})
}
