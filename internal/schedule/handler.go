package schedule

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

// CreateSchedule godoc
// @Summary      Create class schedule
// @Tags         schedules
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        schedule  body      CreateScheduleRequest  true  "Weekly slot definition"
// @Success      201       {object}  ClassSchedule
// @Failure      400       {object}  api.ErrorResponse
// @Router       /admin/schedules [post]
func (h *Handler) CreateSchedule(c *gin.Context) {
	var req CreateScheduleRequest
	if !api.BindJSON(c, &req) {
		return
	}

	s, err := h.repo.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s)
}

// ListSchedules godoc
// @Summary      List class schedules
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  ClassSchedule
// @Router       /schedules [get]
func (h *Handler) ListSchedules(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	schedules, err := h.repo.List(c.Request.Context(), !includeInactive)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedules)
}

// GetSchedule godoc
// @Summary      Get class schedule
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {object}  ClassSchedule
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID} [get]
func (h *Handler) GetSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("scheduleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	s, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, s)
}

// DeactivateSchedule godoc
// @Summary      Deactivate class schedule
// @Tags         schedules
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int  true  "Schedule ID"
// @Success      200         {object}  api.MessageResponse
// @Failure      422         {object}  api.ErrorResponse
// @Router       /admin/schedules/{scheduleID} [delete]
func (h *Handler) DeactivateSchedule(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("scheduleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	if err := h.repo.Deactivate(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Schedule deactivated"})
}
