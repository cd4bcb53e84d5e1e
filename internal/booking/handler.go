package booking

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymdesk/internal/api"
	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: key + " query param is required (YYYY-MM-DD)"})
		return time.Time{}, false
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid " + key + ", use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

// Book godoc
// @Summary      Book class instance
// @Description  Books the client into the schedule's occurrence on booking_date, or queues them on the waitlist when the class is full.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        scheduleID  path      int          true  "Schedule ID"
// @Param        booking     body      BookRequest  true  "Booking details"
// @Success      201         {object}  ClassBooking
// @Failure      400         {object}  api.ErrorResponse
// @Failure      409         {object}  api.ErrorResponse
// @Failure      422         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/bookings [post]
func (h *Handler) Book(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("scheduleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	var req BookRequest
	if !api.BindJSON(c, &req) {
		return
	}

	b, err := h.service.Book(c.Request.Context(), scheduleID, req.ClientID, req.BookingDate, req.Notes)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	outcome := "confirmed"
	if b.IsWaitingList {
		outcome = "waitlisted"
	}
	logger.Infof("Booking %d created: client %d, schedule %d, %s", b.ID, b.ClientID, b.ScheduleID, outcome)
	metrics.RecordBooking(outcome)

	c.JSON(http.StatusCreated, b)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Cancels within the schedule's cancellation window; a freed confirmed seat promotes the head of the waitlist.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingID  path      int            true  "Booking ID"
// @Param        cancel     body      CancelRequest  true  "Cancellation reason"
// @Success      200        {object}  api.MessageResponse
// @Failure      404        {object}  api.ErrorResponse
// @Failure      422        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	var req CancelRequest
	if !api.BindJSON(c, &req) {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), bookingID, req.Reason); err != nil {
		api.RespondError(c, err)
		return
	}

	metrics.BookingCancellationsTotal.Inc()

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Booking cancelled"})
}

// MarkAttended godoc
// @Summary      Mark booking attended
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  ClassBooking
// @Failure      422        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/attended [post]
func (h *Handler) MarkAttended(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	b, err := h.service.MarkAttended(c.Request.Context(), bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// MarkNoShow godoc
// @Summary      Mark booking no-show
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        bookingID  path      int  true  "Booking ID"
// @Success      200        {object}  ClassBooking
// @Failure      422        {object}  api.ErrorResponse
// @Router       /bookings/{bookingID}/no-show [post]
func (h *Handler) MarkNoShow(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid booking ID"})
		return
	}

	b, err := h.service.MarkNoShow(c.Request.Context(), bookingID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// GetAvailability godoc
// @Summary      Slot availability for a date
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int     true  "Schedule ID"
// @Param        date        query     string  true  "Date (YYYY-MM-DD)"
// @Success      200         {object}  SlotAvailability
// @Failure      404         {object}  api.ErrorResponse
// @Router       /schedules/{scheduleID}/availability [get]
func (h *Handler) GetAvailability(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("scheduleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	availability, err := h.service.Availability(c.Request.Context(), scheduleID, date)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, availability)
}

// ListForSlot godoc
// @Summary      List bookings for a date instance
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        scheduleID  path      int     true  "Schedule ID"
// @Param        date        query     string  true  "Date (YYYY-MM-DD)"
// @Success      200         {array}   ClassBooking
// @Router       /schedules/{scheduleID}/bookings [get]
func (h *Handler) ListForSlot(c *gin.Context) {
	scheduleID, err := strconv.Atoi(c.Param("scheduleID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid schedule ID"})
		return
	}

	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	bookings, err := h.service.ListForSlot(c.Request.Context(), scheduleID, date)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListByClient godoc
// @Summary      List client bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {array}   ClassBooking
// @Router       /clients/{clientID}/bookings [get]
func (h *Handler) ListByClient(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client ID"})
		return
	}

	bookings, err := h.service.ListByClient(c.Request.Context(), clientID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}
