package payment

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"gymdesk/internal/api"
	"gymdesk/internal/auth"
	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
)

type Handler struct {
	repo Repository
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{repo: NewRepository(db)}
}

type RecordPaymentRequest struct {
	ClientID    int    `json:"client_id" binding:"required"`
	AmountCents int64  `json:"amount_cents" binding:"required,gte=0"`
	Method      string `json:"method" binding:"required,oneof=cash card transfer"`
	Type        string `json:"type" binding:"required"`
	Description string `json:"description"`
}

// RecordPayment godoc
// @Summary      Record standalone payment
// @Description  Appends a completed payment not attached to a membership (day pass, merch, etc).
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payment  body      RecordPaymentRequest  true  "Payment details"
// @Success      201      {object}  Payment
// @Failure      400      {object}  api.ErrorResponse
// @Router       /payments [post]
func (h *Handler) RecordPayment(c *gin.Context) {
	staffID, ok := auth.GetStaffID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req RecordPaymentRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.repo.Record(c.Request.Context(), nil, RecordInput{
		ClientID:    req.ClientID,
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Type:        req.Type,
		Description: req.Description,
		RecordedBy:  staffID,
	})
	if err != nil {
		api.RespondError(c, err)
		return
	}

	logger.Infof("Payment recorded: %s, client %d, %d cents", p.PaymentNumber, p.ClientID, p.AmountCents)
	metrics.RecordPayment(p.Method)

	c.JSON(http.StatusCreated, p)
}

// GetPayment godoc
// @Summary      Get payment
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        paymentID  path      int  true  "Payment ID"
// @Success      200        {object}  Payment
// @Failure      404        {object}  api.ErrorResponse
// @Router       /payments/{paymentID} [get]
func (h *Handler) GetPayment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("paymentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment ID"})
		return
	}

	p, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// ListClientPayments godoc
// @Summary      List client payments
// @Tags         payments
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path      int  true   "Client ID"
// @Param        limit     query     int  false  "Page size"
// @Param        offset    query     int  false  "Page offset"
// @Success      200       {array}   Payment
// @Router       /clients/{clientID}/payments [get]
func (h *Handler) ListClientPayments(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client ID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	payments, err := h.repo.ListByClient(c.Request.Context(), clientID, limit, offset)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// RefundPayment godoc
// @Summary      Refund payment
// @Description  One refund per payment, capped at the original amount. Does not reverse the linked membership.
// @Tags         payments
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        paymentID  path      int            true  "Payment ID"
// @Param        refund     body      RefundRequest  true  "Refund details"
// @Success      200        {object}  Payment
// @Failure      404        {object}  api.ErrorResponse
// @Failure      422        {object}  api.ErrorResponse
// @Router       /payments/{paymentID}/refund [post]
func (h *Handler) RefundPayment(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("paymentID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid payment ID"})
		return
	}

	var req RefundRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.repo.Refund(c.Request.Context(), id, req.AmountCents, req.Reason)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	logger.Infof("Payment refunded: %s, %d cents", p.PaymentNumber, p.RefundAmountCents)
	metrics.RefundsTotal.Inc()

	c.JSON(http.StatusOK, p)
}
