package membership

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gymdesk/internal/api"
	"gymdesk/internal/auth"
	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
	"gymdesk/internal/payment"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type SaleResponse struct {
	Membership *Membership      `json:"membership"`
	Payment    *payment.Payment `json:"payment"`
}

// Sell godoc
// @Summary      Sell membership
// @Description  Creates an active membership for the plan's duration and records its payment in the same transaction.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        sale  body      SellInput  true  "Sale details"
// @Success      201   {object}  SaleResponse
// @Failure      400   {object}  api.ErrorResponse
// @Failure      422   {object}  api.ErrorResponse
// @Router       /memberships [post]
func (h *Handler) Sell(c *gin.Context) {
	staffID, ok := auth.GetStaffID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var input SellInput
	if !api.BindJSON(c, &input) {
		return
	}
	input.StaffID = staffID

	m, p, err := h.service.Sell(c.Request.Context(), input)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	logger.Infof("Membership %d sold: client %d, plan %q, payment %s", m.ID, m.ClientID, m.PlanName, p.PaymentNumber)
	metrics.RecordMembershipSold(m.PlanName)
	metrics.RecordPayment(p.Method)

	c.JSON(http.StatusCreated, SaleResponse{Membership: m, Payment: p})
}

// Renew godoc
// @Summary      Renew membership
// @Description  Expires the membership and creates its contiguous successor starting the day after it ends.
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        membershipID  path      int         true  "Membership ID"
// @Param        renewal       body      RenewInput  true  "Renewal details"
// @Success      201           {object}  SaleResponse
// @Failure      404           {object}  api.ErrorResponse
// @Failure      422           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/renew [post]
func (h *Handler) Renew(c *gin.Context) {
	staffID, ok := auth.GetStaffID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid membership ID"})
		return
	}

	var input RenewInput
	if !api.BindJSON(c, &input) {
		return
	}
	input.StaffID = staffID

	m, p, err := h.service.Renew(c.Request.Context(), membershipID, input)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	logger.Infof("Membership %d renewed as %d: client %d, payment %s", membershipID, m.ID, m.ClientID, p.PaymentNumber)
	metrics.MembershipsRenewedTotal.Inc()
	metrics.RecordPayment(p.Method)

	c.JSON(http.StatusCreated, SaleResponse{Membership: m, Payment: p})
}

// Suspend godoc
// @Summary      Suspend membership
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        membershipID  path      int            true  "Membership ID"
// @Param        suspend       body      ReasonRequest  true  "Suspension reason"
// @Success      200           {object}  Membership
// @Failure      422           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/suspend [post]
func (h *Handler) Suspend(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid membership ID"})
		return
	}

	var req ReasonRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Suspend(c.Request.Context(), membershipID, req.Reason)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition(string(StatusSuspended))

	c.JSON(http.StatusOK, m)
}

// Reactivate godoc
// @Summary      Reactivate suspended membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        membershipID  path      int  true  "Membership ID"
// @Success      200           {object}  Membership
// @Failure      422           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/reactivate [post]
func (h *Handler) Reactivate(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid membership ID"})
		return
	}

	m, err := h.service.Reactivate(c.Request.Context(), membershipID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition(string(StatusActive))

	c.JSON(http.StatusOK, m)
}

// Cancel godoc
// @Summary      Cancel membership
// @Tags         memberships
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        membershipID  path      int            true  "Membership ID"
// @Param        cancel        body      ReasonRequest  true  "Cancellation reason"
// @Success      200           {object}  Membership
// @Failure      422           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID}/cancel [post]
func (h *Handler) Cancel(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid membership ID"})
		return
	}

	var req ReasonRequest
	if !api.BindJSON(c, &req) {
		return
	}

	m, err := h.service.Cancel(c.Request.Context(), membershipID, req.Reason)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	metrics.RecordMembershipTransition(string(StatusCancelled))

	c.JSON(http.StatusOK, m)
}

// Get godoc
// @Summary      Get membership
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        membershipID  path      int  true  "Membership ID"
// @Success      200           {object}  Membership
// @Failure      404           {object}  api.ErrorResponse
// @Router       /memberships/{membershipID} [get]
func (h *Handler) Get(c *gin.Context) {
	membershipID, err := strconv.Atoi(c.Param("membershipID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid membership ID"})
		return
	}

	m, err := h.service.Get(c.Request.Context(), membershipID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, m)
}

// History godoc
// @Summary      Client membership history
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {array}   Membership
// @Router       /clients/{clientID}/memberships [get]
func (h *Handler) History(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client ID"})
		return
	}

	memberships, err := h.service.History(c.Request.Context(), clientID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memberships)
}

// Entitlement godoc
// @Summary      Client entitlement check
// @Description  Answers whether the client can enter the gym and book classes right now.
// @Tags         memberships
// @Security     BearerAuth
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  map[string]bool
// @Router       /clients/{clientID}/entitlement [get]
func (h *Handler) Entitlement(c *gin.Context) {
	clientID, err := strconv.Atoi(c.Param("clientID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid client ID"})
		return
	}

	ctx := c.Request.Context()

	active, err := h.service.HasActiveMembership(ctx, clientID)
	if err != nil {
		api.RespondError(c, err)
		return
	}

	canBook := false
	if active {
		canBook, err = h.service.CanBookClass(ctx, clientID)
		if err != nil {
			api.RespondError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"has_active_membership": active,
		"can_book_class":        canBook,
	})
}
