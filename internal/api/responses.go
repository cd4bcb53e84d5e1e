package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gymdesk/internal/apperr"
)

type ErrorResponse struct {
	Error string `json:"error" example:"something went wrong"`
	Kind  string `json:"kind,omitempty" example:"business_rule"`
}

type MessageResponse struct {
	Message string `json:"message" example:"ok"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// RespondError maps apperr kinds to HTTP status codes. Non-apperr
// errors are reported as opaque 500s.
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)

	var status int
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindInvalidState, apperr.KindBusinessRule:
		status = http.StatusUnprocessableEntity
	case apperr.KindDuplicate, apperr.KindConflict:
		status = http.StatusConflict
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.JSON(status, ErrorResponse{Error: err.Error(), Kind: kind.String()})
}
