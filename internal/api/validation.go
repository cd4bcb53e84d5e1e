package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError describes one failed request-body constraint.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

// BindJSON binds the request body into dst and, on failure, writes a
// 400 with per-field details when the failure came from validation
// tags. It returns false when the response has already been written.
func BindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": fieldErrors,
		})
		return false
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	return false
}

func fieldMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return err.Field() + " must be a valid email address"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "gt":
		return err.Field() + " must be greater than " + err.Param()
	case "gte":
		return err.Field() + " must be greater than or equal to " + err.Param()
	case "lte":
		return err.Field() + " must be less than or equal to " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
