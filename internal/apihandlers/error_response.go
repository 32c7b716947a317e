package apihandlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailsift/internal/models"
)

// APIError is the standard error response body:
// { "error": { "code": "not_found", "message": "..." } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response.
func JSONError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// RespondError translates the core error taxonomy into HTTP responses.
// Errors cross the core boundary unmodified; this is the single place
// they become protocol-specific.
func RespondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		JSONError(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, models.ErrConflict):
		JSONError(c, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, models.ErrValidation):
		JSONError(c, http.StatusUnprocessableEntity, "validation_error", err.Error())
	case errors.Is(err, models.ErrProvider):
		JSONError(c, http.StatusBadGateway, "provider_error", err.Error())
	case errors.Is(err, models.ErrDataIntegrity):
		JSONError(c, http.StatusInternalServerError, "data_integrity_error", err.Error())
	default:
		JSONError(c, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func BadRequest(c *gin.Context, msg string) {
	JSONError(c, http.StatusBadRequest, "bad_request", msg)
}
