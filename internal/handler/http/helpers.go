package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikiasgoitom/likes/internal/domain/contract"
	"github.com/mikiasgoitom/likes/internal/handler/http/dto"
	"github.com/mikiasgoitom/likes/internal/usecase"
)

// ErrorHandler centralizes error handling for HTTP responses
func ErrorHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// SuccessHandler centralizes success responses
func SuccessHandler(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// MessageHandler centralizes message responses
func MessageHandler(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.MessageResponse{Message: message})
}

// BindURI binds and validates path parameters
func BindURI(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindUri(req); err != nil {
		ErrorHandler(c, http.StatusBadRequest, err.Error())
		return err
	}
	return nil
}

// UseCaseErrorHandler maps a use case error onto a status code. Internal
// details are not echoed for server errors.
func UseCaseErrorHandler(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrInvalidEntity):
		ErrorHandler(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, contract.ErrNotFound):
		ErrorHandler(c, http.StatusNotFound, "Not found")
	case errors.Is(err, contract.ErrConstraintViolation):
		ErrorHandler(c, http.StatusConflict, "Concurrent update, please retry")
	case errors.Is(err, contract.ErrStoreUnavailable):
		ErrorHandler(c, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		_ = c.Error(err)
		ErrorHandler(c, http.StatusInternalServerError, "Internal server error")
	}
}

// currentUserID reads the id the auth middleware stored on the context.
func currentUserID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("userID")
	if !exists {
		ErrorHandler(c, http.StatusUnauthorized, "User not authenticated")
		return 0, false
	}
	id, ok := v.(int64)
	if !ok {
		ErrorHandler(c, http.StatusBadRequest, "Invalid user ID format in token")
		return 0, false
	}
	return id, true
}
