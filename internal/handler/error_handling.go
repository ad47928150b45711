package handler

import (
	"errors"
	"net/http"

	"forum-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// handleServiceError maps a service error onto its status code and the error envelope.
func handleServiceError(c *gin.Context, err error) {
	var (
		statusCode int
		message    string
		details    string
	)

	switch {
	case errors.Is(err, models.ErrKeyImmutable):
		statusCode = http.StatusBadRequest
		message = "Attempted to change an immutable field"
		details = err.Error()
	case errors.Is(err, models.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = "Invalid input"
		details = err.Error()
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
		details = err.Error()
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
		message = "You are not allowed to perform this action"
	case errors.Is(err, models.ErrAlreadyExists):
		statusCode = http.StatusConflict
		message = "Resource already exists"
		details = err.Error()
	case errors.Is(err, models.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		message = "Token has expired"
	case errors.Is(err, models.ErrUnauthorized),
		errors.Is(err, models.ErrTokenInvalid),
		errors.Is(err, models.ErrTokenMalformed),
		errors.Is(err, models.ErrTokenNotFound):
		statusCode = http.StatusUnauthorized
		message = "Authentication required"
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		message = "An unexpected internal error occurred"
	}

	c.AbortWithStatusJSON(statusCode, models.ErrorResponse(statusCode, message, details))
}

func respondOK(c *gin.Context, status int, data any, message string) {
	c.JSON(status, models.SuccessResponse(data, message))
}

// respondChanged answers a mutation that reports whether a row was touched.
func respondChanged(c *gin.Context, changed bool, message string) {
	if !changed {
		c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse(http.StatusNotFound, "No rows changed", ""))
		return
	}
	respondOK(c, http.StatusOK, nil, message)
}
