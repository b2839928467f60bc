package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "bodybae/errors"
)

// respondWithError logs the technical error and sends a user-friendly message
func respondWithError(c *gin.Context, statusCode int, technicalErr error, userMessage string, logger *zap.Logger, fields ...zap.Field) {
	allFields := append([]zap.Field{zap.Error(technicalErr)}, fields...)
	logger.Error(userMessage, allFields...)
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithClientError sends an error response without logging (for client errors)
func respondWithClientError(c *gin.Context, statusCode int, userMessage string) {
	c.JSON(statusCode, gin.H{"error": userMessage})
}

// respondWithServiceError maps a service-layer error to an HTTP response.
// Client-caused errors surface their own message; everything else is logged
// and hidden behind a generic message.
func respondWithServiceError(c *gin.Context, err error, logger *zap.Logger, fields ...zap.Field) {
	switch {
	case apperrors.IsInvalidInput(err):
		respondWithClientError(c, http.StatusBadRequest, inputMessage(err))
	case apperrors.IsNotFound(err):
		respondWithClientError(c, http.StatusNotFound, "User not found. Please complete onboarding first.")
	case apperrors.IsDatabaseOperation(err):
		respondWithError(c, http.StatusServiceUnavailable, err, "Service temporarily unavailable. Please try again.", logger, fields...)
	default:
		respondWithError(c, http.StatusInternalServerError, err, "Something went wrong. Please try again.", logger, fields...)
	}
}

// inputMessage strips the sentinel suffix from a wrapped validation error so
// the client sees only the human-readable part.
func inputMessage(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+apperrors.ErrInvalidInput.Error())
}
