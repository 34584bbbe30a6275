package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"reimbursement-predictor/internal/core/domain"
)

// mapDomainError writes the error under "detail", the key browser clients of
// this API already read.
func mapDomainError(c *gin.Context, err error) {
	switch {
	// Deadline
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"detail": "prediction timed out"})

	// Validation errors
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})

	// Bad request
	case errors.Is(err, domain.ErrUnknownModel):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrArtifactUnavailable),
		errors.Is(err, domain.ErrBlobStoreNotAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": err.Error()})

	// Model failures
	case errors.Is(err, domain.ErrPredictionFailed),
		errors.Is(err, domain.ErrCorruptedArtifact):
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}
}
