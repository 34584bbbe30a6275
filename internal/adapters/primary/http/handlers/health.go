package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reimbursement-predictor/internal/adapters/primary/http/middleware"
)

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz reports ready only when every model artifact exists in the blob store.
func (h *Handler) Readyz(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.predictionSvc.Ready(ctx); err != nil {
		middleware.Logger(c).WithError(err).Warn("readiness check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
