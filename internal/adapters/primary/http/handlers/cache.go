package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reimbursement-predictor/internal/adapters/primary/http/middleware"
)

func (h *Handler) ClearCache(c *gin.Context) {
	if err := h.predictionSvc.ClearCache(); err != nil {
		middleware.Logger(c).WithError(err).Error("clear model cache failed")
		mapDomainError(c, err)
		return
	}
	middleware.Logger(c).Info("model cache cleared")
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.predictionSvc.CacheStats())
}
