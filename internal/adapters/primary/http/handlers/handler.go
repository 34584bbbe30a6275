package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"reimbursement-predictor/internal/core/services"
)

type Handler struct {
	predictionSvc  *services.PredictionService
	predictTimeout time.Duration
}

// New builds the HTTP handlers. A zero predictTimeout disables the per-request
// deadline.
func New(predictionSvc *services.PredictionService, predictTimeout time.Duration) *Handler {
	return &Handler{
		predictionSvc:  predictionSvc,
		predictTimeout: predictTimeout,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Health
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	// Predictions
	r.POST("/predict", h.Predict)
	r.GET("/debug", h.Debug)

	// Cache
	r.DELETE("/cache", h.ClearCache)
	r.GET("/cache/stats", h.CacheStats)
}

func (h *Handler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.predictTimeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.predictTimeout)
}
