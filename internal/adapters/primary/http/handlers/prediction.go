package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"reimbursement-predictor/internal/adapters/primary/http/dto"
	"reimbursement-predictor/internal/adapters/primary/http/middleware"
)

func (h *Handler) Predict(c *gin.Context) {
	var req dto.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		mapDomainError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	result, err := h.predictionSvc.PredictAll(ctx, in)
	if err != nil {
		middleware.Logger(c).WithError(err).WithFields(log.Fields{
			"isapre": in.Isapre,
			"tipo":   in.Tipo,
			"total":  in.Total,
		}).Error("predict failed")
		mapDomainError(c, err)
		return
	}

	resp := dto.ToPredictionResponse(result)
	middleware.Logger(c).WithFields(log.Fields{
		"isapre":       in.Isapre,
		"tipo":         in.Tipo,
		"total":        in.Total,
		"lr_proba":     resp.LogisticRegression.Probability,
		"lr_class":     resp.LogisticRegression.ChosenClass,
		"bn_proba":     resp.BayesianNetwork.Probability,
		"bn_amount":    resp.BayesianNetwork.ExpectedReimbursement,
		"bn_wait_days": resp.BayesianNetwork.ExpectedWait,
		"gmm_proba":    resp.GMM.Probability,
	}).Info("prediction completed")

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Debug(c *gin.Context) {
	ctx, cancel := h.requestContext(c)
	defer cancel()

	report := h.predictionSvc.RunDebugInference(ctx)
	for _, r := range report.Results {
		middleware.Logger(c).WithFields(log.Fields{
			"model":  r.Case.Model,
			"isapre": r.Case.Input.Isapre,
			"tipo":   r.Case.Input.Tipo,
			"total":  r.Case.Input.Total,
		}).Infof("debug inference: %+v", r.Prediction)
	}

	c.JSON(http.StatusOK, dto.ToDebugResponse(report))
}
