package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"reimbursement-predictor/internal/core/domain"
)

// DebugCase is a fixed input run against one model by RunDebugInference.
type DebugCase struct {
	Model domain.ModelName
	Input domain.PredictionInput
}

// DebugCases pairs each model with a known claim.
var DebugCases = []DebugCase{
	{Model: domain.ModelClassifier, Input: domain.PredictionInput{Isapre: domain.IsapreFonasa, Tipo: domain.TipoHoraMedica, Total: 100_000}},
	{Model: domain.ModelBayesianNetwork, Input: domain.PredictionInput{Isapre: domain.IsapreCruzBlanca, Tipo: domain.TipoExamenesImagenes, Total: 58_000}},
	{Model: domain.ModelMixture, Input: domain.PredictionInput{Isapre: domain.IsapreBanmedica, Tipo: domain.TipoFonoaudiologia, Total: 60_000}},
}

type DebugResult struct {
	Case       DebugCase
	Prediction domain.Prediction
}

// DebugReport holds the debug results gathered before the first failure, if
// any.
type DebugReport struct {
	Results []DebugResult
	Err     error
}

// RunDebugInference runs every debug case in order and stops at the first error,
// which is reported in the result instead of returned.
func (s *PredictionService) RunDebugInference(ctx context.Context) *DebugReport {
	report := &DebugReport{}
	for _, dc := range DebugCases {
		p, err := s.PredictOne(ctx, dc.Model, dc.Input)
		if err != nil {
			log.WithError(err).WithField("model", dc.Model).Warn("debug inference failed")
			report.Err = err
			return report
		}
		report.Results = append(report.Results, DebugResult{Case: dc, Prediction: p})
	}
	return report
}
