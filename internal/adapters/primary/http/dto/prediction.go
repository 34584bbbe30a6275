package dto

import (
	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/services"
)

// ============================================================================
// Prediction DTOs
// ============================================================================

// PredictRequest is validated by domain.NewPredictionInput rather than binding
// tags so every constraint violation maps to the same 422 response.
type PredictRequest struct {
	Isapre string `json:"isapre"`
	Tipo   string `json:"tipo"`
	Total  int    `json:"total"`
}

func (r PredictRequest) ToDomain() (domain.PredictionInput, error) {
	return domain.NewPredictionInput(r.Isapre, r.Tipo, r.Total)
}

type LogisticRegressionResponse struct {
	Probability float64 `json:"probability"`
	ChosenClass bool    `json:"chosen_class"`
}

type BayesianNetworkResponse struct {
	Probability           float64 `json:"probability"`
	ExpectedReimbursement int     `json:"expected_reimbursement"`
	ExpectedWait          int     `json:"expected_wait"`
}

type GMMResponse struct {
	Probability float64 `json:"probability"`
}

type PredictionResponse struct {
	LogisticRegression LogisticRegressionResponse `json:"logistic_regression"`
	BayesianNetwork    BayesianNetworkResponse    `json:"bayesian_network"`
	GMM                GMMResponse                `json:"gmm"`
}

// ToPredictionResponse truncates the expected amount and wait toward zero.
func ToPredictionResponse(p *domain.CombinedPrediction) PredictionResponse {
	return PredictionResponse{
		LogisticRegression: LogisticRegressionResponse{
			Probability: p.Classifier.Probability,
			ChosenClass: p.Classifier.PredictedClass == 1,
		},
		BayesianNetwork: BayesianNetworkResponse{
			Probability:           p.BayesianNetwork.Probability,
			ExpectedReimbursement: int(p.BayesianNetwork.ExpectedAmount),
			ExpectedWait:          int(p.BayesianNetwork.ExpectedDays),
		},
		GMM: GMMResponse{
			Probability: p.Mixture.Probability,
		},
	}
}

// ============================================================================
// Debug DTOs
// ============================================================================

const classInterpretation = "1 = habrá reembolso, 0 = no habrá"

type DebugClassifierResult struct {
	Input          domain.PredictionInput `json:"input"`
	Probability    float64                `json:"probability"`
	PredictedClass int                    `json:"predicted_class"`
	Interpretation string                 `json:"interpretation"`
}

type DebugBayesianNetworkResult struct {
	Input             domain.PredictionInput `json:"input"`
	Probability       float64                `json:"probability"`
	ExpectedAmountCLP float64                `json:"expected_amount_clp"`
	ExpectedDays      float64                `json:"expected_days"`
}

type DebugGMMResult struct {
	Input       domain.PredictionInput `json:"input"`
	Probability float64                `json:"probability"`
}

// DebugResponse only carries the entries whose prediction succeeded.
type DebugResponse struct {
	LogisticRegression *DebugClassifierResult      `json:"logistic_regression,omitempty"`
	BayesianNetwork    *DebugBayesianNetworkResult `json:"bayesian_network,omitempty"`
	GMM                *DebugGMMResult             `json:"gmm,omitempty"`
	Error              string                      `json:"error,omitempty"`
}

func ToDebugResponse(report *services.DebugReport) DebugResponse {
	var resp DebugResponse
	for _, r := range report.Results {
		switch p := r.Prediction.(type) {
		case domain.ClassifierPrediction:
			resp.LogisticRegression = &DebugClassifierResult{
				Input:          r.Case.Input,
				Probability:    p.Probability,
				PredictedClass: p.PredictedClass,
				Interpretation: classInterpretation,
			}
		case domain.BayesianNetworkPrediction:
			resp.BayesianNetwork = &DebugBayesianNetworkResult{
				Input:             r.Case.Input,
				Probability:       p.Probability,
				ExpectedAmountCLP: p.ExpectedAmount,
				ExpectedDays:      p.ExpectedDays,
			}
		case domain.MixturePrediction:
			resp.GMM = &DebugGMMResult{
				Input:       r.Case.Input,
				Probability: p.Probability,
			}
		}
	}
	if report.Err != nil {
		resp.Error = report.Err.Error()
	}
	return resp
}
