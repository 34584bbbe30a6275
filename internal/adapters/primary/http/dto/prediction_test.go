package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/services"
)

func TestPredictRequest_ToDomain(t *testing.T) {
	in, err := PredictRequest{Isapre: "FONASA", Tipo: "Hora Médica", Total: 100000}.ToDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.IsapreFonasa, in.Isapre)
	assert.Equal(t, domain.TipoHoraMedica, in.Tipo)
	assert.Equal(t, 100000, in.Total)

	_, err = PredictRequest{Isapre: "FONASA", Tipo: "Hora Médica", Total: 0}.ToDomain()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestToPredictionResponse_TruncatesAndMapsClass(t *testing.T) {
	resp := ToPredictionResponse(&domain.CombinedPrediction{
		Classifier:      domain.ClassifierPrediction{Probability: 0.73, PredictedClass: 1},
		BayesianNetwork: domain.BayesianNetworkPrediction{Probability: 0.5, ExpectedAmount: 41999.99, ExpectedDays: 7.9},
		Mixture:         domain.MixturePrediction{Probability: 0.2},
	})

	assert.Equal(t, 0.73, resp.LogisticRegression.Probability)
	assert.True(t, resp.LogisticRegression.ChosenClass)
	assert.Equal(t, 41999, resp.BayesianNetwork.ExpectedReimbursement)
	assert.Equal(t, 7, resp.BayesianNetwork.ExpectedWait)
	assert.Equal(t, 0.2, resp.GMM.Probability)

	resp = ToPredictionResponse(&domain.CombinedPrediction{
		Classifier: domain.ClassifierPrediction{Probability: 0.1, PredictedClass: 0},
	})
	assert.False(t, resp.LogisticRegression.ChosenClass)
}

func TestToDebugResponse(t *testing.T) {
	cases := services.DebugCases
	report := &services.DebugReport{
		Results: []services.DebugResult{
			{Case: cases[0], Prediction: domain.ClassifierPrediction{Probability: 0.6, PredictedClass: 1}},
			{Case: cases[1], Prediction: domain.BayesianNetworkPrediction{Probability: 0.4, ExpectedAmount: 20000, ExpectedDays: 3}},
		},
		Err: errors.New("gmm unavailable"),
	}

	resp := ToDebugResponse(report)

	require.NotNil(t, resp.LogisticRegression)
	assert.Equal(t, cases[0].Input, resp.LogisticRegression.Input)
	assert.Equal(t, 1, resp.LogisticRegression.PredictedClass)
	require.NotNil(t, resp.BayesianNetwork)
	assert.Equal(t, 20000.0, resp.BayesianNetwork.ExpectedAmountCLP)
	assert.Nil(t, resp.GMM)
	assert.Equal(t, "gmm unavailable", resp.Error)
}
