package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/models"
)

type fakeClassifier struct {
	probaRows   [][]models.Row
	predictRows [][]models.Row
	proba       [][2]float64
	classes     []int
	err         error
}

func (f *fakeClassifier) PredictProba(rows []models.Row) ([][2]float64, error) {
	f.probaRows = append(f.probaRows, rows)
	return f.proba, f.err
}

func (f *fakeClassifier) Predict(rows []models.Row) ([]int, error) {
	f.predictRows = append(f.predictRows, rows)
	return f.classes, f.err
}

type fakeJointModel struct {
	isapre, tipo string
	total        int
	p, amount    float64
	days         float64
	err          error
}

func (f *fakeJointModel) PredictAll(isapre, tipo string, total int) (float64, float64, float64, error) {
	f.isapre, f.tipo, f.total = isapre, tipo, total
	return f.p, f.amount, f.days, f.err
}

type fakeScorer struct {
	record models.Record
	p      float64
	err    error
}

func (f *fakeScorer) Score(r models.Record) (float64, error) {
	f.record = r
	return f.p, f.err
}

var sampleInput = domain.PredictionInput{Isapre: domain.IsapreFonasa, Tipo: domain.TipoHoraMedica, Total: 100_000}

func TestClassifierAdapter_UsesSameRowForBothCalls(t *testing.T) {
	model := &fakeClassifier{proba: [][2]float64{{0.3, 0.7}}, classes: []int{1}}
	adapter := NewClassifierAdapter(model)

	p, err := adapter.Predict(sampleInput)
	require.NoError(t, err)
	assert.Equal(t, domain.ClassifierPrediction{Probability: 0.7, PredictedClass: 1}, p)
	assert.Equal(t, domain.ModelClassifier, p.Model())

	require.Len(t, model.probaRows, 1)
	require.Len(t, model.predictRows, 1)
	assert.Equal(t, model.probaRows[0], model.predictRows[0])
	assert.Equal(t, models.Row{Isapre: "FONASA", Tipo: "Hora Médica", Total: 100000}, model.probaRows[0][0])
}

func TestClassifierAdapter_Failures(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeClassifier
	}{
		{"native error", &fakeClassifier{err: models.ErrUnknownCategory}},
		{"probability out of range", &fakeClassifier{proba: [][2]float64{{-0.2, 1.2}}, classes: []int{1}}},
		{"bad class", &fakeClassifier{proba: [][2]float64{{0.5, 0.5}}, classes: []int{2}}},
		{"row count", &fakeClassifier{proba: [][2]float64{}, classes: []int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifierAdapter(tt.model).Predict(sampleInput)
			assert.ErrorIs(t, err, domain.ErrPredictionFailed)

			var perr *domain.PredictionError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, domain.ModelClassifier, perr.Model)
		})
	}
}

func TestBayesianNetworkAdapter_SingleJointQuery(t *testing.T) {
	model := &fakeJointModel{p: 0.64, amount: 22000, days: 12.5}
	adapter := NewBayesianNetworkAdapter(model)

	p, err := adapter.Predict(sampleInput)
	require.NoError(t, err)
	assert.Equal(t, domain.BayesianNetworkPrediction{Probability: 0.64, ExpectedAmount: 22000, ExpectedDays: 12.5}, p)
	assert.Equal(t, "FONASA", model.isapre)
	assert.Equal(t, "Hora Médica", model.tipo)
	assert.Equal(t, 100_000, model.total)
}

func TestBayesianNetworkAdapter_PropagatesNativeError(t *testing.T) {
	_, err := NewBayesianNetworkAdapter(&fakeJointModel{err: models.ErrUnknownCategory}).Predict(sampleInput)
	assert.ErrorIs(t, err, domain.ErrPredictionFailed)
	assert.ErrorIs(t, err, models.ErrUnknownCategory)
}

func TestMixtureAdapter_AppendsLogFeature(t *testing.T) {
	model := &fakeScorer{p: 0.42}
	adapter := NewMixtureAdapter(model)

	p, err := adapter.Predict(sampleInput)
	require.NoError(t, err)
	assert.Equal(t, domain.MixturePrediction{Probability: 0.42}, p)
	assert.Equal(t, 100000.0, model.record.Total)
	assert.InDelta(t, math.Log1p(100000), model.record.TotalLog, 1e-12)
}

func TestMixtureAdapter_RejectsNaN(t *testing.T) {
	_, err := NewMixtureAdapter(&fakeScorer{p: math.NaN()}).Predict(sampleInput)
	assert.ErrorIs(t, err, domain.ErrPredictionFailed)
}
