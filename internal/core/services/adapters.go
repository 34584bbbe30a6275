package services

import (
	"fmt"
	"math"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/models"
)

// ModelAdapter normalizes one model family's native prediction call into the
// shared contract. Implementations hold only an immutable model reference and
// are safe for concurrent use.
type ModelAdapter interface {
	Model() domain.ModelName
	Predict(in domain.PredictionInput) (domain.Prediction, error)
}

// ProbabilisticClassifier is the native interface of tabular classifiers.
type ProbabilisticClassifier interface {
	PredictProba(rows []models.Row) ([][2]float64, error)
	Predict(rows []models.Row) ([]int, error)
}

// JointQueryModel answers probability, expected amount and expected days in a
// single query.
type JointQueryModel interface {
	PredictAll(isapre, tipo string, total int) (float64, float64, float64, error)
}

// DensityScorer scores one augmented record.
type DensityScorer interface {
	Score(r models.Record) (float64, error)
}

// ============================================================================
// Classifier
// ============================================================================

type ClassifierAdapter struct {
	model ProbabilisticClassifier
}

func NewClassifierAdapter(model ProbabilisticClassifier) *ClassifierAdapter {
	return &ClassifierAdapter{model: model}
}

func (a *ClassifierAdapter) Model() domain.ModelName { return domain.ModelClassifier }

func (a *ClassifierAdapter) Predict(in domain.PredictionInput) (domain.Prediction, error) {
	rows := []models.Row{{Isapre: string(in.Isapre), Tipo: string(in.Tipo), Total: float64(in.Total)}}

	proba, err := a.model.PredictProba(rows)
	if err != nil {
		return nil, a.fail(err)
	}
	classes, err := a.model.Predict(rows)
	if err != nil {
		return nil, a.fail(err)
	}
	if len(proba) != 1 || len(classes) != 1 {
		return nil, a.fail(fmt.Errorf("expected 1 result row, got %d probabilities and %d classes", len(proba), len(classes)))
	}

	p := proba[0][1]
	if err := checkProbability(p); err != nil {
		return nil, a.fail(err)
	}
	class := classes[0]
	if class != 0 && class != 1 {
		return nil, a.fail(fmt.Errorf("predicted class %d outside {0, 1}", class))
	}
	return domain.ClassifierPrediction{Probability: p, PredictedClass: class}, nil
}

func (a *ClassifierAdapter) fail(err error) error {
	return &domain.PredictionError{Model: domain.ModelClassifier, Err: err}
}

// ============================================================================
// Bayesian network
// ============================================================================

type BayesianNetworkAdapter struct {
	model JointQueryModel
}

func NewBayesianNetworkAdapter(model JointQueryModel) *BayesianNetworkAdapter {
	return &BayesianNetworkAdapter{model: model}
}

func (a *BayesianNetworkAdapter) Model() domain.ModelName { return domain.ModelBayesianNetwork }

func (a *BayesianNetworkAdapter) Predict(in domain.PredictionInput) (domain.Prediction, error) {
	p, amount, days, err := a.model.PredictAll(string(in.Isapre), string(in.Tipo), in.Total)
	if err != nil {
		return nil, a.fail(err)
	}
	if err := checkProbability(p); err != nil {
		return nil, a.fail(err)
	}
	if math.IsNaN(amount) || math.IsNaN(days) {
		return nil, a.fail(fmt.Errorf("expected amount %v or days %v is NaN", amount, days))
	}
	return domain.BayesianNetworkPrediction{Probability: p, ExpectedAmount: amount, ExpectedDays: days}, nil
}

func (a *BayesianNetworkAdapter) fail(err error) error {
	return &domain.PredictionError{Model: domain.ModelBayesianNetwork, Err: err}
}

// ============================================================================
// Mixture model
// ============================================================================

type MixtureAdapter struct {
	model DensityScorer
}

func NewMixtureAdapter(model DensityScorer) *MixtureAdapter {
	return &MixtureAdapter{model: model}
}

func (a *MixtureAdapter) Model() domain.ModelName { return domain.ModelMixture }

func (a *MixtureAdapter) Predict(in domain.PredictionInput) (domain.Prediction, error) {
	record := models.Record{
		Isapre:   string(in.Isapre),
		Tipo:     string(in.Tipo),
		Total:    float64(in.Total),
		TotalLog: in.TotalLog(),
	}
	p, err := a.model.Score(record)
	if err != nil {
		return nil, a.fail(err)
	}
	if err := checkProbability(p); err != nil {
		return nil, a.fail(err)
	}
	return domain.MixturePrediction{Probability: p}, nil
}

func (a *MixtureAdapter) fail(err error) error {
	return &domain.PredictionError{Model: domain.ModelMixture, Err: err}
}

func checkProbability(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return fmt.Errorf("probability %v outside [0, 1]", p)
	}
	return nil
}
