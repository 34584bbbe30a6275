package domain

// Prediction is the closed set of per-model results. Only the variants in this
// package implement it.
type Prediction interface {
	Model() ModelName
	isPrediction()
}

// ClassifierPrediction is the logistic regressor's output. PredictedClass is
// 1 when a reimbursement is expected and 0 otherwise.
type ClassifierPrediction struct {
	Probability    float64
	PredictedClass int
}

// BayesianNetworkPrediction carries the joint query result: reimbursement
// probability, expected reimbursed amount (CLP) and expected approval days.
type BayesianNetworkPrediction struct {
	Probability    float64
	ExpectedAmount float64
	ExpectedDays   float64
}

// MixturePrediction is the approval probability from the mixture model.
type MixturePrediction struct {
	Probability float64
}

func (ClassifierPrediction) Model() ModelName      { return ModelClassifier }
func (BayesianNetworkPrediction) Model() ModelName { return ModelBayesianNetwork }
func (MixturePrediction) Model() ModelName         { return ModelMixture }

func (ClassifierPrediction) isPrediction()      {}
func (BayesianNetworkPrediction) isPrediction() {}
func (MixturePrediction) isPrediction()         {}

// CombinedPrediction holds one result per served model. It is only built once
// every model has answered.
type CombinedPrediction struct {
	Classifier      ClassifierPrediction
	BayesianNetwork BayesianNetworkPrediction
	Mixture         MixturePrediction
}
