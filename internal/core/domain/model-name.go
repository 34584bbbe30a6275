package domain

import "k8s.io/apimachinery/pkg/util/sets"

// ModelName is the logical identifier of a served model. It doubles as the
// cache key and the adapter dispatch key.
type ModelName string

const (
	ModelClassifier      ModelName = "logistic_regressor"
	ModelBayesianNetwork ModelName = "discrete_bayesian_network"
	ModelMixture         ModelName = "gmm"
)

// ArtifactSuffix is appended to a model name to form both the remote object
// key and the local cache file name.
const ArtifactSuffix = ".json"

var modelNames = sets.New(ModelClassifier, ModelBayesianNetwork, ModelMixture)

// AllModels returns the served models in response order.
func AllModels() []ModelName {
	return []ModelName{ModelClassifier, ModelBayesianNetwork, ModelMixture}
}

func ParseModelName(s string) (ModelName, error) {
	name := ModelName(s)
	if !name.Valid() {
		return "", UnknownModelError(name)
	}
	return name, nil
}

func (n ModelName) Valid() bool {
	return modelNames.Has(n)
}

func (n ModelName) String() string {
	return string(n)
}

func (n ModelName) ObjectKey() string {
	return string(n) + ArtifactSuffix
}
