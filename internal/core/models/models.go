// Package models holds the native, in-process representations of the trained
// model families and the decoders that materialize them from artifact bytes.
package models

import (
	"errors"
	"fmt"
	"math"
)

const (
	FamilyLogisticRegression      = "logistic_regression"
	FamilyDiscreteBayesianNetwork = "discrete_bayesian_network"
	FamilyGaussianMixture         = "gaussian_mixture"
)

var (
	ErrInvalidArtifact = errors.New("invalid model artifact")
	ErrUnknownCategory = errors.New("unknown category")
	ErrInvalidFeature  = errors.New("invalid feature value")
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArtifact, fmt.Sprintf(format, args...))
}

func checkFamily(got, want string) error {
	if got != want {
		return invalidf("family %q, expected %q", got, want)
	}
	return nil
}

func indexCategories(field string, values []string) (map[string]int, error) {
	if len(values) == 0 {
		return nil, invalidf("%s categories are empty", field)
	}
	index := make(map[string]int, len(values))
	for i, v := range values {
		if _, dup := index[v]; dup {
			return nil, invalidf("duplicate %s category %q", field, v)
		}
		index[v] = i
	}
	return index, nil
}

func isProbability(p float64) bool {
	return !math.IsNaN(p) && p >= 0 && p <= 1
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
