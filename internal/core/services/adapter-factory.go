package services

import (
	"fmt"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/models"
)

type modelFamily struct {
	decode func(data []byte) (any, error)
	adapt  func(artifact any) (ModelAdapter, bool)
}

// AdapterFactory maps each served model to the decoder for its artifact bytes
// and the adapter wrapping the decoded model. It performs no I/O.
type AdapterFactory struct {
	families map[domain.ModelName]modelFamily
}

func NewAdapterFactory() *AdapterFactory {
	return &AdapterFactory{
		families: map[domain.ModelName]modelFamily{
			domain.ModelClassifier: {
				decode: func(data []byte) (any, error) { return models.DecodeLogisticRegression(data) },
				adapt: func(artifact any) (ModelAdapter, bool) {
					m, ok := artifact.(ProbabilisticClassifier)
					if !ok {
						return nil, false
					}
					return NewClassifierAdapter(m), true
				},
			},
			domain.ModelBayesianNetwork: {
				decode: func(data []byte) (any, error) { return models.DecodeDiscreteBayesianNetwork(data) },
				adapt: func(artifact any) (ModelAdapter, bool) {
					m, ok := artifact.(JointQueryModel)
					if !ok {
						return nil, false
					}
					return NewBayesianNetworkAdapter(m), true
				},
			},
			domain.ModelMixture: {
				decode: func(data []byte) (any, error) { return models.DecodeGaussianMixture(data) },
				adapt: func(artifact any) (ModelAdapter, bool) {
					m, ok := artifact.(DensityScorer)
					if !ok {
						return nil, false
					}
					return NewMixtureAdapter(m), true
				},
			},
		},
	}
}

// Decode materializes artifact bytes for name. It is the ArtifactDecoder the
// cache is built with, which keeps the cache unaware of model families.
func (f *AdapterFactory) Decode(name domain.ModelName, data []byte) (any, error) {
	family, ok := f.families[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrAdapterConfiguration, domain.UnknownModelError(name))
	}
	artifact, err := family.decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorruptedArtifact, name, err)
	}
	return artifact, nil
}

// Create wraps a materialized artifact in the adapter for name.
func (f *AdapterFactory) Create(name domain.ModelName, artifact any) (ModelAdapter, error) {
	family, ok := f.families[name]
	if !ok {
		return nil, fmt.Errorf("%w: %w", domain.ErrAdapterConfiguration, domain.UnknownModelError(name))
	}
	adapter, ok := family.adapt(artifact)
	if !ok {
		return nil, fmt.Errorf("%w: artifact %T does not fit model %s", domain.ErrAdapterConfiguration, artifact, name)
	}
	return adapter, nil
}
