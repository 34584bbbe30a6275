package services

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

// PredictionService owns one memoized adapter per model and fans a single
// input out to every model.
//
// Adapters are built lazily on first use. Two callers racing on the same model
// may both build one; the first stored wins and later calls observe it.
type PredictionService struct {
	cache    *ArtifactCache
	factory  *AdapterFactory
	recorder ports.PredictionRecorder

	adapters sync.Map // domain.ModelName -> ModelAdapter

	// mu orders adapter memoization against ClearCache. epoch is bumped on
	// every clear so an adapter built from an older artifact is not kept.
	mu    sync.Mutex
	epoch uint64
}

// NewPredictionService wires the service. recorder may be nil.
func NewPredictionService(cache *ArtifactCache, factory *AdapterFactory, recorder ports.PredictionRecorder) *PredictionService {
	return &PredictionService{cache: cache, factory: factory, recorder: recorder}
}

// PredictOne runs a single model, loading its artifact on first use.
func (s *PredictionService) PredictOne(ctx context.Context, name domain.ModelName, in domain.PredictionInput) (domain.Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	adapter, err := s.adapter(ctx, name)
	if err != nil {
		return nil, err
	}
	return adapter.Predict(in)
}

// PredictAll runs every model concurrently and returns the combined result.
// If any model fails the whole call fails and no partial result is returned.
func (s *PredictionService) PredictAll(ctx context.Context, in domain.PredictionInput) (*domain.CombinedPrediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var combined domain.CombinedPrediction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return predictInto(gctx, s, domain.ModelClassifier, in, &combined.Classifier)
	})
	g.Go(func() error {
		return predictInto(gctx, s, domain.ModelBayesianNetwork, in, &combined.BayesianNetwork)
	})
	g.Go(func() error {
		return predictInto(gctx, s, domain.ModelMixture, in, &combined.Mixture)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, in, &combined); err != nil {
			log.WithError(err).Warn("record prediction failed")
		}
	}
	return &combined, nil
}

func predictInto[T domain.Prediction](ctx context.Context, s *PredictionService, name domain.ModelName, in domain.PredictionInput, dst *T) error {
	p, err := s.PredictOne(ctx, name, in)
	if err != nil {
		return err
	}
	typed, ok := p.(T)
	if !ok {
		return &domain.PredictionError{Model: name, Err: fmt.Errorf("unexpected result type %T", p)}
	}
	*dst = typed
	return nil
}

// ClearCache forgets every adapter and invalidates all cached artifacts.
// Adapters still being built from the old artifacts serve their own request
// but are not memoized.
func (s *PredictionService) ClearCache() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.adapters.Clear()
	return s.cache.InvalidateAll()
}

// Ready reports an error unless every model's artifact exists remotely.
func (s *PredictionService) Ready(ctx context.Context) error {
	for _, name := range domain.AllModels() {
		ok, err := s.cache.RemoteExists(ctx, name)
		if err != nil {
			return &domain.ArtifactUnavailableError{Model: name, Err: err}
		}
		if !ok {
			return &domain.ArtifactUnavailableError{Model: name, Err: domain.ErrBlobNotFound}
		}
	}
	return nil
}

func (s *PredictionService) CacheStats() CacheStats {
	return s.cache.Stats()
}

func (s *PredictionService) adapter(ctx context.Context, name domain.ModelName) (ModelAdapter, error) {
	if !name.Valid() {
		return nil, domain.UnknownModelError(name)
	}
	if a, ok := s.adapters.Load(name); ok {
		return a.(ModelAdapter), nil
	}

	epoch := s.currentEpoch()
	artifact, err := s.cache.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	adapter, err := s.factory.Create(name, artifact)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return adapter, nil
	}
	actual, _ := s.adapters.LoadOrStore(name, adapter)
	return actual.(ModelAdapter), nil
}

func (s *PredictionService) currentEpoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}
