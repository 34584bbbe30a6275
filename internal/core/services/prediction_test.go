package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/models"
	"reimbursement-predictor/internal/testutil"
)

func newTestPredictionService(t *testing.T, store *testutil.MockBlobStore, recorder *testutil.MockPredictionRecorder) *PredictionService {
	t.Helper()
	c, _ := newTestCache(t, store)
	if recorder == nil {
		return NewPredictionService(c, NewAdapterFactory(), nil)
	}
	return NewPredictionService(c, NewAdapterFactory(), recorder)
}

// blockGetObject makes the first GetObject for name wait until release is
// closed. fetching is closed once that call has started.
func blockGetObject(store *testutil.MockBlobStore, name domain.ModelName) (fetching, release chan struct{}) {
	fetching = make(chan struct{})
	release = make(chan struct{})
	var once sync.Once
	store.On("GetObject", mock.Anything, name.ObjectKey()).
		Run(func(mock.Arguments) {
			once.Do(func() {
				close(fetching)
				<-release
			})
		}).
		Return(testutil.Artifacts()[name], nil)
	return fetching, release
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting")
	}
}

func assertProbability(t *testing.T, p float64) {
	t.Helper()
	assert.GreaterOrEqual(t, p, 0.0)
	assert.LessOrEqual(t, p, 1.0)
}

func TestPredictionService_PredictAll(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)

	in, err := domain.NewPredictionInput("FONASA", "Hora Médica", 100000)
	require.NoError(t, err)

	result, err := svc.PredictAll(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, result)

	assertProbability(t, result.Classifier.Probability)
	assert.Contains(t, []int{0, 1}, result.Classifier.PredictedClass)
	assertProbability(t, result.BayesianNetwork.Probability)
	assert.GreaterOrEqual(t, result.BayesianNetwork.ExpectedAmount, 0.0)
	assert.GreaterOrEqual(t, result.BayesianNetwork.ExpectedDays, 0.0)
	assertProbability(t, result.Mixture.Probability)
}

func TestPredictionService_PredictAllEveryCategory(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)
	ctx := context.Background()

	for _, isapre := range domain.Isapres() {
		for _, tipo := range domain.Tipos() {
			for _, total := range []int{1, 19_999, 58_000, 250_000, 10_000_000} {
				in := domain.PredictionInput{Isapre: isapre, Tipo: tipo, Total: total}
				result, err := svc.PredictAll(ctx, in)
				require.NoError(t, err, "%+v", in)
				assertProbability(t, result.Classifier.Probability)
				assertProbability(t, result.BayesianNetwork.Probability)
				assertProbability(t, result.Mixture.Probability)
			}
		}
	}

	// Adapters are memoized after the first call.
	store.AssertNumberOfCalls(t, "GetObject", 3)
}

func TestPredictionService_PredictAllFailsWithoutPartialResult(t *testing.T) {
	// A classifier trained without FONASA fails at scoring time.
	narrow, err := json.Marshal(models.LogisticRegression{
		Family:           models.FamilyLogisticRegression,
		IsapreCategories: []string{"Colmena"},
		TipoCategories:   []string{"Hora Médica"},
		TotalScale:       1,
		Coefficients:     []float64{0.1, 0.2, 0.3},
	})
	require.NoError(t, err)

	store := new(testutil.MockBlobStore)
	store.On("GetObject", mock.Anything, "logistic_regressor.json").Return(narrow, nil)
	store.On("GetObject", mock.Anything, "discrete_bayesian_network.json").Return(testutil.BayesianNetworkArtifact(), nil)
	store.On("GetObject", mock.Anything, "gmm.json").Return(testutil.MixtureArtifact(), nil)
	svc := newTestPredictionService(t, store, nil)

	result, err := svc.PredictAll(context.Background(), sampleInput)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrPredictionFailed)

	var perr *domain.PredictionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.ModelClassifier, perr.Model)
}

func TestPredictionService_PredictAllArtifactUnavailable(t *testing.T) {
	store := new(testutil.MockBlobStore)
	store.On("GetObject", mock.Anything, "logistic_regressor.json").Return(testutil.ClassifierArtifact(), nil)
	store.On("GetObject", mock.Anything, "discrete_bayesian_network.json").Return(testutil.BayesianNetworkArtifact(), nil)
	store.On("GetObject", mock.Anything, "gmm.json").Return(nil, fmt.Errorf("%w: gmm.json", domain.ErrBlobNotFound))
	svc := newTestPredictionService(t, store, nil)

	result, err := svc.PredictAll(context.Background(), sampleInput)
	assert.Nil(t, result)

	var unavailable *domain.ArtifactUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, domain.ModelMixture, unavailable.Model)
}

func TestPredictionService_PredictOne(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)

	p, err := svc.PredictOne(context.Background(), domain.ModelMixture, sampleInput)
	require.NoError(t, err)
	assert.IsType(t, domain.MixturePrediction{}, p)
	store.AssertNumberOfCalls(t, "GetObject", 1)
}

func TestPredictionService_UnknownModel(t *testing.T) {
	store := new(testutil.MockBlobStore)
	svc := newTestPredictionService(t, store, nil)

	_, err := svc.PredictOne(context.Background(), domain.ModelName("svm"), sampleInput)
	assert.ErrorIs(t, err, domain.ErrUnknownModel)
	store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
}

func TestPredictionService_RejectsInvalidInput(t *testing.T) {
	store := new(testutil.MockBlobStore)
	svc := newTestPredictionService(t, store, nil)

	tests := []domain.PredictionInput{
		{Isapre: domain.IsapreFonasa, Tipo: domain.TipoDental, Total: 0},
		{Isapre: "Isapre X", Tipo: domain.TipoDental, Total: 10},
		{Isapre: domain.IsapreFonasa, Tipo: "Spa", Total: 10},
	}
	for _, in := range tests {
		_, err := svc.PredictAll(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	store.AssertNotCalled(t, "GetObject", mock.Anything, mock.Anything)
}

func TestPredictionService_RecordsPredictions(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	recorder := new(testutil.MockPredictionRecorder)
	recorder.On("Record", mock.Anything, sampleInput, mock.AnythingOfType("*domain.CombinedPrediction")).Return(nil).Once()
	svc := newTestPredictionService(t, store, recorder)

	_, err := svc.PredictAll(context.Background(), sampleInput)
	require.NoError(t, err)
	recorder.AssertExpectations(t)
}

func TestPredictionService_RecorderFailureDoesNotFailPrediction(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	recorder := new(testutil.MockPredictionRecorder)
	recorder.On("Record", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection refused"))
	svc := newTestPredictionService(t, store, recorder)

	result, err := svc.PredictAll(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestPredictionService_ClearCache(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)
	ctx := context.Background()

	_, err := svc.PredictAll(ctx, sampleInput)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCache())
	_, err = svc.PredictAll(ctx, sampleInput)
	require.NoError(t, err)

	store.AssertNumberOfCalls(t, "GetObject", 6)
}

func TestPredictionService_ClearCacheDuringFetchDropsStaleAdapter(t *testing.T) {
	store := new(testutil.MockBlobStore)
	fetching, release := blockGetObject(store, domain.ModelMixture)
	svc := newTestPredictionService(t, store, nil)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := svc.PredictOne(ctx, domain.ModelMixture, sampleInput)
		done <- err
	}()

	waitFor(t, fetching)
	require.NoError(t, svc.ClearCache())
	close(release)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("prediction did not finish")
	}

	_, memoized := svc.adapters.Load(domain.ModelMixture)
	assert.False(t, memoized)

	_, err := svc.PredictOne(ctx, domain.ModelMixture, sampleInput)
	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "GetObject", 2)

	_, memoized = svc.adapters.Load(domain.ModelMixture)
	assert.True(t, memoized)
}

func TestPredictionService_PredictAllRunsModelsConcurrently(t *testing.T) {
	store := new(testutil.MockBlobStore)

	var arrived sync.WaitGroup
	arrived.Add(len(domain.AllModels()))
	allArrived := make(chan struct{})
	go func() {
		arrived.Wait()
		close(allArrived)
	}()

	var timedOut atomic.Bool
	for name, data := range testutil.Artifacts() {
		store.On("GetObject", mock.Anything, name.ObjectKey()).
			Run(func(mock.Arguments) {
				arrived.Done()
				select {
				case <-allArrived:
				case <-time.After(2 * time.Second):
					timedOut.Store(true)
				}
			}).
			Return(data, nil)
	}
	svc := newTestPredictionService(t, store, nil)

	_, err := svc.PredictAll(context.Background(), sampleInput)
	require.NoError(t, err)
	assert.False(t, timedOut.Load(), "model fetches did not overlap")
}

func TestPredictionService_ConcurrentFirstUseConverges(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)
	ctx := context.Background()

	const callers = 16
	start := make(chan struct{})
	results := make([]domain.Prediction, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			results[i], errs[i] = svc.PredictOne(ctx, domain.ModelClassifier, sampleInput)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}

	first, err := svc.adapter(ctx, domain.ModelClassifier)
	require.NoError(t, err)
	second, err := svc.adapter(ctx, domain.ModelClassifier)
	require.NoError(t, err)
	assert.True(t, first == second, "memoized adapter changed between calls")

	fetches := len(store.Calls)
	assert.GreaterOrEqual(t, fetches, 1)
	assert.LessOrEqual(t, fetches, callers)
}

func TestPredictionService_Ready(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)
	assert.NoError(t, svc.Ready(context.Background()))

	missing := new(testutil.MockBlobStore)
	missing.On("HeadObject", mock.Anything, "logistic_regressor.json").Return(true, nil)
	missing.On("HeadObject", mock.Anything, "discrete_bayesian_network.json").Return(false, nil)
	svc = newTestPredictionService(t, missing, nil)

	err := svc.Ready(context.Background())
	var unavailable *domain.ArtifactUnavailableError
	require.True(t, errors.As(err, &unavailable))
	assert.Equal(t, domain.ModelBayesianNetwork, unavailable.Model)
}

func TestPredictionService_RunDebugInference(t *testing.T) {
	store := new(testutil.MockBlobStore).ServeArtifacts()
	svc := newTestPredictionService(t, store, nil)

	report := svc.RunDebugInference(context.Background())
	require.NoError(t, report.Err)
	require.Len(t, report.Results, 3)
	for i, r := range report.Results {
		assert.Equal(t, DebugCases[i].Model, r.Prediction.Model())
	}
}

func TestPredictionService_RunDebugInferenceReportsError(t *testing.T) {
	store := new(testutil.MockBlobStore)
	store.On("GetObject", mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: i/o timeout"))
	svc := newTestPredictionService(t, store, nil)

	report := svc.RunDebugInference(context.Background())
	assert.Empty(t, report.Results)
	assert.ErrorIs(t, report.Err, domain.ErrArtifactUnavailable)
}
