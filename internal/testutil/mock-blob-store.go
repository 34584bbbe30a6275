package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

// MockBlobStore is a mock of ports.BlobStore.
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, data []byte) (string, error) {
	args := m.Called(ctx, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) PutObject(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockBlobStore) GetObject(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockBlobStore) HeadObject(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// ServeArtifacts makes GetObject and HeadObject answer for every served model
// from the standard fixtures.
func (m *MockBlobStore) ServeArtifacts() *MockBlobStore {
	for name, data := range Artifacts() {
		m.On("GetObject", mock.Anything, name.ObjectKey()).Return(data, nil)
		m.On("HeadObject", mock.Anything, name.ObjectKey()).Return(true, nil)
	}
	return m
}

// MockPredictionRecorder is a mock of ports.PredictionRecorder.
type MockPredictionRecorder struct {
	mock.Mock
}

func (m *MockPredictionRecorder) Record(ctx context.Context, in domain.PredictionInput, out *domain.CombinedPrediction) error {
	args := m.Called(ctx, in, out)
	return args.Error(0)
}

var (
	_ ports.BlobStore          = (*MockBlobStore)(nil)
	_ ports.PredictionRecorder = (*MockPredictionRecorder)(nil)
)
