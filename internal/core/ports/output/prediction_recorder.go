package ports

import (
	"context"

	"reimbursement-predictor/internal/core/domain"
)

// PredictionRecorder persists served predictions for later analysis.
type PredictionRecorder interface {
	Record(ctx context.Context, in domain.PredictionInput, out *domain.CombinedPrediction) error
}
