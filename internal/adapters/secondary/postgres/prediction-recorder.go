package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

// execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const createPredictionLog = `
	CREATE TABLE IF NOT EXISTS prediction_log (
		id                     UUID PRIMARY KEY,
		isapre                 TEXT             NOT NULL,
		tipo                   TEXT             NOT NULL,
		total                  INTEGER          NOT NULL,
		classifier_probability DOUBLE PRECISION NOT NULL,
		classifier_class       SMALLINT         NOT NULL,
		bayes_probability      DOUBLE PRECISION NOT NULL,
		bayes_expected_amount  DOUBLE PRECISION NOT NULL,
		bayes_expected_days    DOUBLE PRECISION NOT NULL,
		mixture_probability    DOUBLE PRECISION NOT NULL,
		recorded_at            TIMESTAMPTZ      NOT NULL DEFAULT NOW()
	)
`

type predictionRecorder struct {
	db execer
}

func NewPredictionRecorder(db execer) ports.PredictionRecorder {
	return &predictionRecorder{db: db}
}

// EnsureSchema creates the prediction_log table if it does not exist.
func EnsureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, createPredictionLog); err != nil {
		return fmt.Errorf("create prediction_log: %w", err)
	}
	return nil
}

func (r *predictionRecorder) Record(ctx context.Context, in domain.PredictionInput, out *domain.CombinedPrediction) error {
	if out == nil {
		return errors.New("record prediction: nil result")
	}

	query := `
		INSERT INTO prediction_log
			(id, isapre, tipo, total,
			 classifier_probability, classifier_class,
			 bayes_probability, bayes_expected_amount, bayes_expected_days,
			 mixture_probability, recorded_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW())
	`
	_, err := r.db.Exec(ctx, query,
		uuid.New(), string(in.Isapre), string(in.Tipo), in.Total,
		out.Classifier.Probability, out.Classifier.PredictedClass,
		out.BayesianNetwork.Probability, out.BayesianNetwork.ExpectedAmount, out.BayesianNetwork.ExpectedDays,
		out.Mixture.Probability,
	)
	if err != nil {
		return fmt.Errorf("record prediction: %w", err)
	}
	return nil
}
