package redisblob

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
)

type store struct {
	client *redis.Client
	prefix string
}

// NewStore keeps model artifacts as plain string values under prefix+key.
// Useful for local development where no R2 bucket is available.
func NewStore(client *redis.Client, prefix string) ports.BlobStore {
	return &store{client: client, prefix: prefix}
}

func (s *store) Put(ctx context.Context, data []byte) (string, error) {
	id := uuid.New().String()
	if err := s.PutObject(ctx, id+domain.ArtifactSuffix, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *store) PutObject(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *store) GetObject(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrBlobNotFound, key)
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *store) HeadObject(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}
	return n > 0, nil
}
