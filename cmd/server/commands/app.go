package commands

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"reimbursement-predictor/internal/adapters/secondary/r2"
	"reimbursement-predictor/internal/adapters/secondary/redisblob"
	"reimbursement-predictor/internal/config"
	"reimbursement-predictor/internal/core/domain"
	"reimbursement-predictor/internal/core/ports/output"
	"reimbursement-predictor/internal/core/services"
)

// app holds the wiring shared by every command.
type app struct {
	store      ports.BlobStore
	factory    *services.AdapterFactory
	cache      *services.ArtifactCache
	prediction *services.PredictionService
	closers    []func()
}

func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.ValidateBlobStore(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBlobStoreNotAvailable, err)
	}
	a := &app{factory: services.NewAdapterFactory()}

	store, err := a.newBlobStore(cfg)
	if err != nil {
		return nil, err
	}
	a.store = store

	a.cache, err = services.NewArtifactCache(store, a.factory.Decode, cfg.Cache.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init model cache: %w", err)
	}
	a.prediction = services.NewPredictionService(a.cache, a.factory, nil)
	return a, nil
}

func (a *app) newBlobStore(cfg *config.Config) (ports.BlobStore, error) {
	switch cfg.BlobStore.Backend {
	case config.BlobStoreR2:
		store, err := r2.NewClient(r2.Config{
			Endpoint:        cfg.R2.Endpoint(),
			AccessKeyID:     cfg.R2.AccessKeyID,
			SecretAccessKey: cfg.R2.SecretAccessKey,
			Bucket:          cfg.R2.Bucket,
			Namespace:       cfg.R2.Namespace,
			UsePathStyle:    cfg.R2.UsePathStyle,
		})
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"bucket":    cfg.R2.Bucket,
			"namespace": cfg.R2.Namespace,
		}).Info("R2 blob store initialized")
		return store, nil

	case config.BlobStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.WithField("addr", cfg.Redis.Addr).Info("Redis blob store initialized")
		return redisblob.NewStore(client, cfg.Redis.KeyPrefix), nil

	default:
		return nil, fmt.Errorf("%w: backend %q", domain.ErrBlobStoreNotAvailable, cfg.BlobStore.Backend)
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
