package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reimbursement-predictor/internal/adapters/primary/http/handlers"
	"reimbursement-predictor/internal/adapters/primary/http/middleware"
	"reimbursement-predictor/internal/adapters/secondary/postgres"
	"reimbursement-predictor/internal/core/services"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "serve",
		Short:   "Start the prediction HTTP server",
		PreRunE: withApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	predictionSvc := appCtx.prediction
	if cfg.Recorder.Enabled {
		pool, err := pgxpool.New(ctx, cfg.Recorder.DatabaseURL)
		if err != nil {
			return fmt.Errorf("create db pool: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping db: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		predictionSvc = services.NewPredictionService(appCtx.cache, appCtx.factory, postgres.NewPredictionRecorder(pool))
		log.Info("prediction recorder enabled")
	} else {
		log.Info("prediction recorder disabled")
	}

	if cfg.Cache.WarmOnStart {
		if err := appCtx.cache.Warm(ctx); err != nil {
			log.WithError(err).Warn("model cache warm-up failed, models will load on first request")
		} else {
			log.Info("model cache warmed")
		}
	}

	h := handlers.New(predictionSvc, cfg.Server.PredictTimeout)

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.CORS(cfg.Server.CORSAllowedOrigins),
		gin.Recovery(),
	)
	h.RegisterRoutes(router.Group("/"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
