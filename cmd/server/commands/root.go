package commands

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"reimbursement-predictor/internal/config"
)

var (
	cfg    *config.Config
	appCtx *app
)

func Execute() error {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("command failed")
		return err
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reimbursement-predictor",
		Short:         "Health insurance reimbursement prediction service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return err
			}
			initLogger(cfg)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if appCtx != nil {
				appCtx.Close()
				appCtx = nil
			}
		},
	}

	root.AddCommand(serveCmd(), debugCmd(), publishCmd(), clearCacheCmd())
	return root
}

// withApp builds the blob store, cache and prediction service. Commands that
// talk to the remote store install it as PreRunE.
func withApp(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	appCtx = a
	return nil
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
