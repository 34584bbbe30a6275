package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"reimbursement-predictor/internal/core/services"
)

func clearCacheCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Delete every cached model artifact from the local disk cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := services.PurgeDiskCache(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			fmt.Printf("Cleared %d cached artifacts from %s\n", n, cfg.Cache.Dir)
			return nil
		},
	}
}
