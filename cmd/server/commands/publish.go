package commands

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"reimbursement-predictor/internal/core/domain"
)

func publishCmd() *cobra.Command {
	var (
		model string
		file  string
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Upload a model artifact to the blob store",
		Long: "Validates a JSON model artifact and uploads it. With --model the artifact is stored " +
			"under that model's key; without it, under a generated id which is printed.",
		PreRunE: withApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read artifact: %w", err)
			}
			digest := blake2b.Sum256(data)

			if model == "" {
				id, err := appCtx.store.Put(ctx, data)
				if err != nil {
					return err
				}
				fmt.Printf("Uploaded %s (%d bytes, blake2b-256 %s)\n", id, len(data), hex.EncodeToString(digest[:]))
				return nil
			}

			name, err := domain.ParseModelName(model)
			if err != nil {
				return err
			}
			if _, err := appCtx.factory.Decode(name, data); err != nil {
				return err
			}
			if err := appCtx.store.PutObject(ctx, name.ObjectKey(), data); err != nil {
				return err
			}
			fmt.Printf("Published %s (%d bytes, blake2b-256 %s)\n", name.ObjectKey(), len(data), hex.EncodeToString(digest[:]))
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model name (logistic_regressor, discrete_bayesian_network, gmm)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "path to the JSON artifact")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
