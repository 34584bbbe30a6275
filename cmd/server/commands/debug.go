package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"reimbursement-predictor/internal/core/domain"
)

func debugCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "debug",
		Short:   "Run the fixed debug inputs against every model",
		PreRunE: withApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := appCtx.prediction.RunDebugInference(cmd.Context())
			for _, r := range report.Results {
				in := r.Case.Input
				fmt.Printf("=== %s ===\n", r.Case.Model)
				fmt.Printf("Input: isapre=%q tipo=%q total=%d\n", in.Isapre, in.Tipo, in.Total)

				switch p := r.Prediction.(type) {
				case domain.ClassifierPrediction:
					fmt.Printf("P(reimbursed) = %.3f\n", p.Probability)
					fmt.Printf("Class chosen  = %d\n", p.PredictedClass)
				case domain.BayesianNetworkPrediction:
					fmt.Printf("P(reimbursed)         = %.2f%%\n", p.Probability*100)
					fmt.Printf("Expected amount (CLP) = %.0f\n", p.ExpectedAmount)
					fmt.Printf("Expected days         = %.1f\n", p.ExpectedDays)
				case domain.MixturePrediction:
					fmt.Printf("P(approved) = %.3f%%\n", p.Probability*100)
				}
				fmt.Println()
			}

			if report.Err != nil {
				fmt.Printf("=== ERROR ===\n%v\n", report.Err)
				return report.Err
			}
			return nil
		},
	}
}
