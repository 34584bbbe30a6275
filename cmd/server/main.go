package main

import (
	"os"

	"reimbursement-predictor/cmd/server/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
