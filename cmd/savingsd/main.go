package main

import (
	"os"

	"cosmossdk.io/log"

	"github.com/openalpha/savings-ledger/cmd/savingsd/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		log.NewLogger(os.Stderr).Error("failure when running savingsd", "err", err)
		os.Exit(1)
	}
}
