package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"billing-agent/internal/config"
	"billing-agent/internal/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "billingctl",
	Short: "Operational commands for the billing mirror",
	Long: `billingctl manages the local billing cache: applies the schema,
runs a one-shot sync from the remote billing API, and verifies the
mirrored data.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd, syncCmd, verifyCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
