package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"billing-agent/internal/db"
	"billing-agent/internal/logger"
	"billing-agent/internal/sync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the remote billing account into the local cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.BillingAPIURL == "" {
			return fmt.Errorf("BILLING_API_URL is not set")
		}
		ctx := cmd.Context()
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()

		client := sync.NewClient(cfg.BillingAPIURL, cfg.BillingAPIToken,
			cfg.SyncRateLimit, cfg.SyncPageSize, logger.WithComponent(log, "api"))
		syncer := sync.NewSyncer(pool, client, logger.WithComponent(log, "sync"))
		return syncer.Run(ctx)
	},
}
