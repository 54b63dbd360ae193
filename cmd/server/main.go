package main

import (
	"context"
	"os"

	"billing-agent/internal/config"
	"billing-agent/internal/core"
	"billing-agent/internal/db"
	"billing-agent/internal/logger"
	"billing-agent/internal/rpc"
	"billing-agent/internal/store"
	"billing-agent/internal/tools"
)

const (
	serverName    = "billing-agent"
	serverVersion = "1.2.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()

	st := store.New(pool)
	revenue := core.NewRevenueService(st, logger.WithComponent(log, "revenue"))
	quotes := core.NewQuoteService(st, logger.WithComponent(log, "quotes"))

	registry := tools.NewRegistry()
	registry.Register(tools.NewRevenueTool(revenue))
	registry.Register(tools.NewQuotesRevenueTool(quotes))
	registry.Register(tools.NewListInvoicesTool(st))
	registry.Register(tools.NewGetInvoiceTool(st))
	registry.Register(tools.NewListQuotesTool(st))

	srv := rpc.NewServer(registry, logger.WithComponent(log, "rpc"), os.Stdin, os.Stdout, serverName, serverVersion)
	log.Info().Int("tools", len(registry.All())).Msg("serving on stdio")
	if err := srv.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
