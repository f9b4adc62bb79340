package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/freshcart-api/internal/app/api"
	accountspostgres "github.com/Apurer/freshcart-api/internal/domains/accounts/adapters/persistence/postgres"
	platformpostgres "github.com/Apurer/freshcart-api/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.Open(ctx, cfg.PostgresDSN, logger, platformpostgres.WithPool(2, 1))
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot purge sessions")
	}

	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = accountspostgres.DefaultSessionTTL
	}
	removed, err := accountspostgres.NewSessionStore(db, ttl).PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	logger.Info("session purge completed", slog.Int64("removed", removed))
}
