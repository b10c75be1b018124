package main

import (
	"context"
	"os"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/db/schema"
	"github.com/pixelgenesis/credential-node/internal/log"

	_ "github.com/lib/pq"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "cannot load config", "err", err)
		return
	}

	log.Config(cfg.Log.Level, cfg.Log.Mode, os.Stdout)
	if cfg.Database.URL == "" {
		log.Error(ctx, "CREDNODE_DATABASE_URL is required to run migrations")
		return
	}

	if err := schema.Migrate(cfg.Database.URL); err != nil {
		log.Error(ctx, "error migrating database", "err", err)
		return
	}

	log.Info(ctx, "migration done!")
}
