package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"

	"github.com/pixelgenesis/credential-node/internal/buildinfo"
	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/services"
	"github.com/pixelgenesis/credential-node/internal/db"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
	"github.com/pixelgenesis/credential-node/internal/providers/blockchain"
	"github.com/pixelgenesis/credential-node/internal/repositories"
	"github.com/pixelgenesis/credential-node/pkg/cache"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

const statusAddr = ":3005"

var build = buildinfo.Revision()

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info(ctx, "starting ledger reconciler...", "revision", build)

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Error(ctx, "cannot load config", "err", err)
		return
	}
	log.Config(cfg.Log.Level, cfg.Log.Mode, os.Stdout)

	if err := cfg.Sanitize(); err != nil {
		log.Error(ctx, "there are errors in the configuration that prevent the reconciler to start", "err", err)
		return
	}
	if cfg.Database.URL == "" {
		log.Error(ctx, "CREDNODE_DATABASE_URL is required by the reconciler")
		return
	}
	cachex, err := cache.NewCacheClient(ctx, cfg.Cache.Provider, cfg.Cache.URL)
	if err != nil {
		log.Error(ctx, "cannot initialize cache", "err", err)
		return
	}

	storage, err := db.NewStorage(ctx, cfg.Database.URL)
	if err != nil {
		log.Error(ctx, "cannot connect to database", "err", err)
		return
	}
	defer func(storage *db.Storage) {
		if err := storage.Close(); err != nil {
			log.Error(ctx, "error closing database connection", "err", err)
		}
	}(storage)

	ledger, _, err := blockchain.ConnectLedger(ctx, cfg, cachex.Cache)
	if err != nil {
		log.Error(ctx, "the reconciler needs a reachable ledger", "err", err)
		return
	}
	reconciler := services.NewReconciler(repositories.NewCredential(storage), ledger, cfg.Reconciler.MinAge, cfg.Reconciler.BatchSize)

	if cachex.Redis != nil {
		pubsub.NewRedis(cachex.Redis).Subscribe(ctx, pubsub.EventCredentialIssued, reconciler.HandleCredentialIssued)
	} else {
		log.Warn(ctx, "no redis cache configured, credential events are not consumed")
	}

	scheduler := cron.New()
	if err := scheduler.AddFunc(cfg.Reconciler.Schedule, func() {
		if _, err := reconciler.AnchorPending(ctx); err != nil {
			log.Error(ctx, "anchoring sweep failed", "err", err)
		}
	}); err != nil {
		log.Error(ctx, "invalid reconciler schedule", "schedule", cfg.Reconciler.Schedule, "err", err)
		return
	}
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte("OK")); err != nil {
				log.Error(ctx, "error writing response", "err", err)
			}
		})
		srv := &http.Server{Addr: statusAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		log.Info(ctx, "starting status server", "addr", statusAddr)
		if err := srv.ListenAndServe(); err != nil {
			log.Error(ctx, "error starting server", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info(ctx, "finishing reconciler")
	cancel()
}
