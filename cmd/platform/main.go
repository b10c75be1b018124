package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pixelgenesis/credential-node/internal/api"
	"github.com/pixelgenesis/credential-node/internal/buildinfo"
	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/core/services"
	"github.com/pixelgenesis/credential-node/internal/db"
	"github.com/pixelgenesis/credential-node/internal/gateways"
	"github.com/pixelgenesis/credential-node/internal/health"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/metrics"
	"github.com/pixelgenesis/credential-node/internal/providers/blockchain"
	"github.com/pixelgenesis/credential-node/internal/redis"
	"github.com/pixelgenesis/credential-node/internal/repositories"
	"github.com/pixelgenesis/credential-node/pkg/cache"
	"github.com/pixelgenesis/credential-node/pkg/pubsub"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Error(context.Background(), "cannot load config", "err", err)
		return
	}

	ctx := log.NewContext(context.Background(), cfg.Log.Level, cfg.Log.Mode, os.Stdout)
	log.Info(ctx, "starting credential node", "revision", buildinfo.Revision())

	if err := cfg.Sanitize(); err != nil {
		log.Error(ctx, "there are errors in the configuration that prevent server to start", "err", err)
		return
	}

	healthMonitor := health.New()

	cachex, err := cache.NewCacheClient(ctx, cfg.Cache.Provider, cfg.Cache.URL)
	if err != nil {
		log.Error(ctx, "cannot create cache client", "err", err)
		return
	}
	var publisher pubsub.Publisher
	if cachex.Redis != nil {
		publisher = pubsub.NewRedis(cachex.Redis)
		healthMonitor.Register(health.Redis, redis.Wrapper{Client: cachex.Redis})
	}

	credentialRepo, userRepo, auditRepo, closeDB, err := newRepositories(ctx, cfg, healthMonitor)
	if err != nil {
		log.Error(ctx, "cannot connect to database", "err", err)
		return
	}
	defer closeDB()

	ledger, ledgerPing := blockchain.NewLedger(ctx, cfg, cachex.Cache)
	healthMonitor.Register(health.Ethereum, ledgerPing)

	store := gateways.NewContentStore(cfg.IPFS).WithObserver(metrics.ContentBackendAttempt)
	log.Info(ctx, "content store ready", "backends", store.Backends())

	server := api.NewServer(cfg,
		services.NewCredential(credentialRepo, auditRepo, store, ledger, publisher, cfg.PublicURL),
		services.NewContent(store, ledger, auditRepo, cfg.Upload),
		services.NewIdentity(userRepo, store, ledger, auditRepo),
		services.NewUser(userRepo, credentialRepo),
		services.NewAudit(auditRepo),
		healthMonitor,
	)
	handler, err := server.Handler(ctx)
	if err != nil {
		log.Error(ctx, "cannot build http handler", "err", err)
		return
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info(ctx, "server started", "port", cfg.ServerPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "starting http server", "err", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "http server shutdown", "err", err)
	}
}

// newRepositories opens postgres when a database url is configured and falls back to
// in memory repositories otherwise
func newRepositories(ctx context.Context, cfg *config.Configuration, monitor *health.Status) (ports.CredentialRepository, ports.UserRepository, ports.AuditLogRepository, func(), error) {
	if cfg.Database.URL == "" {
		log.Warn(ctx, "no database configured, records are kept in memory")
		return repositories.NewCredentialInMemory(), repositories.NewUserInMemory(), repositories.NewAuditLogInMemory(), func() {}, nil
	}

	storage, err := db.NewStorage(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sqlx, err := db.NewSqlx(ctx, cfg.Database.URL)
	if err != nil {
		_ = storage.Close()
		return nil, nil, nil, nil, err
	}
	monitor.Register(health.DB, storage)

	closeFn := func() {
		_ = storage.Close()
		_ = sqlx.Close()
	}
	return repositories.NewCredential(storage), repositories.NewUser(storage), repositories.NewAuditLog(sqlx), closeFn, nil
}
