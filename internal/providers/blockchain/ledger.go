package blockchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/core/ports"
	"github.com/pixelgenesis/credential-node/internal/gateways"
	"github.com/pixelgenesis/credential-node/internal/health"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/internal/providers"
	"github.com/pixelgenesis/credential-node/pkg/cache"
)

// ErrLedgerNotConfigured is returned when no rpc url or credential store contract is configured
var ErrLedgerNotConfigured = errors.New("ledger not configured")

// NewLedger returns the contract backed ledger when it is configured and reachable, with its
// reads cached in c. Otherwise it returns the fallback ledger. The returned pinger is nil in
// fallback mode.
func NewLedger(ctx context.Context, cfg *config.Configuration, c cache.Cache) (ports.Ledger, health.Ping) {
	ledger, ping, err := ConnectLedger(ctx, cfg, c)
	if errors.Is(err, ErrLedgerNotConfigured) {
		log.Warn(ctx, "ledger not configured, using local identifiers")
		return gateways.NewFallbackLedger(), nil
	}
	if err != nil {
		log.Error(ctx, "ledger unavailable, using local identifiers", "err", err)
		return gateways.NewFallbackLedger(), nil
	}
	return ledger, ping
}

// ConnectLedger is like NewLedger but reports every setup failure instead of falling back.
func ConnectLedger(ctx context.Context, cfg *config.Configuration, c cache.Cache) (ports.Ledger, health.Ping, error) {
	if !cfg.Ethereum.LedgerConfigured() {
		return nil, nil, ErrLedgerNotConfigured
	}

	client, err := InitEthConnect(ctx, cfg.Ethereum)
	if err != nil {
		return nil, nil, err
	}

	keyProvider, err := providers.NewSignerKeyProvider(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create signer key provider: %w", err)
	}
	signer, err := providers.LoadSignerKey(ctx, keyProvider)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot load signer key: %w", err)
	}

	ledger, err := gateways.NewEthLedger(client, signer, cfg.Ethereum.CredentialStoreAddress, cfg.Ethereum.DIDRegistryAddress)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot bind ledger contracts: %w", err)
	}

	log.Info(ctx, "ledger connected", "url", cfg.Ethereum.URL, "credentialStore", cfg.Ethereum.CredentialStoreAddress)
	ping := health.PingFunc(func(ctx context.Context) error {
		_, err := client.CurrentBlock(ctx)
		return err
	})
	return gateways.NewCachedLedger(ledger, c, cfg.Cache.TTL), ping, nil
}
