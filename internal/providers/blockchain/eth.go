package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/log"
	"github.com/pixelgenesis/credential-node/pkg/blockchain/eth"
)

// InitEthConnect opens a new eth connection and checks the node serves the configured chain
func InitEthConnect(ctx context.Context, cfg config.Ethereum) (*eth.Client, error) {
	commonClient, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed connect to eth node %s: %w", cfg.URL, err)
	}

	cl := eth.NewClient(commonClient, &eth.ClientConfig{
		DefaultGasLimit:      cfg.DefaultGasLimit,
		ReceiptTimeout:       cfg.ReceiptTimeout,
		RPCResponseTimeout:   cfg.RPCResponseTimeout,
		WaitReceiptCycleTime: cfg.WaitReceiptCycleTime,
	})

	chainID, err := cl.ChainID(ctx)
	if err != nil {
		log.Warn(ctx, "cannot read chain id from eth node", "url", cfg.URL, "err", err)
		return cl, nil
	}
	if cfg.ChainID != 0 && chainID.Int64() != cfg.ChainID {
		return nil, fmt.Errorf("eth node chain id %s does not match configured chain id %d", chainID, cfg.ChainID)
	}
	return cl, nil
}
