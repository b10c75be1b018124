package eth

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/pixelgenesis/credential-node/internal/log"
)

const (
	// Eq is for "equal" result of comparison
	Eq = 0
	// Gt is for "greater" than result of comparison
	Gt = 1
	// Lt is for "less than" result of comparison
	Lt = -1

	gasPriceIncrement               = 10
	transactionUnderpricedIncrement = 30
)

var (
	// ErrPrivateKeyNil when private key is nil
	ErrPrivateKeyNil = errors.New("authorized calls can't be made with empty private key")
	// ErrReceiptStatusFailed when receiving a failed transaction
	ErrReceiptStatusFailed = errors.New("receipt status is failed")
	// ErrReceiptNotReceived when unable to retrieve a transaction
	ErrReceiptNotReceived = errors.New("receipt not available")
	// ErrTransactionNotFound transaction doesn't exist on blockchain
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Backend is the subset of the ethereum json rpc used by the client. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.ContractBackend
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (tx *types.Transaction, isPending bool, err error)
}

// Client is an ethereum client to call Smart Contract methods.
type Client struct {
	backend Backend
	Config  *ClientConfig
}

// ClientConfig eth client config
type ClientConfig struct {
	ReceiptTimeout       time.Duration `json:"receipt_timeout"`
	DefaultGasLimit      int           `json:"default_gas_limit"`
	MinGasPrice          *big.Int      `json:"min_gas_price"`
	MaxGasPrice          *big.Int      `json:"max_gas_price"`
	RPCResponseTimeout   time.Duration `json:"rpc_response_time_out"`
	WaitReceiptCycleTime time.Duration `json:"wait_receipt_cycle_time_out"`
}

// NewClient creates a Client instance.
func NewClient(backend Backend, c *ClientConfig) *Client {
	return &Client{backend: backend, Config: c}
}

// Backend returns the rpc backend, used to bind contracts
func (c *Client) Backend() Backend {
	return c.backend
}

// CallAuth performs a Smart Contract method call that requires authorization.
// This call requires a valid account with Ether that can be spent during the
// call.
func (c *Client) CallAuth(ctx context.Context, gasLimit uint64, privateKey *ecdsa.PrivateKey, fn func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Transaction, error) {
	if privateKey == nil {
		return nil, ErrPrivateKeyNil
	}

	gasPrice, err := c.getGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gasPrice: %v", err)
	}
	log.Debug(ctx, "Transaction metadata", "gasPrice", gasPrice)

	cid, err := c.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chainID: %v", err)
	}

	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, cid)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction signer: %v", err)
	}
	auth.Context = ctx
	auth.Value = big.NewInt(0) // in wei
	if gasLimit == 0 {
		auth.GasLimit = uint64(c.Config.DefaultGasLimit) // in units
	} else {
		auth.GasLimit = gasLimit // in units
	}
	auth.GasPrice = gasPrice

	tx, err := fn(auth)
	if err != nil && strings.Contains(err.Error(), "transaction underpriced") {
		oldGasPrice := auth.GasPrice.Int64()
		auth.GasPrice = new(big.Int).Mul(gasPrice, new(big.Int).SetInt64(transactionUnderpricedIncrement))
		log.Debug(ctx, "underpriced transaction has been resent",
			"old gasPrice", oldGasPrice,
			"new gasPrice", auth.GasPrice.Int64())
		tx, err = fn(auth)
	}
	if tx != nil {
		log.Debug(ctx, "Transaction", "tx", tx.Hash().Hex(), "nonce", tx.Nonce())
	}
	return tx, err
}

// CallOpts returns the options for read only calls bound to ctx and the rpc timeout
func (c *Client) CallOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	return &bind.CallOpts{Context: _ctx}, cancel
}

// WaitMined waits until the receipt of tx is available and checks it did not revert
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := c.waitReceipt(ctx, tx.Hash(), c.Config.ReceiptTimeout)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, ErrReceiptStatusFailed
	}
	return receipt, nil
}

func (c *Client) waitReceipt(ctx context.Context, txID common.Hash, timeout time.Duration) (*types.Receipt, error) {
	log.Debug(ctx, "Waiting for receipt", "tx", txID.Hex())

	_ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(c.Config.WaitReceiptCycleTime)
	defer ticker.Stop()
	for {
		receipt, err := c.backend.TransactionReceipt(_ctx, txID)
		if err != nil && !errors.Is(err, ethereum.NotFound) {
			log.Debug(ctx, "get transaction receipt", "err", err)
		}
		if receipt != nil {
			log.Debug(ctx, "Receipt received", "tx", txID.Hex())
			return receipt, nil
		}
		select {
		case <-_ctx.Done():
			log.Debug(ctx, "Pending transaction / Wait receipt timeout", "tx", txID.Hex())
			return nil, ErrReceiptNotReceived
		case <-ticker.C:
		}
	}
}

// ChainID get chain id.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	return c.backend.ChainID(_ctx)
}

// CurrentBlock returns the current block number in the blockchain
func (c *Client) CurrentBlock(ctx context.Context) (*big.Int, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	header, err := c.backend.HeaderByNumber(_ctx, nil)
	if err != nil {
		return nil, err
	}
	return header.Number, nil
}

// GetTransactionReceiptByID get tx receipt by tx id
func (c *Client) GetTransactionReceiptByID(ctx context.Context, txID string) (*types.Receipt, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	receipt, err := c.backend.TransactionReceipt(_ctx, common.HexToHash(txID))
	if errors.Is(err, ethereum.NotFound) {
		log.Debug(ctx, "Pending transaction", "tx", txID)
		return nil, ErrReceiptNotReceived
	}
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

// GetTransactionByID return the transaction by ID
func (c *Client) GetTransactionByID(ctx context.Context, txID string) (*types.Transaction, bool, error) {
	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	tx, pending, err := c.backend.TransactionByHash(_ctx, common.HexToHash(txID))
	if errors.Is(err, ethereum.NotFound) {
		return nil, false, ErrTransactionNotFound
	}
	return tx, pending, err
}

// Sender recovers the address that signed tx
func Sender(tx *types.Transaction) (common.Address, error) {
	return types.Sender(types.LatestSignerForChainID(tx.ChainId()), tx)
}

// getGasPrice returns suggested gas price within configured bounds
func (c *Client) getGasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice := new(big.Int)
	zero := big.NewInt(0)

	// if configured min gas price == max gas price and is not zero, then force this value
	if c.Config.MinGasPrice != nil && c.Config.MinGasPrice.Cmp(zero) == Gt &&
		c.Config.MaxGasPrice != nil && c.Config.MinGasPrice.Cmp(c.Config.MaxGasPrice) == Eq {
		return gasPrice.Set(c.Config.MaxGasPrice), nil
	}

	_ctx, cancel := context.WithTimeout(ctx, c.Config.RPCResponseTimeout)
	defer cancel()
	suggestedGasPrice, err := c.backend.SuggestGasPrice(_ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get suggested gas price: %v", err)
	}

	// increase suggested gas price by 10% for better confirmation speed
	inc := new(big.Int).Set(suggestedGasPrice)
	inc.Div(inc, new(big.Int).SetUint64(gasPriceIncrement))
	suggestedGasPrice.Add(suggestedGasPrice, inc)

	gasPrice.Set(suggestedGasPrice)

	if c.Config.MinGasPrice != nil && c.Config.MinGasPrice.Cmp(zero) == Gt &&
		gasPrice.Cmp(c.Config.MinGasPrice) == Lt {
		gasPrice.Set(c.Config.MinGasPrice)
	}
	if c.Config.MaxGasPrice != nil && c.Config.MaxGasPrice.Cmp(zero) == Gt &&
		gasPrice.Cmp(c.Config.MaxGasPrice) == Gt {
		gasPrice.Set(c.Config.MaxGasPrice)
	}

	if gasPrice.Cmp(suggestedGasPrice) != Eq {
		log.Debug(ctx, "Transaction metadata",
			"suggested gas price", suggestedGasPrice,
			"corrected gas price", gasPrice)
	}

	return gasPrice, nil
}
