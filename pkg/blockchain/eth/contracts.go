package eth

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrEventNotFound is returned when a receipt does not contain the expected contract event
var ErrEventNotFound = errors.New("event not found in receipt")

// CredentialStoreABI is the input ABI used to bind the credential store contract.
const CredentialStoreABI = `[
 {"type":"function","name":"storeCredential","stateMutability":"nonpayable",
  "inputs":[{"name":"cid","type":"string"},{"name":"hash","type":"string"},{"name":"issuer","type":"address"},{"name":"owner","type":"address"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"verifyCredential","stateMutability":"view",
  "inputs":[{"name":"hash","type":"string"}],
  "outputs":[{"name":"","type":"bool"},{"name":"","type":"address"},{"name":"","type":"address"},{"name":"","type":"uint256"}]},
 {"type":"function","name":"revokeCredential","stateMutability":"nonpayable",
  "inputs":[{"name":"hash","type":"string"}],"outputs":[]},
 {"type":"event","name":"CredentialStored","anonymous":false,
  "inputs":[{"name":"credentialId","type":"uint256","indexed":true},{"name":"cid","type":"string","indexed":false},{"name":"hash","type":"string","indexed":false},{"name":"issuer","type":"address","indexed":false},{"name":"owner","type":"address","indexed":false}]},
 {"type":"event","name":"CredentialRevoked","anonymous":false,
  "inputs":[{"name":"hash","type":"string","indexed":true}]}
]`

// DIDRegistryABI is the input ABI used to bind the did registry contract.
const DIDRegistryABI = `[
 {"type":"function","name":"createDID","stateMutability":"nonpayable",
  "inputs":[{"name":"metadataHash","type":"string"},{"name":"name","type":"string"}],
  "outputs":[{"name":"","type":"uint256"}]},
 {"type":"function","name":"getDID","stateMutability":"view",
  "inputs":[{"name":"owner","type":"address"}],
  "outputs":[{"name":"","type":"uint256"},{"name":"","type":"string"},{"name":"","type":"string"},{"name":"","type":"uint256"}]},
 {"type":"event","name":"DIDCreated","anonymous":false,
  "inputs":[{"name":"owner","type":"address","indexed":true},{"name":"didId","type":"uint256","indexed":true},{"name":"metadataHash","type":"string","indexed":false}]}
]`

const (
	eventCredentialStored = "CredentialStored"
	eventDIDCreated       = "DIDCreated"
)

// CredentialStoreCredentialStored represents a CredentialStored event raised by the CredentialStore contract.
type CredentialStoreCredentialStored struct {
	CredentialId *big.Int //nolint:revive,stylecheck
	Cid          string
	Hash         string
	Issuer       common.Address
	Owner        common.Address
	Raw          types.Log
}

// VerifyCredentialOutput is the answer of verifyCredential
type VerifyCredentialOutput struct {
	IsValid   bool
	Issuer    common.Address
	Owner     common.Address
	Timestamp *big.Int
}

// CredentialStore is a binding of the credential store contract
type CredentialStore struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewCredentialStore creates a new instance of CredentialStore, bound to a specific deployed contract.
func NewCredentialStore(address common.Address, backend bind.ContractBackend) (*CredentialStore, error) {
	parsed, err := abi.JSON(strings.NewReader(CredentialStoreABI))
	if err != nil {
		return nil, err
	}
	return &CredentialStore{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// StoreCredential is a paid mutator transaction binding the contract method storeCredential.
func (cs *CredentialStore) StoreCredential(opts *bind.TransactOpts, cid, hash string, issuer, owner common.Address) (*types.Transaction, error) {
	return cs.contract.Transact(opts, "storeCredential", cid, hash, issuer, owner)
}

// RevokeCredential is a paid mutator transaction binding the contract method revokeCredential.
func (cs *CredentialStore) RevokeCredential(opts *bind.TransactOpts, hash string) (*types.Transaction, error) {
	return cs.contract.Transact(opts, "revokeCredential", hash)
}

// VerifyCredential is a free data retrieval call binding the contract method verifyCredential.
func (cs *CredentialStore) VerifyCredential(opts *bind.CallOpts, hash string) (VerifyCredentialOutput, error) {
	var out []interface{}
	if err := cs.contract.Call(opts, &out, "verifyCredential", hash); err != nil {
		return VerifyCredentialOutput{}, err
	}
	if len(out) != 4 { //nolint:mnd
		return VerifyCredentialOutput{}, fmt.Errorf("unexpected verifyCredential output length %d", len(out))
	}
	return VerifyCredentialOutput{
		IsValid:   *abi.ConvertType(out[0], new(bool)).(*bool),
		Issuer:    *abi.ConvertType(out[1], new(common.Address)).(*common.Address),
		Owner:     *abi.ConvertType(out[2], new(common.Address)).(*common.Address),
		Timestamp: *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
	}, nil
}

// ParseCredentialStored looks for the CredentialStored event emitted by this contract in receipt.
func (cs *CredentialStore) ParseCredentialStored(receipt *types.Receipt) (*CredentialStoreCredentialStored, error) {
	ev := cs.abi.Events[eventCredentialStored]
	for _, l := range receipt.Logs {
		if l.Address != cs.address || len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}
		event := new(CredentialStoreCredentialStored)
		if err := cs.contract.UnpackLog(event, eventCredentialStored, *l); err != nil {
			return nil, err
		}
		event.Raw = *l
		return event, nil
	}
	return nil, ErrEventNotFound
}

// DIDRegistryDIDCreated represents a DIDCreated event raised by the DIDRegistry contract.
type DIDRegistryDIDCreated struct {
	Owner        common.Address
	DidId        *big.Int //nolint:revive,stylecheck
	MetadataHash string
	Raw          types.Log
}

// GetDIDOutput is the answer of getDID
type GetDIDOutput struct {
	DIDID        *big.Int
	MetadataHash string
	Name         string
	CreatedAt    *big.Int
}

// DIDRegistry is a binding of the did registry contract
type DIDRegistry struct {
	address  common.Address
	abi      abi.ABI
	contract *bind.BoundContract
}

// NewDIDRegistry creates a new instance of DIDRegistry, bound to a specific deployed contract.
func NewDIDRegistry(address common.Address, backend bind.ContractBackend) (*DIDRegistry, error) {
	parsed, err := abi.JSON(strings.NewReader(DIDRegistryABI))
	if err != nil {
		return nil, err
	}
	return &DIDRegistry{
		address:  address,
		abi:      parsed,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

// CreateDID is a paid mutator transaction binding the contract method createDID.
func (r *DIDRegistry) CreateDID(opts *bind.TransactOpts, metadataHash, name string) (*types.Transaction, error) {
	return r.contract.Transact(opts, "createDID", metadataHash, name)
}

// GetDID is a free data retrieval call binding the contract method getDID.
func (r *DIDRegistry) GetDID(opts *bind.CallOpts, owner common.Address) (GetDIDOutput, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getDID", owner); err != nil {
		return GetDIDOutput{}, err
	}
	if len(out) != 4 { //nolint:mnd
		return GetDIDOutput{}, fmt.Errorf("unexpected getDID output length %d", len(out))
	}
	return GetDIDOutput{
		DIDID:        *abi.ConvertType(out[0], new(*big.Int)).(**big.Int),
		MetadataHash: *abi.ConvertType(out[1], new(string)).(*string),
		Name:         *abi.ConvertType(out[2], new(string)).(*string),
		CreatedAt:    *abi.ConvertType(out[3], new(*big.Int)).(**big.Int),
	}, nil
}

// ParseDIDCreated looks for the DIDCreated event emitted by this contract in receipt.
func (r *DIDRegistry) ParseDIDCreated(receipt *types.Receipt) (*DIDRegistryDIDCreated, error) {
	ev := r.abi.Events[eventDIDCreated]
	for _, l := range receipt.Logs {
		if l.Address != r.address || len(l.Topics) == 0 || l.Topics[0] != ev.ID {
			continue
		}
		event := new(DIDRegistryDIDCreated)
		if err := r.contract.UnpackLog(event, eventDIDCreated, *l); err != nil {
			return nil, err
		}
		event.Raw = *l
		return event, nil
	}
	return nil, ErrEventNotFound
}
