package eth

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCredentialStored(t *testing.T) {
	address := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	store, err := NewCredentialStore(address, nil)
	require.NoError(t, err)

	parsed, err := abi.JSON(strings.NewReader(CredentialStoreABI))
	require.NoError(t, err)
	ev := parsed.Events["CredentialStored"]
	issuer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := ev.Inputs.NonIndexed().Pack("QmCid", "hash", issuer, owner)
	require.NoError(t, err)

	receipt := &types.Receipt{Logs: []*types.Log{
		{Address: common.HexToAddress("0x9999999999999999999999999999999999999999"), Topics: []common.Hash{ev.ID}},
		{
			Address: address,
			Topics:  []common.Hash{ev.ID, common.BigToHash(big.NewInt(42))},
			Data:    data,
		},
	}}

	got, err := store.ParseCredentialStored(receipt)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.CredentialId.Int64())
	assert.Equal(t, "QmCid", got.Cid)
	assert.Equal(t, "hash", got.Hash)
	assert.Equal(t, issuer, got.Issuer)
	assert.Equal(t, owner, got.Owner)

	_, err = store.ParseCredentialStored(&types.Receipt{})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestParseDIDCreated(t *testing.T) {
	address := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	registry, err := NewDIDRegistry(address, nil)
	require.NoError(t, err)

	parsed, err := abi.JSON(strings.NewReader(DIDRegistryABI))
	require.NoError(t, err)
	ev := parsed.Events["DIDCreated"]
	owner := common.HexToAddress("0x2222222222222222222222222222222222222222")
	data, err := ev.Inputs.NonIndexed().Pack("QmMetadata")
	require.NoError(t, err)

	receipt := &types.Receipt{Logs: []*types.Log{{
		Address: address,
		Topics:  []common.Hash{ev.ID, common.BytesToHash(owner.Bytes()), common.BigToHash(big.NewInt(7))},
		Data:    data,
	}}}

	got, err := registry.ParseDIDCreated(receipt)
	require.NoError(t, err)
	assert.Equal(t, owner, got.Owner)
	assert.Equal(t, int64(7), got.DidId.Int64())
	assert.Equal(t, "QmMetadata", got.MetadataHash)
}
