package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixelgenesis/credential-node/internal/config"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

func TestEnvSignerKey(t *testing.T) {
	ctx := context.Background()
	p, err := NewSignerKeyProvider(ctx, &config.Configuration{Ethereum: config.Ethereum{SignerKeySource: config.SignerKeyFromEnv, SignerKey: "0x" + testKey}})
	require.NoError(t, err)

	pk, err := LoadSignerKey(ctx, p)
	require.NoError(t, err)
	expected, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	assert.Equal(t, crypto.PubkeyToAddress(expected.PublicKey), crypto.PubkeyToAddress(pk.PublicKey))

	_, err = LoadSignerKey(ctx, envSignerKey{})
	assert.ErrorIs(t, err, ErrSignerKeyNotConfigured)

	_, err = LoadSignerKey(ctx, envSignerKey{key: "zz"})
	assert.Error(t, err)
}

func TestVaultSignerKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/secret/data/credential-node/signer", r.URL.Path)
		assert.Equal(t, "token", r.Header.Get("X-Vault-Token"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"data":     map[string]any{"private_key": testKey},
				"metadata": map[string]any{"version": 1},
			},
		})
	}))
	defer srv.Close()

	ctx := context.Background()
	p, err := NewSignerKeyProvider(ctx, &config.Configuration{
		Ethereum: config.Ethereum{SignerKeySource: config.SignerKeyFromVault},
		KeyStore: config.KeyStore{Address: srv.URL, Token: "token", SecretPath: "secret/data/credential-node/signer"},
	})
	require.NoError(t, err)

	key, err := p.SignerKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, testKey, key)
}

func TestVaultClientRequiresSettings(t *testing.T) {
	_, err := NewVaultClient("", "token")
	assert.Error(t, err)
	_, err = NewVaultClient("http://localhost:8200", "")
	assert.Error(t, err)
}

func TestAWSSignerKey(t *testing.T) {
	for name, secret := range map[string]string{
		"raw key":  testKey,
		"json key": `{"private_key":"` + testKey + `"}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "secretsmanager.GetSecretValue", r.Header.Get("X-Amz-Target"))
				w.Header().Set("Content-Type", "application/x-amz-json-1.1")
				_ = json.NewEncoder(w).Encode(map[string]any{
					"ARN":          "arn:aws:secretsmanager:us-east-1:000000000000:secret:credential-node/signer",
					"Name":         "credential-node/signer",
					"SecretString": secret,
				})
			}))
			defer srv.Close()

			ctx := context.Background()
			p, err := NewSignerKeyProvider(ctx, &config.Configuration{
				Ethereum: config.Ethereum{SignerKeySource: config.SignerKeyFromAWS},
				AWS: config.AWS{
					AccessKey:  "test",
					SecretKey:  "test",
					Region:     "us-east-1",
					SecretName: "credential-node/signer",
					Endpoint:   srv.URL,
				},
			})
			require.NoError(t, err)

			key, err := p.SignerKey(ctx)
			require.NoError(t, err)
			assert.Equal(t, testKey, key)
		})
	}
}
