package providers

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/ethereum/go-ethereum/crypto"
	vault "github.com/hashicorp/vault/api"

	"github.com/pixelgenesis/credential-node/internal/config"
	"github.com/pixelgenesis/credential-node/internal/log"
)

const (
	jsonPrivateKey   = "private_key"
	localAWSEndpoint = "http://localhost:4566"
)

// ErrSignerKeyNotConfigured is returned when the selected source holds no key
var ErrSignerKeyNotConfigured = errors.New("ledger signer key is not configured")

// SignerKeyProvider returns the hex encoded private key used to sign ledger transactions
type SignerKeyProvider interface {
	SignerKey(ctx context.Context) (string, error)
}

type envSignerKey struct {
	key string
}

func (e envSignerKey) SignerKey(_ context.Context) (string, error) {
	if e.key == "" {
		return "", ErrSignerKeyNotConfigured
	}
	return e.key, nil
}

type vaultSignerKey struct {
	client *vault.Client
	path   string
}

// NewVaultSignerKey reads the signer key from the private_key field of a kv v2 secret
func NewVaultSignerKey(client *vault.Client, path string) SignerKeyProvider {
	return &vaultSignerKey{client: client, path: path}
}

func (v *vaultSignerKey) SignerKey(ctx context.Context) (string, error) {
	secret, err := v.client.Logical().ReadWithContext(ctx, v.path)
	if err != nil {
		return "", fmt.Errorf("reading signer key from vault: %w", err)
	}
	data, err := getKVv2SecretData(secret)
	if err != nil {
		return "", err
	}
	key, ok := data[jsonPrivateKey].(string)
	if !ok || key == "" {
		return "", ErrSignerKeyNotConfigured
	}
	return key, nil
}

type awsSignerKey struct {
	client     *secretsmanager.Client
	secretName string
}

// NewAWSSignerKey reads the signer key from aws secrets manager. The secret may be the raw
// hex key or a json document with a private_key field.
func NewAWSSignerKey(ctx context.Context, conf config.AWS) (SignerKeyProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(conf.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")),
	)
	if err != nil {
		log.Error(ctx, "error loading AWS config", "err", err)
		return nil, err
	}

	endpoint := conf.Endpoint
	if endpoint == "" && strings.ToLower(conf.Region) == "local" {
		endpoint = localAWSEndpoint
	}
	var options []func(*secretsmanager.Options)
	if endpoint != "" {
		options = append(options, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	return &awsSignerKey{
		client:     secretsmanager.NewFromConfig(cfg, options...),
		secretName: conf.SecretName,
	}, nil
}

func (a *awsSignerKey) SignerKey(ctx context.Context) (string, error) {
	out, err := a.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(a.secretName),
	})
	if err != nil {
		return "", fmt.Errorf("reading signer key from aws: %w", err)
	}
	value := strings.TrimSpace(aws.ToString(out.SecretString))
	if strings.HasPrefix(value, "{") {
		var material map[string]string
		if err := json.Unmarshal([]byte(value), &material); err != nil {
			return "", fmt.Errorf("parsing signer key secret: %w", err)
		}
		value = material[jsonPrivateKey]
	}
	if value == "" {
		return "", ErrSignerKeyNotConfigured
	}
	return value, nil
}

// NewSignerKeyProvider builds the provider selected by the configuration
func NewSignerKeyProvider(ctx context.Context, cfg *config.Configuration) (SignerKeyProvider, error) {
	switch cfg.Ethereum.SignerKeySource {
	case config.SignerKeyFromVault:
		client, err := NewVaultClient(cfg.KeyStore.Address, cfg.KeyStore.Token)
		if err != nil {
			return nil, err
		}
		return NewVaultSignerKey(client, cfg.KeyStore.SecretPath), nil
	case config.SignerKeyFromAWS:
		return NewAWSSignerKey(ctx, cfg.AWS)
	default:
		return envSignerKey{key: cfg.Ethereum.SignerKey}, nil
	}
}

// LoadSignerKey resolves and parses the ledger signer key
func LoadSignerKey(ctx context.Context, p SignerKeyProvider) (*ecdsa.PrivateKey, error) {
	key, err := p.SignerKey(ctx)
	if err != nil {
		return nil, err
	}
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return nil, fmt.Errorf("cannot convert signer key to ECDSA: %w", err)
	}
	return pk, nil
}
