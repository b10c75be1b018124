package providers

import (
	"errors"
	"time"

	"github.com/hashicorp/vault/api"
)

// HTTPClientTimeout http client timeout
const HTTPClientTimeout = 10 * time.Second

// NewVaultClient checks vault configuration and creates new vault client
func NewVaultClient(address, token string) (*api.Client, error) {
	if address == "" {
		return nil, errors.New("vault address is not specified")
	}
	if token == "" {
		return nil, errors.New("vault access token is not specified")
	}

	config := api.DefaultConfig()
	config.Address = address
	config.HttpClient.Timeout = HTTPClientTimeout

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return client, nil
}

// getKVv2SecretData extracts the payload of a kv version 2 secret
func getKVv2SecretData(secret *api.Secret) (map[string]interface{}, error) {
	if secret == nil {
		return nil, errors.New("secret is nil")
	}

	if secret.Data == nil {
		return nil, errors.New("secret data is nil")
	}

	secDataI, ok := secret.Data["data"]
	if !ok {
		return nil, errors.New("secret data not found")
	}

	secData, ok := secDataI.(map[string]interface{})
	if !ok {
		return nil, errors.New("secret data has unexpected format")
	}

	return secData, nil
}
