package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/pixelgenesis/credential-node/internal/log"
)

const (
	// EnvPrefix is the prefix shared by every environment variable read by the service
	EnvPrefix = "CREDNODE_"
	// EnvFileVar allows to override the default dotenv file
	EnvFileVar = "CREDENTIAL_NODE_ENV_FILE"

	defaultEnvFile = ".env-credential-node"

	// SignerKeyFromEnv reads the ledger signer key from configuration
	SignerKeyFromEnv = "env"
	// SignerKeyFromVault reads the ledger signer key from a vault kv secret
	SignerKeyFromVault = "vault"
	// SignerKeyFromAWS reads the ledger signer key from aws secrets manager
	SignerKeyFromAWS = "aws"

	// CacheProviderRedis uses redis as cache
	CacheProviderRedis = "redis"
	// CacheProviderValKey uses valkey as cache
	CacheProviderValKey = "valkey"
	// CacheProviderMemory uses an in process cache
	CacheProviderMemory = "memory"
)

// Configuration holds the project configuration
type Configuration struct {
	ServerUrl  string     `env:"SERVER_URL" envDefault:"http://localhost:5000"`
	ServerPort int        `env:"SERVER_PORT" envDefault:"5000"`
	PublicURL  string     `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	Database   Database   `envPrefix:"DATABASE_"`
	Cache      Cache      `envPrefix:"CACHE_"`
	Log        Log        `envPrefix:"LOG_"`
	Ethereum   Ethereum   `envPrefix:"ETHEREUM_"`
	KeyStore   KeyStore   `envPrefix:"KEY_STORE_"`
	AWS        AWS        `envPrefix:"AWS_"`
	IPFS       IPFS       `envPrefix:"IPFS_"`
	Upload     Upload     `envPrefix:"UPLOAD_"`
	CORS       CORS       `envPrefix:"CORS_"`
	Reconciler Reconciler `envPrefix:"RECONCILER_"`
}

// Database has the database configuration
// URL: The database connection string. When empty the service keeps records in memory.
type Database struct {
	URL string `env:"URL"`
}

// Cache configurations
type Cache struct {
	Provider string        `env:"PROVIDER" envDefault:"memory"`
	URL      string        `env:"URL"`
	TTL      time.Duration `env:"TTL" envDefault:"30s"`
}

// Log holds runtime configurations
//
// Level: The minimum log level to show on logs. Values can be
//
//	 -4: Debug
//		0: Info
//		4: Warning
//		8: Error
//
// Mode: Log mode is the format of the log. It can be text or json
// 1: JSON
// 2: Text
type Log struct {
	Level int `env:"LEVEL" envDefault:"-4"`
	Mode  int `env:"MODE" envDefault:"2"`
}

// Ethereum struct
type Ethereum struct {
	URL                     string        `env:"URL"`
	ChainID                 int64         `env:"CHAIN_ID" envDefault:"1337"`
	SignerKey               string        `env:"SIGNER_KEY"`
	SignerKeySource         string        `env:"SIGNER_KEY_SOURCE" envDefault:"env"`
	DIDRegistryAddress      string        `env:"DID_REGISTRY_ADDRESS"`
	CredentialStoreAddress  string        `env:"CREDENTIAL_STORE_ADDRESS"`
	DefaultGasLimit         int           `env:"DEFAULT_GAS_LIMIT" envDefault:"600000"`
	ReceiptTimeout          time.Duration `env:"RECEIPT_TIMEOUT" envDefault:"600s"`
	RPCResponseTimeout      time.Duration `env:"RPC_RESPONSE_TIMEOUT" envDefault:"5s"`
	WaitReceiptCycleTime    time.Duration `env:"WAIT_RECEIPT_CYCLE_TIME" envDefault:"30s"`
	ConfirmationBlockCount  int64         `env:"CONFIRMATION_BLOCK_COUNT" envDefault:"1"`
	ConfirmationWaitEnabled bool          `env:"CONFIRMATION_WAIT_ENABLED" envDefault:"true"`
}

// LedgerConfigured reports whether the credential store contract can be used.
func (e Ethereum) LedgerConfigured() bool {
	return e.URL != "" && e.CredentialStoreAddress != ""
}

// KeyStore defines the vault keystore
type KeyStore struct {
	Address    string `env:"ADDRESS"`
	Token      string `env:"TOKEN"`
	SecretPath string `env:"SECRET_PATH" envDefault:"secret/data/credential-node/signer"`
}

// AWS holds the secrets manager settings used to read the signer key
type AWS struct {
	AccessKey  string `env:"ACCESS_KEY"`
	SecretKey  string `env:"SECRET_KEY"`
	Region     string `env:"REGION"`
	SecretName string `env:"SECRET_NAME" envDefault:"credential-node/signer"`
	Endpoint   string `env:"ENDPOINT"`
}

// IPFS configures the content store backends and the gateways
type IPFS struct {
	Host                 string        `env:"HOST" envDefault:"localhost"`
	Port                 int           `env:"PORT" envDefault:"5001"`
	UseLocalNode         bool          `env:"USE_LOCAL_NODE" envDefault:"false"`
	PinataAPIKey         string        `env:"PINATA_API_KEY"`
	PinataSecretKey      string        `env:"PINATA_SECRET_KEY"`
	PinataURL            string        `env:"PINATA_URL" envDefault:"https://api.pinata.cloud"`
	GatewayURL           string        `env:"GATEWAY_URL" envDefault:"https://gateway.pinata.cloud/ipfs/"`
	PublicGateways       []string      `env:"PUBLIC_GATEWAYS" envSeparator:"," envDefault:"https://ipfs.io/ipfs/,https://gateway.pinata.cloud/ipfs/,https://cloudflare-ipfs.com/ipfs/,https://dweb.link/ipfs/"`
	GatewaysSettingsPath string        `env:"GATEWAYS_SETTINGS_PATH"`
	DownloadTimeout      time.Duration `env:"DOWNLOAD_TIMEOUT" envDefault:"10s"`
}

// LocalNodeURL returns the address of the local ipfs node api
func (i IPFS) LocalNodeURL() string {
	return fmt.Sprintf("%s:%d", i.Host, i.Port)
}

// PinataConfigured reports whether both pinata credentials were provided
func (i IPFS) PinataConfigured() bool {
	return i.PinataAPIKey != "" && i.PinataSecretKey != ""
}

// Upload limits the accepted documents
type Upload struct {
	MaxBytes     int64    `env:"MAX_BYTES" envDefault:"10485760"`
	AllowedTypes []string `env:"ALLOWED_TYPES" envSeparator:"," envDefault:"image/jpeg,image/png,application/pdf,text/plain"`
}

// CORS allowed origins
type CORS struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

// Reconciler configures the ledger anchoring sweep
type Reconciler struct {
	Schedule  string        `env:"SCHEDULE" envDefault:"@every 1m"`
	MinAge    time.Duration `env:"MIN_AGE" envDefault:"30s"`
	BatchSize int           `env:"BATCH_SIZE" envDefault:"50"`
}

// GatewaysSettings is the optional yaml document that overrides the gateway list
type GatewaysSettings struct {
	Primary string   `yaml:"primary"`
	Public  []string `yaml:"public"`
}

// Sanitize perform some basic checks and sanitizations in the configuration.
// Returns true if config is acceptable, error otherwise.
func (c *Configuration) Sanitize() error {
	sUrl, err := c.validateServerUrl()
	if err != nil {
		return fmt.Errorf("serverUrl is not a valid URL <%s>: %w", c.ServerUrl, err)
	}
	c.ServerUrl = sUrl
	c.PublicURL = strings.TrimRight(c.PublicURL, "/")

	switch c.Ethereum.SignerKeySource {
	case SignerKeyFromEnv, SignerKeyFromVault, SignerKeyFromAWS:
	default:
		return fmt.Errorf("unknown signer key source <%s>", c.Ethereum.SignerKeySource)
	}

	switch c.Cache.Provider {
	case CacheProviderRedis, CacheProviderValKey:
		if c.Cache.URL == "" {
			return fmt.Errorf("a cache url is required for the %s cache provider", c.Cache.Provider)
		}
	case CacheProviderMemory:
	default:
		return fmt.Errorf("unknown cache provider <%s>", c.Cache.Provider)
	}

	c.IPFS.GatewayURL = withTrailingSlash(c.IPFS.GatewayURL)
	for i := range c.IPFS.PublicGateways {
		c.IPFS.PublicGateways[i] = withTrailingSlash(strings.TrimSpace(c.IPFS.PublicGateways[i]))
	}
	if len(c.IPFS.PublicGateways) == 0 {
		return fmt.Errorf("at least one public ipfs gateway is required")
	}
	return nil
}

func (c *Configuration) validateServerUrl() (string, error) {
	sUrl, err := url.ParseRequestURI(c.ServerUrl)
	if err != nil {
		return c.ServerUrl, err
	}
	if sUrl.Scheme == "" {
		return c.ServerUrl, fmt.Errorf("server URL must be an absolute URL")
	}
	sUrl.RawQuery = ""
	return strings.Trim(strings.Trim(sUrl.String(), "/"), "?"), nil
}

// Load reads the configuration from the environment. Values found in the dotenv file
// (CREDENTIAL_NODE_ENV_FILE or .env-credential-node) are loaded first and never override
// variables already present in the environment.
func Load(ctx context.Context) (*Configuration, error) {
	envFile := defaultEnvFile
	if f, ok := os.LookupEnv(EnvFileVar); ok {
		envFile = f
	}
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Error(ctx, "error loading env file", "file", envFile, "err", err)
		}
	}

	cfg := &Configuration{}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("error parsing configuration: %w", err)
	}

	if cfg.IPFS.GatewaysSettingsPath != "" {
		if err := cfg.loadGatewaysSettings(); err != nil {
			return nil, err
		}
	}

	checkEnvVars(ctx, cfg)
	return cfg, nil
}

func (c *Configuration) loadGatewaysSettings() error {
	content, err := os.ReadFile(c.IPFS.GatewaysSettingsPath)
	if err != nil {
		return fmt.Errorf("cannot read gateways settings file: %w", err)
	}
	var settings GatewaysSettings
	if err := yaml.Unmarshal(content, &settings); err != nil {
		return fmt.Errorf("cannot parse gateways settings file: %w", err)
	}
	if settings.Primary != "" {
		c.IPFS.GatewayURL = settings.Primary
	}
	if len(settings.Public) > 0 {
		c.IPFS.PublicGateways = settings.Public
	}
	return nil
}

func withTrailingSlash(u string) string {
	if u == "" || strings.HasSuffix(u, "/") {
		return u
	}
	return u + "/"
}

func checkEnvVars(ctx context.Context, cfg *Configuration) {
	if cfg.Database.URL == "" {
		log.Info(ctx, "CREDNODE_DATABASE_URL value is missing, records will be kept in memory")
	}

	if cfg.Ethereum.URL == "" {
		log.Info(ctx, "CREDNODE_ETHEREUM_URL value is missing, ledger fallback mode enabled")
	}

	if cfg.Ethereum.CredentialStoreAddress == "" {
		log.Info(ctx, "CREDNODE_ETHEREUM_CREDENTIAL_STORE_ADDRESS value is missing, ledger fallback mode enabled")
	}

	if cfg.Ethereum.DIDRegistryAddress == "" {
		log.Info(ctx, "CREDNODE_ETHEREUM_DID_REGISTRY_ADDRESS value is missing")
	}

	if cfg.Ethereum.SignerKeySource == SignerKeyFromEnv && cfg.Ethereum.SignerKey == "" {
		log.Info(ctx, "CREDNODE_ETHEREUM_SIGNER_KEY value is missing")
	}

	if cfg.Ethereum.SignerKeySource == SignerKeyFromVault && cfg.KeyStore.Address == "" {
		log.Info(ctx, "CREDNODE_KEY_STORE_ADDRESS value is missing")
	}

	if cfg.Ethereum.SignerKeySource == SignerKeyFromVault && cfg.KeyStore.Token == "" {
		log.Info(ctx, "CREDNODE_KEY_STORE_TOKEN value is missing")
	}

	if cfg.Ethereum.SignerKeySource == SignerKeyFromAWS && cfg.AWS.Region == "" {
		log.Info(ctx, "CREDNODE_AWS_REGION value is missing")
	}

	if !cfg.IPFS.UseLocalNode && !cfg.IPFS.PinataConfigured() {
		log.Info(ctx, "no ipfs backend configured, uploads will use mock content identifiers")
	}

	if cfg.Cache.Provider != CacheProviderMemory && cfg.Cache.URL == "" {
		log.Info(ctx, "CREDNODE_CACHE_URL value is missing")
	}
}
