package config

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds the overall configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Chains       map[string]string  `yaml:"chains"` // chain identifier -> JSON-RPC endpoint
	RpcClient    RpcClientConfig    `yaml:"rpcClient"`
	PriceSources PriceSourcesConfig `yaml:"priceSources"`
	Aggregator   AggregatorConfig   `yaml:"aggregator"`
	Cache        CacheConfig        `yaml:"cache"`
	Logging      LoggingConfig      `yaml:"logging"`
	Swagger      SwaggerConfig      `yaml:"swagger"`
}

// ServerConfig holds the server-specific configuration.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// DatabaseConfig holds the SQLite wallet store configuration.
type DatabaseConfig struct {
	Path               string `yaml:"path"`
	MaxOpenConns       int    `yaml:"maxOpenConns"`
	MaxIdleConns       int    `yaml:"maxIdleConns"`
	PingTimeoutSeconds int    `yaml:"pingTimeoutSeconds"`
}

// RpcClientConfig holds configuration for the per-chain RPC clients.
type RpcClientConfig struct {
	ConnectionTimeoutSeconds int `yaml:"connectionTimeoutSeconds"`
	CallTimeoutSeconds       int `yaml:"callTimeoutSeconds"`
	RateLimit                int `yaml:"rateLimit"`
	BurstLimit               int `yaml:"burstLimit"`
}

// PriceSourceConfig holds the settings for one HTTP quote source.
type PriceSourceConfig struct {
	BaseURL              string `yaml:"baseURL"`
	RequestTimeoutMillis int64  `yaml:"requestTimeoutMillis"`
}

// PriceSourcesConfig holds the primary and secondary quote sources.
type PriceSourcesConfig struct {
	MEXC      PriceSourceConfig `yaml:"mexc"`
	CoinGecko PriceSourceConfig `yaml:"coinGecko"`
}

// AggregatorConfig holds configuration for the balance aggregator.
type AggregatorConfig struct {
	MaxConcurrentReads int `yaml:"maxConcurrentReads"`
}

// CacheConfig holds configuration for the contract metadata cache.
type CacheConfig struct {
	MetadataTTLMinutes     int `yaml:"metadataTTLMinutes"`
	CleanupIntervalMinutes int `yaml:"cleanupIntervalMinutes"`
}

// LoggingConfig holds the configuration for logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // e.g., "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// defaultChainEndpoints maps every supported chain to a public RPC endpoint.
// Any entry can be overridden in the config file; URLs may reference
// environment variables (e.g. "${INFURA_KEY}") which are expanded on load.
var defaultChainEndpoints = map[string]string{
	"ETH":    "https://mainnet.infura.io/v3/${INFURA_KEY}",
	"BASE":   "https://mainnet.base.org",
	"ARB":    "https://arbitrum-mainnet.infura.io/v3/${INFURA_KEY}",
	"OP":     "https://optimism-mainnet.infura.io/v3/${INFURA_KEY}",
	"POL":    "https://polygon-mainnet.infura.io/v3/${INFURA_KEY}",
	"AVAX":   "https://avalanche-mainnet.infura.io/v3/${INFURA_KEY}",
	"BSC":    "https://bsc-mainnet.infura.io/v3/${INFURA_KEY}",
	"STARK":  "https://starknet-mainnet.infura.io/v3/${INFURA_KEY}",
	"MANTLE": "https://mantle-mainnet.infura.io/v3/${INFURA_KEY}",
	"LINEA":  "https://linea-mainnet.infura.io/v3/${INFURA_KEY}",
}

// LoadConfig loads configuration from a YAML file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	logrus.Infof("Loading configuration from path: %s", path)
	data, err := os.ReadFile(path)
	if err != nil {
		logrus.Errorf("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}

	if cfg.Server.Port == "" {
		cfg.Server.Port = ":8080"
		logrus.Infof("Server.Port not set, defaulting to %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/hotwallet.db"
		logrus.Infof("Database.Path not set, defaulting to %s", cfg.Database.Path)
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.PingTimeoutSeconds == 0 {
		cfg.Database.PingTimeoutSeconds = 5
	}

	// Merge the default chain endpoints: a chain present in the file wins,
	// everything else falls back to the built-in table.
	if cfg.Chains == nil {
		cfg.Chains = make(map[string]string, len(defaultChainEndpoints))
	}
	for chain, endpoint := range defaultChainEndpoints {
		if _, ok := cfg.Chains[chain]; !ok {
			cfg.Chains[chain] = endpoint
		}
	}
	for chain, endpoint := range cfg.Chains {
		cfg.Chains[chain] = os.ExpandEnv(endpoint)
	}

	if cfg.RpcClient.ConnectionTimeoutSeconds == 0 {
		cfg.RpcClient.ConnectionTimeoutSeconds = 10
	}
	if cfg.RpcClient.CallTimeoutSeconds == 0 {
		cfg.RpcClient.CallTimeoutSeconds = 10
		logrus.Infof("RpcClient.CallTimeoutSeconds not set, defaulting to %d", cfg.RpcClient.CallTimeoutSeconds)
	}
	if cfg.RpcClient.RateLimit == 0 {
		cfg.RpcClient.RateLimit = 20
	}
	if cfg.RpcClient.BurstLimit == 0 {
		cfg.RpcClient.BurstLimit = 10
	}

	if cfg.PriceSources.MEXC.BaseURL == "" {
		cfg.PriceSources.MEXC.BaseURL = "https://api.mexc.com"
		logrus.Infof("PriceSources.MEXC.BaseURL not set, defaulting to %s", cfg.PriceSources.MEXC.BaseURL)
	}
	if cfg.PriceSources.MEXC.RequestTimeoutMillis == 0 {
		cfg.PriceSources.MEXC.RequestTimeoutMillis = 10000
	}
	if cfg.PriceSources.CoinGecko.BaseURL == "" {
		cfg.PriceSources.CoinGecko.BaseURL = "https://api.coingecko.com"
		logrus.Infof("PriceSources.CoinGecko.BaseURL not set, defaulting to %s", cfg.PriceSources.CoinGecko.BaseURL)
	}
	if cfg.PriceSources.CoinGecko.RequestTimeoutMillis == 0 {
		cfg.PriceSources.CoinGecko.RequestTimeoutMillis = 10000
	}

	if cfg.Aggregator.MaxConcurrentReads == 0 {
		cfg.Aggregator.MaxConcurrentReads = 5
		logrus.Infof("Aggregator.MaxConcurrentReads not set, defaulting to %d", cfg.Aggregator.MaxConcurrentReads)
	}

	if cfg.Cache.MetadataTTLMinutes == 0 {
		cfg.Cache.MetadataTTLMinutes = 60
	}
	if cfg.Cache.CleanupIntervalMinutes == 0 {
		cfg.Cache.CleanupIntervalMinutes = 10
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}
