// Package config loads the factory CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Chain   ChainConfig   `yaml:"chain"`
	Storage StorageConfig `yaml:"storage"`
	Logging LoggingConfig `yaml:"logging"`
}

type ChainConfig struct {
	ChainID       string `yaml:"chain_id"`
	Scheme        string `yaml:"scheme"`   // instantiate2 | program-address
	Encoding      string `yaml:"encoding"` // bech32 | base58 | strkey
	AddressPrefix string `yaml:"address_prefix"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // memory | sqlite | postgres
	DSN    string `yaml:"dsn"`    // file path for sqlite, connection URL for postgres
}

type LoggingConfig struct {
	Level string `yaml:"level"` // debug | info | warn | error
}

func Default() *Config {
	return &Config{
		Chain: ChainConfig{
			ChainID:       "localnet",
			Scheme:        "instantiate2",
			Encoding:      "bech32",
			AddressPrefix: "wasm",
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
			DSN:    "factory-state.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FACTORY_STORAGE_DRIVER"); v != "" {
		c.Storage.Driver = v
	}
	if v := os.Getenv("FACTORY_STORAGE_DSN"); v != "" {
		c.Storage.DSN = v
	}
	if v := os.Getenv("FACTORY_ADDRESS_PREFIX"); v != "" {
		c.Chain.AddressPrefix = v
	}
	if v := os.Getenv("FACTORY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) Validate() error {
	if _, err := protocol.DeriverByName(c.Chain.Scheme); err != nil {
		return err
	}
	if _, err := protocol.CodecByName(c.Chain.Encoding, c.Chain.AddressPrefix); err != nil {
		return err
	}
	switch strings.ToLower(c.Storage.Driver) {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn is required for driver %s", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver: %s", c.Storage.Driver)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be debug, info, warn or error")
	}
	return nil
}

// Protocol returns the derivation scheme and address codec configured for
// the chain.
func (c *Config) Protocol() (protocol.Deriver, protocol.AddressCodec, error) {
	deriver, err := protocol.DeriverByName(c.Chain.Scheme)
	if err != nil {
		return nil, nil, err
	}
	codec, err := protocol.CodecByName(c.Chain.Encoding, c.Chain.AddressPrefix)
	if err != nil {
		return nil, nil, err
	}
	return deriver, codec, nil
}
