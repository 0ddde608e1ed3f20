package factory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abdullah1738/wasm-factory/internal/kv"
)

// ConfigKey is the only storage key the contract writes.
const ConfigKey = "config"

// Config is set once at instantiation and never changed.
type Config struct {
	// Validated address of the account that instantiated the factory.
	FactoryOwner string `json:"factory_owner"`

	// Code id of the template every deployed instance is created from.
	ContractCodeID uint64 `json:"contract_code_id"`
}

// ConfigStore reads and writes the singleton Config. It holds no copy of
// the config: every Load decodes what is currently persisted.
type ConfigStore struct {
	store kv.Store
}

func NewConfigStore(store kv.Store) ConfigStore {
	return ConfigStore{store: store}
}

// Load returns ErrNotInitialized when no config has been saved.
func (s ConfigStore) Load(ctx context.Context) (Config, error) {
	raw, ok, err := s.store.Get(ctx, []byte(ConfigKey))
	if err != nil {
		return Config{}, wrap(KindStorage, fmt.Errorf("load config: %w", err))
	}
	if !ok {
		return Config{}, ErrNotInitialized
	}
	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, wrap(KindStorage, fmt.Errorf("decode config: %w", err))
	}
	return cfg, nil
}

// Initialize saves cfg, failing with ErrAlreadyInitialized if a config is
// already present.
func (s ConfigStore) Initialize(ctx context.Context, cfg Config) error {
	_, ok, err := s.store.Get(ctx, []byte(ConfigKey))
	if err != nil {
		return wrap(KindStorage, fmt.Errorf("check config: %w", err))
	}
	if ok {
		return ErrAlreadyInitialized
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return wrap(KindStorage, fmt.Errorf("encode config: %w", err))
	}
	if err := s.store.Set(ctx, []byte(ConfigKey), raw); err != nil {
		return wrap(KindStorage, fmt.Errorf("save config: %w", err))
	}
	return nil
}
