package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Abdullah1738/wasm-factory/internal/config"
	"github.com/Abdullah1738/wasm-factory/internal/hostsim"
	"github.com/Abdullah1738/wasm-factory/internal/kv"
	"github.com/Abdullah1738/wasm-factory/internal/kv/pgkv"
	"github.com/Abdullah1738/wasm-factory/internal/kv/sqlkv"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:     "factory",
		Version: version,
		Short:   "Deterministic instance factory tooling",
		Long: `factory drives a local host simulator running the instance factory contract
and predicts instance addresses off-chain.

State is kept in the storage backend selected by the config file
(sqlite by default), so commands can be chained across invocations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")

	root.AddCommand(
		newStoreCodeCmd(opts),
		newInstantiateCmd(opts),
		newDeployCmd(opts),
		newQueryCmd(opts),
		newPredictCmd(opts),
		newPredictBatchCmd(opts),
	)
	return root
}

// app is the per-invocation wiring shared by the host commands.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	host  *hostsim.Host
	close func() error
}

func openApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	store, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	deriver, codec, err := cfg.Protocol()
	if err != nil {
		closeStore()
		return nil, err
	}
	host := hostsim.New(store, hostsim.Options{
		ChainID: cfg.Chain.ChainID,
		Codec:   codec,
		Deriver: deriver,
		Logger:  log,
	})
	return &app{
		cfg:  cfg,
		log:  log,
		host: host,
		close: func() error {
			_ = log.Sync()
			return closeStore()
		},
	}, nil
}

func newLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	if strings.EqualFold(level, "debug") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func openStore(ctx context.Context, sc config.StorageConfig) (kv.Store, func() error, error) {
	switch strings.ToLower(sc.Driver) {
	case config.DriverMemory:
		return kv.NewMemStore(), func() error { return nil }, nil
	case config.DriverSQLite:
		s, err := sqlkv.Open(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := pgkv.Open(ctx, sc.DSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", sc.Driver)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
