package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Abdullah1738/wasm-factory/internal/config"
	"github.com/Abdullah1738/wasm-factory/offchain/deployments"
	"github.com/Abdullah1738/wasm-factory/offchain/predict"
	"github.com/Abdullah1738/wasm-factory/protocol"
)

type predictTarget struct {
	opts        *rootOptions
	registry    string
	deployment  string
	factoryAddr string
	checksumHex string
}

func (t *predictTarget) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&t.registry, "registry", "", "Deployments registry file (.json or .yaml)")
	cmd.Flags().StringVar(&t.deployment, "deployment", "", "Deployment name in --registry")
	cmd.Flags().StringVar(&t.factoryAddr, "factory", "", "Factory contract address")
	cmd.Flags().StringVar(&t.checksumHex, "checksum", "", "Template code checksum (32-byte hex)")
}

// resolve picks the factory, checksum and scheme either from a registry
// entry or from explicit flags plus the --config file.
func (t *predictTarget) resolve() (predict.Predictor, protocol.Checksum, string, error) {
	if t.registry != "" || t.deployment != "" {
		if t.registry == "" || t.deployment == "" {
			return predict.Predictor{}, protocol.Checksum{}, "", errors.New("--registry and --deployment must be used together")
		}
		reg, err := deployments.Load(t.registry)
		if err != nil {
			return predict.Predictor{}, protocol.Checksum{}, "", err
		}
		d, err := reg.FindByName(t.deployment)
		if err != nil {
			return predict.Predictor{}, protocol.Checksum{}, "", err
		}
		deriver, codec, checksum, err := d.Resolve()
		if err != nil {
			return predict.Predictor{}, protocol.Checksum{}, "", err
		}
		return predict.Predictor{Deriver: deriver, Codec: codec}, checksum, d.FactoryAddress, nil
	}

	if t.factoryAddr == "" || t.checksumHex == "" {
		return predict.Predictor{}, protocol.Checksum{}, "", errors.New("--factory and --checksum are required without --registry")
	}
	cfg, err := config.Load(t.opts.configPath)
	if err != nil {
		return predict.Predictor{}, protocol.Checksum{}, "", err
	}
	deriver, codec, err := cfg.Protocol()
	if err != nil {
		return predict.Predictor{}, protocol.Checksum{}, "", err
	}
	checksum, err := protocol.ParseChecksumHex(t.checksumHex)
	if err != nil {
		return predict.Predictor{}, protocol.Checksum{}, "", fmt.Errorf("parse --checksum: %w", err)
	}
	return predict.Predictor{Deriver: deriver, Codec: codec}, checksum, t.factoryAddr, nil
}

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var salt string
	target := predictTarget{opts: opts}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Print the address an instance will get for a salt, without any host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, checksum, factoryAddr, err := target.resolve()
			if err != nil {
				return err
			}
			pred, err := p.Predict(checksum, factoryAddr, []byte(salt))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pred.Address)
			return nil
		},
	}
	target.bind(cmd)
	cmd.Flags().StringVar(&salt, "salt", "", "Salt")
	return cmd
}

func newPredictBatchCmd(opts *rootOptions) *cobra.Command {
	var (
		saltsFile   string
		concurrency int
	)
	target := predictTarget{opts: opts}
	cmd := &cobra.Command{
		Use:   "predict-batch",
		Short: "Predict addresses for every salt in a file (one per line)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if saltsFile == "" {
				return errors.New("--salts-file is required")
			}
			salts, err := readLines(saltsFile)
			if err != nil {
				return err
			}
			p, checksum, factoryAddr, err := target.resolve()
			if err != nil {
				return err
			}
			preds, err := p.Batch(cmd.Context(), checksum, factoryAddr, salts, concurrency)
			if err != nil {
				return err
			}
			out := make([]map[string]string, 0, len(preds))
			for _, pr := range preds {
				out = append(out, map[string]string{"salt": pr.Salt, "address": pr.Address})
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	target.bind(cmd)
	cmd.Flags().StringVar(&saltsFile, "salts-file", "", "File with one salt per line")
	cmd.Flags().IntVar(&concurrency, "concurrency", predict.DefaultBatchLimit, "Maximum concurrent derivations")
	return cmd
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
