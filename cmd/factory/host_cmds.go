package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Abdullah1738/wasm-factory/factory"
)

func newStoreCodeCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		sender string
	)
	cmd := &cobra.Command{
		Use:   "store-code",
		Short: "Upload a code bundle and print its code id and checksum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errors.New("--file is required")
			}
			code, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			id, checksum, err := a.host.StoreCode(cmd.Context(), sender, code)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"code_id":  id,
				"checksum": checksum.Hex(),
			})
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the code bundle")
	cmd.Flags().StringVar(&sender, "sender", "creator", "Uploader address")
	return cmd
}

func newInstantiateCmd(opts *rootOptions) *cobra.Command {
	var (
		factoryCodeID uint64
		sender        string
		msg           factory.InstantiateMsg
	)
	cmd := &cobra.Command{
		Use:   "instantiate",
		Short: "Instantiate a factory for a template code id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if factoryCodeID == 0 || msg.ContractCodeID == 0 {
				return errors.New("--factory-code-id and --template-code-id are required")
			}
			if msg.FactoryOwner == "" {
				msg.FactoryOwner = sender
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			addr, res, err := a.host.InstantiateFactory(cmd.Context(), factoryCodeID, sender, msg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"contract_address": addr,
				"attributes":       res.Attributes,
			})
		},
	}
	cmd.Flags().Uint64Var(&factoryCodeID, "factory-code-id", 0, "Code id of the factory contract")
	cmd.Flags().Uint64Var(&msg.ContractCodeID, "template-code-id", 0, "Code id instances are created from")
	cmd.Flags().StringVar(&msg.FactoryOwner, "owner", "", "Factory owner (defaults to --sender)")
	cmd.Flags().StringVar(&sender, "sender", "creator", "Sender address")
	return cmd
}

func newDeployCmd(opts *rootOptions) *cobra.Command {
	var (
		contract string
		sender   string
		salt     string
	)
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy an instance through a factory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if contract == "" {
				return errors.New("--contract is required")
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.host.Execute(cmd.Context(), contract, sender, factory.ExecuteMsg{
				Deploy: &factory.DeployMsg{InputSalt: salt},
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "Factory contract address")
	cmd.Flags().StringVar(&sender, "sender", "creator", "Sender address")
	cmd.Flags().StringVar(&salt, "salt", "", "Salt the instance address is derived from")
	return cmd
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	var contract string
	cmd := &cobra.Command{
		Use:   "query <json>",
		Short: `Query a factory, e.g. '{"config":{}}' or '{"predict_address":{"input_salt":"abc"}}'`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if contract == "" {
				return errors.New("--contract is required")
			}
			msg, err := factory.DecodeQueryMsg([]byte(args[0]))
			if err != nil {
				return err
			}
			a, err := openApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer a.close()

			raw, err := a.host.Query(cmd.Context(), contract, msg)
			if err != nil {
				return err
			}
			var out any
			if err := json.Unmarshal(raw, &out); err != nil {
				return fmt.Errorf("decode query response: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&contract, "contract", "", "Factory contract address")
	return cmd
}
