// Package factory is a contract that creates instances of a fixed code
// template at addresses callers can compute in advance.
//
// The factory is instantiated once with an owner and a code id. Each Deploy
// call derives the address the new instance will occupy from the template's
// checksum, the factory's own address and a caller-chosen salt, and returns
// the Instantiate2 message that creates it there. The factory keeps no
// record of what it deployed; reusing a salt produces the same address and
// the host rejects the second creation.
package factory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

// InstanceLabel is the label given to every deployed instance.
const InstanceLabel = "Instance"

const (
	attrMethod           = "method"
	attrFactoryOwner     = "factory_owner"
	attrContractCodeID   = "contract_code_id"
	attrPredictedAddress = "predicted_address"

	methodInstantiate  = "instantiate"
	methodInstantiate2 = "instantiate2"
)

func Instantiate(ctx context.Context, deps Deps, _ Env, _ MessageInfo, msg InstantiateMsg) (*Response, error) {
	owner, err := deps.API.AddrValidate(msg.FactoryOwner)
	if err != nil {
		return nil, wrap(KindInvalidIdentity, err)
	}

	cfg := Config{
		FactoryOwner:   owner,
		ContractCodeID: msg.ContractCodeID,
	}
	if err := NewConfigStore(deps.Storage).Initialize(ctx, cfg); err != nil {
		return nil, err
	}

	res := NewResponse().
		AddAttribute(attrMethod, methodInstantiate).
		AddAttribute(attrFactoryOwner, owner).
		AddAttribute(attrContractCodeID, strconv.FormatUint(msg.ContractCodeID, 10))
	deps.logger().Debug("factory instantiated", res.zapFields()...)
	return res, nil
}

func Execute(ctx context.Context, deps Deps, env Env, info MessageInfo, msg ExecuteMsg) (*Response, error) {
	switch {
	case msg.Deploy != nil:
		return Deploy(ctx, deps, env, info, msg.Deploy.InputSalt)
	default:
		return nil, wrap(KindInvalidMessage, errors.New("no execute variant set"))
	}
}

// Deploy returns one Instantiate2 message creating a template instance at
// the address derived from inputSalt, and that address as the
// predicted_address attribute.
func Deploy(ctx context.Context, deps Deps, env Env, _ MessageInfo, inputSalt string) (*Response, error) {
	cfg, err := NewConfigStore(deps.Storage).Load(ctx)
	if err != nil {
		return nil, err
	}

	salt := []byte(inputSalt)
	address, _, err := predict(ctx, deps, env, cfg, salt)
	if err != nil {
		return nil, err
	}

	res := NewResponse().
		AddAttribute(attrMethod, methodInstantiate2).
		AddAttribute(attrContractCodeID, strconv.FormatUint(cfg.ContractCodeID, 10)).
		AddAttribute(attrPredictedAddress, address).
		AddMessage(Instantiate2Msg{
			CodeID: cfg.ContractCodeID,
			Label:  InstanceLabel,
			Msg:    []byte{},
			Funds:  []Coin{},
			Salt:   salt,
		})
	deps.logger().Debug("instance deployment prepared", res.zapFields()...)
	return res, nil
}

// Query answers {"config":{}} with the stored Config and
// {"predict_address":{...}} with the address Deploy would produce.
func Query(ctx context.Context, deps Deps, env Env, msg QueryMsg) ([]byte, error) {
	cfg, err := NewConfigStore(deps.Storage).Load(ctx)
	if err != nil {
		return nil, err
	}

	var out any
	switch {
	case msg.Config != nil:
		out = cfg
	case msg.PredictAddress != nil:
		address, checksum, err := predict(ctx, deps, env, cfg, []byte(msg.PredictAddress.InputSalt))
		if err != nil {
			return nil, err
		}
		out = PredictAddressResponse{
			Address:        address,
			ContractCodeID: cfg.ContractCodeID,
			Checksum:       checksum.Hex(),
		}
	default:
		return nil, wrap(KindInvalidMessage, errors.New("no query variant set"))
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode query response: %w", err)
	}
	return b, nil
}

func predict(ctx context.Context, deps Deps, env Env, cfg Config, salt []byte) (string, protocol.Checksum, error) {
	// The creator is the factory itself, never the caller.
	creator, err := deps.API.AddrCanonicalize(env.Contract.Address)
	if err != nil {
		return "", protocol.Checksum{}, wrap(KindAddressEncodingFailed, fmt.Errorf("canonicalize contract address: %w", err))
	}

	info, err := deps.Querier.CodeInfo(ctx, cfg.ContractCodeID)
	if err != nil {
		return "", protocol.Checksum{}, wrap(KindTemplateLookupFailed, fmt.Errorf("code id %d: %w", cfg.ContractCodeID, err))
	}

	raw, err := deps.deriver().Derive(info.Checksum, creator, salt)
	if errors.Is(err, protocol.ErrInvalidSaltLength) {
		return "", protocol.Checksum{}, wrap(KindInvalidSalt, err)
	}
	if err != nil {
		return "", protocol.Checksum{}, wrap(KindAddressEncodingFailed, fmt.Errorf("derive address: %w", err))
	}

	address, err := deps.API.AddrHumanize(raw)
	if err != nil {
		return "", protocol.Checksum{}, wrap(KindAddressEncodingFailed, err)
	}
	deps.logger().Debug("address derived",
		zap.Uint64("code_id", cfg.ContractCodeID),
		zap.String("checksum", info.Checksum.Hex()),
		zap.String("creator", creator.Hex()),
		zap.Int("salt_len", len(salt)),
		zap.String("address", address),
	)
	return address, info.Checksum, nil
}
