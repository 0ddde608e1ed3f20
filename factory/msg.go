package factory

import (
	"bytes"
	"encoding/json"
	"fmt"
)

type InstantiateMsg struct {
	FactoryOwner   string `json:"factory_owner"`
	ContractCodeID uint64 `json:"contract_code_id"`
}

// ExecuteMsg is a tagged union: exactly one field is set.
//
//	{"deploy":{"input_salt":"abc"}}
type ExecuteMsg struct {
	Deploy *DeployMsg `json:"deploy,omitempty"`
}

type DeployMsg struct {
	InputSalt string `json:"input_salt"`
}

// QueryMsg is a tagged union: exactly one field is set.
//
//	{"config":{}}
//	{"predict_address":{"input_salt":"abc"}}
type QueryMsg struct {
	Config         *ConfigQuery         `json:"config,omitempty"`
	PredictAddress *PredictAddressQuery `json:"predict_address,omitempty"`
}

type ConfigQuery struct{}

type PredictAddressQuery struct {
	InputSalt string `json:"input_salt"`
}

type PredictAddressResponse struct {
	Address        string `json:"address"`
	ContractCodeID uint64 `json:"contract_code_id"`
	Checksum       string `json:"checksum"`
}

func decodeStrict(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return wrap(KindInvalidMessage, err)
	}
	return nil
}

func DecodeInstantiateMsg(raw []byte) (InstantiateMsg, error) {
	var msg InstantiateMsg
	err := decodeStrict(raw, &msg)
	return msg, err
}

func DecodeExecuteMsg(raw []byte) (ExecuteMsg, error) {
	var msg ExecuteMsg
	if err := decodeStrict(raw, &msg); err != nil {
		return ExecuteMsg{}, err
	}
	if msg.Deploy == nil {
		return ExecuteMsg{}, wrap(KindInvalidMessage, fmt.Errorf("no execute variant set"))
	}
	return msg, nil
}

func DecodeQueryMsg(raw []byte) (QueryMsg, error) {
	var msg QueryMsg
	if err := decodeStrict(raw, &msg); err != nil {
		return QueryMsg{}, err
	}
	if (msg.Config == nil) == (msg.PredictAddress == nil) {
		return QueryMsg{}, wrap(KindInvalidMessage, fmt.Errorf("exactly one query variant must be set"))
	}
	return msg, nil
}
