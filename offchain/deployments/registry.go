package deployments

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

var ErrNotFound = errors.New("deployment not found")

// Registry lists the factories known to an operator, one entry per
// deployed factory contract.
type Registry struct {
	SchemaVersion int          `json:"schema_version" yaml:"schema_version"`
	Deployments   []Deployment `json:"deployments" yaml:"deployments"`
}

type Deployment struct {
	Name    string `json:"name" yaml:"name"`
	ChainID string `json:"chain_id,omitempty" yaml:"chain_id,omitempty"`

	Scheme        string `json:"scheme,omitempty" yaml:"scheme,omitempty"`     // instantiate2 | program-address
	Encoding      string `json:"encoding,omitempty" yaml:"encoding,omitempty"` // bech32 | base58 | strkey
	AddressPrefix string `json:"address_prefix,omitempty" yaml:"address_prefix,omitempty"`

	FactoryAddress string `json:"factory_address" yaml:"factory_address"`
	CodeID         uint64 `json:"code_id" yaml:"code_id"`
	Checksum       string `json:"checksum" yaml:"checksum"` // 64 hex digits, 0x optional
}

// Load reads a registry from a .json, .yaml or .yml file.
func Load(path string) (Registry, error) {
	var out Registry
	path = strings.TrimSpace(path)
	if path == "" {
		return Registry{}, errors.New("path required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Registry{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &out)
	default:
		err = json.Unmarshal(raw, &out)
	}
	if err != nil {
		return Registry{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func (r Registry) FindByName(name string) (Deployment, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Deployment{}, errors.New("name required")
	}
	for _, d := range r.Deployments {
		if d.Name == name {
			return d, nil
		}
	}
	return Deployment{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Resolve returns the deriver, codec and checksum a deployment's addresses
// are computed with.
func (d Deployment) Resolve() (protocol.Deriver, protocol.AddressCodec, protocol.Checksum, error) {
	deriver, err := protocol.DeriverByName(d.Scheme)
	if err != nil {
		return nil, nil, protocol.Checksum{}, fmt.Errorf("deployment %s: %w", d.Name, err)
	}
	codec, err := protocol.CodecByName(d.Encoding, d.AddressPrefix)
	if err != nil {
		return nil, nil, protocol.Checksum{}, fmt.Errorf("deployment %s: %w", d.Name, err)
	}
	checksum, err := protocol.ParseChecksumHex(d.Checksum)
	if err != nil {
		return nil, nil, protocol.Checksum{}, fmt.Errorf("deployment %s: checksum: %w", d.Name, err)
	}
	return deriver, codec, checksum, nil
}
