package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/mr-tron/base58"
	"github.com/stellar/go/strkey"
)

var (
	ErrInvalidAddress       = errors.New("invalid address")
	ErrAddressNotNormalized = errors.New("address not normalized")
	ErrEmptyAddress         = errors.New("empty address")
)

// AddressCodec converts between the human-readable and canonical forms of
// host identities.
type AddressCodec interface {
	Humanize(addr CanonicalAddr) (string, error)
	Canonicalize(human string) (CanonicalAddr, error)
}

// Validate checks that human is a well-formed address in its normalized
// form, i.e. that it survives a canonicalize/humanize round trip unchanged.
func Validate(c AddressCodec, human string) (string, error) {
	canon, err := c.Canonicalize(human)
	if err != nil {
		return "", err
	}
	normalized, err := c.Humanize(canon)
	if err != nil {
		return "", err
	}
	if normalized != human {
		return "", fmt.Errorf("%w: %q", ErrAddressNotNormalized, human)
	}
	return normalized, nil
}

// Bech32Codec renders addresses as bech32 strings under a fixed
// human-readable prefix (e.g. "wasm", "juno").
type Bech32Codec struct {
	Prefix string
}

func (c Bech32Codec) Humanize(addr CanonicalAddr) (string, error) {
	if len(addr) == 0 {
		return "", ErrEmptyAddress
	}
	data, err := bech32.ConvertBits(addr, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	s, err := bech32.Encode(c.Prefix, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return s, nil
}

func (c Bech32Codec) Canonicalize(human string) (CanonicalAddr, error) {
	if strings.TrimSpace(human) == "" {
		return nil, ErrEmptyAddress
	}
	hrp, data, err := bech32.Decode(human)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != c.Prefix {
		return nil, fmt.Errorf("%w: prefix %q, want %q", ErrInvalidAddress, hrp, c.Prefix)
	}
	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyAddress
	}
	return CanonicalAddr(raw), nil
}

// Base58Codec renders 32-byte addresses in base58, as account-model hosts
// display public keys and program-derived accounts.
type Base58Codec struct{}

func (Base58Codec) Humanize(addr CanonicalAddr) (string, error) {
	if len(addr) != 32 {
		return "", fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidAddress, len(addr))
	}
	return base58.Encode(addr), nil
}

func (Base58Codec) Canonicalize(human string) (CanonicalAddr, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return nil, ErrEmptyAddress
	}
	b, err := base58.Decode(s)
	if err != nil || len(b) != 32 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, human)
	}
	return CanonicalAddr(b), nil
}

// StrkeyCodec renders 32-byte addresses as contract strkeys ("C...").
type StrkeyCodec struct{}

func (StrkeyCodec) Humanize(addr CanonicalAddr) (string, error) {
	if len(addr) != 32 {
		return "", fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidAddress, len(addr))
	}
	s, err := strkey.Encode(strkey.VersionByteContract, addr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return s, nil
}

func (StrkeyCodec) Canonicalize(human string) (CanonicalAddr, error) {
	if strings.TrimSpace(human) == "" {
		return nil, ErrEmptyAddress
	}
	b, err := strkey.Decode(strkey.VersionByteContract, human)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return CanonicalAddr(b), nil
}

// CodecByName returns the codec for an encoding name used in configuration
// files: "bech32", "base58" or "strkey".
func CodecByName(name, prefix string) (AddressCodec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "bech32":
		if prefix == "" {
			return nil, errors.New("bech32 encoding requires an address prefix")
		}
		return Bech32Codec{Prefix: prefix}, nil
	case "base58":
		return Base58Codec{}, nil
	case "strkey":
		return StrkeyCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown address encoding: %s", name)
	}
}

// DeriverByName returns the derivation scheme for a name used in
// configuration files: "instantiate2" or "program-address".
func DeriverByName(name string) (Deriver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "instantiate2":
		return Instantiate2{}, nil
	case "program-address":
		return ProgramAddress{}, nil
	default:
		return nil, fmt.Errorf("unknown derivation scheme: %s", name)
	}
}
