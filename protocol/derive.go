package protocol

import (
	"errors"
	"fmt"
)

const (
	MaxInstantiate2SaltLen = 64
	checksumLen            = 32
)

var (
	ErrInvalidSaltLength = errors.New("invalid salt length")
	ErrInvalidCreator    = errors.New("invalid creator address")
)

// Deriver maps (checksum, creator, salt) to the address a new instance will
// occupy. Implementations must be pure: the same triple always yields the
// same address.
type Deriver interface {
	Derive(checksum Checksum, creator CanonicalAddr, salt []byte) (CanonicalAddr, error)
}

// Instantiate2 is the wasm module's salted address scheme.
type Instantiate2 struct {
	// Msg is mixed into the key when non-empty. Hosts that do not fix the
	// init message into the address leave it empty.
	Msg []byte
}

// Derive returns
//
//	module_hash("module",
//	    "wasm" || 0x00 ||
//	    len_u64_be(checksum) || checksum ||
//	    len_u64_be(creator) || creator ||
//	    len_u64_be(salt) || salt ||
//	    len_u64_be(msg) || msg)
func (d Instantiate2) Derive(checksum Checksum, creator CanonicalAddr, salt []byte) (CanonicalAddr, error) {
	if len(salt) == 0 || len(salt) > MaxInstantiate2SaltLen {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidSaltLength, len(salt), MaxInstantiate2SaltLen)
	}
	if len(creator) == 0 {
		return nil, ErrInvalidCreator
	}

	key := wasmKeyPrefix(4*8 + checksumLen + len(creator) + len(salt) + len(d.Msg))
	key = appendLengthPrefixed(key, checksum[:])
	key = appendLengthPrefixed(key, creator)
	key = appendLengthPrefixed(key, salt)
	key = appendLengthPrefixed(key, d.Msg)

	sum := moduleHash(moduleHashType, key)
	return CanonicalAddr(sum[:]), nil
}
