package protocol

import (
	"crypto/sha256"
	"encoding/binary"
)

const (
	moduleHashType = "module"
	wasmModuleName = "wasm"
)

func sha256Sum(b []byte) [32]byte {
	return sha256.Sum256(b)
}

// moduleHash is the host's typed address hash:
//
//	sha256(sha256(ASCII(typ)) || key)
func moduleHash(typ string, key []byte) [32]byte {
	th := sha256.Sum256([]byte(typ))
	h := sha256.New()
	h.Write(th[:])
	h.Write(key)

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// wasmKeyPrefix returns ASCII("wasm") || 0x00, the module name prefix every
// contract address key starts with.
func wasmKeyPrefix(capacity int) []byte {
	key := make([]byte, 0, len(wasmModuleName)+1+capacity)
	key = append(key, wasmModuleName...)
	return append(key, 0)
}

func appendLengthPrefixed(dst []byte, b []byte) []byte {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(b)))
	dst = append(dst, n[:]...)
	return append(dst, b...)
}
