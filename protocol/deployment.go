package protocol

import "encoding/binary"

// ClassicAddress is the address the host assigns to a contract created
// without a salt: the code id and the global instance sequence number
// are hashed under the wasm module prefix.
//
// Encoding:
//
//	module_hash("module", "wasm" || 0x00 || code_id_u64_be || instance_id_u64_be)
func ClassicAddress(codeID CodeID, instanceID uint64) CanonicalAddr {
	key := wasmKeyPrefix(16)

	var u64 [8]byte
	binary.BigEndian.PutUint64(u64[:], uint64(codeID))
	key = append(key, u64[:]...)
	binary.BigEndian.PutUint64(u64[:], instanceID)
	key = append(key, u64[:]...)

	sum := moduleHash(moduleHashType, key)
	return CanonicalAddr(sum[:])
}
