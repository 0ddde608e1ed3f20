package protocol

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidChecksum = errors.New("invalid checksum")

// Checksum is the sha256 digest of a code bundle registered with the host.
type Checksum [32]byte

func (c Checksum) Hex() string { return hex.EncodeToString(c[:]) }

// ParseChecksumHex accepts 64 hex digits with an optional 0x prefix.
func ParseChecksumHex(s string) (Checksum, error) {
	var c Checksum
	digits := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if hex.DecodedLen(len(digits)) != len(c) {
		return Checksum{}, fmt.Errorf("%w: want %d hex digits, got %d", ErrInvalidChecksum, 2*len(c), len(digits))
	}
	if _, err := hex.Decode(c[:], []byte(digits)); err != nil {
		return Checksum{}, fmt.Errorf("%w: %v", ErrInvalidChecksum, err)
	}
	return c, nil
}

// ChecksumOf returns the checksum the host assigns to an uploaded code bundle.
func ChecksumOf(code []byte) Checksum {
	return Checksum(sha256Sum(code))
}

// CanonicalAddr is the binary form of an on-host identity. Its length
// depends on how the address was produced (20 bytes for key-derived
// accounts, 32 bytes for module-derived contract addresses).
type CanonicalAddr []byte

func (a CanonicalAddr) Hex() string { return hex.EncodeToString(a) }

func (a CanonicalAddr) Equal(b CanonicalAddr) bool { return bytes.Equal(a, b) }

type CodeID uint64
