package protocol

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	maxSeeds      = 16
	maxSeedLen    = 32
	pdaMarker     = "ProgramDerivedAddress"
	instanceSeed  = "instance"
	programIDSize = 32
)

var (
	ErrInvalidSeeds = errors.New("invalid seeds")
	ErrOnCurve      = errors.New("derived address is on-curve")
)

// ProgramAddress derives instance addresses the way account-model hosts
// derive program-owned accounts: the seeds ["instance", checksum, salt] are
// hashed with the creator as program id, and the first off-curve result
// found by descending bump is used.
type ProgramAddress struct{}

func (ProgramAddress) Derive(checksum Checksum, creator CanonicalAddr, salt []byte) (CanonicalAddr, error) {
	if len(creator) != programIDSize {
		return nil, fmt.Errorf("%w: program id must be %d bytes, got %d", ErrInvalidCreator, programIDSize, len(creator))
	}
	if len(salt) == 0 || len(salt) > maxSeedLen {
		return nil, fmt.Errorf("%w: %d not in 1..%d", ErrInvalidSaltLength, len(salt), maxSeedLen)
	}

	var programID [32]byte
	copy(programID[:], creator)
	addr, _, err := FindProgramAddress([][]byte{[]byte(instanceSeed), checksum[:], salt}, programID)
	if err != nil {
		return nil, err
	}
	return CanonicalAddr(addr[:]), nil
}

func FindProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, uint8, error) {
	for bump := uint8(255); ; bump-- {
		withBump := append(seeds[:len(seeds):len(seeds)], []byte{bump})
		pda, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return pda, bump, nil
		}
		if bump == 0 {
			return [32]byte{}, 0, fmt.Errorf("no viable program address found")
		}
	}
}

func CreateProgramAddress(seeds [][]byte, programID [32]byte) ([32]byte, error) {
	if len(seeds) > maxSeeds {
		return [32]byte{}, ErrInvalidSeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLen {
			return [32]byte{}, ErrInvalidSeeds
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))

	var out [32]byte
	copy(out[:], h.Sum(nil))
	if isOnCurve(out) {
		return [32]byte{}, ErrOnCurve
	}
	return out, nil
}

func isOnCurve(pk [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(pk[:])
	return err == nil
}
