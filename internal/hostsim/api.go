package hostsim

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

const (
	minMockAddrLen = 3
	maxMockAddrLen = 90
)

var errInvalidMockAddr = errors.New("invalid address")

// MockAPI validates addresses with a bech32 codec but, like the classic
// contract test harness, also accepts short plain identifiers such as
// "creator" so fixtures do not need real keys. Plain identifiers
// canonicalize to their raw bytes.
type MockAPI struct {
	Codec protocol.AddressCodec
}

func (a MockAPI) AddrValidate(human string) (string, error) {
	if _, err := a.AddrCanonicalize(human); err != nil {
		return "", err
	}
	if human != normalize(human) {
		return "", fmt.Errorf("%w: %q is not normalized", errInvalidMockAddr, human)
	}
	return human, nil
}

func (a MockAPI) AddrCanonicalize(human string) (protocol.CanonicalAddr, error) {
	if canon, err := a.Codec.Canonicalize(human); err == nil {
		return canon, nil
	}
	if len(human) < minMockAddrLen || len(human) > maxMockAddrLen {
		return nil, fmt.Errorf("%w: length %d not in %d..%d", errInvalidMockAddr, len(human), minMockAddrLen, maxMockAddrLen)
	}
	for _, r := range human {
		if r > unicode.MaxASCII || unicode.IsSpace(r) || unicode.IsControl(r) {
			return nil, fmt.Errorf("%w: %q", errInvalidMockAddr, human)
		}
	}
	return protocol.CanonicalAddr(normalize(human)), nil
}

func (a MockAPI) AddrHumanize(canon protocol.CanonicalAddr) (string, error) {
	return a.Codec.Humanize(canon)
}

func normalize(s string) string {
	return strings.ToLower(s)
}
