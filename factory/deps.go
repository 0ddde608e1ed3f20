package factory

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/Abdullah1738/wasm-factory/internal/kv"
	"github.com/Abdullah1738/wasm-factory/protocol"
)

// ErrUnknownCode is returned by a Querier for a code id it has never seen.
var ErrUnknownCode = errors.New("unknown code id")

// API is the host's address handling.
type API interface {
	AddrValidate(human string) (string, error)
	AddrCanonicalize(human string) (protocol.CanonicalAddr, error)
	AddrHumanize(canon protocol.CanonicalAddr) (string, error)
}

type CodeInfo struct {
	CodeID   uint64
	Creator  string
	Checksum protocol.Checksum
}

// Querier answers read-only questions about host state.
type Querier interface {
	CodeInfo(ctx context.Context, codeID uint64) (CodeInfo, error)
}

// Deps is what the host hands the contract for one call. Storage is the
// contract's own namespace. A nil Deriver means the instantiate2 scheme.
type Deps struct {
	Storage kv.Store
	API     API
	Querier Querier
	Deriver protocol.Deriver
	Logger  *zap.Logger
}

func (d Deps) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d Deps) deriver() protocol.Deriver {
	if d.Deriver == nil {
		return protocol.Instantiate2{}
	}
	return d.Deriver
}

type Env struct {
	Block    BlockInfo
	Contract ContractInfo
}

type BlockInfo struct {
	Height  uint64
	ChainID string
}

type ContractInfo struct {
	Address string
}

type MessageInfo struct {
	Sender string
	Funds  []Coin
}
