package hostsim

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Abdullah1738/wasm-factory/factory"
	"github.com/Abdullah1738/wasm-factory/internal/kv"
	"github.com/Abdullah1738/wasm-factory/protocol"
)

type codeRecord struct {
	Creator  string `json:"creator"`
	Checksum string `json:"checksum"`
}

type contractRecord struct {
	CodeID  uint64 `json:"code_id"`
	Label   string `json:"label"`
	Creator string `json:"creator"`
	Factory bool   `json:"factory,omitempty"`
}

func putJSON(ctx context.Context, store kv.Store, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, b)
}

func getJSON(ctx context.Context, store kv.Store, key []byte, v any) (bool, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// querier answers contract queries from host state.
type querier struct {
	store kv.Store
}

func (q querier) CodeInfo(ctx context.Context, codeID uint64) (factory.CodeInfo, error) {
	var rec codeRecord
	ok, err := getJSON(ctx, q.store, codeKey(codeID), &rec)
	if err != nil {
		return factory.CodeInfo{}, err
	}
	if !ok {
		return factory.CodeInfo{}, fmt.Errorf("%w: %d", factory.ErrUnknownCode, codeID)
	}
	checksum, err := protocol.ParseChecksumHex(rec.Checksum)
	if err != nil {
		return factory.CodeInfo{}, fmt.Errorf("code %d: %w", codeID, err)
	}
	return factory.CodeInfo{CodeID: codeID, Creator: rec.Creator, Checksum: checksum}, nil
}
