// Package hostsim runs the factory contract against a local, persistent
// model of its host chain: uploaded code, contract instances and their
// storage all live in one kv.Store.
package hostsim

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/Abdullah1738/wasm-factory/factory"
	"github.com/Abdullah1738/wasm-factory/internal/kv"
	"github.com/Abdullah1738/wasm-factory/protocol"
)

var (
	ErrAddressOccupied = errors.New("contract address already occupied")
	ErrNoSuchContract  = errors.New("no such contract")
	ErrNotFactory      = errors.New("contract is not a factory")
)

const (
	keyCodeSeq     = "seq/code"
	keyInstanceSeq = "seq/instance"
	prefixCode     = "code/"
	prefixContract = "contract/"
	prefixState    = "state/"
)

// Options configures a Host.
type Options struct {
	ChainID string
	Codec   protocol.AddressCodec
	Deriver protocol.Deriver
	Logger  *zap.Logger
}

// Host executes entry points one at a time. Every call runs against a
// kv.Cache that is written back only if the call and all the messages it
// emits succeed.
type Host struct {
	mu      sync.Mutex
	store   kv.Store
	chainID string
	api     MockAPI
	deriver protocol.Deriver
	log     *zap.Logger
	height  uint64
}

func New(store kv.Store, opts Options) *Host {
	if opts.Codec == nil {
		opts.Codec = protocol.Bech32Codec{Prefix: "wasm"}
	}
	if opts.Deriver == nil {
		opts.Deriver = protocol.Instantiate2{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.ChainID == "" {
		opts.ChainID = "localnet"
	}
	return &Host{
		store:   store,
		chainID: opts.ChainID,
		api:     MockAPI{Codec: opts.Codec},
		deriver: opts.Deriver,
		log:     opts.Logger,
	}
}

// Contract is a registered contract instance.
type Contract struct {
	Address string
	CodeID  uint64
	Label   string
	Creator string
	Factory bool
}

// StoreCode registers code and returns its id and checksum.
func (h *Host) StoreCode(ctx context.Context, sender string, code []byte) (uint64, protocol.Checksum, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(code) == 0 {
		return 0, protocol.Checksum{}, errors.New("empty code")
	}
	if _, err := h.api.AddrValidate(sender); err != nil {
		return 0, protocol.Checksum{}, fmt.Errorf("sender: %w", err)
	}

	cache := kv.NewCache(h.store)
	id, err := nextSeq(ctx, cache, keyCodeSeq)
	if err != nil {
		return 0, protocol.Checksum{}, err
	}
	checksum := protocol.ChecksumOf(code)
	rec := codeRecord{Creator: sender, Checksum: checksum.Hex()}
	if err := putJSON(ctx, cache, codeKey(id), rec); err != nil {
		return 0, protocol.Checksum{}, err
	}
	if err := cache.Write(ctx); err != nil {
		return 0, protocol.Checksum{}, err
	}

	h.log.Info("code stored",
		zap.Uint64("code_id", id),
		zap.String("checksum", checksum.Hex()),
		zap.String("sender", sender),
	)
	return id, checksum, nil
}

// InstantiateFactory creates a factory contract from codeID at a classic
// (sequence-based) address and runs its instantiate entry point.
func (h *Host) InstantiateFactory(ctx context.Context, codeID uint64, sender string, msg factory.InstantiateMsg) (string, *factory.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cache := kv.NewCache(h.store)
	if _, err := (querier{store: cache}).CodeInfo(ctx, codeID); err != nil {
		return "", nil, err
	}
	instanceID, err := nextSeq(ctx, cache, keyInstanceSeq)
	if err != nil {
		return "", nil, err
	}
	addr, err := h.api.AddrHumanize(protocol.ClassicAddress(protocol.CodeID(codeID), instanceID))
	if err != nil {
		return "", nil, err
	}
	if err := h.register(ctx, cache, Contract{Address: addr, CodeID: codeID, Label: "factory", Creator: sender, Factory: true}); err != nil {
		return "", nil, err
	}

	h.height++
	res, err := factory.Instantiate(ctx, h.deps(cache, addr), h.env(addr), factory.MessageInfo{Sender: sender}, msg)
	if err != nil {
		h.log.Warn("instantiate failed", zap.String("contract", addr), zap.Error(err))
		return "", nil, err
	}
	if err := cache.Write(ctx); err != nil {
		return "", nil, err
	}

	h.log.Info("factory instantiated", zap.String("contract", addr), zap.Uint64("code_id", codeID))
	return addr, res, nil
}

// Execute runs the execute entry point of the factory at contractAddr and
// then creates every instance its response asks for. If any step fails
// nothing is persisted.
func (h *Host) Execute(ctx context.Context, contractAddr, sender string, msg factory.ExecuteMsg) (*factory.Response, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cache := kv.NewCache(h.store)
	if err := h.requireFactory(ctx, cache, contractAddr); err != nil {
		return nil, err
	}

	h.height++
	res, err := factory.Execute(ctx, h.deps(cache, contractAddr), h.env(contractAddr), factory.MessageInfo{Sender: sender}, msg)
	if err != nil {
		h.log.Warn("execute failed", zap.String("contract", contractAddr), zap.Error(err))
		return nil, err
	}
	for _, m := range res.Messages {
		if _, err := h.instantiate2(ctx, cache, contractAddr, m); err != nil {
			h.log.Warn("instantiate2 failed", zap.String("contract", contractAddr), zap.Error(err))
			return nil, err
		}
	}
	if err := cache.Write(ctx); err != nil {
		return nil, err
	}
	return res, nil
}

// Query runs the query entry point of the factory at contractAddr.
func (h *Host) Query(ctx context.Context, contractAddr string, msg factory.QueryMsg) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.requireFactory(ctx, h.store, contractAddr); err != nil {
		return nil, err
	}
	return factory.Query(ctx, h.deps(h.store, contractAddr), h.env(contractAddr), msg)
}

// ContractInfo returns the registered contract at addr.
func (h *Host) ContractInfo(ctx context.Context, addr string) (Contract, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.contract(ctx, h.store, addr)
}

// CodeInfo returns the code registered under codeID.
func (h *Host) CodeInfo(ctx context.Context, codeID uint64) (factory.CodeInfo, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return querier{store: h.store}.CodeInfo(ctx, codeID)
}

func (h *Host) instantiate2(ctx context.Context, store kv.Store, creatorAddr string, msg factory.Instantiate2Msg) (string, error) {
	info, err := (querier{store: store}).CodeInfo(ctx, msg.CodeID)
	if err != nil {
		return "", err
	}
	creator, err := h.api.AddrCanonicalize(creatorAddr)
	if err != nil {
		return "", err
	}
	raw, err := h.deriver.Derive(info.Checksum, creator, msg.Salt)
	if err != nil {
		return "", fmt.Errorf("derive instance address: %w", err)
	}
	addr, err := h.api.AddrHumanize(raw)
	if err != nil {
		return "", err
	}
	if err := h.register(ctx, store, Contract{Address: addr, CodeID: msg.CodeID, Label: msg.Label, Creator: creatorAddr}); err != nil {
		return "", err
	}
	h.log.Info("instance created",
		zap.String("address", addr),
		zap.Uint64("code_id", msg.CodeID),
		zap.String("creator", creatorAddr),
	)
	return addr, nil
}

func (h *Host) register(ctx context.Context, store kv.Store, c Contract) error {
	_, ok, err := store.Get(ctx, contractKey(c.Address))
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: %s", ErrAddressOccupied, c.Address)
	}
	return putJSON(ctx, store, contractKey(c.Address), contractRecord{
		CodeID:  c.CodeID,
		Label:   c.Label,
		Creator: c.Creator,
		Factory: c.Factory,
	})
}

func (h *Host) contract(ctx context.Context, store kv.Store, addr string) (Contract, error) {
	var rec contractRecord
	ok, err := getJSON(ctx, store, contractKey(addr), &rec)
	if err != nil {
		return Contract{}, err
	}
	if !ok {
		return Contract{}, fmt.Errorf("%w: %s", ErrNoSuchContract, addr)
	}
	return Contract{Address: addr, CodeID: rec.CodeID, Label: rec.Label, Creator: rec.Creator, Factory: rec.Factory}, nil
}

func (h *Host) requireFactory(ctx context.Context, store kv.Store, addr string) error {
	c, err := h.contract(ctx, store, addr)
	if err != nil {
		return err
	}
	if !c.Factory {
		return fmt.Errorf("%w: %s", ErrNotFactory, addr)
	}
	return nil
}

func (h *Host) deps(store kv.Store, contractAddr string) factory.Deps {
	return factory.Deps{
		Storage: kv.NewPrefixed(store, []byte(prefixState+contractAddr+"/")),
		API:     h.api,
		Querier: querier{store: store},
		Deriver: h.deriver,
		Logger:  h.log.With(zap.String("contract", contractAddr)),
	}
}

func (h *Host) env(contractAddr string) factory.Env {
	return factory.Env{
		Block:    factory.BlockInfo{Height: h.height, ChainID: h.chainID},
		Contract: factory.ContractInfo{Address: contractAddr},
	}
}

func codeKey(id uint64) []byte {
	return []byte(prefixCode + strconv.FormatUint(id, 10))
}

func contractKey(addr string) []byte {
	return []byte(prefixContract + addr)
}

func nextSeq(ctx context.Context, store kv.Store, key string) (uint64, error) {
	raw, ok, err := store.Get(ctx, []byte(key))
	if err != nil {
		return 0, err
	}
	var cur uint64
	if ok {
		if len(raw) != 8 {
			return 0, fmt.Errorf("corrupt sequence %s", key)
		}
		cur = binary.BigEndian.Uint64(raw)
	}
	next := cur + 1
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], next)
	if err := store.Set(ctx, []byte(key), b[:]); err != nil {
		return 0, err
	}
	return next, nil
}
