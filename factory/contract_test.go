package factory

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abdullah1738/wasm-factory/internal/kv"
	"github.com/Abdullah1738/wasm-factory/protocol"
)

const (
	testCreator = "creator"
	testCodeID  = uint64(1)
	// bech32("wasm", ClassicAddress(1, 1))
	testFactoryAddr = "wasm14hj2tavq8fpesdwxxcu44rty3hh90vhujrvcmstl4zr3txmfvw9s0phg4d"
)

var testChecksum = protocol.ChecksumOf([]byte("\x00asm template"))

type stubAPI struct {
	codec protocol.Bech32Codec
}

// AddrValidate accepts short lower-case test names as well as bech32.
func (a stubAPI) AddrValidate(human string) (string, error) {
	if len(human) < 3 || strings.ToLower(human) != human || strings.TrimSpace(human) != human {
		return "", errors.New("invalid address")
	}
	return human, nil
}

func (a stubAPI) AddrCanonicalize(human string) (protocol.CanonicalAddr, error) {
	return a.codec.Canonicalize(human)
}

func (a stubAPI) AddrHumanize(canon protocol.CanonicalAddr) (string, error) {
	return a.codec.Humanize(canon)
}

type stubQuerier map[uint64]protocol.Checksum

func (q stubQuerier) CodeInfo(_ context.Context, codeID uint64) (CodeInfo, error) {
	sum, ok := q[codeID]
	if !ok {
		return CodeInfo{}, ErrUnknownCode
	}
	return CodeInfo{CodeID: codeID, Creator: testCreator, Checksum: sum}, nil
}

type hashDeriver struct{}

func (hashDeriver) Derive(checksum protocol.Checksum, creator protocol.CanonicalAddr, salt []byte) (protocol.CanonicalAddr, error) {
	h := sha256.New()
	h.Write(checksum[:])
	h.Write(creator)
	h.Write(salt)
	return h.Sum(nil), nil
}

func mockDeps() (Deps, *kv.MemStore) {
	store := kv.NewMemStore()
	return Deps{
		Storage: store,
		API:     stubAPI{codec: protocol.Bech32Codec{Prefix: "wasm"}},
		Querier: stubQuerier{testCodeID: testChecksum},
		Deriver: protocol.Instantiate2{},
	}, store
}

func mockEnv() Env {
	return Env{
		Block:    BlockInfo{Height: 12345, ChainID: "testing"},
		Contract: ContractInfo{Address: testFactoryAddr},
	}
}

func instantiate(t *testing.T, deps Deps, codeID uint64) *Response {
	t.Helper()
	res, err := Instantiate(context.Background(), deps, mockEnv(), MessageInfo{Sender: testCreator}, InstantiateMsg{
		FactoryOwner:   testCreator,
		ContractCodeID: codeID,
	})
	require.NoError(t, err)
	return res
}

func TestInstantiate_Works(t *testing.T) {
	deps, _ := mockDeps()
	res := instantiate(t, deps, testCodeID)

	require.Len(t, res.Attributes, 3)
	assert.Equal(t, []Attribute{
		{Key: "method", Value: "instantiate"},
		{Key: "factory_owner", Value: "creator"},
		{Key: "contract_code_id", Value: "1"},
	}, res.Attributes)
	assert.Empty(t, res.Messages)

	cfg, err := NewConfigStore(deps.Storage).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Config{FactoryOwner: testCreator, ContractCodeID: testCodeID}, cfg)
}

func TestInstantiate_PersistsUnderConfigKey(t *testing.T) {
	deps, store := mockDeps()
	instantiate(t, deps, 7)

	assert.Equal(t, []string{ConfigKey}, store.Keys())
	raw, ok, err := store.Get(context.Background(), []byte(ConfigKey))
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `{"factory_owner":"creator","contract_code_id":7}`, string(raw))
}

func TestInstantiate_RejectsInvalidOwner(t *testing.T) {
	deps, store := mockDeps()
	for _, owner := range []string{"", "ab", "Creator", " creator"} {
		_, err := Instantiate(context.Background(), deps, mockEnv(), MessageInfo{}, InstantiateMsg{
			FactoryOwner:   owner,
			ContractCodeID: testCodeID,
		})
		assert.ErrorIs(t, err, ErrInvalidIdentity, "owner %q", owner)
		assert.Equal(t, KindInvalidIdentity, KindOf(err))
	}
	assert.Empty(t, store.Keys())
}

func TestInstantiate_Twice(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	_, err := Instantiate(context.Background(), deps, mockEnv(), MessageInfo{}, InstantiateMsg{
		FactoryOwner:   "someone",
		ContractCodeID: 2,
	})
	assert.ErrorIs(t, err, ErrAlreadyInitialized)

	cfg, err := NewConfigStore(deps.Storage).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testCodeID, cfg.ContractCodeID)
}

func TestConfigStore_LoadIsIdempotent(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	s := NewConfigStore(deps.Storage)
	first, err := s.Load(context.Background())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		again, err := s.Load(context.Background())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestConfigStore_LoadRereadsStorage(t *testing.T) {
	deps, store := mockDeps()
	instantiate(t, deps, testCodeID)

	s := NewConfigStore(deps.Storage)
	_, err := s.Load(context.Background())
	require.NoError(t, err)

	require.NoError(t, store.Set(context.Background(), []byte(ConfigKey), []byte(`{"factory_owner":"creator","contract_code_id":9}`)))
	cfg, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9), cfg.ContractCodeID)
}

func TestConfigStore_CorruptValue(t *testing.T) {
	deps, store := mockDeps()
	require.NoError(t, store.Set(context.Background(), []byte(ConfigKey), []byte("not json")))
	_, err := NewConfigStore(deps.Storage).Load(context.Background())
	assert.ErrorIs(t, err, ErrStorage)
}

func TestDeploy_BeforeInstantiate(t *testing.T) {
	deps, _ := mockDeps()
	res, err := Execute(context.Background(), deps, mockEnv(), MessageInfo{Sender: testCreator}, ExecuteMsg{
		Deploy: &DeployMsg{InputSalt: "abc"},
	})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.Equal(t, "not initialized", err.Error())
}

func TestDeploy_Works(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	res, err := Execute(context.Background(), deps, mockEnv(), MessageInfo{Sender: testCreator}, ExecuteMsg{
		Deploy: &DeployMsg{InputSalt: "abc"},
	})
	require.NoError(t, err)

	require.Len(t, res.Messages, 1)
	msg := res.Messages[0]
	assert.Equal(t, testCodeID, msg.CodeID)
	assert.Equal(t, []byte("abc"), msg.Salt)
	assert.Equal(t, "", msg.Admin)
	assert.Empty(t, msg.Funds)
	assert.Empty(t, msg.Msg)
	assert.Equal(t, InstanceLabel, msg.Label)

	method, _ := res.Attr("method")
	assert.Equal(t, "instantiate2", method)
	codeID, _ := res.Attr("contract_code_id")
	assert.Equal(t, "1", codeID)

	creator, err := deps.API.AddrCanonicalize(testFactoryAddr)
	require.NoError(t, err)
	raw, err := protocol.Instantiate2{}.Derive(testChecksum, creator, []byte("abc"))
	require.NoError(t, err)
	want, err := deps.API.AddrHumanize(raw)
	require.NoError(t, err)

	predicted, ok := res.Attr("predicted_address")
	require.True(t, ok)
	assert.Equal(t, want, predicted)
	assert.Equal(t, "wasm1uulrx2y6t7ucwxnn4rv3vgwxvmnvyw68kwdt7adwjcreykv2yl6s2lx0nf", predicted)
}

func TestDeploy_SameSaltSameAddress(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	deploy := func() string {
		res, err := Deploy(context.Background(), deps, mockEnv(), MessageInfo{}, "abc")
		require.NoError(t, err)
		addr, _ := res.Attr("predicted_address")
		return addr
	}
	assert.Equal(t, deploy(), deploy())
}

func TestDeploy_CreatorIsFactoryNotCaller(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)
	ctx := context.Background()

	a, err := Deploy(ctx, deps, mockEnv(), MessageInfo{Sender: "alice"}, "abc")
	require.NoError(t, err)
	b, err := Deploy(ctx, deps, mockEnv(), MessageInfo{Sender: "bob"}, "abc")
	require.NoError(t, err)
	addrA, _ := a.Attr("predicted_address")
	addrB, _ := b.Attr("predicted_address")
	assert.Equal(t, addrA, addrB)

	otherFactory, err := protocol.Bech32Codec{Prefix: "wasm"}.Humanize(protocol.ClassicAddress(1, 2))
	require.NoError(t, err)
	env := mockEnv()
	env.Contract.Address = otherFactory
	c, err := Deploy(ctx, deps, env, MessageInfo{Sender: "alice"}, "abc")
	require.NoError(t, err)
	addrC, _ := c.Attr("predicted_address")
	assert.NotEqual(t, addrA, addrC)
}

func TestDeploy_UnknownTemplate(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, 42)

	res, err := Deploy(context.Background(), deps, mockEnv(), MessageInfo{}, "abc")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrTemplateLookupFailed)
	assert.ErrorIs(t, err, ErrUnknownCode)
}

func TestDeploy_EmptySalt(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	_, err := Deploy(context.Background(), deps, mockEnv(), MessageInfo{}, "")
	assert.ErrorIs(t, err, ErrInvalidSalt)
	assert.ErrorIs(t, err, protocol.ErrInvalidSaltLength)
}

func TestDeploy_MalformedContractAddress(t *testing.T) {
	deps, _ := mockDeps()
	instantiate(t, deps, testCodeID)

	env := mockEnv()
	env.Contract.Address = "not-bech32"
	_, err := Deploy(context.Background(), deps, env, MessageInfo{}, "abc")
	assert.ErrorIs(t, err, ErrAddressEncodingFailed)
}

func TestDeploy_UsesInjectedDeriver(t *testing.T) {
	deps, _ := mockDeps()
	deps.Deriver = hashDeriver{}
	instantiate(t, deps, testCodeID)

	res, err := Deploy(context.Background(), deps, mockEnv(), MessageInfo{}, "abc")
	require.NoError(t, err)

	creator, err := deps.API.AddrCanonicalize(testFactoryAddr)
	require.NoError(t, err)
	raw, _ := hashDeriver{}.Derive(testChecksum, creator, []byte("abc"))
	want, err := deps.API.AddrHumanize(raw)
	require.NoError(t, err)

	got, _ := res.Attr("predicted_address")
	assert.Equal(t, want, got)
}

func TestExecute_NoVariant(t *testing.T) {
	deps, _ := mockDeps()
	_, err := Execute(context.Background(), deps, mockEnv(), MessageInfo{}, ExecuteMsg{})
	assert.ErrorIs(t, err, ErrInvalidMessage)
}

func TestQuery_ConfigAndPrediction(t *testing.T) {
	deps, _ := mockDeps()
	ctx := context.Background()

	_, err := Query(ctx, deps, mockEnv(), QueryMsg{Config: &ConfigQuery{}})
	assert.ErrorIs(t, err, ErrNotInitialized)

	instantiate(t, deps, testCodeID)

	raw, err := Query(ctx, deps, mockEnv(), QueryMsg{Config: &ConfigQuery{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"factory_owner":"creator","contract_code_id":1}`, string(raw))

	raw, err = Query(ctx, deps, mockEnv(), QueryMsg{PredictAddress: &PredictAddressQuery{InputSalt: "abc"}})
	require.NoError(t, err)
	var pred PredictAddressResponse
	require.NoError(t, json.Unmarshal(raw, &pred))

	res, err := Deploy(ctx, deps, mockEnv(), MessageInfo{}, "abc")
	require.NoError(t, err)
	addr, _ := res.Attr("predicted_address")
	assert.Equal(t, addr, pred.Address)
	assert.Equal(t, testChecksum.Hex(), pred.Checksum)
	assert.Equal(t, testCodeID, pred.ContractCodeID)
}
