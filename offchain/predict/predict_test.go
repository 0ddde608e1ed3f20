package predict

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const factoryAddr = "wasm14hj2tavq8fpesdwxxcu44rty3hh90vhujrvcmstl4zr3txmfvw9s0phg4d"

func newPredictor() Predictor {
	return Predictor{Deriver: protocol.Instantiate2{}, Codec: protocol.Bech32Codec{Prefix: "wasm"}}
}

func TestPredict_Golden(t *testing.T) {
	checksum := protocol.ChecksumOf([]byte("\x00asm template"))
	got, err := newPredictor().Predict(checksum, factoryAddr, []byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, "wasm1uulrx2y6t7ucwxnn4rv3vgwxvmnvyw68kwdt7adwjcreykv2yl6s2lx0nf", got.Address)
	assert.Equal(t, "abc", got.Salt)
	assert.Len(t, got.Canonical, 32)
}

func TestPredict_BadFactory(t *testing.T) {
	_, err := newPredictor().Predict(protocol.Checksum{}, "juno1xyz", []byte("abc"))
	assert.ErrorIs(t, err, protocol.ErrInvalidAddress)
}

func TestBatch_PreservesOrder(t *testing.T) {
	checksum := protocol.ChecksumOf([]byte("code"))
	p := newPredictor()

	salts := make([]string, 50)
	for i := range salts {
		salts[i] = fmt.Sprintf("salt-%d", i)
	}
	got, err := p.Batch(context.Background(), checksum, factoryAddr, salts, 4)
	require.NoError(t, err)
	require.Len(t, got, len(salts))

	seen := make(map[string]bool)
	for i, pred := range got {
		assert.Equal(t, salts[i], pred.Salt)
		one, err := p.Predict(checksum, factoryAddr, []byte(salts[i]))
		require.NoError(t, err)
		assert.Equal(t, one.Address, pred.Address)
		assert.False(t, seen[pred.Address], "duplicate address for %s", pred.Salt)
		seen[pred.Address] = true
	}
}

func TestBatch_FailsOnInvalidSalt(t *testing.T) {
	checksum := protocol.ChecksumOf([]byte("code"))
	_, err := newPredictor().Batch(context.Background(), checksum, factoryAddr, []string{"ok", "", "fine"}, 0)
	assert.ErrorIs(t, err, protocol.ErrInvalidSaltLength)
}

func TestBatch_NoSalts(t *testing.T) {
	_, err := newPredictor().Batch(context.Background(), protocol.Checksum{}, factoryAddr, nil, 1)
	assert.ErrorIs(t, err, ErrNoSalts)
}

func TestBatch_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newPredictor().Batch(ctx, protocol.ChecksumOf([]byte("code")), factoryAddr, []string{"a", "b"}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
