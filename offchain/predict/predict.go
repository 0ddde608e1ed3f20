// Package predict computes instance addresses off-chain, before any
// deployment is submitted, using the same derivation the host applies.
package predict

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Abdullah1738/wasm-factory/protocol"
)

const DefaultBatchLimit = 8

var ErrNoSalts = errors.New("no salts")

// Predictor pairs a derivation scheme with the host's address encoding.
type Predictor struct {
	Deriver protocol.Deriver
	Codec   protocol.AddressCodec
}

type Prediction struct {
	Salt      string
	Address   string
	Canonical protocol.CanonicalAddr
}

// Predict returns the address an instance of the code with checksum would
// get when created by factory with salt. factory is in human form.
func (p Predictor) Predict(checksum protocol.Checksum, factory string, salt []byte) (Prediction, error) {
	creator, err := p.Codec.Canonicalize(factory)
	if err != nil {
		return Prediction{}, fmt.Errorf("factory address: %w", err)
	}
	return p.predict(checksum, creator, salt)
}

func (p Predictor) predict(checksum protocol.Checksum, creator protocol.CanonicalAddr, salt []byte) (Prediction, error) {
	raw, err := p.Deriver.Derive(checksum, creator, salt)
	if err != nil {
		return Prediction{}, fmt.Errorf("salt %q: %w", salt, err)
	}
	addr, err := p.Codec.Humanize(raw)
	if err != nil {
		return Prediction{}, fmt.Errorf("salt %q: %w", salt, err)
	}
	return Prediction{Salt: string(salt), Address: addr, Canonical: raw}, nil
}

// Batch predicts addresses for many salts concurrently, at most limit at a
// time. Results are in the order of salts. The first failure cancels the
// remaining work.
func (p Predictor) Batch(ctx context.Context, checksum protocol.Checksum, factory string, salts []string, limit int) ([]Prediction, error) {
	if len(salts) == 0 {
		return nil, ErrNoSalts
	}
	if limit <= 0 {
		limit = DefaultBatchLimit
	}
	creator, err := p.Codec.Canonicalize(factory)
	if err != nil {
		return nil, fmt.Errorf("factory address: %w", err)
	}

	out := make([]Prediction, len(salts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, salt := range salts {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred, err := p.predict(checksum, creator, []byte(salt))
			if err != nil {
				return err
			}
			out[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
