// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"context"
	"math/big"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cognumbers/cognumbers/metrics"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// default retry schedule: 5 attempts, 1000ms * 1.5^(k-2) before attempt k
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = time.Second
	DefaultMultiplier  = 1.5
)

// Decrypter reveals a batch of handles through a wallet bound channel.
// A batch is atomic: either every value with its attestation, or nothing.
type Decrypter struct {
	svc         DecryptService
	cred        WalletCredential
	maxAttempts int
	baseDelay   time.Duration
	multiplier  float64
	timer       backoff.Timer
}

// NewDecrypter decrypter using the retry schedule of cfg, zero fields take the defaults
func NewDecrypter(svc DecryptService, cred WalletCredential, cfg *types.Inco) *Decrypter {
	d := &Decrypter{
		svc:         svc,
		cred:        cred,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		multiplier:  DefaultMultiplier,
	}
	if cfg != nil {
		if cfg.MaxAttempts > 0 {
			d.maxAttempts = cfg.MaxAttempts
		}
		if cfg.BaseDelay > 0 {
			d.baseDelay = cfg.BaseDelayDuration()
		}
		if cfg.Multiplier >= 1 {
			d.multiplier = cfg.Multiplier
		}
	}
	return d
}

// SetTimer replaces the wall clock timer between attempts
func (d *Decrypter) SetTimer(t backoff.Timer) {
	d.timer = t
}

// Account identity the channel is bound to
func (d *Decrypter) Account() common.Address {
	return d.cred.Address()
}

func (d *Decrypter) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = d.baseDelay
	b.RandomizationFactor = 0
	b.Multiplier = d.multiplier
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(d.maxAttempts-1)), ctx)
}

// DecryptBatch reveals handles, results are positionally aligned with the input.
// The whole batch is reissued on every attempt.
func (d *Decrypter) DecryptBatch(ctx context.Context, handles []types.Handle) ([]*types.AttestedValue, error) {
	if len(handles) == 0 {
		return nil, types.NewError(types.KindValidation, "", types.ErrEmptyBatch)
	}
	for i, h := range handles {
		if h.IsZero() {
			return nil, types.NewError(types.KindValidation, "handle "+strconv.Itoa(i), types.ErrZeroHandle)
		}
	}
	account := d.cred.Address()
	if account == (common.Address{}) {
		return nil, types.NewError(types.KindValidation, "", types.ErrNoAccount)
	}
	sig, err := d.cred.SignDecrypt(handles)
	if err != nil {
		return nil, types.NewError(types.KindValidation, account.Hex(), errors.Wrap(err, "sign decrypt request"))
	}
	req := &DecryptRequest{Account: account, Handles: handles, Signature: sig}

	var (
		values  []*types.AttestedValue
		attempt int
	)
	op := func() error {
		attempt++
		metrics.DecryptAttempts.Inc(1)
		res, err := d.svc.AttestedDecrypt(ctx, req)
		if err != nil {
			return err
		}
		vals, err := alignResults(handles, res)
		if err != nil {
			return backoff.Permanent(err)
		}
		values = vals
		return nil
	}
	notify := func(err error, wait time.Duration) {
		ilog.Info("attestedDecrypt retry", "attempt", attempt, "handles", len(handles), "wait", wait, "err", err)
	}
	err = backoff.RetryNotifyWithTimer(op, d.policy(ctx), notify, d.timer)
	if err != nil && ctx.Err() != nil {
		// 调用方放弃, 不算重试耗尽
		ilog.Info("attestedDecrypt abandoned", "attempts", attempt, "handles", len(handles), "err", ctx.Err())
		return nil, types.NewError(types.KindTransient, account.Hex(),
			errors.Wrapf(ctx.Err(), "decrypt abandoned after %d attempts", attempt))
	}
	if err != nil {
		metrics.DecryptFailures.Inc(1)
		if types.KindOf(err) == types.KindIntegrity {
			ilog.Error("attestedDecrypt integrity", "err", err)
			return nil, err
		}
		ilog.Error("attestedDecrypt failed", "attempts", attempt, "handles", len(handles), "err", err)
		return nil, types.NewError(types.KindTransient, account.Hex(),
			errors.Wrapf(types.ErrDecryptExhausted, "%d attempts: %v", attempt, err))
	}
	ilog.Debug("attestedDecrypt", "attempts", attempt, "handles", len(handles))
	return values, nil
}

// alignResults checks the service answered every handle in order and converts the values
func alignResults(handles []types.Handle, res []*DecryptResult) ([]*types.AttestedValue, error) {
	if len(res) != len(handles) {
		return nil, types.NewError(types.KindIntegrity, "",
			errors.Wrapf(types.ErrBatchLength, "want %d got %d", len(handles), len(res)))
	}
	out := make([]*types.AttestedValue, len(res))
	for i, r := range res {
		id := handles[i].Hex()
		if r == nil || r.Plaintext == nil {
			return nil, types.NewError(types.KindIntegrity, id, types.ErrMissingValue)
		}
		if r.Handle != handles[i] {
			return nil, types.NewError(types.KindIntegrity, id,
				errors.Wrapf(types.ErrBatchOrder, "position %d answered %s", i, r.Handle.Hex()))
		}
		sigs := make([][]byte, len(r.Signatures))
		for j, s := range r.Signatures {
			sigs[j] = common.CopyBytes(s)
		}
		out[i] = &types.AttestedValue{
			Value:      new(big.Int).Set((*big.Int)(r.Plaintext)),
			Signatures: sigs,
		}
	}
	return out, nil
}
