// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"context"
	"math/big"
	"strconv"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Encrypter seals player choices for one contract.
// Built once by the caller and shared, it holds no lazily created state.
type Encrypter struct {
	svc        EncryptService
	dapp       common.Address
	version    uint32
	handleType uint8
}

// NewEncrypter encrypter bound to the dapp contract
func NewEncrypter(svc EncryptService, dapp common.Address, cfg *types.Inco) *Encrypter {
	return &Encrypter{
		svc:        svc,
		dapp:       dapp,
		version:    cfg.Version,
		handleType: cfg.HandleType,
	}
}

// Dapp contract the ciphertexts are bound to
func (e *Encrypter) Dapp() common.Address {
	return e.dapp
}

// Encrypt seals value for player. No retry: the caller decides whether to retry the join.
func (e *Encrypter) Encrypt(ctx context.Context, value uint64, player common.Address) (*types.Ciphertext, error) {
	id := player.Hex()
	if value < types.MinNumber || value > types.MaxNumber {
		return nil, types.NewError(types.KindValidation, strconv.FormatUint(value, 10),
			errors.Wrapf(types.ErrNumberOutOfRange, "want %d..%d", types.MinNumber, types.MaxNumber))
	}
	if player == (common.Address{}) {
		return nil, types.NewError(types.KindValidation, "player", types.ErrZeroAddress)
	}
	if e.dapp == (common.Address{}) {
		return nil, types.NewError(types.KindValidation, "dapp", types.ErrZeroAddress)
	}
	raw, err := e.svc.Encrypt(ctx, new(big.Int).SetUint64(value), player, e.dapp, e.handleType)
	if err != nil {
		ilog.Error("encrypt", "player", id, "err", err)
		return nil, types.NewError(types.KindTransient, id, errors.Wrap(err, "encrypt"))
	}
	ct, err := types.ParseCiphertext(raw)
	if err != nil {
		return nil, types.NewError(types.KindIntegrity, id, errors.Wrapf(err, "ciphertext of %d bytes", len(raw)))
	}
	if ct.Version != e.version {
		// 版本不一致时后续解密会使用错误的密钥
		ilog.Error("encrypt version mismatch", "player", id, "want", e.version, "got", ct.Version)
		return nil, types.NewError(types.KindIntegrity, id,
			errors.Wrapf(types.ErrCiphertextVersion, "want %d got %d", e.version, ct.Version))
	}
	if ct.Handle.IsZero() {
		return nil, types.NewError(types.KindIntegrity, id, types.ErrZeroHandle)
	}
	ilog.Debug("encrypt", "player", id, "handle", ct.Handle, "size", len(raw))
	return ct, nil
}
