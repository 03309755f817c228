// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package contract cognumbers 合约的读写封装
package contract

import (
	"context"
	"math/big"
	"strconv"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var clog = log.New("module", "contract")

// Caller read only access to the contract
type Caller struct {
	address common.Address
	caller  bind.ContractCaller
	bound   *bind.BoundContract
}

// NewCaller new read only binding
func NewCaller(address common.Address, caller bind.ContractCaller) *Caller {
	return &Caller{
		address: address,
		caller:  caller,
		bound:   bind.NewBoundContract(address, ParsedABI, caller, nil, nil),
	}
}

// Address contract address
func (c *Caller) Address() common.Address {
	return c.address
}

func gameKey(gameID uint64) string {
	return "game " + strconv.FormatUint(gameID, 10)
}

func (c *Caller) call(ctx context.Context, id string, method string, params ...interface{}) ([]interface{}, error) {
	var out []interface{}
	err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, method, params...)
	if err != nil {
		clog.Debug("call", "method", method, "id", id, "err", err)
		return nil, types.NewError(types.KindTransient, id, errors.Wrap(err, method))
	}
	if len(out) == 0 {
		return nil, types.NewError(types.KindIntegrity, id, errors.Wrapf(types.ErrMalformedRecord, "%s returned nothing", method))
	}
	return out, nil
}

// GameIDCounter number of games ever created, ids run from 0 to counter-1
func (c *Caller) GameIDCounter(ctx context.Context) (uint64, error) {
	out, err := c.call(ctx, "", MethodGameIDCounter)
	if err != nil {
		return 0, err
	}
	n := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	if !n.IsUint64() {
		return 0, types.NewError(types.KindIntegrity, "", errors.Wrapf(types.ErrValueOverflow, "gameIdCounter %s", n.String()))
	}
	return n.Uint64(), nil
}

// GetGame structured read. Transport failures are transient, a record the abi decoder
// rejects is an integrity error so callers may fall back to GetGameRaw.
func (c *Caller) GetGame(ctx context.Context, gameID uint64) (*types.Game, error) {
	id := gameKey(gameID)
	data, err := ParsedABI.Pack(MethodGetGame, new(big.Int).SetUint64(gameID))
	if err != nil {
		return nil, types.NewError(types.KindValidation, id, errors.Wrap(err, MethodGetGame))
	}
	output, err := c.caller.CallContract(ctx, ethereum.CallMsg{To: &c.address, Data: data}, nil)
	if err != nil {
		clog.Debug("call", "method", MethodGetGame, "id", id, "err", err)
		return nil, types.NewError(types.KindTransient, id, errors.Wrap(err, MethodGetGame))
	}
	if len(output) == 0 {
		return nil, types.NewError(types.KindIntegrity, id, types.ErrGameNotFound)
	}
	g, err := DecodeGame(output)
	if err != nil {
		return nil, types.NewError(types.KindIntegrity, id, err)
	}
	return g, nil
}

// GetGameRaw raw eth_call with a hand encoded selector, decoded by slot offsets
func (c *Caller) GetGameRaw(ctx context.Context, gameID uint64) (*types.Game, error) {
	id := gameKey(gameID)
	msg := ethereum.CallMsg{To: &c.address, Data: EncodeGetGameCall(gameID)}
	output, err := c.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, types.NewError(types.KindTransient, id, errors.Wrap(err, "raw getGame"))
	}
	if len(output) == 0 {
		return nil, types.NewError(types.KindIntegrity, id, types.ErrGameNotFound)
	}
	g, err := DecodeGameRaw(output)
	if err != nil {
		return nil, types.NewError(types.KindIntegrity, id, err)
	}
	return g, nil
}

// GetPlayers joined players in join order
func (c *Caller) GetPlayers(ctx context.Context, gameID uint64) ([]common.Address, error) {
	out, err := c.call(ctx, gameKey(gameID), MethodGetPlayers, new(big.Int).SetUint64(gameID))
	if err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]common.Address)).(*[]common.Address), nil
}

// GetPlayerChoiceHandle ciphertext handle recorded for player, zero when absent
func (c *Caller) GetPlayerChoiceHandle(ctx context.Context, gameID uint64, player common.Address) (types.Handle, error) {
	out, err := c.call(ctx, player.Hex(), MethodGetPlayerChoiceHandle, new(big.Int).SetUint64(gameID), player)
	if err != nil {
		return types.Handle{}, err
	}
	return types.Handle(*abi.ConvertType(out[0], new([32]byte)).(*[32]byte)), nil
}

// HasJoined player already joined gameID
func (c *Caller) HasJoined(ctx context.Context, gameID uint64, player common.Address) (bool, error) {
	out, err := c.call(ctx, player.Hex(), MethodHasJoined, new(big.Int).SetUint64(gameID), player)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CanClaimRefund player may call claimRefund on gameID
func (c *Caller) CanClaimRefund(ctx context.Context, gameID uint64, player common.Address) (bool, error) {
	out, err := c.call(ctx, player.Hex(), MethodCanClaimRefund, new(big.Int).SetUint64(gameID), player)
	if err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// Owner contract admin
func (c *Caller) Owner(ctx context.Context) (common.Address, error) {
	out, err := c.call(ctx, "", MethodOwner)
	if err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
