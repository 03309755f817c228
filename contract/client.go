// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"sync"
	"time"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Backend what the client needs from a node connection, *ethclient.Client satisfies it
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

// Client read and write access signed by one wallet key
type Client struct {
	*Caller
	backend        Backend
	opts           *bind.TransactOpts
	bound          *bind.BoundContract
	receiptTimeout time.Duration
	// 串行发送，避免并发交易拿到相同的 nonce
	sendMu sync.Mutex
}

// NewClient binds the contract at address with a keyed transactor
func NewClient(address common.Address, backend Backend, key *ecdsa.PrivateKey, chainID *big.Int, receiptTimeout time.Duration) (*Client, error) {
	if key == nil {
		return nil, types.ErrNoAccount
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "NewClient")
	}
	return &Client{
		Caller:         NewCaller(address, backend),
		backend:        backend,
		opts:           opts,
		bound:          bind.NewBoundContract(address, ParsedABI, backend, backend, backend),
		receiptTimeout: receiptTimeout,
	}, nil
}

// Account address of the signing key
func (c *Client) Account() common.Address {
	return c.opts.From
}

// CreateGame returns the new game id taken from the GameCreated log
func (c *Client) CreateGame(ctx context.Context, entryFee *big.Int, durationSeconds uint64) (uint64, *types.Receipt, error) {
	rcpt, raw, err := c.transact(ctx, "", nil, MethodCreateGame, entryFee, new(big.Int).SetUint64(durationSeconds))
	if err != nil {
		return 0, nil, err
	}
	for _, l := range raw.Logs {
		ev, err := ParseGameEvent(*l)
		if err != nil {
			continue
		}
		if ev.Name == types.EventGameCreated {
			return ev.GameID, rcpt, nil
		}
	}
	return 0, rcpt, types.NewError(types.KindIntegrity, rcpt.TxHash.Hex(), errors.New("no GameCreated log in receipt"))
}

// JoinGame pays entryFee and records the ciphertext
func (c *Client) JoinGame(ctx context.Context, gameID uint64, ciphertext []byte, entryFee *big.Int) (*types.Receipt, error) {
	rcpt, _, err := c.transact(ctx, gameKey(gameID), entryFee, MethodJoinGame, new(big.Int).SetUint64(gameID), ciphertext)
	return rcpt, err
}

// FinalizeGame moves an expired game to Calculating
func (c *Client) FinalizeGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	rcpt, _, err := c.transact(ctx, gameKey(gameID), nil, MethodFinalizeGame, new(big.Int).SetUint64(gameID))
	return rcpt, err
}

// ResolveWinner submits decrypted values and their attestations, aligned with getPlayers order
func (c *Client) ResolveWinner(ctx context.Context, gameID uint64, values []*big.Int, signatures [][][]byte) (*types.Receipt, error) {
	rcpt, _, err := c.transact(ctx, gameKey(gameID), nil, MethodResolveWinner, new(big.Int).SetUint64(gameID), values, signatures)
	return rcpt, err
}

// ClaimRefund withdraws the entry fee of a cancelled or refunded game
func (c *Client) ClaimRefund(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	rcpt, _, err := c.transact(ctx, gameKey(gameID), nil, MethodClaimRefund, new(big.Int).SetUint64(gameID))
	return rcpt, err
}

// CancelGame creator or owner cancels an open game
func (c *Client) CancelGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	rcpt, _, err := c.transact(ctx, gameKey(gameID), nil, MethodCancelGame, new(big.Int).SetUint64(gameID))
	return rcpt, err
}

func (c *Client) transact(ctx context.Context, id string, value *big.Int, method string, params ...interface{}) (*types.Receipt, *ethtypes.Receipt, error) {
	opts := *c.opts
	opts.Context = ctx
	opts.Value = value
	c.sendMu.Lock()
	tx, err := c.bound.Transact(&opts, method, params...)
	c.sendMu.Unlock()
	if err != nil {
		if reason, ok := RevertReason(err); ok {
			err = errors.Wrap(err, reason)
		}
		clog.Error("transact", "method", method, "id", id, "err", err)
		return nil, nil, types.NewError(types.KindNotSubmitted, id, errors.Wrapf(types.ErrTxNotSubmitted, "%s: %v", method, err))
	}
	hash := tx.Hash()
	clog.Info("transaction sent", "method", method, "id", id, "tx", hash.Hex())

	waitCtx := ctx
	if c.receiptTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.receiptTimeout)
		defer cancel()
	}
	raw, err := bind.WaitMined(waitCtx, c.backend, tx)
	if err != nil {
		clog.Error("wait mined", "method", method, "tx", hash.Hex(), "err", err)
		return nil, nil, types.NewError(types.KindPending, hash.Hex(), errors.Wrapf(types.ErrTxPending, "%s: %v", method, err))
	}
	rcpt := &types.Receipt{TxHash: hash, GasUsed: raw.GasUsed}
	if raw.BlockNumber != nil {
		rcpt.BlockNumber = raw.BlockNumber.Uint64()
	}
	if raw.Status != ethtypes.ReceiptStatusSuccessful {
		clog.Error("transaction reverted", "method", method, "id", id, "tx", hash.Hex(), "block", rcpt.BlockNumber)
		return rcpt, raw, types.NewError(types.KindReverted, hash.Hex(), errors.Wrap(types.ErrTxReverted, method))
	}
	clog.Info("transaction mined", "method", method, "tx", hash.Hex(), "block", rcpt.BlockNumber, "gas", rcpt.GasUsed)
	return rcpt, raw, nil
}

// ParsePrivateKey hex key without 0x
func ParsePrivateKey(hexkey string) (*ecdsa.PrivateKey, error) {
	if hexkey == "" {
		return nil, types.ErrNoAccount
	}
	key, err := crypto.HexToECDSA(hexkey)
	if err != nil {
		return nil, errors.Wrap(types.ErrInvalidParam, "private key")
	}
	return key, nil
}
