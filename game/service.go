// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package game

import (
	"context"
	"math/big"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

var glog = log.New("module", "game")

// Chain contract reads and writes signed by one account, *contract.Client satisfies it
type Chain interface {
	Account() common.Address
	Owner(ctx context.Context) (common.Address, error)
	GetGame(ctx context.Context, gameID uint64) (*types.Game, error)
	HasJoined(ctx context.Context, gameID uint64, player common.Address) (bool, error)
	CanClaimRefund(ctx context.Context, gameID uint64, player common.Address) (bool, error)
	CreateGame(ctx context.Context, entryFee *big.Int, durationSeconds uint64) (uint64, *types.Receipt, error)
	JoinGame(ctx context.Context, gameID uint64, ciphertext []byte, entryFee *big.Int) (*types.Receipt, error)
	FinalizeGame(ctx context.Context, gameID uint64) (*types.Receipt, error)
	CancelGame(ctx context.Context, gameID uint64) (*types.Receipt, error)
	ClaimRefund(ctx context.Context, gameID uint64) (*types.Receipt, error)
}

// Encrypter seals a choice for the contract, *inco.Encrypter satisfies it
type Encrypter interface {
	Encrypt(ctx context.Context, value uint64, player common.Address) (*types.Ciphertext, error)
}

// Invalidator drops stale cached copies of a game
type Invalidator interface {
	Invalidate(gameID uint64)
}

// Service game writes. Every write re-reads the game and applies the lifecycle guards first,
// cached listings are never trusted for a mutation.
type Service struct {
	chain       Chain
	enc         Encrypter
	minDuration time.Duration
	maxDuration time.Duration
	cache       Invalidator
	now         func() time.Time
}

// NewService service over chain, cfg bounds the game duration
func NewService(chain Chain, enc Encrypter, cfg *types.Chain) *Service {
	return &Service{
		chain:       chain,
		enc:         enc,
		minDuration: time.Duration(cfg.MinDuration) * time.Second,
		maxDuration: time.Duration(cfg.MaxDuration) * time.Second,
		now:         time.Now,
	}
}

// SetCache cache invalidated after every write
func (s *Service) SetCache(c Invalidator) {
	s.cache = c
}

// SetNow clock used by the deadline guards
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// Account signing account
func (s *Service) Account() common.Address {
	return s.chain.Account()
}

func (s *Service) fresh(ctx context.Context, gameID uint64) (*types.Game, error) {
	if s.cache != nil {
		s.cache.Invalidate(gameID)
	}
	return s.chain.GetGame(ctx, gameID)
}

func (s *Service) written(gameID uint64, method string, rcpt *types.Receipt) {
	if s.cache != nil {
		s.cache.Invalidate(gameID)
	}
	glog.Info(method, "game", gameID, "tx", rcpt.TxHash.Hex(), "block", rcpt.BlockNumber)
}

// CreateGame opens a game with entryFee wei lasting duration
func (s *Service) CreateGame(ctx context.Context, entryFee *big.Int, duration time.Duration) (uint64, *types.Receipt, error) {
	if entryFee == nil || entryFee.Sign() < 0 {
		return 0, nil, types.NewError(types.KindValidation, "entryFee", types.ErrInvalidParam)
	}
	if duration < s.minDuration || duration > s.maxDuration {
		return 0, nil, types.NewError(types.KindValidation, "duration",
			errors.Wrapf(types.ErrDurationOutOfBounds, "%s not in [%s, %s]", duration, s.minDuration, s.maxDuration))
	}
	id, rcpt, err := s.chain.CreateGame(ctx, entryFee, uint64(duration/time.Second))
	if err != nil {
		return 0, rcpt, err
	}
	s.written(id, "createGame", rcpt)
	return id, rcpt, nil
}

// JoinGame encrypts number for the signing account and pays the entry fee
func (s *Service) JoinGame(ctx context.Context, gameID uint64, number uint64) (*types.Receipt, error) {
	account := s.chain.Account()
	g, err := s.fresh(ctx, gameID)
	if err != nil {
		return nil, err
	}
	joined, err := s.chain.HasJoined(ctx, gameID, account)
	if err != nil {
		return nil, err
	}
	if err := CheckJoin(g, s.now(), joined); err != nil {
		return nil, err
	}
	ct, err := s.enc.Encrypt(ctx, number, account)
	if err != nil {
		return nil, err
	}
	glog.Debug("joinGame", "game", gameID, "handle", ct.Handle, "fee", g.EntryFee)
	rcpt, err := s.chain.JoinGame(ctx, gameID, ct.Raw, g.EntryFee)
	if err != nil {
		return rcpt, err
	}
	s.written(gameID, "joinGame", rcpt)
	return rcpt, nil
}

// FinalizeGame moves an expired game with players to Calculating
func (s *Service) FinalizeGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	g, err := s.fresh(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := CheckFinalize(g, s.now()); err != nil {
		return nil, err
	}
	rcpt, err := s.chain.FinalizeGame(ctx, gameID)
	if err != nil {
		return rcpt, err
	}
	s.written(gameID, "finalizeGame", rcpt)
	return rcpt, nil
}

// CancelGame creator or owner cancels an Open game
func (s *Service) CancelGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	g, err := s.fresh(ctx, gameID)
	if err != nil {
		return nil, err
	}
	owner, err := s.chain.Owner(ctx)
	if err != nil {
		return nil, err
	}
	if err := CheckCancel(g, s.chain.Account(), owner); err != nil {
		return nil, err
	}
	rcpt, err := s.chain.CancelGame(ctx, gameID)
	if err != nil {
		return rcpt, err
	}
	s.written(gameID, "cancelGame", rcpt)
	return rcpt, nil
}

// ClaimRefund withdraws the signing account's entry fee
func (s *Service) ClaimRefund(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	g, err := s.fresh(ctx, gameID)
	if err != nil {
		return nil, err
	}
	canClaim, err := s.chain.CanClaimRefund(ctx, gameID, s.chain.Account())
	if err != nil {
		return nil, err
	}
	if err := CheckRefund(g, canClaim); err != nil {
		return nil, err
	}
	rcpt, err := s.chain.ClaimRefund(ctx, gameID)
	if err != nil {
		return rcpt, err
	}
	s.written(gameID, "claimRefund", rcpt)
	return rcpt, nil
}
