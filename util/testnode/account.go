// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package testnode

import (
	"context"
	"math/big"
	"time"

	"github.com/cognumbers/cognumbers/inco"
	"github.com/cognumbers/cognumbers/resolver"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
)

// Account contract view signed by one account.
// It satisfies game.Chain, resolver.Chain and registry.Source.
type Account struct {
	c       *Contract
	account common.Address
}

// Account signing account
func (a *Account) Account() common.Address {
	return a.account
}

// Owner contract owner
func (a *Account) Owner(ctx context.Context) (common.Address, error) {
	return a.c.owner, nil
}

// GameIDCounter number of games created
func (a *Account) GameIDCounter(ctx context.Context) (uint64, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return uint64(len(a.c.games)), nil
}

// GetGame copy of the game record
func (a *Account) GetGame(ctx context.Context, gameID uint64) (*types.Game, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	g, err := a.c.game(gameID)
	if err != nil {
		return nil, err
	}
	return g.Copy(), nil
}

// GetGameRaw same record, the mock has a single decode path
func (a *Account) GetGameRaw(ctx context.Context, gameID uint64) (*types.Game, error) {
	return a.GetGame(ctx, gameID)
}

// GetPlayers players in join order
func (a *Account) GetPlayers(ctx context.Context, gameID uint64) ([]common.Address, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	if _, err := a.c.game(gameID); err != nil {
		return nil, err
	}
	return append([]common.Address(nil), a.c.players[gameID]...), nil
}

// GetPlayerChoiceHandle zero handle for a player who never joined
func (a *Account) GetPlayerChoiceHandle(ctx context.Context, gameID uint64, player common.Address) (types.Handle, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.c.handles[gameID][player], nil
}

// HasJoined player joined gameID
func (a *Account) HasJoined(ctx context.Context, gameID uint64, player common.Address) (bool, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.c.joined(gameID, player), nil
}

// CanClaimRefund joined a cancelled or refunded game and not yet claimed
func (a *Account) CanClaimRefund(ctx context.Context, gameID uint64, player common.Address) (bool, error) {
	a.c.mu.Lock()
	defer a.c.mu.Unlock()
	return a.c.canClaim(gameID, player), nil
}

func (c *Contract) canClaim(gameID uint64, player common.Address) bool {
	g, err := c.game(gameID)
	if err != nil {
		return false
	}
	if g.Status != types.StatusCancelled && g.Status != types.StatusRefunded {
		return false
	}
	return c.joined(gameID, player) && !c.claimed[gameID][player]
}

// CreateGame opens a game with the caller as creator
func (a *Account) CreateGame(ctx context.Context, entryFee *big.Int, durationSeconds uint64) (uint64, *types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if durationSeconds == 0 || entryFee == nil || entryFee.Sign() < 0 {
		return 0, nil, revert(uint64(len(c.games)), "invalid parameters")
	}
	id := uint64(len(c.games))
	c.games = append(c.games, &types.Game{
		ID:        id,
		Creator:   a.account,
		Status:    types.StatusOpen,
		EntryFee:  new(big.Int).Set(entryFee),
		Deadline:  uint64(c.now.Add(time.Duration(durationSeconds) * time.Second).Unix()),
		PrizePool: new(big.Int),
	})
	rcpt := c.tx()
	c.emit(types.EventGameCreated, id, &a.account)
	return id, rcpt, nil
}

// JoinGame stores the sealed choice and collects the entry fee
func (a *Account) JoinGame(ctx context.Context, gameID uint64, ciphertext []byte, entryFee *big.Int) (*types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.game(gameID)
	if err != nil {
		return nil, err
	}
	switch {
	case g.Status != types.StatusOpen:
		return nil, revert(gameID, "game not open")
	case c.now.Unix() >= int64(g.Deadline):
		return nil, revert(gameID, "deadline passed")
	case g.PlayerCount >= types.MaxPlayers:
		return nil, revert(gameID, "game full")
	case c.joined(gameID, a.account):
		return nil, revert(gameID, "already joined")
	case entryFee == nil || entryFee.Cmp(g.EntryFee) != 0:
		return nil, revert(gameID, "incorrect entry fee")
	}
	ct, err := types.ParseCiphertext(ciphertext)
	if err != nil || ct.Handle.IsZero() {
		return nil, revert(gameID, "invalid ciphertext")
	}
	if c.handles[gameID] == nil {
		c.handles[gameID] = make(map[common.Address]types.Handle)
	}
	c.handles[gameID][a.account] = ct.Handle
	c.players[gameID] = append(c.players[gameID], a.account)
	g.PlayerCount++
	g.PrizePool.Add(g.PrizePool, entryFee)
	rcpt := c.tx()
	c.emit(types.EventPlayerJoined, gameID, &a.account)
	return rcpt, nil
}

// FinalizeGame Open -> Calculating once the deadline passed
func (a *Account) FinalizeGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.game(gameID)
	if err != nil {
		return nil, err
	}
	switch {
	case g.Status != types.StatusOpen:
		return nil, revert(gameID, "game not open")
	case c.now.Unix() < int64(g.Deadline):
		return nil, revert(gameID, "deadline not reached")
	case g.PlayerCount == 0:
		return nil, revert(gameID, "no players")
	}
	g.Status = types.StatusCalculating
	rcpt := c.tx()
	c.emit(types.EventGameFinalized, gameID, nil)
	return rcpt, nil
}

// CancelGame creator or owner, while Open
func (a *Account) CancelGame(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.game(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != types.StatusOpen {
		return nil, revert(gameID, "game not open")
	}
	if a.account != g.Creator && a.account != c.owner {
		return nil, revert(gameID, "not creator")
	}
	g.Status = types.StatusCancelled
	rcpt := c.tx()
	c.emit(types.EventGameCancelled, gameID, &a.account)
	return rcpt, nil
}

// ClaimRefund one refund per joined player of a cancelled or refunded game
func (a *Account) ClaimRefund(ctx context.Context, gameID uint64) (*types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.canClaim(gameID, a.account) {
		return nil, revert(gameID, "no refund")
	}
	if c.claimed[gameID] == nil {
		c.claimed[gameID] = make(map[common.Address]bool)
	}
	c.claimed[gameID][a.account] = true
	g := c.games[gameID]
	g.PrizePool.Sub(g.PrizePool, g.EntryFee)
	rcpt := c.tx()
	c.emit(types.EventRefundClaimed, gameID, &a.account)
	return rcpt, nil
}

// ResolveWinner checks one attested value per player in join order and settles the game
func (a *Account) ResolveWinner(ctx context.Context, gameID uint64, values []*big.Int, signatures [][][]byte) (*types.Receipt, error) {
	c := a.c
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.game(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != types.StatusCalculating {
		return nil, revert(gameID, "game not calculating")
	}
	players := c.players[gameID]
	if len(values) != len(players) || len(signatures) != len(players) {
		return nil, revert(gameID, "decryption count mismatch")
	}
	revealed := make([]*types.RevealedChoice, len(players))
	for i, p := range players {
		h := c.handles[gameID][p]
		if values[i] == nil || len(signatures[i]) == 0 || !inco.VerifyAttestation(h, values[i], signatures[i][0], c.attester) {
			return nil, revert(gameID, "invalid attestation")
		}
		revealed[i] = &types.RevealedChoice{Player: p, Handle: h, Value: values[i], Signatures: signatures[i]}
	}
	out := resolver.MinimumUniqueWinner(revealed)
	g.Status = types.StatusFinished
	rcpt := c.tx()
	if out.HasWinner() {
		g.Winner = out.Winner
		g.WinningNumber = out.Value.Uint64()
		c.emit(types.EventWinnerDetermined, gameID, &out.Winner)
	} else {
		c.emit(types.EventNoWinner, gameID, nil)
	}
	// 奖池已支付
	g.PrizePool = new(big.Int)
	return rcpt, nil
}
