// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package game 游戏状态机与写操作
package game

import (
	"strconv"
	"time"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Open -> Calculating | Cancelled, Calculating -> Finished | Refunded, the rest are terminal
var transitions = map[types.Status][]types.Status{
	types.StatusOpen:        {types.StatusCalculating, types.StatusCancelled},
	types.StatusCalculating: {types.StatusFinished, types.StatusRefunded},
}

func gameKey(gameID uint64) string {
	return "game " + strconv.FormatUint(gameID, 10)
}

func guardErr(g *types.Game, err error, format string, args ...interface{}) error {
	return types.NewError(types.KindValidation, gameKey(g.ID), errors.Wrapf(err, format, args...))
}

// CanTransition status move is legal
func CanTransition(from, to types.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NextStatuses legal targets of from, empty for terminal statuses
func NextStatuses(from types.Status) []types.Status {
	return append([]types.Status(nil), transitions[from]...)
}

// CheckTransition ErrInvalidTransition unless from -> to is legal
func CheckTransition(from, to types.Status) error {
	if !CanTransition(from, to) {
		return errors.Wrapf(types.ErrInvalidTransition, "%s -> %s", from, to)
	}
	return nil
}

// CheckJoin join requires Open, now < deadline, a free seat and a new player
func CheckJoin(g *types.Game, now time.Time, joined bool) error {
	if g.Status != types.StatusOpen {
		return guardErr(g, types.ErrGameNotOpen, "status %s", g.Status)
	}
	if g.Expired(now) {
		return guardErr(g, types.ErrDeadlinePassed, "deadline %d", g.Deadline)
	}
	if g.PlayerCount >= types.MaxPlayers {
		return guardErr(g, types.ErrGameFull, "%d players", g.PlayerCount)
	}
	if joined {
		return guardErr(g, types.ErrAlreadyJoined, "join")
	}
	return nil
}

// CheckFinalize finalize requires Open, now >= deadline and at least one player
func CheckFinalize(g *types.Game, now time.Time) error {
	if err := CheckTransition(g.Status, types.StatusCalculating); err != nil {
		return guardErr(g, types.ErrGameNotOpen, "status %s", g.Status)
	}
	if !g.Expired(now) {
		return guardErr(g, types.ErrDeadlineNotReached, "%s left", g.TimeRemaining(now))
	}
	if g.PlayerCount == 0 {
		return guardErr(g, types.ErrNoPlayers, "finalize")
	}
	return nil
}

// CheckResolvable resolution may start, the game is Calculating
func CheckResolvable(g *types.Game) error {
	if err := CheckTransition(g.Status, types.StatusFinished); err != nil {
		return guardErr(g, types.ErrGameNotCalculating, "status %s", g.Status)
	}
	return nil
}

// CheckResolve resolve requires Calculating and one decrypted value per joined player
func CheckResolve(g *types.Game, players, values int) error {
	if err := CheckResolvable(g); err != nil {
		return err
	}
	if players == 0 {
		return guardErr(g, types.ErrNoPlayers, "resolve")
	}
	if values != players {
		return guardErr(g, types.ErrMissingDecryption, "%d values for %d players", values, players)
	}
	return nil
}

// CheckCancel cancel requires Open and the creator or the contract owner
func CheckCancel(g *types.Game, account, owner common.Address) error {
	if err := CheckTransition(g.Status, types.StatusCancelled); err != nil {
		return guardErr(g, types.ErrGameNotOpen, "status %s", g.Status)
	}
	if account != g.Creator && account != owner {
		return guardErr(g, types.ErrNotCreator, "%s", account.Hex())
	}
	return nil
}

// CheckRefund refunds need the contract's canClaimRefund, never from an Open or Finished game
func CheckRefund(g *types.Game, canClaim bool) error {
	if g.Status == types.StatusOpen || g.Status == types.StatusFinished {
		return guardErr(g, types.ErrRefundUnavailable, "status %s", g.Status)
	}
	if !canClaim {
		return guardErr(g, types.ErrRefundUnavailable, "not claimable")
	}
	return nil
}
