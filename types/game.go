// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// game rule constants, mirrored from the contract
const (
	MinNumber  = 1
	MaxNumber  = 10
	MaxPlayers = 10
	MinPlayers = 2
)

// Status on-chain game status
type Status uint8

// game status values in contract enum order
const (
	StatusOpen Status = iota
	StatusCalculating
	StatusFinished
	StatusCancelled
	StatusRefunded
)

var statusLabels = map[Status]string{
	StatusOpen:        "OPEN",
	StatusCalculating: "CALCULATING",
	StatusFinished:    "FINISHED",
	StatusCancelled:   "CANCELLED",
	StatusRefunded:    "REFUNDED",
}

// String label of the status
func (s Status) String() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return "UNKNOWN"
}

// Valid reports whether s is one of the five contract states
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal finished, cancelled and refunded games never change again
func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusCancelled || s == StatusRefunded
}

// ParseStatus converts a raw on-chain value
func ParseStatus(v uint64) (Status, error) {
	s := Status(v)
	if v > uint64(StatusRefunded) || !s.Valid() {
		return 0, ErrUnknownStatus
	}
	return s, nil
}

// ParseStatusLabel case-insensitive inverse of Status.String
func ParseStatusLabel(label string) (Status, error) {
	for s, l := range statusLabels {
		if strings.EqualFold(l, label) {
			return s, nil
		}
	}
	return 0, ErrUnknownStatus
}

// Game decoded view of one on-chain game record
type Game struct {
	ID            uint64         `json:"gameId"`
	Creator       common.Address `json:"creator"`
	Status        Status         `json:"status"`
	EntryFee      *big.Int       `json:"entryFee"`
	Deadline      uint64         `json:"deadline"`
	PlayerCount   uint64         `json:"playerCount"`
	Winner        common.Address `json:"winner"`
	WinningNumber uint64         `json:"winningNumber"`
	PrizePool     *big.Int       `json:"prizePool"`
}

// HasWinner winner uses the zero address as "none"
func (g *Game) HasWinner() bool {
	return g.Winner != (common.Address{})
}

// IsTerminal see Status.IsTerminal
func (g *Game) IsTerminal() bool {
	return g.Status.IsTerminal()
}

// ExpectedPrizePool entryFee * playerCount
func (g *Game) ExpectedPrizePool() *big.Int {
	if g.EntryFee == nil {
		return new(big.Int)
	}
	return new(big.Int).Mul(g.EntryFee, new(big.Int).SetUint64(g.PlayerCount))
}

// CheckPrizePool the pool must track entryFee * playerCount until the game is settled
func (g *Game) CheckPrizePool() error {
	if g.Status != StatusOpen && g.Status != StatusCalculating {
		return nil
	}
	if g.PrizePool == nil || g.PrizePool.Cmp(g.ExpectedPrizePool()) != 0 {
		return ErrPrizePoolMismatch
	}
	return nil
}

// DeadlineTime deadline as time.Time
func (g *Game) DeadlineTime() time.Time {
	return time.Unix(int64(g.Deadline), 0)
}

// Expired now is at or past the deadline
func (g *Game) Expired(now time.Time) bool {
	return now.Unix() >= int64(g.Deadline)
}

// TimeRemaining zero once expired
func (g *Game) TimeRemaining(now time.Time) time.Duration {
	d := g.DeadlineTime().Sub(now)
	if d < 0 {
		return 0
	}
	return d.Truncate(time.Second)
}

// Copy deep copy, cached games are handed out as copies
func (g *Game) Copy() *Game {
	c := *g
	if g.EntryFee != nil {
		c.EntryFee = new(big.Int).Set(g.EntryFee)
	}
	if g.PrizePool != nil {
		c.PrizePool = new(big.Int).Set(g.PrizePool)
	}
	return &c
}

// GameDetail game plus the per-account view used by clients
type GameDetail struct {
	*Game
	Players        []common.Address `json:"players"`
	HasJoined      bool             `json:"hasJoined"`
	CanClaimRefund bool             `json:"canClaimRefund"`
}

// Receipt outcome of one mined contract write
type Receipt struct {
	TxHash      common.Hash `json:"txHash"`
	BlockNumber uint64      `json:"blockNumber"`
	GasUsed     uint64      `json:"gasUsed"`
}
