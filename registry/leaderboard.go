// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"bytes"
	"math/big"
	"sort"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
)

// Standing one winner on the leaderboard
type Standing struct {
	Player   common.Address `json:"player"`
	Wins     uint64         `json:"wins"`
	Earnings *big.Int       `json:"earnings"`
}

// Leaderboard standings plus totals over finished games
type Leaderboard struct {
	Standings     []*Standing `json:"standings"`
	FinishedGames uint64      `json:"finishedGames"`
	TotalPrizes   *big.Int    `json:"totalPrizes"`
}

// BuildLeaderboard aggregates finished games that have a winner.
// Earnings use entryFee * playerCount since the pool is zeroed once paid out.
func BuildLeaderboard(games []*types.Game) *Leaderboard {
	lb := &Leaderboard{TotalPrizes: new(big.Int)}
	byPlayer := make(map[common.Address]*Standing)
	for _, g := range games {
		if g == nil || g.Status != types.StatusFinished {
			continue
		}
		lb.FinishedGames++
		if !g.HasWinner() {
			continue
		}
		prize := g.ExpectedPrizePool()
		lb.TotalPrizes.Add(lb.TotalPrizes, prize)
		s, ok := byPlayer[g.Winner]
		if !ok {
			s = &Standing{Player: g.Winner, Earnings: new(big.Int)}
			byPlayer[g.Winner] = s
		}
		s.Wins++
		s.Earnings.Add(s.Earnings, prize)
	}
	lb.Standings = make([]*Standing, 0, len(byPlayer))
	for _, s := range byPlayer {
		lb.Standings = append(lb.Standings, s)
	}
	sort.Slice(lb.Standings, func(i, j int) bool {
		a, b := lb.Standings[i], lb.Standings[j]
		if c := a.Earnings.Cmp(b.Earnings); c != 0 {
			return c > 0
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return bytes.Compare(a.Player.Bytes(), b.Player.Bytes()) < 0
	})
	return lb
}
