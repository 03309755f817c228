// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"math/big"
	"testing"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func won(id uint64, winner common.Address, fee int64, players uint64) *types.Game {
	g := game(id, types.StatusFinished, fee, players)
	g.Winner = winner
	g.PrizePool = new(big.Int)
	return g
}

func TestBuildLeaderboard(t *testing.T) {
	carol := common.HexToAddress("0x0000000000000000000000000000000000000c0c")
	games := []*types.Game{
		won(0, alice, 10, 3),
		won(1, bob, 100, 2),
		won(2, alice, 10, 2),
		won(3, carol, 50, 1),
		won(4, carol, 50, 1),
		game(5, types.StatusFinished, 10, 2),
		game(6, types.StatusCancelled, 10, 2),
		game(7, types.StatusOpen, 10, 2),
		nil,
	}
	lb := BuildLeaderboard(games)

	assert.Equal(t, uint64(6), lb.FinishedGames)
	assert.Equal(t, int64(350), lb.TotalPrizes.Int64())
	require.Len(t, lb.Standings, 3)

	assert.Equal(t, bob, lb.Standings[0].Player)
	assert.Equal(t, int64(200), lb.Standings[0].Earnings.Int64())
	assert.Equal(t, uint64(1), lb.Standings[0].Wins)

	// carol 100, alice 50
	assert.Equal(t, carol, lb.Standings[1].Player)
	assert.Equal(t, uint64(2), lb.Standings[1].Wins)
	assert.Equal(t, alice, lb.Standings[2].Player)
	assert.Equal(t, int64(50), lb.Standings[2].Earnings.Int64())
}

func TestBuildLeaderboardTies(t *testing.T) {
	lb := BuildLeaderboard([]*types.Game{
		won(0, bob, 20, 2),
		won(1, alice, 10, 2),
		won(2, alice, 5, 2),
		won(3, alice, 5, 2),
	})
	require.Len(t, lb.Standings, 2)
	// equal earnings, more wins first
	assert.Equal(t, alice, lb.Standings[0].Player)
	assert.Equal(t, int64(40), lb.Standings[0].Earnings.Int64())

	// then by address bytes
	lb = BuildLeaderboard([]*types.Game{won(0, alice, 10, 2), won(1, bob, 10, 2)})
	assert.Equal(t, bob, lb.Standings[0].Player)
}

func TestBuildLeaderboardEmpty(t *testing.T) {
	lb := BuildLeaderboard(nil)
	assert.Empty(t, lb.Standings)
	assert.Equal(t, int64(0), lb.TotalPrizes.Int64())
}
