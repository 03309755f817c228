// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	for v, label := range []string{"OPEN", "CALCULATING", "FINISHED", "CANCELLED", "REFUNDED"} {
		s, err := ParseStatus(uint64(v))
		require.NoError(t, err)
		assert.Equal(t, label, s.String())
		back, err := ParseStatusLabel(label)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
	_, err := ParseStatus(5)
	assert.Equal(t, ErrUnknownStatus, err)
	_, err = ParseStatusLabel("paused")
	assert.Equal(t, ErrUnknownStatus, err)
	s, err := ParseStatusLabel("calculating")
	require.NoError(t, err)
	assert.Equal(t, StatusCalculating, s)
	assert.Equal(t, "UNKNOWN", Status(9).String())

	assert.False(t, StatusOpen.IsTerminal())
	assert.False(t, StatusCalculating.IsTerminal())
	assert.True(t, StatusFinished.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRefunded.IsTerminal())
}

func TestPrizePool(t *testing.T) {
	g := &Game{Status: StatusOpen, EntryFee: big.NewInt(10), PlayerCount: 3, PrizePool: big.NewInt(30)}
	assert.Equal(t, int64(30), g.ExpectedPrizePool().Int64())
	assert.NoError(t, g.CheckPrizePool())

	g.PrizePool = big.NewInt(20)
	assert.Equal(t, ErrPrizePoolMismatch, g.CheckPrizePool())

	// settled games pay the pool out
	g.Status = StatusFinished
	g.PrizePool = new(big.Int)
	assert.NoError(t, g.CheckPrizePool())

	assert.Equal(t, int64(0), (&Game{}).ExpectedPrizePool().Int64())
}

func TestDeadline(t *testing.T) {
	g := &Game{Deadline: 1700000000}
	now := time.Unix(1700000000-90, 500)
	assert.False(t, g.Expired(now))
	assert.Equal(t, 89*time.Second, g.TimeRemaining(now))
	assert.True(t, g.Expired(time.Unix(1700000000, 0)))
	assert.Equal(t, time.Duration(0), g.TimeRemaining(time.Unix(1700000100, 0)))
}

func TestGameCopy(t *testing.T) {
	g := &Game{ID: 1, EntryFee: big.NewInt(5), PrizePool: big.NewInt(10), Winner: common.HexToAddress("0x01")}
	c := g.Copy()
	c.EntryFee.SetInt64(6)
	c.PrizePool.SetInt64(11)
	assert.Equal(t, int64(5), g.EntryFee.Int64())
	assert.Equal(t, int64(10), g.PrizePool.Int64())
	assert.True(t, c.HasWinner())
	assert.False(t, (&Game{}).HasWinner())
}
