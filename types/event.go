// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// contract event names, also used as queue topics
const (
	EventGameCreated      = "GameCreated"
	EventPlayerJoined     = "PlayerJoined"
	EventGameFinalized    = "GameFinalized"
	EventWinnerDetermined = "WinnerDetermined"
	EventNoWinner         = "NoWinner"
	EventGameCancelled    = "GameCancelled"
	EventRefundClaimed    = "RefundClaimed"
	EventRefundsInitiated = "RefundsInitiated"
)

// TopicResolution queue topic carrying resolution phase changes
const TopicResolution = "resolution"

// GameEvents every contract event the watcher follows
var GameEvents = []string{
	EventGameCreated,
	EventPlayerJoined,
	EventGameFinalized,
	EventWinnerDetermined,
	EventNoWinner,
	EventGameCancelled,
	EventRefundClaimed,
	EventRefundsInitiated,
}

// GameEvent one decoded contract log
type GameEvent struct {
	Name        string         `json:"name"`
	GameID      uint64         `json:"gameId"`
	Account     common.Address `json:"account"`
	BlockNumber uint64         `json:"blockNumber"`
	TxHash      common.Hash    `json:"txHash"`
	LogIndex    uint           `json:"logIndex"`
}
