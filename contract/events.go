// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"math/big"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// ErrUnknownEvent log does not belong to a watched event
var ErrUnknownEvent = errors.New("ErrUnknownEvent")

// EventTopics topic0 filter matching every watched event
func EventTopics(names ...string) [][]common.Hash {
	if len(names) == 0 {
		names = types.GameEvents
	}
	ids := make([]common.Hash, 0, len(names))
	for _, name := range names {
		if ev, ok := ParsedABI.Events[name]; ok {
			ids = append(ids, ev.ID)
		}
	}
	return [][]common.Hash{ids}
}

// ParseGameEvent decodes name, game id and the indexed account of a contract log.
// Every watched event indexes gameId as its first argument.
func ParseGameEvent(l ethtypes.Log) (*types.GameEvent, error) {
	if len(l.Topics) < 2 {
		return nil, ErrUnknownEvent
	}
	ev, err := ParsedABI.EventByID(l.Topics[0])
	if err != nil {
		return nil, ErrUnknownEvent
	}
	id := new(big.Int).SetBytes(l.Topics[1].Bytes())
	if !id.IsUint64() {
		return nil, errors.Wrapf(types.ErrValueOverflow, "%s gameId", ev.Name)
	}
	out := &types.GameEvent{
		Name:        ev.Name,
		GameID:      id.Uint64(),
		BlockNumber: l.BlockNumber,
		TxHash:      l.TxHash,
		LogIndex:    l.Index,
	}
	if len(l.Topics) > 2 {
		out.Account = common.BytesToAddress(l.Topics[2].Bytes())
	}
	return out, nil
}
