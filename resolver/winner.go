// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package resolver

import (
	"math/big"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
)

// Outcome result of the minimum unique number rule
type Outcome struct {
	Winner common.Address
	Value  *big.Int
}

// HasWinner at least one value was picked exactly once
func (o Outcome) HasWinner() bool {
	return o.Value != nil
}

// MinimumUniqueWinner picks the smallest value chosen by exactly one player.
// Uniqueness means at most one player holds the winning value, so no tie-break exists.
// Choices without a value do not take part.
func MinimumUniqueWinner(choices []*types.RevealedChoice) Outcome {
	count := make(map[string]int, len(choices))
	for _, c := range choices {
		if c == nil || c.Value == nil {
			continue
		}
		count[c.Value.String()]++
	}
	var best *types.RevealedChoice
	for _, c := range choices {
		if c == nil || c.Value == nil || count[c.Value.String()] != 1 {
			continue
		}
		if best == nil || c.Value.Cmp(best.Value) < 0 {
			best = c
		}
	}
	if best == nil {
		return Outcome{}
	}
	return Outcome{Winner: best.Player, Value: new(big.Int).Set(best.Value)}
}
