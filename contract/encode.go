// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// GetGameSignature canonical signature hashed into the selector
const GetGameSignature = "getGame(uint256)"

// GetGameSelector first four bytes of keccak256(GetGameSignature)
var GetGameSelector = crypto.Keccak256([]byte(GetGameSignature))[:4]

// EncodeGetGameCall selector followed by the zero padded big endian game id
func EncodeGetGameCall(gameID uint64) []byte {
	data := make([]byte, 0, len(GetGameSelector)+SlotSize)
	data = append(data, GetGameSelector...)
	return append(data, common.LeftPadBytes(new(big.Int).SetUint64(gameID).Bytes(), SlotSize)...)
}

// EncodeGetGameCallHex 0x prefixed form for a json eth_call
func EncodeGetGameCallHex(gameID uint64) string {
	return hexutil.Encode(EncodeGetGameCall(gameID))
}
