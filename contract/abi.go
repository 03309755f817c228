// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// contract method names
const (
	MethodGameIDCounter         = "gameIdCounter"
	MethodGetGame               = "getGame"
	MethodGetPlayers            = "getPlayers"
	MethodGetPlayerChoiceHandle = "getPlayerChoiceHandle"
	MethodHasJoined             = "hasJoined"
	MethodCanClaimRefund        = "canClaimRefund"
	MethodOwner                 = "owner"
	MethodCreateGame            = "createGame"
	MethodJoinGame              = "joinGame"
	MethodFinalizeGame          = "finalizeGame"
	MethodResolveWinner         = "resolveWinner"
	MethodClaimRefund           = "claimRefund"
	MethodCancelGame            = "cancelGame"
)

// CognumbersABI subset of the cognumbers contract abi used by the client
const CognumbersABI = `[
{"type":"function","name":"gameIdCounter","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
{"type":"function","name":"createGame","stateMutability":"nonpayable","inputs":[{"name":"_entryFee","type":"uint256"},{"name":"_durationSeconds","type":"uint256"}],"outputs":[{"name":"gameId","type":"uint256"}]},
{"type":"function","name":"joinGame","stateMutability":"payable","inputs":[{"name":"_gameId","type":"uint256"},{"name":"_encryptedChoice","type":"bytes"}],"outputs":[]},
{"type":"function","name":"finalizeGame","stateMutability":"nonpayable","inputs":[{"name":"_gameId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"resolveWinner","stateMutability":"nonpayable","inputs":[{"name":"_gameId","type":"uint256"},{"name":"_decryptedChoices","type":"uint256[]"},{"name":"_signatures","type":"bytes[][]"}],"outputs":[]},
{"type":"function","name":"claimRefund","stateMutability":"nonpayable","inputs":[{"name":"_gameId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"cancelGame","stateMutability":"nonpayable","inputs":[{"name":"_gameId","type":"uint256"}],"outputs":[]},
{"type":"function","name":"getGame","stateMutability":"view","inputs":[{"name":"_gameId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[
	{"name":"gameId","type":"uint256"},
	{"name":"creator","type":"address"},
	{"name":"status","type":"uint8"},
	{"name":"entryFee","type":"uint256"},
	{"name":"deadline","type":"uint256"},
	{"name":"playerCount","type":"uint256"},
	{"name":"winner","type":"address"},
	{"name":"winningNumber","type":"uint256"},
	{"name":"prizePool","type":"uint256"}]}]},
{"type":"function","name":"getPlayers","stateMutability":"view","inputs":[{"name":"_gameId","type":"uint256"}],"outputs":[{"name":"","type":"address[]"}]},
{"type":"function","name":"getPlayerChoiceHandle","stateMutability":"view","inputs":[{"name":"_gameId","type":"uint256"},{"name":"_player","type":"address"}],"outputs":[{"name":"","type":"bytes32"}]},
{"type":"function","name":"canClaimRefund","stateMutability":"view","inputs":[{"name":"_gameId","type":"uint256"},{"name":"_player","type":"address"}],"outputs":[{"name":"canClaim","type":"bool"}]},
{"type":"function","name":"hasJoined","stateMutability":"view","inputs":[{"name":"","type":"uint256"},{"name":"","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
{"type":"event","name":"GameCreated","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"creator","type":"address","indexed":true},{"name":"entryFee","type":"uint256","indexed":false},{"name":"deadline","type":"uint256","indexed":false}]},
{"type":"event","name":"PlayerJoined","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"player","type":"address","indexed":true},{"name":"playerCount","type":"uint256","indexed":false},{"name":"prizePool","type":"uint256","indexed":false}]},
{"type":"event","name":"GameFinalized","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"playerCount","type":"uint256","indexed":false},{"name":"prizePool","type":"uint256","indexed":false}]},
{"type":"event","name":"WinnerDetermined","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"winner","type":"address","indexed":true},{"name":"winningNumber","type":"uint256","indexed":false},{"name":"prize","type":"uint256","indexed":false}]},
{"type":"event","name":"NoWinner","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"playerCount","type":"uint256","indexed":false},{"name":"reason","type":"string","indexed":false}]},
{"type":"event","name":"GameCancelled","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"cancelledBy","type":"address","indexed":true},{"name":"reason","type":"string","indexed":false}]},
{"type":"event","name":"RefundClaimed","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"player","type":"address","indexed":true},{"name":"amount","type":"uint256","indexed":false}]},
{"type":"event","name":"RefundsInitiated","inputs":[{"name":"gameId","type":"uint256","indexed":true},{"name":"playerCount","type":"uint256","indexed":false},{"name":"totalRefund","type":"uint256","indexed":false}]},
{"type":"error","name":"GameNotOpen","inputs":[{"name":"gameId","type":"uint256"},{"name":"currentStatus","type":"uint8"}]},
{"type":"error","name":"GameNotCalculating","inputs":[{"name":"gameId","type":"uint256"},{"name":"currentStatus","type":"uint8"}]},
{"type":"error","name":"DeadlineNotPassed","inputs":[{"name":"gameId","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"currentTime","type":"uint256"}]},
{"type":"error","name":"DeadlinePassed","inputs":[{"name":"gameId","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"currentTime","type":"uint256"}]},
{"type":"error","name":"IncorrectEntryFee","inputs":[{"name":"gameId","type":"uint256"},{"name":"required","type":"uint256"},{"name":"provided","type":"uint256"}]},
{"type":"error","name":"AlreadyJoined","inputs":[{"name":"gameId","type":"uint256"},{"name":"player","type":"address"}]},
{"type":"error","name":"GameFull","inputs":[{"name":"gameId","type":"uint256"},{"name":"maxPlayers","type":"uint256"}]},
{"type":"error","name":"InsufficientPlayers","inputs":[{"name":"gameId","type":"uint256"},{"name":"current","type":"uint256"},{"name":"required","type":"uint256"}]},
{"type":"error","name":"ChoiceCountMismatch","inputs":[{"name":"gameId","type":"uint256"},{"name":"expected","type":"uint256"},{"name":"provided","type":"uint256"}]},
{"type":"error","name":"InvalidAttestation","inputs":[{"name":"gameId","type":"uint256"},{"name":"playerIndex","type":"uint256"}]},
{"type":"error","name":"RefundAlreadyClaimed","inputs":[{"name":"gameId","type":"uint256"},{"name":"player","type":"address"}]},
{"type":"error","name":"NotEligibleForRefund","inputs":[{"name":"gameId","type":"uint256"},{"name":"player","type":"address"}]},
{"type":"error","name":"InvalidDuration","inputs":[{"name":"provided","type":"uint256"},{"name":"min","type":"uint256"},{"name":"max","type":"uint256"}]},
{"type":"error","name":"GameNotRefundable","inputs":[{"name":"gameId","type":"uint256"},{"name":"status","type":"uint8"}]}
]`

// ParsedABI parsed CognumbersABI
var ParsedABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(CognumbersABI))
	if err != nil {
		panic(err)
	}
	ParsedABI = parsed
	if err := checkLayout(ParsedABI); err != nil {
		panic(err)
	}
}
