// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package contract

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	creator = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	winner  = common.HexToAddress("0x00000000000000000000000000000000000000a7")
)

type gameTuple struct {
	GameId        *big.Int
	Creator       common.Address
	Status        uint8
	EntryFee      *big.Int
	Deadline      *big.Int
	PlayerCount   *big.Int
	Winner        common.Address
	WinningNumber *big.Int
	PrizePool     *big.Int
}

func packGame(t *testing.T, g gameTuple) []byte {
	out, err := ParsedABI.Methods[MethodGetGame].Outputs.Pack(g)
	require.Nil(t, err)
	return out
}

func finishedGame() gameTuple {
	return gameTuple{
		GameId:        big.NewInt(12),
		Creator:       creator,
		Status:        uint8(types.StatusFinished),
		EntryFee:      big.NewInt(1e16),
		Deadline:      big.NewInt(1769600000),
		PlayerCount:   big.NewInt(3),
		Winner:        winner,
		WinningNumber: big.NewInt(5),
		PrizePool:     big.NewInt(3e16),
	}
}

func TestLayoutMatchesABI(t *testing.T) {
	assert.Nil(t, checkLayout(ParsedABI))
	assert.Equal(t, 9*32, GameRecordSize)

	creatorField := GameLayout[1]
	assert.Equal(t, FieldCreator, creatorField.Name)
	assert.Equal(t, 32+12, creatorField.Offset)
	assert.Equal(t, 20, creatorField.Width)
	assert.Equal(t, 2*32+31, GameLayout[2].Offset)
}

func TestGetGameSelector(t *testing.T) {
	assert.Equal(t, ParsedABI.Methods[MethodGetGame].ID, GetGameSelector)

	data := EncodeGetGameCall(258)
	require.Equal(t, 36, len(data))
	assert.Equal(t, GetGameSelector, data[:4])
	assert.Equal(t, []byte{1, 2}, data[34:])
	for _, b := range data[4:34] {
		assert.Equal(t, byte(0), b)
	}

	packed, err := ParsedABI.Pack(MethodGetGame, big.NewInt(258))
	require.Nil(t, err)
	assert.Equal(t, packed, data)
	assert.Equal(t, hexutil.Encode(packed), EncodeGetGameCallHex(258))
}

func TestDecodePathsIdentical(t *testing.T) {
	output := packGame(t, finishedGame())

	structured, err := DecodeGame(output)
	require.Nil(t, err)
	raw, err := DecodeGameRaw(output)
	require.Nil(t, err)
	fromHex, err := DecodeGameHex(hexutil.Encode(output))
	require.Nil(t, err)

	assert.Equal(t, structured, raw)
	assert.Equal(t, structured, fromHex)
	assert.Equal(t, uint64(12), raw.ID)
	assert.Equal(t, creator, raw.Creator)
	assert.Equal(t, types.StatusFinished, raw.Status)
	assert.Equal(t, winner, raw.Winner)
	assert.Equal(t, uint64(5), raw.WinningNumber)
	assert.Equal(t, uint64(3), raw.PlayerCount)
	assert.Equal(t, big.NewInt(3e16), raw.PrizePool)
	assert.True(t, raw.HasWinner())
}

func TestDecodeZeroSentinels(t *testing.T) {
	g := finishedGame()
	g.Status = uint8(types.StatusOpen)
	g.Winner = common.Address{}
	g.WinningNumber = big.NewInt(0)
	output := packGame(t, g)

	structured, err := DecodeGame(output)
	require.Nil(t, err)
	raw, err := DecodeGameRaw(output)
	require.Nil(t, err)
	assert.Equal(t, structured, raw)
	assert.False(t, raw.HasWinner())
	assert.Nil(t, raw.CheckPrizePool())
}

func TestDecodeErrors(t *testing.T) {
	_, err := DecodeGameRaw(make([]byte, GameRecordSize-1))
	assert.True(t, errors.Is(err, types.ErrMalformedRecord))

	_, err = DecodeGameHex("0xzz")
	assert.True(t, errors.Is(err, types.ErrMalformedRecord))

	g := finishedGame()
	g.Status = 9
	output := packGame(t, g)
	_, err = DecodeGameRaw(output)
	assert.True(t, errors.Is(err, types.ErrUnknownStatus))
	_, err = DecodeGame(output)
	assert.True(t, errors.Is(err, types.ErrUnknownStatus))

	g = finishedGame()
	g.Deadline = new(big.Int).Lsh(big.NewInt(1), 70)
	output = packGame(t, g)
	_, err = DecodeGameRaw(output)
	assert.True(t, errors.Is(err, types.ErrValueOverflow))
	_, err = DecodeGame(output)
	assert.True(t, errors.Is(err, types.ErrValueOverflow))
}

func TestDecodePathsDirtyPadding(t *testing.T) {
	output := packGame(t, finishedGame())
	dirty := common.CopyBytes(output)
	dirty[GameLayout[2].Offset-1] = 0x01

	_, err := DecodeGame(dirty)
	assert.True(t, errors.Is(err, types.ErrMalformedRecord))
	_, err = DecodeGameRaw(dirty)
	assert.True(t, errors.Is(err, types.ErrMalformedRecord))

	// address slots only keep their last 20 bytes, both paths agree
	dirty = common.CopyBytes(output)
	dirty[GameLayout[1].Slot*SlotSize] = 0xff
	structured, err := DecodeGame(dirty)
	require.Nil(t, err)
	raw, err := DecodeGameRaw(dirty)
	require.Nil(t, err)
	assert.Equal(t, structured, raw)
	assert.Equal(t, creator, raw.Creator)
}

type fakeCaller struct {
	responses map[string][]byte
	calls     int
}

func (f *fakeCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x60}, nil
}

func (f *fakeCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	f.calls++
	out, ok := f.responses[hexutil.Encode(call.Data[:4])]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

func TestCallerStructuredAndRaw(t *testing.T) {
	output := packGame(t, finishedGame())
	fc := &fakeCaller{responses: map[string][]byte{hexutil.Encode(GetGameSelector): output}}
	c := NewCaller(common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013"), fc)

	structured, err := c.GetGame(context.Background(), 12)
	require.Nil(t, err)
	raw, err := c.GetGameRaw(context.Background(), 12)
	require.Nil(t, err)
	assert.Equal(t, structured, raw)
	assert.Equal(t, 2, fc.calls)

	_, err = c.GetPlayers(context.Background(), 12)
	assert.Equal(t, types.KindTransient, types.KindOf(err))
	assert.Equal(t, "game 12", types.IDOf(err))
}

func TestCallerGetGameErrorKinds(t *testing.T) {
	output := packGame(t, finishedGame())
	dirty := common.CopyBytes(output)
	dirty[GameLayout[2].Offset-1] = 0x01
	fc := &fakeCaller{responses: map[string][]byte{hexutil.Encode(GetGameSelector): dirty}}
	c := NewCaller(common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013"), fc)

	_, err := c.GetGame(context.Background(), 12)
	assert.Equal(t, types.KindIntegrity, types.KindOf(err))
	assert.True(t, errors.Is(err, types.ErrMalformedRecord))
	_, err = c.GetGameRaw(context.Background(), 12)
	assert.Equal(t, types.KindIntegrity, types.KindOf(err))

	fc.responses[hexutil.Encode(GetGameSelector)] = output[:100]
	_, err = c.GetGame(context.Background(), 12)
	assert.Equal(t, types.KindIntegrity, types.KindOf(err))
	assert.Equal(t, "game 12", types.IDOf(err))

	fc.responses[hexutil.Encode(GetGameSelector)] = []byte{}
	_, err = c.GetGame(context.Background(), 12)
	assert.True(t, errors.Is(err, types.ErrGameNotFound))

	delete(fc.responses, hexutil.Encode(GetGameSelector))
	_, err = c.GetGame(context.Background(), 12)
	assert.Equal(t, types.KindTransient, types.KindOf(err))
}

func TestCallerHandleAndPlayers(t *testing.T) {
	player := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	handle := common.HexToHash("0xabcdef")
	players, err := ParsedABI.Methods[MethodGetPlayers].Outputs.Pack([]common.Address{player})
	require.Nil(t, err)
	handleOut, err := ParsedABI.Methods[MethodGetPlayerChoiceHandle].Outputs.Pack([32]byte(handle))
	require.Nil(t, err)
	counter, err := ParsedABI.Methods[MethodGameIDCounter].Outputs.Pack(big.NewInt(4))
	require.Nil(t, err)

	fc := &fakeCaller{responses: map[string][]byte{
		hexutil.Encode(ParsedABI.Methods[MethodGetPlayers].ID):            players,
		hexutil.Encode(ParsedABI.Methods[MethodGetPlayerChoiceHandle].ID): handleOut,
		hexutil.Encode(ParsedABI.Methods[MethodGameIDCounter].ID):         counter,
	}}
	c := NewCaller(common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013"), fc)

	got, err := c.GetPlayers(context.Background(), 1)
	require.Nil(t, err)
	assert.Equal(t, []common.Address{player}, got)

	h, err := c.GetPlayerChoiceHandle(context.Background(), 1, player)
	require.Nil(t, err)
	assert.Equal(t, types.Handle(handle), h)
	assert.False(t, h.IsZero())

	n, err := c.GameIDCounter(context.Background())
	require.Nil(t, err)
	assert.Equal(t, uint64(4), n)
}

func TestParseGameEvent(t *testing.T) {
	player := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	l := ethtypes.Log{
		Topics: []common.Hash{
			ParsedABI.Events[types.EventPlayerJoined].ID,
			common.BigToHash(big.NewInt(7)),
			common.BytesToHash(player.Bytes()),
		},
		BlockNumber: 100,
		Index:       3,
	}
	ev, err := ParseGameEvent(l)
	require.Nil(t, err)
	assert.Equal(t, types.EventPlayerJoined, ev.Name)
	assert.Equal(t, uint64(7), ev.GameID)
	assert.Equal(t, player, ev.Account)
	assert.Equal(t, uint64(100), ev.BlockNumber)

	l.Topics[0] = common.HexToHash("0x01")
	_, err = ParseGameEvent(l)
	assert.Equal(t, ErrUnknownEvent, err)

	topics := EventTopics()
	require.Equal(t, 1, len(topics))
	assert.Equal(t, len(types.GameEvents), len(topics[0]))
}

func TestDecodeRevertData(t *testing.T) {
	player := common.HexToAddress("0x00000000000000000000000000000000000000b2")
	e := ParsedABI.Errors["AlreadyJoined"]
	args, err := e.Inputs.Pack(big.NewInt(3), player)
	require.Nil(t, err)
	reason, ok := DecodeRevertData(append(common.CopyBytes(e.ID[:4]), args...))
	assert.True(t, ok)
	assert.Contains(t, reason, "AlreadyJoined(3, ")

	_, ok = DecodeRevertData([]byte{1, 2})
	assert.False(t, ok)
}
