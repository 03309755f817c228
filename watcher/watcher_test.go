// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package watcher

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/cognumbers/cognumbers/contract"
	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	gameAddr = common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013")
	player   = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
)

type fakeLogs struct {
	mu      sync.Mutex
	head    uint64
	logs    []ethtypes.Log
	queries []ethereum.FilterQuery
	failAt  uint64
}

func (f *fakeLogs) BlockNumber(ctx context.Context) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.head, nil
}

func (f *fakeLogs) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	from, to := q.FromBlock.Uint64(), q.ToBlock.Uint64()
	if f.failAt != 0 && from <= f.failAt && f.failAt <= to {
		return nil, errors.New("rpc down")
	}
	var out []ethtypes.Log
	for _, l := range f.logs {
		if l.BlockNumber >= from && l.BlockNumber <= to {
			out = append(out, l)
		}
	}
	return out, nil
}

func eventLog(name string, block, gameID uint64, account *common.Address) ethtypes.Log {
	topics := []common.Hash{
		contract.ParsedABI.Events[name].ID,
		common.BigToHash(new(big.Int).SetUint64(gameID)),
	}
	if account != nil {
		topics = append(topics, common.BytesToHash(account.Bytes()))
	}
	return ethtypes.Log{Address: gameAddr, Topics: topics, BlockNumber: block}
}

func setup(t *testing.T, src LogSource, cfg *types.Watcher) (*Watcher, queue.Client, *queue.Queue) {
	q := queue.New("test")
	t.Cleanup(q.Close)
	sub := q.Client()
	sub.Sub(types.GameEvents...)
	w := New(src, gameAddr, cfg)
	w.SetQueueClient(q.Client())
	return w, sub, q
}

func drain(sub queue.Client, n int) []*types.GameEvent {
	var out []*types.GameEvent
	for i := 0; i < n; i++ {
		select {
		case msg := <-sub.Recv():
			ev := msg.Data.(*types.GameEvent)
			if ev.Name != msg.Topic {
				return nil
			}
			out = append(out, ev)
		case <-time.After(time.Second):
			return out
		}
	}
	return out
}

func TestPollPublishesByName(t *testing.T) {
	src := &fakeLogs{head: 10}
	src.logs = []ethtypes.Log{
		eventLog(types.EventGameCreated, 3, 1, &player),
		eventLog(types.EventPlayerJoined, 4, 1, &player),
		eventLog(types.EventGameFinalized, 9, 1, nil),
		{Address: gameAddr, Topics: []common.Hash{{0x01}, {0x02}}, BlockNumber: 9},
	}
	removed := eventLog(types.EventNoWinner, 9, 1, nil)
	removed.Removed = true
	src.logs = append(src.logs, removed)

	w, sub, _ := setup(t, src, &types.Watcher{FromBlock: 1, MaxRange: 4})
	n, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(11), w.Next())

	evs := drain(sub, 3)
	require.Len(t, evs, 3)
	assert.Equal(t, types.EventGameCreated, evs[0].Name)
	assert.Equal(t, player, evs[0].Account)
	assert.Equal(t, types.EventPlayerJoined, evs[1].Name)
	assert.Equal(t, types.EventGameFinalized, evs[2].Name)
	assert.Equal(t, uint64(1), evs[2].GameID)

	// [1,4] [5,8] [9,10]
	require.Len(t, src.queries, 3)
	assert.Equal(t, uint64(8), src.queries[1].ToBlock.Uint64())
	assert.Equal(t, []common.Address{gameAddr}, src.queries[0].Addresses)
	assert.Len(t, src.queries[0].Topics[0], len(types.GameEvents))

	// nothing new
	n, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestPollStartsAtHead(t *testing.T) {
	src := &fakeLogs{head: 100}
	src.logs = []ethtypes.Log{eventLog(types.EventGameCreated, 50, 1, &player)}
	w, _, _ := setup(t, src, nil)

	n, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, uint64(101), w.Next())
	assert.Empty(t, src.queries)

	src.logs = append(src.logs, eventLog(types.EventGameFinalized, 102, 1, nil))
	src.head = 105
	n, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPollResumesAfterFailure(t *testing.T) {
	src := &fakeLogs{head: 10, failAt: 6}
	src.logs = []ethtypes.Log{
		eventLog(types.EventGameCreated, 2, 1, &player),
		eventLog(types.EventGameFinalized, 7, 1, nil),
	}
	w, sub, _ := setup(t, src, &types.Watcher{FromBlock: 1, MaxRange: 5})

	n, err := w.Poll(context.Background())
	assert.Equal(t, types.KindTransient, types.KindOf(err))
	assert.Equal(t, 1, n)
	assert.Equal(t, uint64(6), w.Next())

	src.failAt = 0
	n, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	evs := drain(sub, 2)
	require.Len(t, evs, 2)
	assert.Equal(t, types.EventGameCreated, evs[0].Name)
	assert.Equal(t, types.EventGameFinalized, evs[1].Name)
}

// busyClient 对指定游戏的事件返回超时
type busyClient struct {
	queue.Client
	busyGame uint64
	sent     []uint64
}

func (c *busyClient) Send(msg queue.Message) error {
	ev := msg.Data.(*types.GameEvent)
	if ev.GameID == c.busyGame {
		return types.ErrTimeout
	}
	c.sent = append(c.sent, ev.GameID)
	return c.Client.Send(msg)
}

func TestPollRetriesFailedPublish(t *testing.T) {
	src := &fakeLogs{head: 10}
	src.logs = []ethtypes.Log{
		eventLog(types.EventGameCreated, 2, 1, &player),
		eventLog(types.EventGameCreated, 7, 2, &player),
		eventLog(types.EventGameFinalized, 7, 3, nil),
		eventLog(types.EventGameFinalized, 9, 1, nil),
	}
	w, _, q := setup(t, src, &types.Watcher{FromBlock: 1, MaxRange: 5})
	client := &busyClient{Client: q.Client(), busyGame: 3}
	w.SetQueueClient(client)

	n, err := w.Poll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrTimeout))
	assert.Equal(t, types.KindTransient, types.KindOf(err))
	assert.Equal(t, 2, n)
	assert.Equal(t, uint64(7), w.Next())

	// 订阅者恢复后从区块 7 重读, 游戏 2 的事件会再发布一次
	client.busyGame = 0
	n, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, uint64(11), w.Next())
	assert.Equal(t, []uint64{1, 2, 2, 3, 1}, client.sent)
}

func TestPollWithoutClient(t *testing.T) {
	w := New(&fakeLogs{}, gameAddr, nil)
	_, err := w.Poll(context.Background())
	assert.True(t, errors.Is(err, types.ErrInvalidParam))
}

func TestStartClose(t *testing.T) {
	src := &fakeLogs{head: 5}
	src.logs = []ethtypes.Log{eventLog(types.EventGameCancelled, 5, 2, &player)}
	w, sub, _ := setup(t, src, &types.Watcher{FromBlock: 1, PollInterval: 1})
	w.Start(context.Background())
	evs := drain(sub, 1)
	w.Close()
	require.Len(t, evs, 1)
	assert.Equal(t, uint64(2), evs[0].GameID)
}
