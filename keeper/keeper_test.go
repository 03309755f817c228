// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package keeper

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/resolver"
	"github.com/cognumbers/cognumbers/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	mu    sync.Mutex
	calls []uint64
	err   error
	done  chan uint64
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{done: make(chan uint64, 16)}
}

func (f *fakeResolver) Resolve(ctx context.Context, gameID uint64) (*resolver.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, gameID)
	err := f.err
	f.mu.Unlock()
	defer func() { f.done <- gameID }()
	if err != nil {
		return nil, err
	}
	return &resolver.Result{GameID: gameID, Phase: resolver.Done, Receipt: &types.Receipt{}}, nil
}

func (f *fakeResolver) wait(t *testing.T, n int) []uint64 {
	var ids []uint64
	for i := 0; i < n; i++ {
		select {
		case id := <-f.done:
			ids = append(ids, id)
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d resolutions", len(ids), n)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type fakeLister []*types.Game

func (f fakeLister) ListGames(ctx context.Context) ([]*types.Game, error) {
	return f, nil
}

func TestResolvesOnFinalized(t *testing.T) {
	q := queue.New("test")
	defer q.Close()
	res := newFakeResolver()
	k := New(res, fakeLister(nil), &types.Keeper{Enable: true})
	k.SetQueueClient(q.Client())
	k.Start(context.Background())
	defer k.Close()
	assert.Equal(t, 1, q.Subscribers(types.EventGameFinalized))

	pub := q.Client()
	require.NoError(t, pub.Send(pub.NewMessage(types.EventGameFinalized, &types.GameEvent{Name: types.EventGameFinalized, GameID: 4})))
	require.NoError(t, pub.Send(pub.NewMessage(types.EventGameCreated, &types.GameEvent{Name: types.EventGameCreated, GameID: 5})))
	require.NoError(t, pub.Send(pub.NewMessage(types.EventGameFinalized, &types.GameEvent{Name: types.EventGameFinalized, GameID: 6})))

	assert.Equal(t, []uint64{4, 6}, res.wait(t, 2))
}

func TestScanOnStart(t *testing.T) {
	games := fakeLister{
		{ID: 3, Status: types.StatusCalculating},
		{ID: 2, Status: types.StatusOpen},
		{ID: 1, Status: types.StatusCalculating},
		{ID: 0, Status: types.StatusFinished},
	}
	res := newFakeResolver()
	res.err = types.NewError(types.KindValidation, "game", types.ErrResolutionInFlight)
	k := New(res, games, &types.Keeper{ScanOnStart: true})
	k.Start(context.Background())
	assert.Equal(t, []uint64{1, 3}, res.wait(t, 2))
	k.Close()
}

func TestBadMessage(t *testing.T) {
	k := New(newFakeResolver(), fakeLister(nil), nil)
	ok, err := k.funcs.Process(&queue.Message{Topic: types.EventGameFinalized, Data: "7"})
	assert.True(t, ok)
	assert.Equal(t, types.ErrInvalidParam, err)
}

func TestObserverPublishesPhases(t *testing.T) {
	q := queue.New("test")
	defer q.Close()
	sub := q.Client()
	sub.Sub(types.TopicResolution)

	fn := Observer(q.Client())
	fn("a1", 9, resolver.Decrypting)
	fn("a1", 9, resolver.Done)

	for _, want := range []resolver.Phase{resolver.Decrypting, resolver.Done} {
		select {
		case msg := <-sub.Recv():
			pc := msg.Data.(*PhaseChange)
			assert.Equal(t, "a1", pc.AttemptID)
			assert.Equal(t, uint64(9), pc.GameID)
			assert.Equal(t, want, pc.Phase)
		case <-time.After(time.Second):
			t.Fatal("no phase change")
		}
	}
}
