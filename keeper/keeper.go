// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package keeper resolves finalized games automatically
package keeper

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/registry"
	"github.com/cognumbers/cognumbers/resolver"
	"github.com/cognumbers/cognumbers/types"
)

var klog = log.New("module", "keeper")

// phase changes must not hold up a resolution
const publishTimeout = 100 * time.Millisecond

// Resolver *resolver.Orchestrator satisfies it
type Resolver interface {
	Resolve(ctx context.Context, gameID uint64) (*resolver.Result, error)
}

// Lister *registry.Registry satisfies it
type Lister interface {
	ListGames(ctx context.Context) ([]*types.Game, error)
}

// PhaseChange published on types.TopicResolution
type PhaseChange struct {
	AttemptID string
	GameID    uint64
	Phase     resolver.Phase
}

// Keeper subscribes to GameFinalized and runs one resolution per game
type Keeper struct {
	res         Resolver
	lister      Lister
	scanOnStart bool
	client      queue.Client
	funcs       queue.FuncMap

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New keeper
func New(res Resolver, lister Lister, cfg *types.Keeper) *Keeper {
	k := &Keeper{res: res, lister: lister}
	if cfg != nil {
		k.scanOnStart = cfg.ScanOnStart
	}
	k.funcs.Init()
	k.funcs.Register(types.EventGameFinalized, k.onFinalized)
	return k
}

// SetQueueClient queue.Module
func (k *Keeper) SetQueueClient(client queue.Client) {
	k.client = client
	client.Sub(k.funcs.Topics()...)
}

// Observer publishes every phase change onto the queue, install it with Orchestrator.SetObserver
func Observer(client queue.Client) resolver.Observer {
	return func(attemptID string, gameID uint64, phase resolver.Phase) {
		msg := client.NewMessage(types.TopicResolution, &PhaseChange{AttemptID: attemptID, GameID: gameID, Phase: phase})
		if err := client.SendTimeout(msg, publishTimeout); err != nil {
			klog.Debug("publish phase", "attempt", attemptID, "phase", phase, "err", err)
		}
	}
}

// Start begins consuming; with scanOnStart every game already Calculating is resolved too
func (k *Keeper) Start(ctx context.Context) {
	k.ctx, k.cancel = context.WithCancel(ctx)
	if k.scanOnStart {
		k.wg.Add(1)
		go func() {
			defer k.wg.Done()
			if err := k.Scan(k.ctx); err != nil {
				klog.Error("scan", "err", err)
			}
		}()
	}
	if k.client == nil {
		return
	}
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		for msg := range k.client.Recv() {
			msg := msg
			ok, err := k.funcs.Process(&msg)
			if !ok {
				klog.Debug("unhandled message", "topic", msg.Topic, "id", msg.ID)
			} else if err != nil {
				klog.Error("process", "topic", msg.Topic, "id", msg.ID, "err", err)
			}
		}
	}()
}

func (k *Keeper) onFinalized(msg *queue.Message) error {
	ev, ok := msg.Data.(*types.GameEvent)
	if !ok {
		return types.ErrInvalidParam
	}
	klog.Info("game finalized", "game", ev.GameID, "block", ev.BlockNumber)
	k.spawn(ev.GameID)
	return nil
}

// Scan resolves every game currently Calculating
func (k *Keeper) Scan(ctx context.Context) error {
	games, err := k.lister.ListGames(ctx)
	if err != nil {
		return err
	}
	pending := registry.Filter(games, types.StatusCalculating)
	klog.Info("scan", "games", len(games), "calculating", len(pending))
	for _, g := range pending {
		k.spawn(g.ID)
	}
	return nil
}

func (k *Keeper) spawn(gameID uint64) {
	k.wg.Add(1)
	go func() {
		defer k.wg.Done()
		k.resolve(gameID)
	}()
}

func (k *Keeper) resolve(gameID uint64) {
	ctx := k.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := k.res.Resolve(ctx, gameID)
	switch {
	case err == nil:
		klog.Info("resolved", "game", gameID, "attempt", res.AttemptID, "tx", res.Receipt.TxHash.Hex())
	case errors.Is(err, types.ErrResolutionInFlight):
		klog.Debug("resolution already running", "game", gameID)
	case errors.Is(err, types.ErrGameNotCalculating):
		klog.Info("game no longer calculating", "game", gameID)
	default:
		klog.Error("resolve", "game", gameID, "kind", types.KindOf(err), "retryable", types.Retryable(err), "err", err)
	}
}

// Close queue.Module
func (k *Keeper) Close() {
	if k.cancel != nil {
		k.cancel()
	}
	if k.client != nil {
		k.client.Close()
	}
	k.wg.Wait()
}
