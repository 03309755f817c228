// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package watcher 轮询合约日志，把事件按名字发布到 queue
package watcher

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/contract"
	"github.com/cognumbers/cognumbers/metrics"
	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

var wlog = log.New("module", "watcher")

const (
	defaultPollInterval = 4 * time.Second
	defaultMaxRange     = 2000
)

// LogSource *ethclient.Client satisfies it
type LogSource interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error)
}

// Watcher publishes every watched contract event onto the queue topic named after it
type Watcher struct {
	src      LogSource
	address  common.Address
	client   queue.Client
	interval time.Duration
	maxRange uint64
	topics   [][]common.Hash

	mu      sync.Mutex
	next    uint64
	started bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New watcher for the contract at address
func New(src LogSource, address common.Address, cfg *types.Watcher) *Watcher {
	w := &Watcher{
		src:      src,
		address:  address,
		interval: defaultPollInterval,
		maxRange: defaultMaxRange,
		topics:   contract.EventTopics(),
	}
	if cfg != nil {
		if cfg.PollInterval > 0 {
			w.interval = cfg.PollDuration()
		}
		if cfg.MaxRange > 0 {
			w.maxRange = cfg.MaxRange
		}
		if cfg.FromBlock > 0 {
			w.next = cfg.FromBlock
			w.started = true
		}
	}
	return w
}

// SetQueueClient queue.Module
func (w *Watcher) SetQueueClient(client queue.Client) {
	w.client = client
}

// Next first block of the next poll
func (w *Watcher) Next() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.next
}

// Poll 读取 [next, head] 之间的日志并发布，返回发布的事件数
// 发布失败时 next 停在失败事件所在的区块, 下次从该区块重读, 同一区块内已发布的事件可能重复
func (w *Watcher) Poll(ctx context.Context) (int, error) {
	if w.client == nil {
		return 0, errors.Wrap(types.ErrInvalidParam, "watcher without queue client")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	head, err := w.src.BlockNumber(ctx)
	if err != nil {
		return 0, types.NewError(types.KindTransient, "blockNumber", err)
	}
	metrics.WatcherHead.Update(int64(head))
	if !w.started {
		// 没有配置起始高度时只关注新事件
		w.next = head + 1
		w.started = true
		wlog.Info("watching from head", "block", w.next)
		return 0, nil
	}
	published := 0
	for w.next <= head {
		to := w.next + w.maxRange - 1
		if to > head {
			to = head
		}
		n, resume, err := w.scan(ctx, w.next, to)
		published += n
		w.next = resume
		if err != nil {
			return published, err
		}
	}
	return published, nil
}

// scan 返回发布数和下一次扫描的起始区块
func (w *Watcher) scan(ctx context.Context, from, to uint64) (int, uint64, error) {
	logs, err := w.src.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{w.address},
		Topics:    w.topics,
	})
	if err != nil {
		return 0, from, types.NewError(types.KindTransient, "filterLogs", errors.Wrapf(err, "blocks %d-%d", from, to))
	}
	n := 0
	for _, l := range logs {
		if l.Removed {
			continue
		}
		ev, err := contract.ParseGameEvent(l)
		if err != nil {
			wlog.Debug("skip log", "tx", l.TxHash, "index", l.Index, "err", err)
			continue
		}
		if err := w.client.Send(w.client.NewMessage(ev.Name, ev)); err != nil {
			wlog.Error("publish", "event", ev.Name, "game", ev.GameID, "block", l.BlockNumber, "err", err)
			return n, l.BlockNumber, types.NewError(types.KindTransient, ev.Name, errors.Wrapf(err, "publish game %d", ev.GameID))
		}
		metrics.WatcherEvents.Mark(1)
		n++
	}
	wlog.Debug("scanned", "from", from, "to", to, "logs", len(logs), "published", n)
	return n, to + 1, nil
}

// Start polls until Close
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			if _, err := w.Poll(ctx); err != nil && ctx.Err() == nil {
				wlog.Error("poll", "next", w.Next(), "err", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// Close queue.Module
func (w *Watcher) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	if w.client != nil {
		w.client.Close()
	}
}
