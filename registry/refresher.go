// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package registry

import (
	"sync"

	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/types"
)

// Refresher drops cached games named by watched contract events
type Refresher struct {
	r      *Registry
	client queue.Client
	wg     sync.WaitGroup
}

// NewRefresher refresher for r
func NewRefresher(r *Registry) *Refresher {
	return &Refresher{r: r}
}

// SetQueueClient queue.Module, subscribes and starts consuming
func (f *Refresher) SetQueueClient(client queue.Client) {
	f.client = client
	client.Sub(types.GameEvents...)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		for msg := range client.Recv() {
			ev, ok := msg.Data.(*types.GameEvent)
			if !ok {
				continue
			}
			f.r.Invalidate(ev.GameID)
			rlog.Debug("invalidate", "game", ev.GameID, "event", ev.Name)
		}
	}()
}

// Close queue.Module
func (f *Refresher) Close() {
	if f.client != nil {
		f.client.Close()
	}
	f.wg.Wait()
}
