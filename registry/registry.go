// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package registry 游戏列表读取与缓存
package registry

import (
	"context"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/metrics"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var rlog = log.New("module", "registry")

// decode modes
const (
	ModeStructured = "structured"
	ModeRaw        = "raw"
	ModeAuto       = "auto"
)

const defaultConcurrency = 16

// Source contract reads, *contract.Caller satisfies it
type Source interface {
	GameIDCounter(ctx context.Context) (uint64, error)
	GetGame(ctx context.Context, gameID uint64) (*types.Game, error)
	GetGameRaw(ctx context.Context, gameID uint64) (*types.Game, error)
	GetPlayers(ctx context.Context, gameID uint64) ([]common.Address, error)
	HasJoined(ctx context.Context, gameID uint64, player common.Address) (bool, error)
	CanClaimRefund(ctx context.Context, gameID uint64, player common.Address) (bool, error)
}

// Registry reconstructs games from the contract.
// Its cache is advisory: only terminal games are served from it, and writers use Fresh.
type Registry struct {
	src   Source
	mode  string
	limit int
	cache *lru.Cache
}

// New registry over src
func New(src Source, cfg *types.Registry) (*Registry, error) {
	r := &Registry{src: src, mode: ModeAuto, limit: defaultConcurrency}
	size := 1024
	if cfg != nil {
		if cfg.DecodeMode != "" {
			r.mode = cfg.DecodeMode
		}
		if cfg.Concurrency > 0 {
			r.limit = cfg.Concurrency
		}
		if cfg.CacheSize > 0 {
			size = cfg.CacheSize
		}
	}
	switch r.mode {
	case ModeStructured, ModeRaw, ModeAuto:
	default:
		return nil, errors.Wrapf(types.ErrInvalidParam, "decode mode %q", r.mode)
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	r.cache = cache
	return r, nil
}

// Count number of games ever created
func (r *Registry) Count(ctx context.Context) (uint64, error) {
	return r.src.GameIDCounter(ctx)
}

func (r *Registry) read(ctx context.Context, gameID uint64) (*types.Game, error) {
	metrics.RegistryReads.Mark(1)
	switch r.mode {
	case ModeStructured:
		return r.src.GetGame(ctx, gameID)
	case ModeRaw:
		return r.src.GetGameRaw(ctx, gameID)
	}
	g, err := r.src.GetGame(ctx, gameID)
	if err != nil && types.KindOf(err) == types.KindIntegrity {
		rlog.Debug("structured decode failed, falling back to raw", "game", gameID, "err", err)
		return r.src.GetGameRaw(ctx, gameID)
	}
	return g, err
}

// Game cached copy for terminal games, otherwise a fresh read
func (r *Registry) Game(ctx context.Context, gameID uint64) (*types.Game, error) {
	if v, ok := r.cache.Get(gameID); ok {
		metrics.CacheHits.Inc(1)
		return v.(*types.Game).Copy(), nil
	}
	return r.Fresh(ctx, gameID)
}

// Fresh always reads the contract and refreshes the cache
func (r *Registry) Fresh(ctx context.Context, gameID uint64) (*types.Game, error) {
	g, err := r.read(ctx, gameID)
	if err != nil {
		return nil, err
	}
	r.store(g)
	return g, nil
}

func (r *Registry) store(g *types.Game) {
	if err := g.CheckPrizePool(); err != nil {
		rlog.Warn("prize pool", "game", g.ID, "pool", g.PrizePool, "expected", g.ExpectedPrizePool(), "err", err)
	}
	if g.IsTerminal() {
		r.cache.Add(g.ID, g.Copy())
		return
	}
	r.cache.Remove(g.ID)
}

// Invalidate drops the cached copy of gameID
func (r *Registry) Invalidate(gameID uint64) {
	r.cache.Remove(gameID)
}

// Purge drops every cached game
func (r *Registry) Purge() {
	r.cache.Purge()
}

// ListGames reads every game in parallel, most recent first.
// A game whose read fails is logged and left out, the rest are still returned.
func (r *Registry) ListGames(ctx context.Context) ([]*types.Game, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return nil, err
	}
	games := make([]*types.Game, n)
	var eg errgroup.Group
	eg.SetLimit(r.limit)
	for i := uint64(0); i < n; i++ {
		id := i
		eg.Go(func() error {
			g, err := r.Game(ctx, id)
			if err != nil {
				metrics.RegistryFailures.Mark(1)
				rlog.Error("read game", "game", id, "kind", types.KindOf(err), "err", err)
				return nil
			}
			games[id] = g
			return nil
		})
	}
	eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*types.Game, 0, n)
	for i := len(games) - 1; i >= 0; i-- {
		if games[i] != nil {
			out = append(out, games[i])
		}
	}
	if omitted := int(n) - len(out); omitted > 0 {
		rlog.Warn("games omitted from listing", "total", n, "omitted", omitted)
	}
	return out, nil
}

// GameDetail game, its players and the view of account, a zero account skips the per-account reads
func (r *Registry) GameDetail(ctx context.Context, gameID uint64, account common.Address) (*types.GameDetail, error) {
	g, err := r.Game(ctx, gameID)
	if err != nil {
		return nil, err
	}
	players, err := r.src.GetPlayers(ctx, gameID)
	if err != nil {
		return nil, err
	}
	d := &types.GameDetail{Game: g, Players: players}
	if account == (common.Address{}) {
		return d, nil
	}
	if d.HasJoined, err = r.src.HasJoined(ctx, gameID, account); err != nil {
		return nil, err
	}
	if d.CanClaimRefund, err = r.src.CanClaimRefund(ctx, gameID, account); err != nil {
		return nil, err
	}
	return d, nil
}

// Filter games whose status is one of statuses, all games when none given
func Filter(games []*types.Game, statuses ...types.Status) []*types.Game {
	if len(statuses) == 0 {
		return games
	}
	out := make([]*types.Game, 0, len(games))
	for _, g := range games {
		for _, s := range statuses {
			if g.Status == s {
				out = append(out, g)
				break
			}
		}
	}
	return out
}
