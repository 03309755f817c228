// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package resolver 游戏结算: 读取密文句柄, 可证明解密, 计算赢家, 链上提交
package resolver

import (
	"context"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/game"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var rlog = log.New("module", "resolver")

// Phase step of one resolution attempt
type Phase int

// resolution phases, strictly sequential
const (
	FetchingHandles Phase = iota
	Decrypting
	Computing
	Submitting
	Done
	Failed
)

var phaseNames = []string{"FetchingHandles", "Decrypting", "Computing", "Submitting", "Done", "Failed"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "Phase(" + strconv.Itoa(int(p)) + ")"
	}
	return phaseNames[p]
}

// Chain contract reads and the resolveWinner write
type Chain interface {
	GetGame(ctx context.Context, gameID uint64) (*types.Game, error)
	GetPlayers(ctx context.Context, gameID uint64) ([]common.Address, error)
	GetPlayerChoiceHandle(ctx context.Context, gameID uint64, player common.Address) (types.Handle, error)
	ResolveWinner(ctx context.Context, gameID uint64, values []*big.Int, signatures [][][]byte) (*types.Receipt, error)
}

// BatchDecrypter atomic attested decryption, *inco.Decrypter satisfies it
type BatchDecrypter interface {
	DecryptBatch(ctx context.Context, handles []types.Handle) ([]*types.AttestedValue, error)
}

// Observer is told about every phase an attempt enters
type Observer func(attemptID string, gameID uint64, phase Phase)

// Result of one attempt. Revealed choices only live here, nothing is persisted.
type Result struct {
	AttemptID string
	GameID    uint64
	Phase     Phase
	// phase the attempt failed in, meaningful when Phase == Failed
	FailedIn  Phase
	Players   []common.Address
	Handles   []types.Handle
	Revealed  []*types.RevealedChoice
	Predicted Outcome
	Receipt   *types.Receipt
	// game re-read after inclusion, the contract is authoritative for the winner
	Final *types.Game
	Err   error
}

// Orchestrator runs resolution attempts
type Orchestrator struct {
	chain    Chain
	dec      BatchDecrypter
	metrics  *Metrics
	mu       sync.Mutex
	inflight map[uint64]string
	observer Observer
}

// NewOrchestrator orchestrator over chain and dec
func NewOrchestrator(chain Chain, dec BatchDecrypter) *Orchestrator {
	return &Orchestrator{
		chain:    chain,
		dec:      dec,
		metrics:  NewMetrics(),
		inflight: make(map[uint64]string),
	}
}

// SetObserver installs the phase observer, nil removes it
func (o *Orchestrator) SetObserver(fn Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observer = fn
}

// Metrics prometheus collectors
func (o *Orchestrator) Metrics() *Metrics {
	return o.metrics
}

// InFlight attempt id running for gameID, empty when idle
func (o *Orchestrator) InFlight(gameID uint64) string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inflight[gameID]
}

// acquire only guards this process; concurrent resolvers elsewhere are arbitrated by the contract status guard
func (o *Orchestrator) acquire(gameID uint64, id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.inflight[gameID]; ok {
		return false
	}
	o.inflight[gameID] = id
	o.metrics.InFlight.Inc()
	return true
}

func (o *Orchestrator) release(gameID uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, gameID)
	o.metrics.InFlight.Dec()
}

func (o *Orchestrator) enter(res *Result, phase Phase) {
	res.Phase = phase
	rlog.Debug("resolution phase", "attempt", res.AttemptID, "game", res.GameID, "phase", phase)
	o.mu.Lock()
	fn := o.observer
	o.mu.Unlock()
	if fn != nil {
		fn(res.AttemptID, res.GameID, phase)
	}
}

func (o *Orchestrator) fail(res *Result, err error) (*Result, error) {
	res.FailedIn = res.Phase
	res.Err = err
	o.metrics.Failures.WithLabelValues(res.FailedIn.String(), types.KindOf(err).String()).Inc()
	rlog.Error("resolution failed", "attempt", res.AttemptID, "game", res.GameID, "phase", res.FailedIn, "err", err)
	o.enter(res, Failed)
	return res, err
}

// Resolve runs one attempt for gameID: FetchingHandles, Decrypting, Computing, Submitting, Done.
// Any failure before Submitting has no on-chain effect, so the whole attempt may simply be rerun.
// Once Submitting starts the transaction is awaited even if ctx is cancelled.
func (o *Orchestrator) Resolve(ctx context.Context, gameID uint64) (*Result, error) {
	res := &Result{AttemptID: uuid.New().String(), GameID: gameID}
	if !o.acquire(gameID, res.AttemptID) {
		return nil, types.NewError(types.KindValidation, gameKey(gameID),
			errors.Wrapf(types.ErrResolutionInFlight, "attempt %s", o.InFlight(gameID)))
	}
	defer o.release(gameID)

	begin := time.Now()
	defer func() {
		o.metrics.Attempts.WithLabelValues(res.Phase.String()).Inc()
		o.metrics.Duration.Observe(time.Since(begin).Seconds())
	}()
	rlog.Info("resolution start", "attempt", res.AttemptID, "game", gameID)

	o.enter(res, FetchingHandles)
	if err := o.fetchHandles(ctx, res); err != nil {
		return o.fail(res, err)
	}

	o.enter(res, Decrypting)
	if err := o.decrypt(ctx, res); err != nil {
		return o.fail(res, err)
	}

	o.enter(res, Computing)
	res.Predicted = MinimumUniqueWinner(res.Revealed)
	if res.Predicted.HasWinner() {
		rlog.Info("predicted winner", "attempt", res.AttemptID, "game", gameID,
			"winner", res.Predicted.Winner.Hex(), "number", res.Predicted.Value)
	} else {
		rlog.Info("predicted no winner", "attempt", res.AttemptID, "game", gameID, "players", len(res.Players))
	}

	if err := ctx.Err(); err != nil {
		return o.fail(res, types.NewError(types.KindTransient, gameKey(gameID), errors.Wrap(err, "abandoned before submit")))
	}
	// 提交前重新读取, 解密期间游戏可能已进入 Refunded
	g, err := o.chain.GetGame(ctx, gameID)
	if err != nil {
		return o.fail(res, err)
	}
	if err := game.CheckResolve(g, int(g.PlayerCount), len(res.Revealed)); err != nil {
		return o.fail(res, err)
	}
	// 无赢家也必须提交, 合约需要全部解密值才能离开 Calculating
	o.enter(res, Submitting)
	values := make([]*big.Int, len(res.Revealed))
	sigs := make([][][]byte, len(res.Revealed))
	for i, rc := range res.Revealed {
		values[i] = rc.Value
		sigs[i] = rc.Signatures
	}
	rcpt, err := o.chain.ResolveWinner(context.WithoutCancel(ctx), gameID, values, sigs)
	res.Receipt = rcpt
	if err != nil {
		return o.fail(res, err)
	}

	o.enter(res, Done)
	o.confirm(ctx, res)
	return res, nil
}

func (o *Orchestrator) fetchHandles(ctx context.Context, res *Result) error {
	g, err := o.chain.GetGame(ctx, res.GameID)
	if err != nil {
		return err
	}
	if err := game.CheckResolvable(g); err != nil {
		return err
	}
	players, err := o.chain.GetPlayers(ctx, res.GameID)
	if err != nil {
		return err
	}
	if len(players) == 0 {
		return types.NewError(types.KindIntegrity, gameKey(res.GameID), types.ErrNoPlayers)
	}
	if uint64(len(players)) != g.PlayerCount {
		return types.NewError(types.KindIntegrity, gameKey(res.GameID),
			errors.Wrapf(types.ErrBatchLength, "playerCount %d, getPlayers returned %d", g.PlayerCount, len(players)))
	}
	handles := make([]types.Handle, len(players))
	for i, p := range players {
		h, err := o.chain.GetPlayerChoiceHandle(ctx, res.GameID, p)
		if err != nil {
			return err
		}
		// 跳过任何玩家都会改变唯一性的判断
		if h.IsZero() {
			return types.NewError(types.KindIntegrity, p.Hex(), errors.Wrapf(types.ErrZeroHandle, "game %d has no choice recorded", res.GameID))
		}
		handles[i] = h
	}
	res.Players = players
	res.Handles = handles
	return nil
}

func (o *Orchestrator) decrypt(ctx context.Context, res *Result) error {
	vals, err := o.dec.DecryptBatch(ctx, res.Handles)
	if err != nil {
		return err
	}
	if len(vals) != len(res.Handles) {
		return types.NewError(types.KindIntegrity, gameKey(res.GameID),
			errors.Wrapf(types.ErrBatchLength, "want %d got %d", len(res.Handles), len(vals)))
	}
	revealed := make([]*types.RevealedChoice, len(vals))
	for i, v := range vals {
		if v == nil || v.Value == nil {
			return types.NewError(types.KindIntegrity, res.Players[i].Hex(), types.ErrMissingValue)
		}
		if !v.Value.IsUint64() || v.Value.Uint64() < types.MinNumber || v.Value.Uint64() > types.MaxNumber {
			rlog.Warn("decrypted value out of range", "attempt", res.AttemptID, "player", res.Players[i].Hex(), "value", v.Value)
		}
		revealed[i] = &types.RevealedChoice{
			Player:     res.Players[i],
			Handle:     res.Handles[i],
			Value:      v.Value,
			Signatures: v.Signatures,
		}
	}
	res.Revealed = revealed
	return nil
}

// confirm re-reads the settled game, a read failure does not undo Done
func (o *Orchestrator) confirm(ctx context.Context, res *Result) {
	g, err := o.chain.GetGame(context.WithoutCancel(ctx), res.GameID)
	if err != nil {
		rlog.Warn("re-read after resolve", "attempt", res.AttemptID, "game", res.GameID, "err", err)
		return
	}
	res.Final = g
	if g.Winner != res.Predicted.Winner {
		rlog.Warn("on-chain winner differs from prediction", "attempt", res.AttemptID, "game", res.GameID,
			"chain", g.Winner.Hex(), "predicted", res.Predicted.Winner.Hex())
		return
	}
	rlog.Info("resolution done", "attempt", res.AttemptID, "game", res.GameID, "status", g.Status,
		"winner", g.Winner.Hex(), "tx", res.Receipt.TxHash.Hex())
}

func gameKey(gameID uint64) string {
	return "game " + strconv.FormatUint(gameID, 10)
}
