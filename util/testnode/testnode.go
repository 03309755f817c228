// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package testnode 提供一个内存中的合约和网关，用于单元测试和集成测试。
// Contract 按合约的规则维护游戏状态并产生事件日志，Gateway 通过进程内 rpc 提供加解密服务。
package testnode

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/contract"
	"github.com/cognumbers/cognumbers/inco"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

var chainlog = log.New("module", "testnode")

// DefaultAddress contract address used by New
var DefaultAddress = common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013")

// GenesisTime clock of a new contract
var GenesisTime = time.Unix(1700000000, 0)

// Mock contract, gateway and an in-process rpc connection to the gateway
type Mock struct {
	Contract *Contract
	Gateway  *inco.LocalGateway
	RPC      *inco.Client
	Inco     *types.Inco
	server   *rpc.Server
}

// New mock whose contract is owned by owner
func New(owner common.Address) (*Mock, error) {
	attester, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	gw := inco.NewLocalGateway(attester, types.CiphertextVersion)
	srv, err := inco.NewServer(gw)
	if err != nil {
		return nil, err
	}
	return &Mock{
		Contract: NewContract(DefaultAddress, owner, gw.Attester()),
		Gateway:  gw,
		RPC:      inco.NewClient(rpc.DialInProc(srv)),
		Inco: &types.Inco{
			Version:     types.CiphertextVersion,
			HandleType:  types.HandleTypeEuint256,
			MaxAttempts: 5,
			BaseDelay:   10,
			Multiplier:  1.5,
		},
		server: srv,
	}, nil
}

// Close stops the gateway
func (m *Mock) Close() {
	m.RPC.Close()
	m.server.Stop()
}

// Encrypter encrypter bound to the mock contract
func (m *Mock) Encrypter() *inco.Encrypter {
	return inco.NewEncrypter(m.RPC, m.Contract.Address(), m.Inco)
}

// Decrypter decrypter signing with key, the key's account may reveal every handle of the contract
func (m *Mock) Decrypter(key *ecdsa.PrivateKey) *inco.Decrypter {
	cred := inco.NewKeyCredential(key)
	m.Gateway.AllowReader(m.Contract.Address(), cred.Address())
	return inco.NewDecrypter(m.RPC, cred, m.Inco)
}

// Contract in-memory game contract
type Contract struct {
	mu       sync.Mutex
	address  common.Address
	owner    common.Address
	attester common.Address
	now      time.Time
	block    uint64
	games    []*types.Game
	players  map[uint64][]common.Address
	handles  map[uint64]map[common.Address]types.Handle
	claimed  map[uint64]map[common.Address]bool
	logs     []ethtypes.Log
}

// NewContract empty contract trusting attester signatures
func NewContract(address, owner, attester common.Address) *Contract {
	return &Contract{
		address:  address,
		owner:    owner,
		attester: attester,
		now:      GenesisTime,
		block:    1,
		players:  make(map[uint64][]common.Address),
		handles:  make(map[uint64]map[common.Address]types.Handle),
		claimed:  make(map[uint64]map[common.Address]bool),
	}
}

// Address contract address
func (c *Contract) Address() common.Address {
	return c.address
}

// Now block time
func (c *Contract) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the block time forward
func (c *Contract) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// As view of the contract whose writes are signed by account
func (c *Contract) As(account common.Address) *Account {
	return &Account{c: c, account: account}
}

// BlockNumber watcher.LogSource
func (c *Contract) BlockNumber(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.block, nil
}

// FilterLogs watcher.LogSource, honours the block range, addresses and topic0
func (c *Contract) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]ethtypes.Log, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []ethtypes.Log
	for _, l := range c.logs {
		if q.FromBlock != nil && l.BlockNumber < q.FromBlock.Uint64() {
			continue
		}
		if q.ToBlock != nil && l.BlockNumber > q.ToBlock.Uint64() {
			continue
		}
		if len(q.Addresses) > 0 && !containsAddress(q.Addresses, l.Address) {
			continue
		}
		if len(q.Topics) > 0 && len(q.Topics[0]) > 0 && !containsHash(q.Topics[0], l.Topics[0]) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// Abandon Calculating -> Refunded, the path taken when a game can never be resolved
func (c *Contract) Abandon(gameID uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	g, err := c.game(gameID)
	if err != nil {
		return err
	}
	if g.Status != types.StatusCalculating {
		return revert(gameID, "game not calculating")
	}
	g.Status = types.StatusRefunded
	c.tx()
	c.emit(types.EventRefundsInitiated, gameID, nil)
	return nil
}

func containsAddress(list []common.Address, a common.Address) bool {
	for _, x := range list {
		if x == a {
			return true
		}
	}
	return false
}

func containsHash(list []common.Hash, h common.Hash) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

func revert(gameID uint64, reason string) error {
	return types.NewError(types.KindReverted, fmt.Sprintf("game %d", gameID), errors.Wrap(types.ErrTxReverted, reason))
}

func (c *Contract) game(gameID uint64) (*types.Game, error) {
	if gameID >= uint64(len(c.games)) {
		return nil, types.NewError(types.KindValidation, "", errors.Wrapf(types.ErrGameNotFound, "game %d", gameID))
	}
	return c.games[gameID], nil
}

// tx mines one block, call with mu held
func (c *Contract) tx() *types.Receipt {
	c.block++
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], c.block)
	return &types.Receipt{TxHash: crypto.Keccak256Hash(c.address.Bytes(), b[:]), BlockNumber: c.block, GasUsed: 21000}
}

// emit appends a log in the current block, call with mu held
func (c *Contract) emit(name string, gameID uint64, account *common.Address) {
	topics := []common.Hash{
		contract.ParsedABI.Events[name].ID,
		common.BigToHash(new(big.Int).SetUint64(gameID)),
	}
	if account != nil {
		topics = append(topics, common.BytesToHash(account.Bytes()))
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], c.block)
	c.logs = append(c.logs, ethtypes.Log{
		Address:     c.address,
		Topics:      topics,
		BlockNumber: c.block,
		TxHash:      crypto.Keccak256Hash(c.address.Bytes(), b[:]),
		Index:       uint(len(c.logs)),
	})
	chainlog.Debug("event", "name", name, "game", gameID, "block", c.block)
}

func (c *Contract) joined(gameID uint64, player common.Address) bool {
	_, ok := c.handles[gameID][player]
	return ok
}
