// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package node 根据配置组装各个组件，cli 和 daemon 共用
package node

import (
	"context"
	"math/big"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/contract"
	"github.com/cognumbers/cognumbers/game"
	"github.com/cognumbers/cognumbers/inco"
	"github.com/cognumbers/cognumbers/registry"
	"github.com/cognumbers/cognumbers/resolver"
	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

var nlog = log.New("module", "node")

// Node every component built from one config.
// Without a private key only the read side is available: Client, Service and Orchestrator stay nil.
type Node struct {
	Cfg      *types.Config
	Eth      *ethclient.Client
	Address  common.Address
	Caller   *contract.Caller
	Registry *registry.Registry

	Client       *contract.Client
	Encrypter    *inco.Encrypter
	Decrypter    *inco.Decrypter
	Service      *game.Service
	Orchestrator *resolver.Orchestrator

	closers []func()
}

// Open dials the chain and the inco services named by cfg
func Open(ctx context.Context, cfg *types.Config) (*Node, error) {
	address, err := cfg.Chain.ContractAddress()
	if err != nil {
		return nil, err
	}
	eth, err := ethclient.DialContext(ctx, cfg.Chain.RPCAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", cfg.Chain.RPCAddr)
	}
	n := &Node{Cfg: cfg, Eth: eth, Address: address}
	n.closers = append(n.closers, eth.Close)

	n.Caller = contract.NewCaller(address, eth)
	if n.Registry, err = registry.New(n.Caller, cfg.Registry); err != nil {
		n.Close()
		return nil, err
	}
	if cfg.Chain.PrivateKey == "" {
		nlog.Info("no private key, read only", "contract", address.Hex())
		return n, nil
	}
	if err := n.openWriter(ctx); err != nil {
		n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) openWriter(ctx context.Context) error {
	cfg := n.Cfg
	key, err := contract.ParsePrivateKey(cfg.Chain.PrivateKey)
	if err != nil {
		return err
	}
	timeout := time.Duration(cfg.Chain.ReceiptTimeout) * time.Second
	n.Client, err = contract.NewClient(n.Address, n.Eth, key, big.NewInt(cfg.Chain.ChainID), timeout)
	if err != nil {
		return err
	}

	enc, err := inco.Dial(ctx, cfg.Inco.EncryptAddr)
	if err != nil {
		return errors.Wrapf(err, "dial encrypt %s", cfg.Inco.EncryptAddr)
	}
	n.closers = append(n.closers, enc.Close)
	dec := enc
	if cfg.Inco.AttestAddr != cfg.Inco.EncryptAddr {
		if dec, err = inco.Dial(ctx, cfg.Inco.AttestAddr); err != nil {
			return errors.Wrapf(err, "dial attest %s", cfg.Inco.AttestAddr)
		}
		n.closers = append(n.closers, dec.Close)
	}

	n.Encrypter = inco.NewEncrypter(enc, n.Address, cfg.Inco)
	n.Decrypter = inco.NewDecrypter(dec, inco.NewKeyCredential(key), cfg.Inco)
	n.Service = game.NewService(n.Client, n.Encrypter, cfg.Chain)
	n.Service.SetCache(n.Registry)
	n.Orchestrator = resolver.NewOrchestrator(n.Client, n.Decrypter)
	nlog.Info("node ready", "contract", n.Address.Hex(), "account", n.Client.Account().Hex())
	return nil
}

// Writable a wallet key is configured
func (n *Node) Writable() bool {
	return n.Client != nil
}

// RequireWriter error for commands that send transactions
func (n *Node) RequireWriter() error {
	if !n.Writable() {
		return errors.Wrapf(types.ErrNoAccount, "set %s or chain.privateKey", types.EnvPrivateKey)
	}
	return nil
}

// Close releases every connection, last opened first
func (n *Node) Close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		n.closers[i]()
	}
	n.closers = nil
}
