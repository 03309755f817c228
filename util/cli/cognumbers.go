// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli RunCognumbers 加载各个模块，组合成 keeper daemon
//模块之间由消息队列驱动:
//watcher 发布合约事件, registry 刷新缓存, keeper 自动结算
package cli

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	clog "github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/common/version"
	"github.com/cognumbers/cognumbers/inco"
	"github.com/cognumbers/cognumbers/keeper"
	"github.com/cognumbers/cognumbers/metrics"
	"github.com/cognumbers/cognumbers/node"
	"github.com/cognumbers/cognumbers/queue"
	"github.com/cognumbers/cognumbers/registry"
	"github.com/cognumbers/cognumbers/types"
	"github.com/cognumbers/cognumbers/watcher"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
)

var (
	configPath = flag.String("f", "", "configfile")
	versionCmd = flag.Bool("v", false, "version")
)

var log = clog.New("module", "main")

//RunCognumbers : run the keeper daemon
func RunCognumbers(name string) {
	flag.Parse()
	if *versionCmd {
		fmt.Println(version.GetVersion())
		return
	}
	if *configPath == "" {
		if name == "" {
			*configPath = "cognumbers.toml"
		} else {
			*configPath = name + ".toml"
		}
	}
	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env")
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		panic(err)
	}
	//set file log
	clog.SetFileLog(cfg.Log)
	defer clog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//set watching
	go func() {
		t := time.NewTicker(10 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				watching()
			}
		}
	}()

	if cfg.Inco.LocalGateway != "" {
		if err := startLocalGateway(ctx, cfg.Inco); err != nil {
			panic(err)
		}
	}

	log.Info(cfg.Title + " version:" + version.GetVersion())
	n, err := node.Open(ctx, cfg)
	if err != nil {
		panic(err)
	}
	defer n.Close()

	var cs []metrics.Collector
	if n.Writable() {
		cs = append(cs, n.Orchestrator.Metrics())
	}
	metrics.StartMetrics(ctx, cfg.Metrics, metrics.NewRegistry(version.GetVersion(), cs...))

	log.Info("loading queue")
	q := queue.New("channel")

	log.Info("loading registry refresher")
	refresher := registry.NewRefresher(n.Registry)
	refresher.SetQueueClient(q.Client())

	var keep *keeper.Keeper
	switch {
	case !cfg.Keeper.Enable:
		log.Info("keeper disabled")
	case !n.Writable():
		log.Warn("keeper needs a private key", "env", types.EnvPrivateKey)
	default:
		log.Info("loading keeper module")
		keep = keeper.New(n.Orchestrator, n.Registry, cfg.Keeper)
		keep.SetQueueClient(q.Client())
		n.Orchestrator.SetObserver(keeper.Observer(q.Client()))
		keep.Start(ctx)
	}

	var watch *watcher.Watcher
	if cfg.Watcher.Enable {
		log.Info("loading watcher module")
		watch = watcher.New(n.Eth, n.Address, cfg.Watcher)
		watch.SetQueueClient(q.Client())
		watch.Start(ctx)
	}

	<-ctx.Done()
	//close all module,clean some resource
	if watch != nil {
		log.Info("begin close watcher module")
		watch.Close()
	}
	if keep != nil {
		log.Info("begin close keeper module")
		keep.Close()
	}
	log.Info("begin close refresher module")
	refresher.Close()
	log.Info("begin close queue module")
	q.Close()
}

func loadConfig(path string) (*types.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn("config file not found, using defaults", "path", path)
		return types.InitCfgString("")
	}
	return types.InitCfg(path)
}

// startLocalGateway serves an in-memory gateway with a fresh attester key, dev only
func startLocalGateway(ctx context.Context, cfg *types.Inco) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	gw := inco.NewLocalGateway(key, cfg.Version)
	rpcSrv, err := inco.NewServer(gw)
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: cfg.LocalGateway, Handler: rpcSrv, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("local gateway", "addr", cfg.LocalGateway, "err", err)
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
		rpcSrv.Stop()
	}()
	log.Warn("local gateway running, not for production", "addr", cfg.LocalGateway, "attester", gw.Attester().Hex())
	return nil
}

func watching() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	log.Info("info:", "NumGoroutine:", runtime.NumGoroutine())
	log.Info("info:", "Mem:", m.Sys/(1024*1024))
	log.Info("info:", "HeapAlloc:", m.HeapAlloc/(1024*1024))
}
