// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeConfig(t *testing.T) {
	conf := map[string]interface{}{
		"key1": "value1",
	}
	def := map[string]interface{}{
		"key1": "value2",
		"key2": "value2",
	}
	MergeConfig(conf, def)
	assert.Equal(t, conf["key1"], "value1")
	assert.Equal(t, conf["key2"], "value2")

	//level2
	conf = map[string]interface{}{
		"key1": map[string]interface{}{"key1": "value1"},
	}
	def = map[string]interface{}{
		"key1": map[string]interface{}{"key1": "value2", "key2": "value2"},
		"key2": map[string]interface{}{"key2": "value2"},
	}
	MergeConfig(conf, def)
	assert.Equal(t, conf["key1"].(map[string]interface{})["key1"], "value1")
	assert.Equal(t, conf["key1"].(map[string]interface{})["key2"], "value2")
	assert.Equal(t, conf["key2"].(map[string]interface{})["key2"], "value2")
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := InitCfgString("")
	require.NoError(t, err)
	assert.Equal(t, "cognumbers", cfg.Title)
	assert.Equal(t, int64(84532), cfg.Chain.ChainID)
	assert.Equal(t, 5, cfg.Inco.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Inco.BaseDelayDuration())
	assert.Equal(t, 1.5, cfg.Inco.Multiplier)
	assert.Equal(t, CiphertextVersion, cfg.Inco.Version)
	assert.Equal(t, "auto", cfg.Registry.DecodeMode)
	assert.Equal(t, 4*time.Second, cfg.Watcher.PollDuration())
	assert.True(t, cfg.Keeper.ScanOnStart)
	assert.False(t, cfg.Metrics.EnableMetrics)

	addr, err := cfg.Chain.ContractAddress()
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x2b4482CaCf946DcEbB7548E3F250F00d3124a013"), addr)
}

func TestConfigOverridesDefaults(t *testing.T) {
	cfg, err := InitCfgString(`
[chain]
rpcAddr = "http://localhost:8545"
[registry]
decodeMode = "raw"
[metrics]
enableMetrics = true
dataEmitMode = "prometheus"
`)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8545", cfg.Chain.RPCAddr)
	assert.Equal(t, int64(84532), cfg.Chain.ChainID)
	assert.Equal(t, "raw", cfg.Registry.DecodeMode)
	assert.Equal(t, 16, cfg.Registry.Concurrency)
	assert.Equal(t, "localhost:9464", cfg.Metrics.ListenAddr)
}

func TestConfigCheck(t *testing.T) {
	bad := []string{
		"[inco]\nmaxAttempts = 0\n",
		"[inco]\nmultiplier = 0.5\n",
		"[registry]\ndecodeMode = \"fast\"\n",
		"[metrics]\nenableMetrics = true\ndataEmitMode = \"influxdb\"\n",
		"[chain]\nminDuration = 100\nmaxDuration = 10\n",
	}
	for _, s := range bad {
		_, err := InitCfgString(s)
		assert.True(t, errors.Is(err, ErrInvalidParam), s)
	}
	_, err := InitCfgString("[chain\n")
	assert.Error(t, err)
}

func TestPrivateKeyFromEnv(t *testing.T) {
	t.Setenv(EnvPrivateKey, " 0xabcdef ")
	cfg, err := InitCfgString("[chain]\nprivateKey = \"ignored\"\n")
	require.NoError(t, err)
	assert.Equal(t, "abcdef", cfg.Chain.PrivateKey)
}

func TestInitCfgFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cognumbers.toml")
	require.NoError(t, os.WriteFile(path, []byte("[watcher]\nfromBlock = 42\n"), 0600))
	cfg, err := InitCfg(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Watcher.FromBlock)

	_, err = InitCfg(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestContractAddress(t *testing.T) {
	_, err := (&Chain{Contract: "nope"}).ContractAddress()
	assert.True(t, errors.Is(err, ErrInvalidParam))
	_, err = (&Chain{Contract: "0x0000000000000000000000000000000000000000"}).ContractAddress()
	assert.Equal(t, ErrZeroAddress, err)
}
