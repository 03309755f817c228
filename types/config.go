// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

import (
	"bytes"
	"os"
	"strings"
	"time"

	tml "github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// EnvPrivateKey environment variable holding the hex wallet key
const EnvPrivateKey = "COGNUMBERS_PRIVATE_KEY"

// Config top level configuration
type Config struct {
	Title    string    `toml:"Title"`
	Log      *Log      `toml:"log"`
	Chain    *Chain    `toml:"chain"`
	Inco     *Inco     `toml:"inco"`
	Registry *Registry `toml:"registry"`
	Watcher  *Watcher  `toml:"watcher"`
	Keeper   *Keeper   `toml:"keeper"`
	Metrics  *Metrics  `toml:"metrics"`
}

// Log 日志配置
type Log struct {
	// 日志级别，支持debug(dbug)/info/warn/error(eror)/crit
	Loglevel        string `toml:"loglevel"`
	LogConsoleLevel string `toml:"logConsoleLevel"`
	// 日志文件名，可带目录，所有生成的日志文件都放到此目录下
	LogFile string `toml:"logFile"`
	// 单个日志文件的最大值（单位：兆）
	MaxFileSize uint32 `toml:"maxFileSize"`
	// 最多保存的历史日志文件个数
	MaxBackups uint32 `toml:"maxBackups"`
	// 最多保存的历史日志消息（单位：天）
	MaxAge uint32 `toml:"maxAge"`
	// 日志文件名是否使用本地事件（否则使用UTC时间）
	LocalTime bool `toml:"localTime"`
	// 历史日志文件是否压缩（压缩格式为gz）
	Compress bool `toml:"compress"`
	// 是否打印调用源文件和行号
	CallerFile bool `toml:"callerFile"`
	// 是否打印调用方法
	CallerFunction bool `toml:"callerFunction"`
}

// Chain rpc endpoint and contract
type Chain struct {
	RPCAddr  string `toml:"rpcAddr"`
	ChainID  int64  `toml:"chainID"`
	Contract string `toml:"contract"`
	// hex key, usually left empty and supplied through COGNUMBERS_PRIVATE_KEY
	PrivateKey string `toml:"privateKey"`
	// seconds to wait for a receipt, 0 waits until the context is done
	ReceiptTimeout int64 `toml:"receiptTimeout"`
	// game duration bounds accepted by createGame, seconds
	MinDuration int64 `toml:"minDuration"`
	MaxDuration int64 `toml:"maxDuration"`
}

// Inco encryption and attested decryption services
type Inco struct {
	EncryptAddr string  `toml:"encryptAddr"`
	AttestAddr  string  `toml:"attestAddr"`
	Version     uint32  `toml:"version"`
	HandleType  uint8   `toml:"handleType"`
	MaxAttempts int     `toml:"maxAttempts"`
	BaseDelay   int64   `toml:"baseDelay"`
	Multiplier  float64 `toml:"multiplier"`
	// 非空时 daemon 在该地址启动本地网关，仅用于开发和测试
	LocalGateway string `toml:"localGateway"`
}

// Registry game listing
type Registry struct {
	// structured, raw or auto
	DecodeMode  string `toml:"decodeMode"`
	Concurrency int    `toml:"concurrency"`
	CacheSize   int    `toml:"cacheSize"`
}

// Watcher contract log polling
type Watcher struct {
	Enable       bool   `toml:"enable"`
	PollInterval int64  `toml:"pollInterval"`
	FromBlock    uint64 `toml:"fromBlock"`
	MaxRange     uint64 `toml:"maxRange"`
}

// Keeper automatic resolution
type Keeper struct {
	Enable bool `toml:"enable"`
	// resolve games already in Calculating at startup
	ScanOnStart bool `toml:"scanOnStart"`
}

// Metrics 统计数据输出
type Metrics struct {
	EnableMetrics bool `toml:"enableMetrics"`
	// log 或 prometheus
	DataEmitMode string `toml:"dataEmitMode"`
	// log 模式下的输出间隔（单位：秒）
	LogInterval int64 `toml:"logInterval"`
	// prometheus 模式下 /metrics 的监听地址
	ListenAddr string `toml:"listenAddr"`
}

// ContractAddress parsed contract address
func (c *Chain) ContractAddress() (common.Address, error) {
	if !common.IsHexAddress(c.Contract) {
		return common.Address{}, errors.Wrapf(ErrInvalidParam, "contract address %q", c.Contract)
	}
	addr := common.HexToAddress(c.Contract)
	if addr == (common.Address{}) {
		return common.Address{}, ErrZeroAddress
	}
	return addr, nil
}

// BaseDelayDuration base delay of the decryption retry schedule
func (c *Inco) BaseDelayDuration() time.Duration {
	return time.Duration(c.BaseDelay) * time.Millisecond
}

// PollDuration watcher poll interval
func (w *Watcher) PollDuration() time.Duration {
	return time.Duration(w.PollInterval) * time.Second
}

// InitCfg 读取配置文件并与默认配置合并
func InitCfg(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return InitCfgString(string(data))
}

// InitCfgString 解析配置字符串, 缺省项使用默认配置
func InitCfgString(cfgstring string) (*Config, error) {
	merged, err := mergeCfgString(cfgstring, GetDefaultCfgstring())
	if err != nil {
		return nil, err
	}
	var cfg Config
	if _, err := tml.Decode(merged, &cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if key := os.Getenv(EnvPrivateKey); key != "" {
		cfg.Chain.PrivateKey = key
	}
	cfg.Chain.PrivateKey = strings.TrimPrefix(strings.TrimSpace(cfg.Chain.PrivateKey), "0x")
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) check() error {
	if c.Inco.MaxAttempts <= 0 {
		return errors.Wrap(ErrInvalidParam, "inco.maxAttempts must be positive")
	}
	if c.Inco.Multiplier < 1 {
		return errors.Wrap(ErrInvalidParam, "inco.multiplier must be >= 1")
	}
	switch c.Registry.DecodeMode {
	case "structured", "raw", "auto":
	default:
		return errors.Wrapf(ErrInvalidParam, "registry.decodeMode %q", c.Registry.DecodeMode)
	}
	if c.Metrics.EnableMetrics {
		switch c.Metrics.DataEmitMode {
		case "log", "prometheus":
		default:
			return errors.Wrapf(ErrInvalidParam, "metrics.dataEmitMode %q", c.Metrics.DataEmitMode)
		}
	}
	if c.Chain.MinDuration > c.Chain.MaxDuration {
		return errors.Wrap(ErrInvalidParam, "chain.minDuration > chain.maxDuration")
	}
	return nil
}

func mergeCfgString(cfgstring, cfgdefault string) (string, error) {
	def := make(map[string]interface{})
	if _, err := tml.Decode(cfgdefault, &def); err != nil {
		return "", errors.Wrap(err, "decode default config")
	}
	conf := make(map[string]interface{})
	if _, err := tml.Decode(cfgstring, &conf); err != nil {
		return "", errors.Wrap(err, "decode config")
	}
	MergeConfig(conf, def)
	buf := new(bytes.Buffer)
	if err := tml.NewEncoder(buf).Encode(conf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// MergeConfig 用默认配置补全用户配置中缺失的项
func MergeConfig(conf map[string]interface{}, def map[string]interface{}) {
	for key1, value1 := range def {
		if vconf, ok := conf[key1]; ok {
			def1, ok1 := value1.(map[string]interface{})
			conf1, ok2 := vconf.(map[string]interface{})
			if ok1 && ok2 {
				MergeConfig(conf1, def1)
				conf[key1] = conf1
			}
		} else {
			conf[key1] = value1
		}
	}
}
