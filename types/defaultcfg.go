// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package types

// GetDefaultCfgstring 默认配置
func GetDefaultCfgstring() string {
	return defaultCfg
}

var defaultCfg = `
Title="cognumbers"

[log]
loglevel = "info"
logConsoleLevel = "info"
logFile = ""
maxFileSize = 300
maxBackups = 100
maxAge = 28
localTime = true
compress = true
callerFile = false
callerFunction = false

[chain]
rpcAddr = "https://sepolia.base.org"
chainID = 84532
contract = "0x2b4482CaCf946DcEbB7548E3F250F00d3124a013"
privateKey = ""
receiptTimeout = 120
minDuration = 60
maxDuration = 604800

[inco]
encryptAddr = "http://localhost:8645"
attestAddr = "http://localhost:8645"
version = 1
handleType = 8
maxAttempts = 5
baseDelay = 1000
multiplier = 1.5
localGateway = ""

[registry]
decodeMode = "auto"
concurrency = 16
cacheSize = 1024

[watcher]
enable = true
pollInterval = 4
fromBlock = 0
maxRange = 2000

[keeper]
enable = true
scanOnStart = true

[metrics]
enableMetrics = false
dataEmitMode = "log"
logInterval = 60
listenAddr = "localhost:9464"
`
