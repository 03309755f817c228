// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package version 版本号，编译时可以用 -ldflags "-X" 覆盖
package version

var (
	version   = "1.0.0"
	gitCommit = ""
)

// GetVersion 获取版本号
func GetVersion() string {
	if gitCommit != "" {
		return version + "-" + gitCommit
	}
	return version
}
