// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"github.com/cognumbers/cognumbers/types"
)

// MsgCallback 处理一条消息
type MsgCallback func(msg *Message) error

// FuncMap 按 topic 管理消息处理函数
type FuncMap struct {
	funcmap map[string]MsgCallback
}

// Init 初始化
func (qfm *FuncMap) Init() {
	qfm.funcmap = make(map[string]MsgCallback)
}

// Register 同一个 topic 只能注册一次
func (qfm *FuncMap) Register(topic string, fn MsgCallback) error {
	if _, ok := qfm.funcmap[topic]; ok {
		return types.ErrHandlerExists
	}
	qfm.funcmap[topic] = fn
	return nil
}

// UnRegister 删除处理函数
func (qfm *FuncMap) UnRegister(topic string) {
	delete(qfm.funcmap, topic)
}

// Topics 已注册的 topic
func (qfm *FuncMap) Topics() []string {
	topics := make([]string, 0, len(qfm.funcmap))
	for topic := range qfm.funcmap {
		topics = append(topics, topic)
	}
	return topics
}

// Process 返回值 bool 表示是否有对应的处理函数
func (qfm *FuncMap) Process(msg *Message) (bool, error) {
	fn, ok := qfm.funcmap[msg.Topic]
	if !ok {
		return false, nil
	}
	return true, fn(msg)
}
