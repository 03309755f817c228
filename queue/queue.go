// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package queue 进程内的消息队列，模块之间按 topic 订阅
package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cognumbers/cognumbers/common/log"
	"github.com/cognumbers/cognumbers/types"
)

//消息队列：
//多对多消息队列
//消息：topic
//每个订阅了 topic 的 client 都会收到一份消息

var qlog = log.New("module", "queue")

// DefaultChanBuffer 每个 client 的接收缓冲
const DefaultChanBuffer = 64

// DefaultSendTimeout Send 等待慢消费者的时间
const DefaultSendTimeout = 10 * time.Second

var gid int64

// Message 队列中传递的消息
type Message struct {
	Topic string
	ID    int64
	Data  interface{}
}

// NewMessage 新建消息，ID 全局递增
func NewMessage(topic string, data interface{}) Message {
	return Message{Topic: topic, ID: atomic.AddInt64(&gid, 1), Data: data}
}

// Queue 管理所有 topic 的订阅者
type Queue struct {
	name     string
	mu       sync.RWMutex
	subs     map[string][]*client
	isClosed int32
}

// New 新建队列
func New(name string) *Queue {
	return &Queue{name: name, subs: make(map[string][]*client)}
}

// Name 队列名
func (q *Queue) Name() string {
	return q.name
}

// Client 新建一个 client
func (q *Queue) Client() Client {
	return newClient(q)
}

// Subscribers topic 当前的订阅者数量
func (q *Queue) Subscribers(topic string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.subs[topic])
}

func (q *Queue) closed() bool {
	return atomic.LoadInt32(&q.isClosed) == 1
}

// Close 关闭所有 client
func (q *Queue) Close() {
	if !atomic.CompareAndSwapInt32(&q.isClosed, 0, 1) {
		return
	}
	q.mu.Lock()
	var all []*client
	seen := make(map[*client]bool)
	for _, cs := range q.subs {
		for _, c := range cs {
			if !seen[c] {
				seen[c] = true
				all = append(all, c)
			}
		}
	}
	q.subs = make(map[string][]*client)
	q.mu.Unlock()
	for _, c := range all {
		c.Close()
	}
	qlog.Info("queue closed", "name", q.name)
}

func (q *Queue) sub(c *client, topic string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, s := range q.subs[topic] {
		if s == c {
			return
		}
	}
	q.subs[topic] = append(q.subs[topic], c)
}

func (q *Queue) unsub(c *client) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for topic, cs := range q.subs {
		kept := cs[:0]
		for _, s := range cs {
			if s != c {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(q.subs, topic)
			continue
		}
		q.subs[topic] = kept
	}
}

// send 把消息投递给 topic 的每个订阅者，任何一个超时都返回 ErrTimeout
func (q *Queue) send(msg Message, timeout time.Duration) error {
	if q.closed() {
		return types.ErrIsClosed
	}
	q.mu.RLock()
	targets := append([]*client(nil), q.subs[msg.Topic]...)
	q.mu.RUnlock()
	if len(targets) == 0 {
		qlog.Debug("no subscriber", "topic", msg.Topic, "id", msg.ID)
		return nil
	}
	var err error
	for _, c := range targets {
		if e := c.deliver(msg, timeout); e != nil {
			qlog.Error("deliver", "topic", msg.Topic, "id", msg.ID, "err", e)
			if err == nil || e == types.ErrTimeout {
				err = e
			}
		}
	}
	if err == types.ErrIsClosed {
		// 订阅者刚刚关闭，不算发送失败
		return nil
	}
	return err
}
