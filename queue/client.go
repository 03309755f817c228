// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package queue

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/cognumbers/cognumbers/types"
)

//消息队列的主要作用是解耦合，让各个模块相对的独立运行。
//每个模块都会有一个client 对象
//主要的操作大致如下：
// client := q.Client()
// client.Sub("topicname")
// for msg := range client.Recv() {
//     process(msg)
// }
// process 函数会调用 处理具体的消息逻辑

// Client 模块使用的队列接口
type Client interface {
	Send(msg Message) error //发送消息
	SendTimeout(msg Message, timeout time.Duration) error
	Recv() chan Message
	Sub(topics ...string) //订阅消息
	Close()
	NewMessage(topic string, data interface{}) Message
}

// Module be used for module interface
type Module interface {
	SetQueueClient(client Client)
	Close()
}

type client struct {
	q        *Queue
	recv     chan Message
	done     chan struct{}
	mu       sync.RWMutex
	isClosed int32
}

func newClient(q *Queue) *client {
	return &client{
		q:    q,
		recv: make(chan Message, DefaultChanBuffer),
		done: make(chan struct{}),
	}
}

func (client *client) Send(msg Message) error {
	return client.SendTimeout(msg, DefaultSendTimeout)
}

func (client *client) SendTimeout(msg Message, timeout time.Duration) error {
	if client.isClose() {
		return types.ErrIsClosed
	}
	return client.q.send(msg, timeout)
}

func (client *client) NewMessage(topic string, data interface{}) Message {
	return NewMessage(topic, data)
}

func (client *client) Recv() chan Message {
	return client.recv
}

func (client *client) isClose() bool {
	return atomic.LoadInt32(&client.isClosed) == 1
}

func (client *client) Sub(topics ...string) {
	//正在关闭或者已经关闭
	if client.isClose() {
		return
	}
	for _, topic := range topics {
		client.q.sub(client, topic)
	}
}

// deliver 写锁保证 Close 之后不会再向 recv 写入
func (client *client) deliver(msg Message, timeout time.Duration) error {
	client.mu.RLock()
	defer client.mu.RUnlock()
	if client.isClose() {
		return types.ErrIsClosed
	}
	select {
	case client.recv <- msg:
		return nil
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case client.recv <- msg:
		return nil
	case <-client.done:
		return types.ErrIsClosed
	case <-t.C:
		return types.ErrTimeout
	}
}

func (client *client) Close() {
	if !atomic.CompareAndSwapInt32(&client.isClosed, 0, 1) {
		return
	}
	client.q.unsub(client)
	close(client.done)
	client.mu.Lock()
	close(client.recv)
	client.mu.Unlock()
}
