// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client json-rpc transport for both gateway services
type Client struct {
	c *rpc.Client
}

// Dial connects to a gateway endpoint (http, ws or ipc)
func Dial(ctx context.Context, rawurl string) (*Client, error) {
	c, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, err
	}
	return NewClient(c), nil
}

// NewClient wraps an existing rpc connection
func NewClient(c *rpc.Client) *Client {
	return &Client{c: c}
}

// Close closes the connection
func (ic *Client) Close() {
	ic.c.Close()
}

// Encrypt lightning_encrypt
func (ic *Client) Encrypt(ctx context.Context, value *big.Int, account, dapp common.Address, handleType uint8) ([]byte, error) {
	var out hexutil.Bytes
	err := ic.c.CallContext(ctx, &out, Namespace+"_encrypt", (*hexutil.Big)(value), account, dapp, hexutil.Uint64(handleType))
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AttestedDecrypt lightning_attestedDecrypt
func (ic *Client) AttestedDecrypt(ctx context.Context, req *DecryptRequest) ([]*DecryptResult, error) {
	var out []*DecryptResult
	if err := ic.c.CallContext(ctx, &out, Namespace+"_attestedDecrypt", req); err != nil {
		return nil, err
	}
	return out, nil
}
