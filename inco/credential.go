// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"crypto/ecdsa"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// WalletCredential on-chain identity the decryption channel is bound to
type WalletCredential interface {
	Address() common.Address
	SignDecrypt(handles []types.Handle) ([]byte, error)
}

// KeyCredential credential backed by a local secp256k1 key
type KeyCredential struct {
	key  *ecdsa.PrivateKey
	addr common.Address
}

// NewKeyCredential wraps key
func NewKeyCredential(key *ecdsa.PrivateKey) *KeyCredential {
	return &KeyCredential{key: key, addr: crypto.PubkeyToAddress(key.PublicKey)}
}

// Address account of the key
func (k *KeyCredential) Address() common.Address {
	return k.addr
}

// SignDecrypt signs DecryptDigest(address, handles)
func (k *KeyCredential) SignDecrypt(handles []types.Handle) ([]byte, error) {
	return crypto.Sign(DecryptDigest(k.addr, handles), k.key)
}
