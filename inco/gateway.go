// Copyright Fuzamei Corp. 2018 All Rights Reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inco

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"math/big"
	"sync"

	"github.com/cognumbers/cognumbers/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
)

// gateway errors
var (
	ErrBadRequestSignature = errors.New("ErrBadRequestSignature")
	ErrUnknownHandle       = errors.New("ErrUnknownHandle")
	ErrAccessDenied        = errors.New("ErrAccessDenied")
)

type sealed struct {
	value   *big.Int
	account common.Address
	dapp    common.Address
}

// LocalGateway in-memory encryption and attested decryption service for devnets and tests.
// Plaintexts never leave the gateway, handles are keccak commitments.
type LocalGateway struct {
	mu       sync.Mutex
	attester *ecdsa.PrivateKey
	version  uint32
	nonce    uint64
	store    map[types.Handle]*sealed
	// dapp => accounts allowed to reveal every handle bound to it
	readers map[common.Address]map[common.Address]bool
}

// NewLocalGateway gateway signing attestations with attester
func NewLocalGateway(attester *ecdsa.PrivateKey, version uint32) *LocalGateway {
	return &LocalGateway{
		attester: attester,
		version:  version,
		store:    make(map[types.Handle]*sealed),
		readers:  make(map[common.Address]map[common.Address]bool),
	}
}

// Attester address whose signatures the contract accepts
func (g *LocalGateway) Attester() common.Address {
	return crypto.PubkeyToAddress(g.attester.PublicKey)
}

// AllowReader lets account reveal every handle bound to dapp, as the contract does for its resolver
func (g *LocalGateway) AllowReader(dapp, account common.Address) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.readers[dapp] == nil {
		g.readers[dapp] = make(map[common.Address]bool)
	}
	g.readers[dapp][account] = true
}

// Encrypt served as lightning_encrypt
func (g *LocalGateway) Encrypt(ctx context.Context, value *hexutil.Big, account, dapp common.Address, handleType hexutil.Uint64) (hexutil.Bytes, error) {
	if value == nil {
		return nil, types.ErrInvalidParam
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nonce++
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], g.nonce)
	handle := types.BytesToHandle(crypto.Keccak256(account.Bytes(), dapp.Bytes(), n[:], []byte{byte(handleType)}))
	g.store[handle] = &sealed{value: new(big.Int).Set((*big.Int)(value)), account: account, dapp: dapp}
	payload := crypto.Keccak256(handle[:], n[:])
	return types.EncodeCiphertext(g.version, handle, payload), nil
}

// AttestedDecrypt served as lightning_attestedDecrypt
func (g *LocalGateway) AttestedDecrypt(ctx context.Context, req DecryptRequest) ([]*DecryptResult, error) {
	pub, err := crypto.SigToPub(DecryptDigest(req.Account, req.Handles), req.Signature)
	if err != nil || crypto.PubkeyToAddress(*pub) != req.Account {
		return nil, ErrBadRequestSignature
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*DecryptResult, len(req.Handles))
	for i, h := range req.Handles {
		s, ok := g.store[h]
		if !ok {
			return nil, errors.Wrap(ErrUnknownHandle, h.Hex())
		}
		if s.account != req.Account && !g.readers[s.dapp][req.Account] {
			return nil, errors.Wrap(ErrAccessDenied, h.Hex())
		}
		sig, err := crypto.Sign(AttestationDigest(h, s.value), g.attester)
		if err != nil {
			return nil, err
		}
		out[i] = &DecryptResult{
			Handle:     h,
			Plaintext:  (*hexutil.Big)(new(big.Int).Set(s.value)),
			Signatures: []hexutil.Bytes{sig},
		}
	}
	return out, nil
}

// NewServer rpc server exposing gw under the lightning namespace
func NewServer(gw *LocalGateway) (*rpc.Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName(Namespace, gw); err != nil {
		return nil, err
	}
	return srv, nil
}
